package dialplan

import (
	"regexp"
	"strings"
)

// RewrittenVar es el marcador de un solo uso que impide reescribir dos veces
// el caller-id del mismo tramo de llamada (p. ej. tras una transferencia)
const RewrittenVar = "AGID_CALLERID_REWRITTEN"

var (
	reCallerID = regexp.MustCompile("^(?:\"(.+)\"|([a-zA-Z0-9\\-\\.!%*_+`'~]+)) ?(?:<(\\+?[0-9*#]+)>)?$")
	reNumeric  = regexp.MustCompile(`^\+?[0-9*#]+$`)
)

// CallerIdentity es el par (nombre, número) extraído de una cadena de
// presentación. Cualquiera de los dos puede estar ausente (cadena vacía)
type CallerIdentity struct {
	Name   string
	Number string
}

// ParseCallerID extrae la identidad de una cadena de presentación. Una
// cadena que no casa con la gramática devuelve ok=false: el llamador debe
// dejar el caller-id intacto, no es un error
func ParseCallerID(display string) (CallerIdentity, bool) {
	m := reCallerID.FindStringSubmatch(strings.TrimSpace(display))
	if m == nil {
		return CallerIdentity{}, false
	}

	identity := CallerIdentity{Number: m[3]}
	if m[1] != "" {
		identity.Name = m[1]
	} else {
		identity.Name = m[2]
		// Un nombre sin comillas puramente numérico y sin número explícito
		// se reinterpreta también como el número
		if identity.Number == "" && reNumeric.MatchString(identity.Name) {
			identity.Number = identity.Name
		}
	}
	return identity, true
}

// SetCallerIDFrom parsea la cadena de presentación y escribe la identidad
// en el canal. Si nada resuelve no se escribe ninguna variable
func SetCallerIDFrom(ch Channel, display string) error {
	identity, ok := ParseCallerID(display)
	if !ok {
		return nil
	}

	switch {
	case identity.Name != "" && identity.Number != "":
		return ch.SetVariable("CALLERID(all)", `"`+identity.Name+`" <`+identity.Number+`>`)
	case identity.Name != "":
		return ch.SetVariable("CALLERID(name)", identity.Name)
	default:
		return nil
	}
}

// RewriteRule es la regla de reescritura de caller-id de una entidad
type RewriteRule struct {
	Mode   string // prepend, append, overwrite
	Name   string
	Number string
}

// NewRewriteRule construye la regla a partir del modo y la cadena de
// presentación configurada. Una cadena que no parsea devuelve ok=false
func NewRewriteRule(mode, display string) (RewriteRule, bool) {
	identity, ok := ParseCallerID(display)
	if !ok {
		return RewriteRule{}, false
	}
	return RewriteRule{Mode: mode, Name: identity.Name, Number: identity.Number}, true
}

// Rewrite aplica la regla sobre la identidad actual del canal. Con force en
// falso la reescritura es de un solo uso por tramo: se consulta el marcador
// antes y se fija después
func (r *RewriteRule) Rewrite(ch Channel, force bool) error {
	if r.Mode == "" {
		return nil
	}

	if !force {
		rewritten, err := ch.GetVariable(RewrittenVar)
		if err != nil {
			return err
		}
		if rewritten != "" {
			return nil
		}
	}

	currentName, err := ch.GetVariable("CALLERID(name)")
	if err != nil {
		return err
	}
	currentNum, err := ch.GetVariable("CALLERID(num)")
	if err != nil {
		return err
	}

	// El número de la regla siempre gana; un número ausente cae al literal
	if r.Number != "" {
		currentNum = r.Number
	} else if currentNum == "" {
		currentNum = "unknown"
	}

	// Un nombre ausente o vacío-entre-comillas cae al número resuelto
	if currentName == "" || currentName == `""` {
		currentName = currentNum
	} else if strings.HasPrefix(currentName, `"`) && strings.HasSuffix(currentName, `"`) && len(currentName) >= 2 {
		currentName = currentName[1 : len(currentName)-1]
	}

	var name string
	switch {
	case (r.Mode == "prepend" || r.Mode == "append") && r.Name == currentName && currentNum == currentName:
		// Caso degenerado autorreferente: sin duplicación
		name = currentName
	case r.Mode == "prepend":
		name = r.Name + " - " + currentName
	case r.Mode == "append":
		name = currentName + " - " + r.Name
	case r.Mode == "overwrite":
		name = r.Name
	default:
		return nil
	}

	if err := ch.SetVariable("CALLERID(name-pres)", "allowed"); err != nil {
		return err
	}
	if err := ch.SetVariable("CALLERID(num-pres)", "allowed"); err != nil {
		return err
	}
	if err := ch.SetVariable("CALLERID(all)", `"`+name+`" <`+currentNum+`>`); err != nil {
		return err
	}

	if !force {
		return ch.SetVariable(RewrittenVar, "1")
	}
	return nil
}
