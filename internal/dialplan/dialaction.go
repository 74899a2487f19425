package dialplan

import (
	"fmt"
	"strings"
)

// Categorías para las que nunca se emite el marcador ISDA. Lista fija,
// heredada tal cual de la configuración histórica del dial-plan
var categoryNoISDA = map[string]bool{
	"none":               true,
	"endcall:busy":       true,
	"endcall:congestion": true,
	"endcall:hangup":     true,
}

// DialAction es una acción de desvío resuelta para un (evento, categoría).
// La ausencia de regla en la base se materializa como la acción "none" con
// argumentos vacíos, nunca como una omisión
type DialAction struct {
	Event    string
	Category string
	Action   string
	Arg1     string
	Arg2     string
}

// SetVariables emite las variables de canal de la acción. Los argumentos
// ausentes se emiten como cadena vacía, nunca se omiten. El marcador ISDA
// indica que las variables las puso este resolutor y no una mano externa
func (d *DialAction) SetVariables(ch Channel) error {
	action := d.Action
	if action == "" {
		action = "none"
	}

	prefix := fmt.Sprintf("AGID_FWD_%s_%s", strings.ToUpper(d.Category), strings.ToUpper(d.Event))

	if err := ch.SetVariable(prefix+"_ACTION", action); err != nil {
		return err
	}
	if !categoryNoISDA[d.Category] {
		if err := ch.SetVariable(prefix+"_ISDA", "1"); err != nil {
			return err
		}
	}

	// El separador | entra en conflicto con la sintaxis de argumentos del
	// consumidor aguas abajo
	arg1 := strings.ReplaceAll(d.Arg1, "|", ";")
	if err := ch.SetVariable(prefix+"_ACTIONARG1", arg1); err != nil {
		return err
	}
	return ch.SetVariable(prefix+"_ACTIONARG2", d.Arg2)
}
