package agid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agid/internal/database"
	"agid/internal/fastagi"
)

// phoneProgfunckey valida una tecla de función programable marcada desde el
// teléfono y resuelve el servicio al que apunta
func phoneProgfunckey(a *fastagi.AGI, repo *database.Repository, args []string) error {
	userID, err := a.GetVariable("AGID_USERID")
	if err != nil {
		return err
	}

	if len(args) != 1 {
		return fastagi.Break(fmt.Sprintf("número de argumentos inválido (args: %v)", args))
	}

	parts, err := splitExtension(args[0])
	if err != nil {
		return fastagi.Break(err.Error())
	}

	if userID != parts[0] {
		return fastagi.Break(fmt.Sprintf("usuario equivocado (userid: %q, esperado: %q)", parts[0], userID))
	}

	feature := ""
	if fext, err := repo.GetFeatureByExten(parts[1]); err == nil {
		feature = fext.Feature
	} else if errors.Is(err, database.ErrNotFound) {
		if verr := a.Verbose(err.Error(), 1); verr != nil {
			return verr
		}
	} else {
		return err
	}

	if err := a.SetVariable("AGID_PHONE_PROGFUNCKEY", strings.Join(parts[1:], "")); err != nil {
		return err
	}
	return a.SetVariable("AGID_PHONE_PROGFUNCKEY_FEATURE", feature)
}

// splitExtension separa una extensión compuesta en sus partes. El asterisco
// es el separador; un asterisco doble es un asterisco literal
func splitExtension(exten string) ([]string, error) {
	parts := []string{""}
	pendingStar := false
	for _, r := range exten {
		if pendingStar {
			pendingStar = false
			if r == '*' {
				parts[len(parts)-1] += "*"
				continue
			}
			parts = append(parts, string(r))
			continue
		}
		if r == '*' {
			pendingStar = true
			continue
		}
		parts[len(parts)-1] += string(r)
	}
	if pendingStar {
		parts = append(parts, "")
	}

	if len(parts) < 2 {
		return nil, fmt.Errorf("agid: extensión compuesta inválida %q", exten)
	}
	return parts, nil
}

// getUserInterfaces expande las interfaces de marcado de un usuario a
// partir de su HINT de líneas compartidas
func getUserInterfaces(a *fastagi.AGI, repo *database.Repository, args []string) error {
	if len(args) < 1 {
		return fastagi.Break(fmt.Sprintf("número de argumentos inválido (args: %v)", args))
	}
	userUUID := args[0]

	hint, err := a.GetVariable(fmt.Sprintf("HINT(%s@usersharedlines)", userUUID))
	if err != nil {
		return err
	}
	if hint == "" {
		return fastagi.Break("usuario desconocido " + strconv.Quote(userUUID))
	}

	var interfaces []string
	for _, endpoint := range strings.Split(hint, "&") {
		protocol, name, found := strings.Cut(endpoint, "/")
		if !found {
			continue
		}
		if strings.EqualFold(protocol, "pjsip") {
			// Expandir a los contactos registrados del endpoint
			contacts, err := a.GetVariable(fmt.Sprintf("PJSIP_DIAL_CONTACTS(%s)", name))
			if err != nil {
				return err
			}
			if contacts == "" {
				continue
			}
			interfaces = append(interfaces, strings.Split(contacts, "&")...)
		} else {
			interfaces = append(interfaces, endpoint)
		}
	}

	return a.SetVariable("AGID_USER_INTERFACES", strings.Join(interfaces, "&"))
}

// wakeMobile despierta la aplicación móvil del destinatario cuando la
// llamada está esperando por un dispositivo móvil
func wakeMobile(a *fastagi.AGI, repo *database.Repository, args []string) error {
	if len(args) < 1 {
		return fastagi.Break(fmt.Sprintf("número de argumentos inválido (args: %v)", args))
	}
	userUUID := args[0]

	shouldWake, err := a.GetVariable("AGID_WAIT_FOR_MOBILE")
	if err != nil {
		return err
	}
	if shouldWake == "" {
		return nil
	}

	videoEnabled, err := a.GetVariable("AGID_VIDEO_ENABLED")
	if err != nil {
		return err
	}

	payload := fmt.Sprintf("Pushmobile,AGID_DST_UUID: %s,AGID_VIDEO_ENABLED: %s", userUUID, videoEnabled)
	_, err = a.Appexec("UserEvent", payload)
	return err
}

// userToggleFeature invierte un servicio del usuario (voicemail o
// grabación). La actualización debe afectar exactamente una fila
func userToggleFeature(a *fastagi.AGI, repo *database.Repository, args []string) error {
	if len(args) != 2 {
		return fastagi.Break(fmt.Sprintf("número de argumentos inválido (args: %v)", args))
	}

	userID, err := strconv.Atoi(args[0])
	if err != nil {
		return fastagi.Break(fmt.Sprintf("id de usuario inválido %q", args[0]))
	}
	feature := args[1]

	enabled, err := repo.ToggleUserFeature(userID, feature)
	if err != nil {
		if errors.Is(err, database.ErrUpdateMismatch) || errors.Is(err, database.ErrNotFound) {
			return fastagi.Break(err.Error())
		}
		return err
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}
	return a.SetVariable("AGID_FEATURE_STATUS", status)
}

// agentGetStatus resuelve un agente por id o número y emite su identidad
func agentGetStatus(a *fastagi.AGI, repo *database.Repository, args []string) error {
	if len(args) < 1 {
		return fastagi.Break(fmt.Sprintf("número de argumentos inválido (args: %v)", args))
	}

	var (
		agent *database.Agent
		err   error
	)
	if id, convErr := strconv.Atoi(args[0]); convErr == nil && !strings.HasPrefix(args[0], "0") {
		agent, err = repo.GetAgent(id)
	} else {
		agent, err = repo.GetAgentByNumber(args[0])
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fastagi.Break(err.Error())
		}
		return err
	}

	vars := []struct{ name, value string }{
		{"AGID_AGENT_ID", strconv.Itoa(agent.ID)},
		{"AGID_AGENT_NUMBER", agent.Number},
		{"AGID_AGENT_NAME", strings.TrimSpace(agent.Firstname + " " + agent.Lastname)},
		{"AGID_AGENT_LANGUAGE", agent.Language},
		{"AGID_AGENT_PREPROCESS_SUBROUTINE", agent.PreprocessSubroutine},
	}
	for _, v := range vars {
		if err := a.SetVariable(v.name, v.value); err != nil {
			return err
		}
	}
	return nil
}
