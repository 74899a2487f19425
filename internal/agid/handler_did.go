package agid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"agid/internal/database"
	"agid/internal/fastagi"
)

// incomingDIDSetFeatures prepara una llamada entrante que llegó por un DID:
// variables de identidad, acción de contestación, reescritura forzada de
// caller-id y reclamo de la ruta de horario
func incomingDIDSetFeatures(a *fastagi.AGI, repo *database.Repository, args []string) error {
	exten := a.Env["agi_extension"]
	context := a.Env["agi_context"]

	did, err := repo.GetDID(exten, context)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fastagi.Break(err.Error())
		}
		return err
	}

	if err := a.SetVariable("AGID_DIDID", strconv.Itoa(did.ID)); err != nil {
		return err
	}
	if err := a.SetVariable("AGID_REAL_NUMBER", did.Exten); err != nil {
		return err
	}
	if err := a.SetVariable("AGID_REAL_CONTEXT", did.Context); err != nil {
		return err
	}
	if err := a.SetVariable("AGID_INCALL_PREPROCESS_SUBROUTINE", did.PreprocessSubroutine); err != nil {
		return err
	}
	if err := a.SetVariable("AGID_GREETING_SOUND", did.GreetingSound); err != nil {
		return err
	}

	categoryVal := strconv.Itoa(did.ID)
	if err := emitDialAction(a, repo, "answer", "incall", categoryVal); err != nil {
		return err
	}

	// Para una entrante la identidad se reescribe siempre, venga de donde venga
	if err := rewriteCallerID(a, repo, "incall", categoryVal, true); err != nil {
		return err
	}

	if err := a.SetVariable("AGID_PATH", "incall"); err != nil {
		return err
	}
	if err := a.SetVariable("AGID_PATH_ID", categoryVal); err != nil {
		return err
	}

	return a.SetVariable("AGID_INCALL_STATUS", "ok")
}

// calleridExtend propaga el tipo de numeración del llamante cuando el
// switch lo entrega en el entorno
func calleridExtend(a *fastagi.AGI, repo *database.Repository, args []string) error {
	if ton, ok := a.Env["agi_callington"]; ok {
		return a.SetVariable("AGID_SRCTON", ton)
	}
	return nil
}

// meetingName resuelve el nombre de una sala de reunión por uuid o por
// número, siempre dentro del tenant de la llamada
func meetingName(a *fastagi.AGI, repo *database.Repository, args []string) error {
	if len(args) < 1 {
		return fastagi.Break(fmt.Sprintf("número de argumentos inválido (args: %v)", args))
	}

	tenant, err := a.GetVariable("AGID_TENANT_UUID")
	if err != nil {
		return err
	}

	var meeting *database.Meeting
	if number, found := strings.CutPrefix(args[0], "number:"); found {
		meeting, err = repo.GetMeetingByNumber(number, tenant)
	} else {
		meeting, err = repo.GetMeetingByUUID(args[0], tenant)
	}
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fastagi.Break(err.Error())
		}
		return err
	}

	return a.SetVariable("AGID_MEETING_NAME", meeting.Name)
}
