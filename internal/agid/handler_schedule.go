package agid

import (
	"strconv"
	"time"

	"agid/internal/database"
	"agid/internal/dialplan"
	"agid/internal/fastagi"
)

// nowFunc permite fijar el reloj en las pruebas
var nowFunc = time.Now

// checkSchedule evalúa el horario de la ruta reclamada por el handler
// anterior. Sin horario configurado el estado queda intacto: no es lo mismo
// que un horario vacío, que evalúa siempre cerrado
func checkSchedule(a *fastagi.AGI, repo *database.Repository, args []string) error {
	path, err := a.GetVariable("AGID_PATH")
	if err != nil {
		return err
	}
	if path == "" {
		return nil
	}
	pathIDRaw, err := a.GetVariable("AGID_PATH_ID")
	if err != nil {
		return err
	}
	pathID, err := strconv.Atoi(pathIDRaw)
	if err != nil {
		return fastagi.Break("id de ruta inválido " + strconv.Quote(pathIDRaw))
	}

	row, ok, err := repo.GetSchedule(path, pathID)
	if err != nil {
		return err
	}
	if !ok {
		// La ruta no tiene horario: se sigue sin desvío
		return a.SetVariable("AGID_PATH", "")
	}

	schedule, err := dialplan.NewSchedule(row)
	if err != nil {
		// Periodo malformado: error fatal de configuración
		return err
	}

	opened, action := schedule.Evaluate(nowFunc())
	status := "closed"
	if opened {
		status = "opened"
	}
	if err := a.SetVariable("AGID_SCHEDULE_STATUS", status); err != nil {
		return err
	}

	if !opened {
		out := dialplan.DialAction{
			Event:    "out",
			Category: "schedule",
			Action:   action.Kind,
			Arg1:     action.Target,
			Arg2:     action.Args,
		}
		if err := out.SetVariables(a); err != nil {
			return err
		}
	}

	// La ruta se consume: una sola evaluación por tramo
	return a.SetVariable("AGID_PATH", "")
}
