package agid

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"agid/internal/database"
	"agid/internal/dialplan"
	"agid/internal/fastagi"
)

// incomingQueueSetFeatures prepara todas las variables que el dial-plan
// necesita antes de entregar la llamada a la aplicación Queue
func incomingQueueSetFeatures(a *fastagi.AGI, repo *database.Repository, args []string) error {
	queueIDRaw, err := a.GetVariable("AGID_DSTID")
	if err != nil {
		return err
	}
	referer, err := a.GetVariable("AGID_FWD_REFERER")
	if err != nil {
		return err
	}

	queueID, err := strconv.Atoi(queueIDRaw)
	if err != nil {
		return fastagi.Break(fmt.Sprintf("id de cola inválido %q", queueIDRaw))
	}
	queue, err := repo.GetQueue(queueID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fastagi.Break(err.Error())
		}
		return err
	}

	options := queue.DialOptions()
	needAnswer := "1"
	if queue.Ring {
		// Con tono de llamada en lugar de música no se contesta de antemano
		needAnswer = "0"
	}

	vars := []struct{ name, value string }{
		{"AGID_REAL_NUMBER", queue.Number},
		{"AGID_REAL_CONTEXT", queue.Context},
		{"AGID_QUEUENAME", queue.Name},
		{"AGID_QUEUEOPTIONS", options},
		{"AGID_QUEUENEEDANSWER", needAnswer},
		{"AGID_QUEUEURL", queue.URL},
		{"AGID_QUEUEANNOUNCEOVERRIDE", queue.AnnounceOverride},
	}
	for _, v := range vars {
		if err := a.SetVariable(v.name, v.value); err != nil {
			return err
		}
	}

	if queue.MusicClass != nil && *queue.MusicClass != "" {
		if err := a.SetVariable("CHANNEL(musicclass)", *queue.MusicClass); err != nil {
			return err
		}
	}
	if queue.WrapupTime != nil && *queue.WrapupTime > 0 {
		if err := a.SetVariable("__QUEUEWRAPUPTIME", strconv.Itoa(*queue.WrapupTime)); err != nil {
			return err
		}
	}

	preprocess := ""
	if queue.PreprocessSubroutine != nil {
		preprocess = *queue.PreprocessSubroutine
	}
	if err := a.SetVariable("AGID_QUEUEPREPROCESS_SUBROUTINE", preprocess); err != nil {
		return err
	}

	timeout := ""
	if queue.Timeout != nil && *queue.Timeout > 0 {
		timeout = strconv.Itoa(*queue.Timeout)
	}
	if err := a.SetVariable("AGID_QUEUETIMEOUT", timeout); err != nil {
		return err
	}

	if err := setQueueDialActions(a, repo, queue.ID); err != nil {
		return err
	}

	// La reescritura solo aplica cuando la llamada llegó aquí por esta cola
	if referer == fmt.Sprintf("queue:%d", queue.ID) {
		if err := rewriteCallerID(a, repo, "queue", strconv.Itoa(queue.ID), false); err != nil {
			return err
		}
	}

	if err := a.SetVariable("AGID_QUEUESTATUS", "ok"); err != nil {
		return err
	}

	// El horario de la entrada entrante tiene prioridad sobre el de la cola
	path, err := a.GetVariable("AGID_PATH")
	if err != nil {
		return err
	}
	if path == "" {
		if err := a.SetVariable("AGID_PATH", "queue"); err != nil {
			return err
		}
		if err := a.SetVariable("AGID_PATH_ID", strconv.Itoa(queue.ID)); err != nil {
			return err
		}
	}

	pickups, err := repo.GetQueuePickupGroups(queue.ID)
	if err != nil {
		return err
	}
	if err := a.SetVariable("AGID_PICKUPGROUP", strings.Join(pickups, ",")); err != nil {
		return err
	}

	return setCallRecordSide(a)
}

// setQueueDialActions resuelve y emite las acciones de desvío de la cola.
// El evento noanswer además marca el evento de queue-log cuando reencamina
func setQueueDialActions(a *fastagi.AGI, repo *database.Repository, queueID int) error {
	categoryVal := strconv.Itoa(queueID)

	for _, event := range []string{"congestion", "busy", "chanunavail", "qwaittime", "qwaitratio"} {
		if err := emitDialAction(a, repo, event, "queue", categoryVal); err != nil {
			return err
		}
	}

	rule, err := repo.GetDialAction("noanswer", "queue", categoryVal)
	if err != nil {
		return err
	}
	action := dialplan.DialAction{
		Event: "noanswer", Category: "queue",
		Action: rule.Action, Arg1: rule.Arg1, Arg2: rule.Arg2,
	}
	if err := action.SetVariables(a); err != nil {
		return err
	}
	if rule.Action == "voicemail" || rule.Action == "sound" {
		return a.SetVariable("AGID_QUEUELOG_EVENT", "REROUTEGUIDE")
	}
	return nil
}

func setCallRecordSide(a *fastagi.AGI) error {
	if err := a.SetVariable("AGID_CALL_RECORD_SIDE", "caller"); err != nil {
		return err
	}
	return a.SetVariable("__AGID_LOCAL_CHAN_MATCH_UUID", uuid.NewString())
}

// holdtimeAnnounce anuncia al llamador el tiempo de espera estimado,
// redondeado a minutos, cuando la cola lo tiene habilitado
func holdtimeAnnounce(a *fastagi.AGI, repo *database.Repository, args []string) error {
	queueIDRaw, err := a.GetVariable("AGID_DSTID")
	if err != nil {
		return err
	}
	queueID, err := strconv.Atoi(queueIDRaw)
	if err != nil {
		return fastagi.Break(fmt.Sprintf("id de cola inválido %q", queueIDRaw))
	}
	queue, err := repo.GetQueue(queueID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fastagi.Break(err.Error())
		}
		return err
	}

	if !queue.AnnounceHoldtime {
		return nil
	}

	holdtimeRaw, err := a.GetVariable("QUEUEHOLDTIME")
	if err != nil {
		return err
	}
	holdtime, _ := strconv.Atoi(holdtimeRaw)
	minutes := (holdtime + 59) / 60
	if minutes < 1 {
		minutes = 1
	}

	gender := ""
	if minutes == 1 {
		gender = "f"
	}

	if err := a.Answer(); err != nil {
		return err
	}
	if _, err := a.StreamFile("queue-holdtime", nil, 0); err != nil {
		return err
	}
	if _, err := a.StreamFile("queue-less-than", nil, 0); err != nil {
		return err
	}
	if _, err := a.SayNumber(strconv.Itoa(minutes), nil, gender); err != nil {
		return err
	}
	_, err = a.StreamFile("queue-minutes", nil, 0)
	return err
}

// checkDiversion decide si la llamada debe desviarse antes de entrar a la
// cola por exceso de espera o por ratio llamadas/agentes
func checkDiversion(a *fastagi.AGI, repo *database.Repository, args []string) error {
	queueIDRaw, err := a.GetVariable("AGID_DSTID")
	if err != nil {
		return err
	}
	queueID, err := strconv.Atoi(queueIDRaw)
	if err != nil {
		return fastagi.Break(fmt.Sprintf("id de cola inválido %q", queueIDRaw))
	}
	queue, err := repo.GetQueue(queueID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return fastagi.Break(err.Error())
		}
		return err
	}

	waitingRaw, err := a.GetVariable(fmt.Sprintf("QUEUE_WAITING_COUNT(%s)", queue.Name))
	if err != nil {
		return err
	}
	waiting, _ := strconv.Atoi(waitingRaw)

	holdtimeOverrun, err := isHoldTimeOverrun(a, queue, waiting)
	if err != nil {
		return err
	}
	if holdtimeOverrun {
		return setDiversion(a, "DIVERT_HOLDTIME", "QWAITTIME")
	}

	ratioOverrun, err := isAgentRatioOverrun(a, queue, waiting)
	if err != nil {
		return err
	}
	if ratioOverrun {
		return setDiversion(a, "DIVERT_CA_RATIO", "QWAITRATIO")
	}

	return setDiversion(a, "", "")
}

func isHoldTimeOverrun(a *fastagi.AGI, queue *database.Queue, waiting int) (bool, error) {
	if queue.WaitTime == nil || waiting == 0 {
		return false, nil
	}
	holdtimeRaw, err := a.GetVariable("QUEUEHOLDTIME")
	if err != nil {
		return false, err
	}
	holdtime, _ := strconv.Atoi(holdtimeRaw)
	return holdtime > *queue.WaitTime, nil
}

func isAgentRatioOverrun(a *fastagi.AGI, queue *database.Queue, waiting int) (bool, error) {
	if queue.WaitRatio == nil || waiting == 0 {
		return false, nil
	}
	agentsRaw, err := a.GetVariable(fmt.Sprintf("QUEUE_MEMBER(%s,logged)", queue.Name))
	if err != nil {
		return false, err
	}
	agents, _ := strconv.Atoi(agentsRaw)
	if agents == 0 {
		return true, nil
	}
	return (float64(waiting)+1.0)/float64(agents) > *queue.WaitRatio, nil
}

func setDiversion(a *fastagi.AGI, event, dialaction string) error {
	if err := a.SetVariable("AGID_DIVERT_EVENT", event); err != nil {
		return err
	}
	return a.SetVariable("AGID_FWD_TYPE", "QUEUE_"+dialaction)
}
