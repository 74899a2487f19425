// Package agid contiene el despachador de peticiones FastAGI y los
// handlers de decisión que el dial-plan invoca por nombre de script.
package agid

import (
	"errors"
	"fmt"
	"log"
	"time"

	"agid/internal/database"
	"agid/internal/fastagi"
	"agid/internal/websocket"
)

// HandlerFunc es la firma de un handler de script: recibe la sesión AGI,
// el repositorio y los argumentos posicionales de la petición
type HandlerFunc func(a *fastagi.AGI, repo *database.Repository, args []string) error

// Dispatcher resuelve el script pedido contra un registro estático de
// handlers construido una sola vez en el arranque. Sin registro global
// mutable: el mapa se pasa por referencia
type Dispatcher struct {
	repo     *database.Repository
	registry map[string]HandlerFunc
	hub      *websocket.Hub
}

// NewDispatcher crea un despachador. El hub puede ser nil (sin eventos)
func NewDispatcher(repo *database.Repository, registry map[string]HandlerFunc, hub *websocket.Hub) *Dispatcher {
	return &Dispatcher{repo: repo, registry: registry, hub: hub}
}

// Scripts devuelve los nombres de script registrados
func (d *Dispatcher) Scripts() []string {
	names := make([]string, 0, len(d.registry))
	for name := range d.registry {
		names = append(names, name)
	}
	return names
}

// requestEvent es la carga de los eventos de monitoreo
type requestEvent struct {
	Script     string `json:"script"`
	Channel    string `json:"channel"`
	UniqueID   string `json:"uniqueid"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// Handle atiende una petición ya parseada. Exactamente una petición por
// conexión; la clasificación del desenlace decide qué se registra y qué
// se propaga como falla
func (d *Dispatcher) Handle(a *fastagi.AGI) error {
	script := a.ScriptName()
	start := time.Now()

	d.broadcast(websocket.EventRequestStart, requestEvent{
		Script: script, Channel: a.Channel(), UniqueID: a.UniqueID(),
	})

	handler, ok := d.registry[script]
	if !ok {
		// Script desconocido: error fatal de despacho, sin resultado
		a.Fail()
		d.finish(a, script, start, "failed", "unknown script")
		return fmt.Errorf("agid: script desconocido %q", script)
	}

	err := handler(a, d.repo, a.Args)

	var brk *fastagi.DialPlanBreak
	switch {
	case err == nil:
		d.finish(a, script, start, "done", "")
		return nil

	case errors.As(err, &brk):
		// Aborto de dial-plan: no es una falla interna. Se avisa al switch
		// y se marca la petición como fallida
		log.Printf("[Dispatcher] Dial-plan break en %s: %s", script, brk.Message)
		if verr := a.Verbose("agid: "+brk.Message, 1); verr != nil && !fastagi.IsHangup(verr) {
			log.Printf("[Dispatcher] Error notificando el break: %v", verr)
		}
		a.Fail()
		d.finish(a, script, start, "failed", brk.Message)
		return nil

	case fastagi.IsHangup(err):
		// El canal colgó: desenlace esperado, liberar sin ruido
		d.finish(a, script, start, "hangup", "")
		return nil

	default:
		a.Fail()
		d.finish(a, script, start, "failed", err.Error())
		return err
	}
}

func (d *Dispatcher) finish(a *fastagi.AGI, script string, start time.Time, status, detail string) {
	elapsed := time.Since(start)

	if d.repo != nil {
		d.repo.LogRequest(database.RequestLog{
			Script:     script,
			Channel:    a.Channel(),
			UniqueID:   a.UniqueID(),
			Status:     status,
			DurationMs: int(elapsed.Milliseconds()),
			CreatedAt:  start,
		})
	}

	event := websocket.EventRequestDone
	if status != "done" {
		event = websocket.EventRequestFailed
	}
	d.broadcast(event, requestEvent{
		Script: script, Channel: a.Channel(), UniqueID: a.UniqueID(),
		DurationMs: elapsed.Milliseconds(), Detail: detail,
	})
}

func (d *Dispatcher) broadcast(event websocket.EventType, payload requestEvent) {
	if d.hub != nil {
		d.hub.Broadcast(event, payload)
	}
}
