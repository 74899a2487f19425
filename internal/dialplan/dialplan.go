// Package dialplan contiene los motores de decisión que el daemon consulta
// al atender una petición: evaluador de horarios, motor de caller-id y
// resolutor de acciones de desvío. Ninguno habla el protocolo directamente;
// todos emiten variables de canal a través de la interfaz Channel.
package dialplan

// Channel es la vista mínima de una sesión AGI que necesitan los motores
// de decisión. *fastagi.AGI la satisface
type Channel interface {
	GetVariable(name string) (string, error)
	SetVariable(name, value string) error
}
