package fastagi

import (
	"errors"
	"fmt"
)

// Taxonomía de errores del protocolo. Los errores de aplicación agrupan los
// colgados (un colgado remoto es un resultado esperado, no una falla interna).
var (
	// ErrApp: la aplicación ejecutada en Asterisk devolvió un resultado negativo.
	ErrApp = errors.New("fastagi: error de aplicación")

	// ErrHangup: el canal remoto colgó durante la ejecución de un comando.
	ErrHangup = fmt.Errorf("%w: hangup", ErrApp)

	// ErrSIGPIPEHangup: colgado detectado por tubería rota o fin de stream.
	ErrSIGPIPEHangup = fmt.Errorf("%w (broken pipe)", ErrHangup)

	// ErrResultHangup: colgado reportado explícitamente en un resultado 200.
	ErrResultHangup = fmt.Errorf("%w (resultado)", ErrHangup)

	// ErrDB: error de la base interna de Asterisk (DATABASE GET/PUT/DEL).
	ErrDB = fmt.Errorf("%w: database", ErrApp)

	// ErrUsage: respuesta 520, uso incorrecto de un comando.
	ErrUsage = errors.New("fastagi: error de uso")

	// ErrInvalidCommand: respuesta 510, comando desconocido.
	ErrInvalidCommand = errors.New("fastagi: comando inválido")

	// ErrUnknownResult: código de respuesta no manejado, fatal para la petición.
	ErrUnknownResult = errors.New("fastagi: resultado desconocido")
)

// DialPlanBreak es la señal con que un handler aborta el procesamiento de la
// petición actual sin que se considere una falla interna del daemon.
type DialPlanBreak struct {
	Message string
}

func (e *DialPlanBreak) Error() string {
	return "dialplan break: " + e.Message
}

// Break construye una señal de aborto de dial-plan
func Break(message string) error {
	return &DialPlanBreak{Message: message}
}

// IsHangup indica si el error corresponde a un colgado remoto (en cualquiera
// de sus formas: resultado explícito, tubería rota o fin de stream)
func IsHangup(err error) bool {
	return errors.Is(err, ErrHangup)
}
