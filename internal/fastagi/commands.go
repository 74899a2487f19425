package fastagi

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Envolturas finas sobre Execute para los comandos AGI que usa el daemon.
// Cada una traduce los resultados centinela (-1, -2, 0) del comando a su
// condición de aplicación correspondiente, según documenta Asterisk.

// processDigitList normaliza una lista de dígitos de escape: acepta una
// cadena o una lista ordenada y devuelve siempre la forma entrecomillada
func processDigitList(digits any) string {
	switch d := digits.(type) {
	case string:
		return Quote(d)
	case []string:
		return Quote(strings.Join(d, ""))
	case []rune:
		return Quote(string(d))
	case []int:
		parts := make([]string, len(d))
		for i, n := range d {
			parts[i] = strconv.Itoa(n)
		}
		return Quote(strings.Join(parts, ""))
	case nil:
		return Quote("")
	default:
		return Quote(fmt.Sprint(d))
	}
}

// codeToChar convierte un código de carácter devuelto por Asterisk. El
// código "0" significa "sin dígito"; un código no numérico es un error de
// conversión
func codeToChar(code string) (string, error) {
	if code == "0" {
		return "", nil
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return "", fmt.Errorf("fastagi: no se pudo convertir el resultado a carácter: %q", code)
	}
	return string(rune(n)), nil
}

// Answer contesta el canal si no está ya contestado
func (a *AGI) Answer() error {
	_, err := a.Execute("ANSWER")
	return err
}

// WaitForDigit espera hasta timeout milisegundos un dígito DTMF
func (a *AGI) WaitForDigit(timeout int) (string, error) {
	res, err := a.Execute("WAIT FOR DIGIT", strconv.Itoa(timeout))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SendText envía texto por el canal (pocos canales lo soportan)
func (a *AGI) SendText(text string) error {
	_, err := a.Execute("SEND TEXT", Quote(text))
	return err
}

// ReceiveChar recibe un carácter de texto con timeout en milisegundos
func (a *AGI) ReceiveChar(timeout int) (string, error) {
	res, err := a.Execute("RECEIVE CHAR", strconv.Itoa(timeout))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// TDDMode habilita o deshabilita transmisión TDD ("on"/"off")
func (a *AGI) TDDMode(mode string) error {
	res, err := a.Execute("TDD MODE", mode)
	if err != nil {
		return err
	}
	if res.Value() == "0" {
		return fmt.Errorf("%w: el canal no es capaz de TDD", ErrApp)
	}
	return nil
}

// StreamFile reproduce un archivo (sin extensión), interrumpible por los
// dígitos de escape dados; devuelve el dígito presionado si lo hubo
func (a *AGI) StreamFile(filename string, escapeDigits any, sampleOffset int) (string, error) {
	res, err := a.Execute("STREAM FILE", filename, processDigitList(escapeDigits), strconv.Itoa(sampleOffset))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// ControlStreamFile reproduce un archivo con control de avance/retroceso/pausa
func (a *AGI) ControlStreamFile(filename string, escapeDigits any, skipMS int, fwd, rew, pause string) (string, error) {
	res, err := a.Execute("CONTROL STREAM FILE",
		Quote(filename), processDigitList(escapeDigits), Quote(strconv.Itoa(skipMS)),
		Quote(fwd), Quote(rew), Quote(pause))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SendImage envía una imagen por el canal (nombre sin extensión)
func (a *AGI) SendImage(filename string) error {
	res, err := a.Execute("SEND IMAGE", filename)
	if err != nil {
		return err
	}
	if res.Value() != "0" {
		return fmt.Errorf("%w: falla de canal en %s", ErrApp, a.Channel())
	}
	return nil
}

// SayDigits pronuncia una cadena de dígitos
func (a *AGI) SayDigits(digits any, escapeDigits any) (string, error) {
	res, err := a.Execute("SAY DIGITS", processDigitList(digits), processDigitList(escapeDigits))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SayNumber pronuncia un número; gender puede ser vacío
func (a *AGI) SayNumber(number string, escapeDigits any, gender string) (string, error) {
	res, err := a.Execute("SAY NUMBER", processDigitList(number), processDigitList(escapeDigits), gender)
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SayAlpha deletrea una cadena de caracteres
func (a *AGI) SayAlpha(characters string, escapeDigits any) (string, error) {
	res, err := a.Execute("SAY ALPHA", processDigitList(characters), processDigitList(escapeDigits))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SayPhonetic deletrea fonéticamente una cadena de caracteres
func (a *AGI) SayPhonetic(characters string, escapeDigits any) (string, error) {
	res, err := a.Execute("SAY PHONETIC", processDigitList(characters), processDigitList(escapeDigits))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SayDate pronuncia una fecha en segundos desde la época UNIX
func (a *AGI) SayDate(seconds int64, escapeDigits any) (string, error) {
	res, err := a.Execute("SAY DATE", strconv.FormatInt(seconds, 10), processDigitList(escapeDigits))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SayTime pronuncia una hora en segundos desde la época UNIX
func (a *AGI) SayTime(seconds int64, escapeDigits any) (string, error) {
	res, err := a.Execute("SAY TIME", strconv.FormatInt(seconds, 10), processDigitList(escapeDigits))
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SayDatetime pronuncia fecha y hora con formato opcional (ver voicemail.conf)
func (a *AGI) SayDatetime(seconds int64, escapeDigits any, format, zone string) (string, error) {
	if format != "" {
		format = Quote(format)
	}
	res, err := a.Execute("SAY DATETIME", strconv.FormatInt(seconds, 10), processDigitList(escapeDigits), format, zone)
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// GetData reproduce un archivo y recibe los dígitos marcados
func (a *AGI) GetData(filename string, timeout, maxDigits int) (string, error) {
	res, err := a.Execute("GET DATA", filename, strconv.Itoa(timeout), strconv.Itoa(maxDigits))
	if err != nil {
		return "", err
	}
	return res.Value(), nil
}

// GetOption reproduce un archivo interrumpible; timeout 0 omite el argumento
func (a *AGI) GetOption(filename string, escapeDigits any, timeout int) (string, error) {
	var res *Result
	var err error
	if timeout != 0 {
		res, err = a.Execute("GET OPTION", filename, processDigitList(escapeDigits), strconv.Itoa(timeout))
	} else {
		res, err = a.Execute("GET OPTION", filename, processDigitList(escapeDigits))
	}
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SetContext fija el contexto de continuación al salir del AGI
func (a *AGI) SetContext(context string) error {
	_, err := a.Execute("SET CONTEXT", context)
	return err
}

// SetExtension fija la extensión de continuación al salir del AGI
func (a *AGI) SetExtension(extension string) error {
	_, err := a.Execute("SET EXTENSION", extension)
	return err
}

// SetPriority fija la prioridad de continuación al salir del AGI
func (a *AGI) SetPriority(priority string) error {
	_, err := a.Execute("SET PRIORITY", priority)
	return err
}

// GotoOnExit fija contexto/extensión/prioridad de continuación; los campos
// vacíos conservan los valores del entorno de la petición
func (a *AGI) GotoOnExit(context, extension, priority string) error {
	if context == "" {
		context = a.Env["agi_context"]
	}
	if extension == "" {
		extension = a.Env["agi_extension"]
	}
	if priority == "" {
		priority = a.Env["agi_priority"]
	}
	if err := a.SetContext(context); err != nil {
		return err
	}
	if err := a.SetExtension(extension); err != nil {
		return err
	}
	return a.SetPriority(priority)
}

// RecordFile graba hasta recibir un dígito de escape o agotar el timeout (ms)
func (a *AGI) RecordFile(filename, format string, escapeDigits any, timeout, offset int, beep string) (string, error) {
	res, err := a.Execute("RECORD FILE",
		Quote(filename), format, processDigitList(escapeDigits),
		strconv.Itoa(timeout), strconv.Itoa(offset), beep)
	if err != nil {
		return "", err
	}
	return codeToChar(res.Value())
}

// SetAutohangup programa un colgado automático en secs segundos (0 desactiva)
func (a *AGI) SetAutohangup(secs int) error {
	_, err := a.Execute("SET AUTOHANGUP", strconv.Itoa(secs))
	return err
}

// Hangup cuelga el canal dado, o el actual si channel es vacío
func (a *AGI) Hangup(channel string) error {
	_, err := a.Execute("HANGUP", channel)
	return err
}

// Appexec ejecuta una aplicación de Asterisk con las opciones dadas
func (a *AGI) Appexec(application, options string) (string, error) {
	res, err := a.Execute("EXEC", application, Quote(options))
	if err != nil {
		return "", err
	}
	if res.Value() == "-2" {
		return "", fmt.Errorf("%w: no se encontró la aplicación: %s", ErrApp, application)
	}
	return res.Value(), nil
}

// SetCallerID cambia el caller ID del canal actual
func (a *AGI) SetCallerID(number string) error {
	_, err := a.Execute("SET CALLERID", Quote(number))
	return err
}

// ChannelStatus devuelve el estado del canal (-1 en error de aplicación)
func (a *AGI) ChannelStatus(channel string) (int, error) {
	res, err := a.Execute("CHANNEL STATUS", channel)
	if err != nil {
		if IsHangup(err) {
			return -1, err
		}
		if errors.Is(err, ErrApp) {
			return -1, nil
		}
		return -1, err
	}
	status, err := strconv.Atoi(res.Value())
	if err != nil {
		return -1, fmt.Errorf("fastagi: estado de canal no numérico: %q", res.Value())
	}
	return status, nil
}

// SetVariable asigna una variable de canal
func (a *AGI) SetVariable(name, value string) error {
	_, err := a.Execute("SET VARIABLE", Quote(name), Quote(value))
	return err
}

// GetVariable lee una variable de canal; si no está asignada devuelve cadena
// vacía. Un colgado durante la lectura devuelve el marcador "hangup"
func (a *AGI) GetVariable(name string) (string, error) {
	res, err := a.Execute("GET VARIABLE", Quote(name))
	if err != nil {
		if errors.Is(err, ErrResultHangup) {
			return "hangup", nil
		}
		return "", err
	}
	return res.Data(), nil
}

// GetFullVariable evalúa una expresión de variable, opcionalmente sobre otro canal
func (a *AGI) GetFullVariable(name, channel string) (string, error) {
	var res *Result
	var err error
	if channel != "" {
		res, err = a.Execute("GET FULL VARIABLE", Quote(name), Quote(channel))
	} else {
		res, err = a.Execute("GET FULL VARIABLE", Quote(name))
	}
	if err != nil {
		if errors.Is(err, ErrResultHangup) {
			return "hangup", nil
		}
		return "", err
	}
	return res.Data(), nil
}

// Verbose envía un mensaje a la consola de Asterisk con el nivel dado (1-4)
func (a *AGI) Verbose(message string, level int) error {
	_, err := a.Execute("VERBOSE", Quote(message), strconv.Itoa(level))
	return err
}

// DatabaseGet lee una entrada de la base interna de Asterisk; clave ausente
// es un error de base de datos tipado
func (a *AGI) DatabaseGet(family, key string) (string, error) {
	res, err := a.Execute("DATABASE GET", Quote(family), Quote(key))
	if err != nil {
		return "", err
	}
	switch res.Value() {
	case "0":
		return "", fmt.Errorf("%w: clave no encontrada (family=%s, key=%s)", ErrDB, family, key)
	case "1":
		return res.Data(), nil
	default:
		return "", fmt.Errorf("fastagi: resultado inesperado de DATABASE GET (family=%s, key=%s, result=%s)",
			family, key, res.Value())
	}
}

// DatabasePut crea o actualiza una entrada en la base interna de Asterisk
func (a *AGI) DatabasePut(family, key, value string) error {
	res, err := a.Execute("DATABASE PUT", Quote(family), Quote(key), Quote(value))
	if err != nil {
		return err
	}
	if res.Value() == "0" {
		return fmt.Errorf("%w: no se pudo escribir (family=%s, key=%s)", ErrDB, family, key)
	}
	return nil
}

// DatabaseDel elimina una entrada de la base interna de Asterisk
func (a *AGI) DatabaseDel(family, key string) error {
	res, err := a.Execute("DATABASE DEL", Quote(family), Quote(key))
	if err != nil {
		return err
	}
	if res.Value() == "0" {
		return fmt.Errorf("%w: no se pudo eliminar (family=%s, key=%s)", ErrDB, family, key)
	}
	return nil
}

// DatabaseDelTree elimina una familia o un subárbol de la base de Asterisk
func (a *AGI) DatabaseDelTree(family, key string) error {
	res, err := a.Execute("DATABASE DELTREE", Quote(family), Quote(key))
	if err != nil {
		return err
	}
	if res.Value() == "0" {
		return fmt.Errorf("%w: no se pudo eliminar el árbol (family=%s, key=%s)", ErrDB, family, key)
	}
	return nil
}

// Noop no hace nada
func (a *AGI) Noop() error {
	_, err := a.Execute("NOOP")
	return err
}
