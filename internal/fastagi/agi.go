package fastagi

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"
)

const (
	// DefaultTimeout timeout por defecto (ms) para comandos que esperan entrada
	DefaultTimeout = 2000
	// DefaultRecord tiempo máximo de grabación por defecto (ms)
	DefaultRecord = 20000
)

var (
	reCode = regexp.MustCompile(`^(\d*)\s*(.*)`)
	reKV   = regexp.MustCompile(`(\w+)=([^\s]+)\s*(?:\((.*)\))?`)
)

// ResultValue es el par (valor, dato auxiliar) de una clave de resultado
type ResultValue struct {
	Value string
	Data  string
}

// Result es una respuesta 200 parseada
type Result struct {
	Code int
	Keys map[string]ResultValue
}

// Value devuelve el valor de la clave "result"
func (r *Result) Value() string {
	return r.Keys["result"].Value
}

// Data devuelve el dato auxiliar de la clave "result"
func (r *Result) Data() string {
	return r.Keys["result"].Data
}

// AGI encapsula la comunicación con Asterisk sobre una conexión FastAGI.
// Maneja la codificación de comandos salientes y el parseo de respuestas.
// El protocolo es estrictamente síncrono: un comando en vuelo por conexión.
type AGI struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer

	// Env contiene el bloque inicial de variables agi_* (inmutable tras el parseo)
	Env map[string]string
	// Args son los argumentos posicionales agi_arg_1..n en orden
	Args []string
}

// New lee el bloque de entorno y los argumentos posicionales de la conexión
// y devuelve una sesión lista para ejecutar comandos
func New(conn net.Conn) (*AGI, error) {
	return newAGI(conn, bufio.NewReader(conn), bufio.NewWriter(conn))
}

func newAGI(conn net.Conn, reader *bufio.Reader, writer *bufio.Writer) (*AGI, error) {
	a := &AGI{
		conn:   conn,
		reader: reader,
		writer: writer,
		Env:    make(map[string]string),
	}

	if err := a.readEnv(); err != nil {
		return nil, err
	}
	a.readArgs()

	return a, nil
}

// readEnv parsea el bloque inicial `clave: valor` terminado por línea en blanco
func (a *AGI) readEnv() error {
	for {
		line, err := a.reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("%w: leyendo entorno: %v", ErrSIGPIPEHangup, err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			// Línea en blanco: fin del entorno
			return nil
		}

		key, value, found := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if found {
			a.Env[key] = strings.TrimSpace(value)
		} else {
			a.Env[key] = ""
		}
	}
}

// readArgs proyecta agi_arg_1..n en la lista ordenada de argumentos
func (a *AGI) readArgs() {
	for i := 1; ; i++ {
		arg, ok := a.Env[fmt.Sprintf("agi_arg_%d", i)]
		if !ok {
			break
		}
		a.Args = append(a.Args, arg)
	}
}

// Channel devuelve el nombre del canal de la llamada
func (a *AGI) Channel() string {
	return a.Env["agi_channel"]
}

// UniqueID devuelve el identificador único de la llamada
func (a *AGI) UniqueID() string {
	return a.Env["agi_uniqueid"]
}

// Quote envuelve un argumento en comillas escapando backslash y comillas
// dobles; los saltos de línea embebidos se colapsan a un espacio
func Quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	s = strings.ReplaceAll(s, "\n", " ")
	return `"` + s + `"`
}

// SendCommand envía una línea de comando a Asterisk y la vacía de inmediato
func (a *AGI) SendCommand(command string, args ...string) error {
	parts := append([]string{strings.TrimSpace(command)}, args...)
	line := strings.TrimSpace(strings.Join(parts, " ")) + "\n"

	if _, err := a.writer.WriteString(line); err != nil {
		return err
	}
	return a.writer.Flush()
}

// GetResult lee y clasifica la respuesta de un comando
func (a *AGI) GetResult() (*Result, error) {
	line, err := a.readLine()
	if err != nil {
		return nil, err
	}

	code, response := splitCode(line)

	switch code {
	case 200:
		result := &Result{Code: code, Keys: map[string]ResultValue{"result": {}}}
		for _, m := range reKV.FindAllStringSubmatch(response, -1) {
			key, value, data := m[1], m[2], m[3]
			result.Keys[key] = ResultValue{Value: value, Data: data}

			// Si el usuario cuelga durante la ejecución llega 'hangup' como dato
			if data == "hangup" {
				return nil, fmt.Errorf("%w: el canal colgó durante la ejecución", ErrResultHangup)
			}
			if key == "result" && value == "-1" {
				return nil, fmt.Errorf("%w: error ejecutando la aplicación, o colgado", ErrApp)
			}
		}
		return result, nil

	case 510:
		return nil, fmt.Errorf("%w: %s", ErrInvalidCommand, response)

	case 520:
		// El detalle de uso continúa hasta la próxima línea que empiece por 520
		usage := []string{line}
		for {
			line, err = a.readLine()
			if err != nil {
				return nil, err
			}
			usage = append(usage, line)
			if strings.HasPrefix(line, "520") {
				break
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrUsage, strings.Join(usage, "\n"))

	default:
		return nil, fmt.Errorf("%w: código %d (%s)", ErrUnknownResult, code, response)
	}
}

// Execute compone SendCommand y GetResult. Una tubería rota al escribir se
// reclasifica como colgado (el extremo remoto se desconectó)
func (a *AGI) Execute(command string, args ...string) (*Result, error) {
	if err := a.SendCommand(command, args...); err != nil {
		if isBrokenPipe(err) {
			return nil, fmt.Errorf("%w: %v", ErrSIGPIPEHangup, err)
		}
		return nil, err
	}
	return a.GetResult()
}

// Fail fuerza a Asterisk a marcar el AGI como AGI_RESULT_FAILURE enviando un
// comando inexistente. Las tuberías rotas se ignoran: la llamada ya no existe
func (a *AGI) Fail() {
	if err := a.SendCommand("FAILURE"); err != nil && !isBrokenPipe(err) {
		// Nada más que hacer con la conexión a estas alturas
		_ = err
	}
}

func (a *AGI) readLine() (string, error) {
	line, err := a.reader.ReadString('\n')
	if err != nil {
		if err == io.EOF && strings.TrimSpace(line) != "" {
			// Última línea sin terminador, procesable igual
			return strings.TrimSpace(line), nil
		}
		return "", fmt.Errorf("%w: leyendo resultado: %v", ErrSIGPIPEHangup, err)
	}
	return strings.TrimSpace(line), nil
}

func splitCode(line string) (int, string) {
	m := reCode.FindStringSubmatch(line)
	if m == nil || m[1] == "" {
		return 0, line
	}
	code, _ := strconv.Atoi(m[1])
	return code, m[2]
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed)
}
