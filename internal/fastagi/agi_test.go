package fastagi

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"time"
)

// newTestAGI construye una sesión sobre buffers en memoria, sin conexión
func newTestAGI(input string, output io.Writer) *AGI {
	return &AGI{
		reader: bufio.NewReader(strings.NewReader(input)),
		writer: bufio.NewWriter(output),
		Env:    make(map[string]string),
	}
}

// unquote deshace el entrecomillado del protocolo (para verificar ida y vuelta)
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	s = s[1 : len(s)-1]
	var b strings.Builder
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func TestQuoteRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want string // contenido esperado tras desentrecomillar
	}{
		{"hello", "hello"},
		{`with "quotes"`, `with "quotes"`},
		{`back\slash`, `back\slash`},
		{`mix "q" and \`, `mix "q" and \`},
		{"line\nbreak", "line break"}, // los saltos de línea se colapsan a espacio
		{"", ""},
	}

	for _, c := range cases {
		got := unquote(Quote(c.in))
		if got != c.want {
			t.Errorf("Quote(%q): recuperado %q, esperado %q", c.in, got, c.want)
		}
	}
}

func TestQuoteSingleLine(t *testing.T) {
	q := Quote("a\nb\nc")
	if strings.Contains(q, "\n") {
		t.Errorf("Quote dejó saltos de línea embebidos: %q", q)
	}
}

func TestGetResultOK(t *testing.T) {
	a := newTestAGI("200 result=1\n", io.Discard)

	res, err := a.GetResult()
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if res.Code != 200 || res.Value() != "1" {
		t.Errorf("resultado inesperado: code=%d value=%q", res.Code, res.Value())
	}
}

func TestGetResultWithData(t *testing.T) {
	a := newTestAGI("200 result=1 (timeout)\n", io.Discard)

	res, err := a.GetResult()
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if res.Value() != "1" || res.Data() != "timeout" {
		t.Errorf("resultado inesperado: value=%q data=%q", res.Value(), res.Data())
	}
}

func TestGetResultHangup(t *testing.T) {
	a := newTestAGI("200 result=1 (hangup)\n", io.Discard)

	_, err := a.GetResult()
	if !errors.Is(err, ErrResultHangup) {
		t.Errorf("esperado ErrResultHangup, obtenido %v", err)
	}
	if !IsHangup(err) {
		t.Errorf("IsHangup debería ser verdadero para %v", err)
	}
}

func TestGetResultAppError(t *testing.T) {
	a := newTestAGI("200 result=-1\n", io.Discard)

	_, err := a.GetResult()
	if !errors.Is(err, ErrApp) {
		t.Errorf("esperado ErrApp, obtenido %v", err)
	}
	if IsHangup(err) {
		t.Errorf("result=-1 no debe clasificarse como colgado")
	}
}

func TestGetResultInvalidCommand(t *testing.T) {
	a := newTestAGI("510 Invalid or unknown command\n", io.Discard)

	_, err := a.GetResult()
	if !errors.Is(err, ErrInvalidCommand) {
		t.Fatalf("esperado ErrInvalidCommand, obtenido %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid or unknown command") {
		t.Errorf("el detalle debería conservar el mensaje: %v", err)
	}
}

func TestGetResultUsageError(t *testing.T) {
	input := "520-Invalid command syntax. Proper usage follows:\n" +
		"Usage: GET VARIABLE <variablename>\n" +
		"520 End of proper usage.\n"
	a := newTestAGI(input, io.Discard)

	_, err := a.GetResult()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("esperado ErrUsage, obtenido %v", err)
	}
	// El detalle concatena todas las líneas, incluida la de cierre
	for _, want := range []string{"Proper usage follows", "GET VARIABLE", "End of proper usage"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("detalle de uso incompleto, falta %q: %v", want, err)
		}
	}
}

func TestGetResultUnknownCode(t *testing.T) {
	a := newTestAGI("599 something strange\n", io.Discard)

	_, err := a.GetResult()
	if !errors.Is(err, ErrUnknownResult) {
		t.Errorf("esperado ErrUnknownResult, obtenido %v", err)
	}
}

func TestGetResultEOF(t *testing.T) {
	a := newTestAGI("", io.Discard)

	_, err := a.GetResult()
	if !IsHangup(err) {
		t.Errorf("fin de stream debería clasificarse como colgado, obtenido %v", err)
	}
}

func TestSendCommandFormat(t *testing.T) {
	var out strings.Builder
	a := newTestAGI("", &out)

	if err := a.SendCommand("SET VARIABLE", Quote("FOO"), Quote("bar baz")); err != nil {
		t.Fatalf("error enviando comando: %v", err)
	}

	got := out.String()
	want := `SET VARIABLE "FOO" "bar baz"` + "\n"
	if got != want {
		t.Errorf("línea enviada %q, esperada %q", got, want)
	}
}

func TestProcessDigitList(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"125", `"125"`},
		{[]string{"1", "2", "5"}, `"125"`},
		{[]int{1, 2, 5}, `"125"`},
		{[]rune{'*', '#'}, `"*#"`},
		{nil, `""`},
	}

	for _, c := range cases {
		if got := processDigitList(c.in); got != c.want {
			t.Errorf("processDigitList(%v) = %q, esperado %q", c.in, got, c.want)
		}
	}
}

func TestCodeToChar(t *testing.T) {
	if got, err := codeToChar("49"); err != nil || got != "1" {
		t.Errorf("codeToChar(49) = %q, %v", got, err)
	}
	if got, err := codeToChar("0"); err != nil || got != "" {
		t.Errorf("codeToChar(0) = %q, %v", got, err)
	}
	if _, err := codeToChar("abc"); err == nil {
		t.Errorf("codeToChar con código no numérico debería fallar")
	}
}

func TestDatabaseGetNotFound(t *testing.T) {
	var out strings.Builder
	a := newTestAGI("200 result=0\n", &out)

	_, err := a.DatabaseGet("family", "key")
	if !errors.Is(err, ErrDB) {
		t.Errorf("esperado ErrDB para clave ausente, obtenido %v", err)
	}
}

func TestGetVariableUnset(t *testing.T) {
	a := newTestAGI("200 result=0\n", io.Discard)

	value, err := a.GetVariable("NOPE")
	if err != nil {
		t.Fatalf("variable ausente no debe ser error: %v", err)
	}
	if value != "" {
		t.Errorf("esperada cadena vacía, obtenido %q", value)
	}
}

func TestGetVariableValue(t *testing.T) {
	a := newTestAGI("200 result=1 (5551234)\n", io.Discard)

	value, err := a.GetVariable("CALLERID(num)")
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if value != "5551234" {
		t.Errorf("valor %q, esperado 5551234", value)
	}
}

// TestEndToEnd verifica el ciclo completo: bloque de entorno con tres
// argumentos, un comando y una respuesta 200 bien formada
func TestEndToEnd(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	type result struct {
		agi *AGI
		err error
	}
	done := make(chan result, 1)

	go func() {
		agi, err := New(server)
		if err != nil {
			done <- result{nil, err}
			return
		}
		err = agi.SetVariable("AGID_TEST", "ok")
		done <- result{agi, err}
	}()

	env := "agi_network_script: check_schedule\r\n" +
		"agi_channel: PJSIP/1001-00000001\r\n" +
		"agi_uniqueid: 1724400000.1\r\n" +
		"agi_arg_1: incall\r\n" +
		"agi_arg_2: 42\r\n" +
		"agi_arg_3: default\r\n" +
		"\r\n"
	if _, err := client.Write([]byte(env)); err != nil {
		t.Fatalf("error escribiendo entorno: %v", err)
	}

	// Leer el comando emitido y responder como lo haría Asterisk
	br := bufio.NewReader(client)
	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := br.ReadString('\n')
	if err != nil {
		t.Fatalf("error leyendo comando: %v", err)
	}
	if !strings.HasPrefix(line, "SET VARIABLE") {
		t.Fatalf("comando inesperado: %q", line)
	}
	if _, err := client.Write([]byte("200 result=1\n")); err != nil {
		t.Fatalf("error respondiendo: %v", err)
	}

	r := <-done
	if r.err != nil {
		t.Fatalf("la petición no debería producir condición alguna: %v", r.err)
	}
	if len(r.agi.Args) != 3 {
		t.Errorf("esperados 3 argumentos, obtenidos %d (%v)", len(r.agi.Args), r.agi.Args)
	}
	if r.agi.ScriptName() != "check_schedule" {
		t.Errorf("script %q, esperado check_schedule", r.agi.ScriptName())
	}
	if r.agi.Args[1] != "42" {
		t.Errorf("arg_2 = %q, esperado 42", r.agi.Args[1])
	}
}
