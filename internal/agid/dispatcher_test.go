package agid

import (
	"bufio"
	"net"
	"reflect"
	"strings"
	"testing"
	"time"

	"agid/internal/fastagi"
)

// runDispatch atiende una petición por un net.Pipe y guioniza las respuestas
// del lado de Asterisk: por cada comando recibido se contesta la siguiente
// respuesta de la lista. Devuelve las líneas de comando leídas y el error
// del despachador
func runDispatch(t *testing.T, env string, replies []string) ([]string, error) {
	t.Helper()

	client, server := net.Pipe()
	defer client.Close()

	done := make(chan error, 1)
	go func() {
		defer server.Close()
		agi, err := fastagi.New(server)
		if err != nil {
			done <- err
			return
		}
		d := NewDispatcher(nil, NewRegistry(), nil)
		done <- d.Handle(agi)
	}()

	client.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := client.Write([]byte(env)); err != nil {
		t.Fatalf("error escribiendo entorno: %v", err)
	}

	var commands []string
	br := bufio.NewReader(client)
	for _, reply := range replies {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("error leyendo comando: %v", err)
		}
		commands = append(commands, strings.TrimRight(line, "\n"))
		if reply == "" {
			continue // comando sin respuesta (FAILURE)
		}
		if _, err := client.Write([]byte(reply)); err != nil {
			t.Fatalf("error respondiendo: %v", err)
		}
	}

	return commands, <-done
}

func envBlock(script string, extra ...string) string {
	lines := []string{
		"agi_network_script: " + script,
		"agi_channel: PJSIP/1001-00000001",
		"agi_uniqueid: 1724400000.1",
	}
	lines = append(lines, extra...)
	return strings.Join(lines, "\r\n") + "\r\n\r\n"
}

func TestDispatcherUnknownScript(t *testing.T) {
	commands, err := runDispatch(t, envBlock("no_such_script"), []string{""})
	if err == nil {
		t.Fatal("un script desconocido debería ser un error de despacho")
	}
	if len(commands) != 1 || commands[0] != "FAILURE" {
		t.Errorf("esperado FAILURE al switch, obtenido %v", commands)
	}
}

func TestDispatcherDone(t *testing.T) {
	env := envBlock("callerid_extend", "agi_callington: 1")
	commands, err := runDispatch(t, env, []string{"200 result=1\n"})
	if err != nil {
		t.Fatalf("la petición debería completar sin error: %v", err)
	}
	if len(commands) != 1 || !strings.HasPrefix(commands[0], "SET VARIABLE") {
		t.Errorf("comando inesperado: %v", commands)
	}
	if !strings.Contains(commands[0], "AGID_SRCTON") {
		t.Errorf("debería propagar el TON de origen: %v", commands)
	}
}

func TestDispatcherDialPlanBreak(t *testing.T) {
	// get_user_interfaces sin argumentos aborta el dial-plan: se avisa por
	// VERBOSE y se responde FAILURE, pero no es falla interna
	env := envBlock("get_user_interfaces")
	commands, err := runDispatch(t, env, []string{"200 result=1\n", ""})
	if err != nil {
		t.Fatalf("un dial-plan break no debe propagarse como error: %v", err)
	}
	if len(commands) != 2 {
		t.Fatalf("esperados 2 comandos, obtenidos %v", commands)
	}
	if !strings.HasPrefix(commands[0], "VERBOSE") || !strings.Contains(commands[0], "agid:") {
		t.Errorf("el break debería anunciarse por VERBOSE: %q", commands[0])
	}
	if commands[1] != "FAILURE" {
		t.Errorf("tras el break debería responderse FAILURE: %q", commands[1])
	}
}

func TestDispatcherHangup(t *testing.T) {
	env := envBlock("callerid_extend", "agi_callington: 1")
	commands, err := runDispatch(t, env, []string{"200 result=1 (hangup)\n"})
	if err != nil {
		t.Fatalf("un colgado es un desenlace esperado, no un error: %v", err)
	}
	// Tras el hangup no se envía FAILURE: la conexión ya no sirve
	if len(commands) != 1 {
		t.Errorf("no deberían emitirse más comandos tras el colgado: %v", commands)
	}
}

func TestDispatcherScripts(t *testing.T) {
	d := NewDispatcher(nil, NewRegistry(), nil)
	scripts := d.Scripts()
	if len(scripts) != 12 {
		t.Errorf("esperados 12 scripts registrados, obtenidos %d", len(scripts))
	}
	found := false
	for _, s := range scripts {
		if s == "check_schedule" {
			found = true
		}
	}
	if !found {
		t.Error("check_schedule debería estar registrado")
	}
}

func TestSplitExtension(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"12*34", []string{"12", "34"}},
		{"*26*32", []string{"", "26", "32"}},
		{"1*2**3", []string{"1", "2*3"}},
		{"12*", []string{"12", ""}},
	}

	for _, c := range cases {
		got, err := splitExtension(c.in)
		if err != nil {
			t.Errorf("splitExtension(%q): error inesperado %v", c.in, err)
			continue
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitExtension(%q) = %v, esperado %v", c.in, got, c.want)
		}
	}
}

func TestSplitExtensionInvalid(t *testing.T) {
	for _, in := range []string{"plain", "1**2", ""} {
		if _, err := splitExtension(in); err == nil {
			t.Errorf("splitExtension(%q) debería fallar", in)
		}
	}
}
