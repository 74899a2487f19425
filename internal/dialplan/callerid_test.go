package dialplan

import "testing"

// fakeChannel simula la superficie de variables de un canal
type fakeChannel struct {
	vars map[string]string
	sets []string // nombres escritos, en orden
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{vars: make(map[string]string)}
}

func (f *fakeChannel) GetVariable(name string) (string, error) {
	return f.vars[name], nil
}

func (f *fakeChannel) SetVariable(name, value string) error {
	f.vars[name] = value
	f.sets = append(f.sets, name)
	return nil
}

func TestParseCallerID(t *testing.T) {
	cases := []struct {
		display string
		name    string
		number  string
		ok      bool
	}{
		{`"John Doe" <5551234>`, "John Doe", "5551234", true},
		{`"John Doe"`, "John Doe", "", true},
		{`5551234`, "5551234", "5551234", true}, // numérico sin comillas: nombre y número
		{`John.Doe <5551234>`, "John.Doe", "5551234", true},
		{`John.Doe`, "John.Doe", "", true},
		{`+573001112233`, "+573001112233", "+573001112233", true},
		{`*10`, "*10", "*10", true},
		{`"" <>`, "", "", false},
		{`<<malformado>>`, "", "", false},
		{``, "", "", false},
	}

	for _, c := range cases {
		identity, ok := ParseCallerID(c.display)
		if ok != c.ok {
			t.Errorf("ParseCallerID(%q): ok=%v, esperado %v", c.display, ok, c.ok)
			continue
		}
		if !ok {
			continue
		}
		if identity.Name != c.name || identity.Number != c.number {
			t.Errorf("ParseCallerID(%q) = (%q, %q), esperado (%q, %q)",
				c.display, identity.Name, identity.Number, c.name, c.number)
		}
	}
}

func TestSetCallerIDFrom(t *testing.T) {
	ch := newFakeChannel()
	if err := SetCallerIDFrom(ch, `"Ventas" <100>`); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if got := ch.vars["CALLERID(all)"]; got != `"Ventas" <100>` {
		t.Errorf("CALLERID(all) = %q", got)
	}

	ch = newFakeChannel()
	if err := SetCallerIDFrom(ch, `Soporte`); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if got := ch.vars["CALLERID(name)"]; got != "Soporte" {
		t.Errorf("CALLERID(name) = %q", got)
	}

	// Una cadena que no parsea no escribe nada
	ch = newFakeChannel()
	if err := SetCallerIDFrom(ch, `<<basura>>`); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(ch.sets) != 0 {
		t.Errorf("no debería escribirse ninguna variable, escritas: %v", ch.sets)
	}
}

func TestRewriteModes(t *testing.T) {
	cases := []struct {
		mode     string
		current  string
		wantName string
	}{
		{"overwrite", "Cliente", "Central"},
		{"prepend", "Cliente", "Central - Cliente"},
		{"append", "Cliente", "Cliente - Central"},
	}

	for _, c := range cases {
		ch := newFakeChannel()
		ch.vars["CALLERID(name)"] = c.current
		ch.vars["CALLERID(num)"] = "5551234"

		rule := RewriteRule{Mode: c.mode, Name: "Central"}
		if err := rule.Rewrite(ch, true); err != nil {
			t.Fatalf("%s: error inesperado: %v", c.mode, err)
		}
		want := `"` + c.wantName + `" <5551234>`
		if got := ch.vars["CALLERID(all)"]; got != want {
			t.Errorf("%s: CALLERID(all) = %q, esperado %q", c.mode, got, want)
		}
		if ch.vars["CALLERID(name-pres)"] != "allowed" || ch.vars["CALLERID(num-pres)"] != "allowed" {
			t.Errorf("%s: la presentación debe forzarse a allowed", c.mode)
		}
	}
}

func TestRewriteDefaults(t *testing.T) {
	// Sin número actual ni de regla: cae al literal unknown. Sin nombre
	// actual: cae al número resuelto
	ch := newFakeChannel()
	rule := RewriteRule{Mode: "prepend", Name: "Cola"}
	if err := rule.Rewrite(ch, true); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if got := ch.vars["CALLERID(all)"]; got != `"Cola - unknown" <unknown>` {
		t.Errorf("CALLERID(all) = %q", got)
	}

	// El número de la regla siempre gana sobre el actual
	ch = newFakeChannel()
	ch.vars["CALLERID(num)"] = "111"
	rule = RewriteRule{Mode: "overwrite", Name: "X", Number: "222"}
	if err := rule.Rewrite(ch, true); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if got := ch.vars["CALLERID(all)"]; got != `"X" <222>` {
		t.Errorf("CALLERID(all) = %q", got)
	}

	// Un nombre entre comillas pierde las comillas envolventes
	ch = newFakeChannel()
	ch.vars["CALLERID(name)"] = `"Cliente"`
	ch.vars["CALLERID(num)"] = "333"
	rule = RewriteRule{Mode: "append", Name: "Sur"}
	if err := rule.Rewrite(ch, true); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if got := ch.vars["CALLERID(all)"]; got != `"Cliente - Sur" <333>` {
		t.Errorf("CALLERID(all) = %q", got)
	}
}

func TestRewriteDegenerateCase(t *testing.T) {
	// Nombre de regla == nombre actual == número actual: sin duplicación
	ch := newFakeChannel()
	ch.vars["CALLERID(name)"] = "600"
	ch.vars["CALLERID(num)"] = "600"
	rule := RewriteRule{Mode: "prepend", Name: "600"}
	if err := rule.Rewrite(ch, true); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if got := ch.vars["CALLERID(all)"]; got != `"600" <600>` {
		t.Errorf("CALLERID(all) = %q, esperado nombre sin duplicar", got)
	}
}

func TestRewriteOneShot(t *testing.T) {
	ch := newFakeChannel()
	ch.vars["CALLERID(name)"] = "Cliente"
	ch.vars["CALLERID(num)"] = "5551234"

	rule := RewriteRule{Mode: "prepend", Name: "Cola"}
	if err := rule.Rewrite(ch, false); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	first := ch.vars["CALLERID(all)"]
	if first != `"Cola - Cliente" <5551234>` {
		t.Fatalf("primera reescritura produjo %q", first)
	}
	if ch.vars[RewrittenVar] != "1" {
		t.Fatalf("el marcador debe fijarse tras una reescritura real")
	}

	// Segunda invocación sin force: no hay mutación
	writes := len(ch.sets)
	if err := rule.Rewrite(ch, false); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(ch.sets) != writes {
		t.Errorf("la segunda reescritura no debe escribir variables")
	}
	if ch.vars["CALLERID(all)"] != first {
		t.Errorf("CALLERID(all) cambió en la segunda invocación")
	}

	// Con force sí se reescribe de nuevo
	if err := rule.Rewrite(ch, true); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(ch.sets) == writes {
		t.Errorf("con force la reescritura debe aplicarse")
	}
}

func TestRewriteWithoutRule(t *testing.T) {
	ch := newFakeChannel()
	rule := RewriteRule{}
	if err := rule.Rewrite(ch, true); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if len(ch.sets) != 0 {
		t.Errorf("sin modo configurado no debe escribirse nada")
	}
}
