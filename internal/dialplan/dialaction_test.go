package dialplan

import "testing"

func TestDialActionUnconfigured(t *testing.T) {
	ch := newFakeChannel()

	// Una regla ausente se materializa como "none" con argumentos vacíos
	action := &DialAction{Event: "noanswer", Category: "queue", Action: "none"}
	if err := action.SetVariables(ch); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if got := ch.vars["AGID_FWD_QUEUE_NOANSWER_ACTION"]; got != "none" {
		t.Errorf("ACTION = %q, esperado none", got)
	}
	if got := ch.vars["AGID_FWD_QUEUE_NOANSWER_ACTIONARG1"]; got != "" {
		t.Errorf("ACTIONARG1 = %q, esperada cadena vacía", got)
	}
	if got := ch.vars["AGID_FWD_QUEUE_NOANSWER_ACTIONARG2"]; got != "" {
		t.Errorf("ACTIONARG2 = %q, esperada cadena vacía", got)
	}
	// La categoría queue no está en la lista de exclusión: el marcador se emite
	if got := ch.vars["AGID_FWD_QUEUE_NOANSWER_ISDA"]; got != "1" {
		t.Errorf("ISDA = %q, esperado 1", got)
	}

	// Los argumentos ausentes se emiten, nunca se omiten
	for _, name := range []string{"AGID_FWD_QUEUE_NOANSWER_ACTIONARG1", "AGID_FWD_QUEUE_NOANSWER_ACTIONARG2"} {
		found := false
		for _, written := range ch.sets {
			if written == name {
				found = true
			}
		}
		if !found {
			t.Errorf("%s debe escribirse aunque esté vacío", name)
		}
	}
}

func TestDialActionPipeReplacement(t *testing.T) {
	ch := newFakeChannel()

	action := &DialAction{
		Event:    "busy",
		Category: "user",
		Action:   "extension",
		Arg1:     "1001|default",
		Arg2:     "a|b",
	}
	if err := action.SetVariables(ch); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if got := ch.vars["AGID_FWD_USER_BUSY_ACTIONARG1"]; got != "1001;default" {
		t.Errorf("ACTIONARG1 = %q, el separador | debe volverse ;", got)
	}
	// Arg2 pasa sin tocar
	if got := ch.vars["AGID_FWD_USER_BUSY_ACTIONARG2"]; got != "a|b" {
		t.Errorf("ACTIONARG2 = %q, debe pasar sin transformar", got)
	}
}

func TestDialActionNoISDAForTerminalCategories(t *testing.T) {
	for _, category := range []string{"none", "endcall:busy", "endcall:congestion", "endcall:hangup"} {
		ch := newFakeChannel()
		action := &DialAction{Event: "answer", Category: category, Action: "none"}
		if err := action.SetVariables(ch); err != nil {
			t.Fatalf("%s: error inesperado: %v", category, err)
		}
		for _, written := range ch.sets {
			if len(written) > 5 && written[len(written)-5:] == "_ISDA" {
				t.Errorf("categoría %s: el marcador ISDA no debe emitirse", category)
			}
		}
	}
}

func TestDialActionEmptyActionDefaultsToNone(t *testing.T) {
	ch := newFakeChannel()
	action := &DialAction{Event: "congestion", Category: "queue"}
	if err := action.SetVariables(ch); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if got := ch.vars["AGID_FWD_QUEUE_CONGESTION_ACTION"]; got != "none" {
		t.Errorf("ACTION = %q, esperado none", got)
	}
}
