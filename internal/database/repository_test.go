package database

import "testing"

func TestMatchFeatureExten(t *testing.T) {
	cases := []struct {
		configured string
		dialed     string
		want       bool
	}{
		{"*98", "*98", true},
		{"*98", "*99", false},
		// Un patrón (prefijo _) casa por su parte literal hasta el comodín
		{"_*8.", "*81001", true},
		{"_*8.", "*91001", false},
		{"_*26X", "*2645", true},
		// Sin prefijo literal no hay coincidencia posible
		{"_X.", "1234", false},
		{"", "", true},
		{"_", "*98", false},
	}

	for _, c := range cases {
		if got := matchFeatureExten(c.configured, c.dialed); got != c.want {
			t.Errorf("matchFeatureExten(%q, %q) = %v, esperado %v",
				c.configured, c.dialed, got, c.want)
		}
	}
}

func TestQueueDialOptions(t *testing.T) {
	q := Queue{
		DataQuality:   true,
		HangupCallee:  true,
		HangupCaller:  true,
		Retries:       true,
		Ring:          true,
		TransferUser:  true,
		TransferCall:  true,
		RecordCallee:  true,
		RecordCaller:  true,
		IgnoreForward: true,
		MarkAnswered:  true,
		SetContinue:   true,
	}
	if got := q.DialOptions(); got != "dhHnrtTxXiCc" {
		t.Errorf("DialOptions con todo habilitado = %q, esperado dhHnrtTxXiCc", got)
	}

	var empty Queue
	if got := empty.DialOptions(); got != "" {
		t.Errorf("DialOptions sin banderas = %q, esperada cadena vacía", got)
	}

	partial := Queue{Ring: true, TransferCall: true}
	if got := partial.DialOptions(); got != "rT" {
		t.Errorf("DialOptions parcial = %q, esperado rT", got)
	}
}
