package dialplan

import (
	"testing"
	"time"

	"agid/internal/database"
)

func mustSchedule(t *testing.T, row *database.ScheduleRow) *Schedule {
	t.Helper()
	s, err := NewSchedule(row)
	if err != nil {
		t.Fatalf("error construyendo horario: %v", err)
	}
	return s
}

func TestScheduleAlwaysOpen(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone: "UTC",
		Periods: []database.SchedulePeriod{
			{Mode: "opened"}, // todas las dimensiones vacías casan siempre
		},
	}
	s := mustSchedule(t, row)

	stamps := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 6, 15, 12, 30, 0, 0, time.UTC),
		time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC),
	}
	for _, stamp := range stamps {
		opened, _ := s.Evaluate(stamp)
		if !opened {
			t.Errorf("horario siempre-abierto evaluó cerrado en %v", stamp)
		}
	}
}

func TestScheduleBusinessHours(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone:     "UTC",
		ClosedAction: "voicemail", ClosedArg1: "V1",
		Periods: []database.SchedulePeriod{
			{
				Mode:     "closed",
				Hours:    "09:00-17:00",
				WeekDays: "1-5",
				Action:   "sound", ActionArg1: "S1",
			},
		},
	}
	s := mustSchedule(t, row)

	// Miércoles 10:00, dentro del periodo cerrado: acción del periodo
	wednesday := time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC)
	opened, action := s.Evaluate(wednesday)
	if opened {
		t.Fatalf("miércoles 10:00 debería evaluar cerrado")
	}
	if action.Kind != "sound" || action.Target != "S1" {
		t.Errorf("acción %+v, esperada (sound, S1)", action)
	}

	// Sábado 10:00, fuera del periodo: acción por defecto
	saturday := time.Date(2026, 8, 22, 10, 0, 0, 0, time.UTC)
	opened, action = s.Evaluate(saturday)
	if opened {
		t.Fatalf("sábado 10:00 debería evaluar cerrado")
	}
	if action.Kind != "voicemail" || action.Target != "V1" {
		t.Errorf("acción %+v, esperada la acción por defecto (voicemail, V1)", action)
	}
}

func TestScheduleOpenedWins(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone:     "UTC",
		ClosedAction: "endcall",
		Periods: []database.SchedulePeriod{
			{Mode: "opened", Hours: "08:00-18:00", WeekDays: "1-5"},
			{Mode: "closed", Hours: "12:00-13:00"},
		},
	}
	s := mustSchedule(t, row)

	// Mediodía de un martes: el periodo abierto casa y gana
	tuesday := time.Date(2026, 8, 18, 12, 30, 0, 0, time.UTC)
	opened, _ := s.Evaluate(tuesday)
	if !opened {
		t.Errorf("un periodo abierto que casa debe ganar sobre los cerrados")
	}

	// Mediodía de un domingo: solo casa el cerrado
	sunday := time.Date(2026, 8, 23, 12, 30, 0, 0, time.UTC)
	opened, _ = s.Evaluate(sunday)
	if opened {
		t.Errorf("domingo 12:30 debería evaluar cerrado")
	}
}

func TestScheduleFirstClosedMatchWins(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone:     "UTC",
		ClosedAction: "endcall",
		Periods: []database.SchedulePeriod{
			{Mode: "closed", Hours: "00:00-23:59", Action: "sound", ActionArg1: "first"},
			{Mode: "closed", Hours: "00:00-23:59", Action: "sound", ActionArg1: "second"},
		},
	}
	s := mustSchedule(t, row)

	_, action := s.Evaluate(time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC))
	if action.Target != "first" {
		t.Errorf("gana el primer periodo cerrado en orden de almacenamiento, obtenido %q", action.Target)
	}
}

func TestScheduleEmptyIsAlwaysClosed(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone:     "UTC",
		ClosedAction: "voicemail", ClosedArg1: "V9",
	}
	s := mustSchedule(t, row)

	opened, action := s.Evaluate(time.Date(2026, 8, 19, 10, 0, 0, 0, time.UTC))
	if opened {
		t.Fatalf("un horario sin periodos se comporta siempre cerrado")
	}
	if action.Kind != "voicemail" || action.Target != "V9" {
		t.Errorf("acción %+v, esperada la acción por defecto", action)
	}
}

func TestScheduleTimezoneNormalization(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone:     "America/Bogota", // UTC-5, sin horario de verano
		ClosedAction: "endcall",
		Periods: []database.SchedulePeriod{
			{Mode: "opened", Hours: "09:00-17:00"},
		},
	}
	s := mustSchedule(t, row)

	// 15:00 UTC = 10:00 en Bogotá: abierto
	opened, _ := s.Evaluate(time.Date(2026, 8, 19, 15, 0, 0, 0, time.UTC))
	if !opened {
		t.Errorf("15:00 UTC debería normalizarse a 10:00 local y evaluar abierto")
	}

	// 01:00 UTC = 20:00 del día anterior en Bogotá: cerrado
	opened, _ = s.Evaluate(time.Date(2026, 8, 19, 1, 0, 0, 0, time.UTC))
	if opened {
		t.Errorf("01:00 UTC debería normalizarse a 20:00 local y evaluar cerrado")
	}
}

func TestScheduleHourRangeInclusive(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone: "UTC",
		Periods: []database.SchedulePeriod{
			{Mode: "opened", Hours: "09:00-17:00"},
		},
	}
	s := mustSchedule(t, row)

	cases := []struct {
		hour, min int
		want      bool
	}{
		{8, 59, false},
		{9, 0, true},
		{17, 0, true}, // fin inclusive a granularidad de minuto
		{17, 1, false},
	}
	for _, c := range cases {
		opened, _ := s.Evaluate(time.Date(2026, 8, 19, c.hour, c.min, 0, 0, time.UTC))
		if opened != c.want {
			t.Errorf("%02d:%02d: abierto=%v, esperado %v", c.hour, c.min, opened, c.want)
		}
	}
}

func TestScheduleMalformedPeriod(t *testing.T) {
	rows := []*database.ScheduleRow{
		{Timezone: "UTC", Periods: []database.SchedulePeriod{{Mode: "opened", Hours: "25:00-26:00"}}},
		{Timezone: "UTC", Periods: []database.SchedulePeriod{{Mode: "opened", WeekDays: "0-9"}}},
		{Timezone: "UTC", Periods: []database.SchedulePeriod{{Mode: "sideways"}}},
		{Timezone: "Not/AZone", Periods: nil},
	}
	for i, row := range rows {
		if _, err := NewSchedule(row); err == nil {
			t.Errorf("caso %d: una configuración malformada debe ser un error fatal", i)
		}
	}
}

func TestScheduleISOWeekdays(t *testing.T) {
	row := &database.ScheduleRow{
		Timezone: "UTC",
		Periods: []database.SchedulePeriod{
			{Mode: "opened", WeekDays: "7"}, // solo domingo
		},
	}
	s := mustSchedule(t, row)

	sunday := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	if opened, _ := s.Evaluate(sunday); !opened {
		t.Errorf("domingo debe casar con el día 7")
	}
	monday := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	if opened, _ := s.Evaluate(monday); opened {
		t.Errorf("lunes no debe casar con el día 7")
	}
}
