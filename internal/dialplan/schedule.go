package dialplan

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"agid/internal/database"
)

// Action es el triple (tipo, destino, argumentos) que el switch debe
// ejecutar. Opaco para el evaluador: solo se transporta, nunca se interpreta
type Action struct {
	Kind   string
	Target string
	Args   string
}

// timeRange es un rango de horas en minutos desde medianoche, fin inclusive
type timeRange struct {
	start int
	end   int
}

// Period es un periodo de horario normalizado. Una dimensión vacía casa con
// cualquier valor
type Period struct {
	hours     []timeRange
	weekdays  map[int]bool // 1=lunes .. 7=domingo
	monthdays map[int]bool
	months    map[int]bool
	action    *Action // solo en periodos cerrados, opcional
}

// matches evalúa el predicado del periodo dimensión por dimensión
func (p *Period) matches(t time.Time) bool {
	if len(p.hours) > 0 {
		minutes := t.Hour()*60 + t.Minute()
		found := false
		for _, r := range p.hours {
			if minutes >= r.start && minutes <= r.end {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(p.weekdays) > 0 && !p.weekdays[isoWeekday(t)] {
		return false
	}
	if len(p.monthdays) > 0 && !p.monthdays[t.Day()] {
		return false
	}
	if len(p.months) > 0 && !p.months[int(t.Month())] {
		return false
	}
	return true
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7 // domingo
	}
	return wd
}

// Schedule es un horario listo para evaluar
type Schedule struct {
	opened   []Period
	closed   []Period
	defact   Action
	timezone *time.Location
}

// NewSchedule construye un horario desde su fila cruda de base de datos.
// Un periodo malformado es un error de configuración fatal para la petición
func NewSchedule(row *database.ScheduleRow) (*Schedule, error) {
	loc, err := time.LoadLocation(row.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dialplan: zona horaria inválida %q: %w", row.Timezone, err)
	}

	s := &Schedule{
		defact:   Action{Kind: row.ClosedAction, Target: row.ClosedArg1, Args: row.ClosedArg2},
		timezone: loc,
	}

	for _, raw := range row.Periods {
		period, err := parsePeriod(raw)
		if err != nil {
			return nil, err
		}
		switch raw.Mode {
		case "opened":
			s.opened = append(s.opened, period)
		case "closed":
			if raw.Action != "" {
				period.action = &Action{Kind: raw.Action, Target: raw.ActionArg1, Args: raw.ActionArg2}
			}
			s.closed = append(s.closed, period)
		default:
			return nil, fmt.Errorf("dialplan: modo de periodo desconocido %q", raw.Mode)
		}
	}
	return s, nil
}

// Timezone devuelve la zona horaria del horario
func (s *Schedule) Timezone() *time.Location {
	return s.timezone
}

// Evaluate decide el estado del horario en un instante dado. Abierto no
// produce acción. Cerrado produce la acción del primer periodo cerrado que
// casa (en orden de almacenamiento) o la acción por defecto
func (s *Schedule) Evaluate(t time.Time) (opened bool, action Action) {
	t = t.In(s.timezone)

	for i := range s.opened {
		if s.opened[i].matches(t) {
			return true, Action{}
		}
	}
	for i := range s.closed {
		if s.closed[i].matches(t) {
			if s.closed[i].action != nil {
				return false, *s.closed[i].action
			}
			return false, s.defact
		}
	}
	return false, s.defact
}

// parsePeriod decodifica la gramática persistida de un periodo. El formato
// crudo se conserva bit a bit en la base; aquí solo se normaliza en memoria
func parsePeriod(raw database.SchedulePeriod) (Period, error) {
	var p Period

	if raw.Hours != "" {
		for _, chunk := range strings.Split(raw.Hours, ",") {
			r, err := parseHourRange(strings.TrimSpace(chunk))
			if err != nil {
				return Period{}, err
			}
			p.hours = append(p.hours, r)
		}
	}

	var err error
	if p.weekdays, err = parseIntSet(raw.WeekDays, 1, 7); err != nil {
		return Period{}, fmt.Errorf("dialplan: días de semana inválidos %q: %w", raw.WeekDays, err)
	}
	if p.monthdays, err = parseIntSet(raw.MonthDays, 1, 31); err != nil {
		return Period{}, fmt.Errorf("dialplan: días de mes inválidos %q: %w", raw.MonthDays, err)
	}
	if p.months, err = parseIntSet(raw.Months, 1, 12); err != nil {
		return Period{}, fmt.Errorf("dialplan: meses inválidos %q: %w", raw.Months, err)
	}
	return p, nil
}

// parseHourRange decodifica "HH:MM-HH:MM" (o "HH:MM" puntual), fin inclusive
func parseHourRange(s string) (timeRange, error) {
	parts := strings.SplitN(s, "-", 2)
	start, err := parseClock(parts[0])
	if err != nil {
		return timeRange{}, err
	}
	end := start
	if len(parts) == 2 {
		if end, err = parseClock(parts[1]); err != nil {
			return timeRange{}, err
		}
	}
	if end < start {
		return timeRange{}, fmt.Errorf("dialplan: rango de horas invertido %q", s)
	}
	return timeRange{start: start, end: end}, nil
}

func parseClock(s string) (int, error) {
	hh, mm, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		return 0, fmt.Errorf("dialplan: hora inválida %q", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("dialplan: hora inválida %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("dialplan: minutos inválidos %q", s)
	}
	return h*60 + m, nil
}

// parseIntSet decodifica listas y rangos del tipo "1-5" o "1,3,5" dentro de
// los límites dados. Una cadena vacía devuelve un conjunto nulo (casa todo)
func parseIntSet(s string, lo, hi int) (map[int]bool, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	set := make(map[int]bool)
	for _, chunk := range strings.Split(s, ",") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		if from, to, found := strings.Cut(chunk, "-"); found {
			a, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, err
			}
			b, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil {
				return nil, err
			}
			if a > b || a < lo || b > hi {
				return nil, fmt.Errorf("rango fuera de límites %q", chunk)
			}
			for v := a; v <= b; v++ {
				set[v] = true
			}
		} else {
			v, err := strconv.Atoi(chunk)
			if err != nil {
				return nil, err
			}
			if v < lo || v > hi {
				return nil, fmt.Errorf("valor fuera de límites %d", v)
			}
			set[v] = true
		}
	}
	return set, nil
}
