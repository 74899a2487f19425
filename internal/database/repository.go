package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound: la búsqueda no encontró ninguna fila. Nunca se devuelven
	// registros vacíos en silencio
	ErrNotFound = errors.New("database: registro no encontrado")

	// ErrUpdateMismatch: una actualización de fila única afectó un número de
	// filas distinto de 1. Inconsistencia fatal para la petición
	ErrUpdateMismatch = errors.New("database: la actualización no afectó exactamente una fila")
)

// Repository maneja las consultas a la base de datos del PBX
type Repository struct {
	conn    *Connection
	batcher *RequestLogBatcher
	pruner  *RequestLogPruner
}

// NewRepository crea un nuevo repositorio y arranca sus workers de fondo
func NewRepository(conn *Connection) *Repository {
	repo := &Repository{
		conn:    conn,
		batcher: NewRequestLogBatcher(conn.DB),
	}
	repo.pruner = NewRequestLogPruner(repo)
	repo.batcher.Start()
	repo.pruner.Start()
	return repo
}

// Close detiene los workers y libera recursos
func (r *Repository) Close() {
	if r.pruner != nil {
		r.pruner.Stop()
	}
	if r.batcher != nil {
		r.batcher.Stop()
	}
}

// LogRequest encola el registro de una petición atendida
func (r *Repository) LogRequest(entry RequestLog) {
	r.batcher.Queue(entry)
}

// GetUser obtiene un usuario por ID. Los destinos de desvío se blanquean
// cuando la bandera correspondiente está apagada
func (r *Repository) GetUser(id int) (*User, error) {
	query := `
		SELECT id, firstname, lastname, callerid, COALESCE(outcallerid, ''),
		       COALESCE(mobilephonenumber, ''), ringseconds, simultcalls,
		       enablevoicemail, voicemailid, enableonlinerec,
		       enableunc, COALESCE(destunc, ''),
		       enablebusy, COALESCE(destbusy, ''),
		       enablerna, COALESCE(destrna, ''),
		       COALESCE(language, ''), COALESCE(musiconhold, ''),
		       COALESCE(preprocess_subroutine, '')
		FROM userfeatures
		WHERE id = ?
	`

	var u User
	err := r.conn.DB.QueryRow(query, id).Scan(
		&u.ID, &u.Firstname, &u.Lastname, &u.CallerID, &u.OutCallerID,
		&u.MobileNumber, &u.RingSeconds, &u.SimultCalls,
		&u.EnableVoicemail, &u.VoicemailID, &u.EnableOnlineRec,
		&u.EnableUnconditional, &u.DestUnconditional,
		&u.EnableBusy, &u.DestBusy,
		&u.EnableRNA, &u.DestRNA,
		&u.Language, &u.MusicOnHold, &u.PreprocessSubroutine,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: usuario %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando usuario %d: %w", id, err)
	}

	// Un destino configurado solo vale si su bandera está encendida
	if !u.EnableUnconditional {
		u.DestUnconditional = ""
	}
	if !u.EnableBusy {
		u.DestBusy = ""
	}
	if !u.EnableRNA {
		u.DestRNA = ""
	}

	// El buzón adjunto se valida: si no existe, el voicemail queda deshabilitado
	if u.EnableVoicemail && u.VoicemailID != nil {
		if _, err := r.GetVMBox(*u.VoicemailID); err != nil {
			if errors.Is(err, ErrNotFound) {
				u.EnableVoicemail = false
				u.VoicemailID = nil
			} else {
				return nil, err
			}
		}
	}

	return &u, nil
}

// ToggleUserFeature invierte una bandera de servicio del usuario y devuelve
// el nuevo estado. La actualización debe afectar exactamente una fila
func (r *Repository) ToggleUserFeature(id int, feature string) (bool, error) {
	columns := map[string]string{
		"voicemail":  "enablevoicemail",
		"callrecord": "enableonlinerec",
	}
	column, ok := columns[feature]
	if !ok {
		return false, fmt.Errorf("database: servicio desconocido %q", feature)
	}

	query := fmt.Sprintf(`UPDATE userfeatures SET %s = NOT %s WHERE id = ?`, column, column)
	result, err := r.conn.DB.Exec(query, id)
	if err != nil {
		return false, fmt.Errorf("error actualizando usuario %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows != 1 {
		return false, fmt.Errorf("%w: usuario %d, %s (%d filas)", ErrUpdateMismatch, id, feature, rows)
	}

	var enabled bool
	query = fmt.Sprintf(`SELECT %s FROM userfeatures WHERE id = ?`, column)
	if err := r.conn.DB.QueryRow(query, id).Scan(&enabled); err != nil {
		return false, fmt.Errorf("error releyendo usuario %d: %w", id, err)
	}
	return enabled, nil
}

// GetVMBox obtiene un buzón de voz por ID
func (r *Repository) GetVMBox(id int) (*VMBox, error) {
	query := `
		SELECT uniqueid, mailbox, context, COALESCE(password, ''),
		       COALESCE(email, ''), COALESCE(language, ''),
		       skipcheckpass, commented = 0
		FROM voicemail
		WHERE uniqueid = ?
	`

	var v VMBox
	err := r.conn.DB.QueryRow(query, id).Scan(
		&v.ID, &v.Mailbox, &v.Context, &v.Password,
		&v.Email, &v.Language, &v.SkipCheckPass, &v.Enabled,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: buzón %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando buzón %d: %w", id, err)
	}
	return &v, nil
}

// GetVMBoxByMailbox busca un buzón por número dentro de un contexto,
// siguiendo las inclusiones del contexto en orden
func (r *Repository) GetVMBoxByMailbox(mailbox, contextName string) (*VMBox, error) {
	ctx, err := r.GetContext(contextName)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT uniqueid, mailbox, context, COALESCE(password, ''),
		       COALESCE(email, ''), COALESCE(language, ''),
		       skipcheckpass, commented = 0
		FROM voicemail
		WHERE mailbox = ? AND context = ?
	`

	for _, included := range ctx.Includes {
		var v VMBox
		err := r.conn.DB.QueryRow(query, mailbox, included).Scan(
			&v.ID, &v.Mailbox, &v.Context, &v.Password,
			&v.Email, &v.Language, &v.SkipCheckPass, &v.Enabled,
		)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error consultando buzón %s@%s: %w", mailbox, included, err)
		}
		return &v, nil
	}

	return nil, fmt.Errorf("%w: buzón %s en contexto %s", ErrNotFound, mailbox, contextName)
}

// ToggleVMBoxEnable invierte el estado de un buzón y devuelve el nuevo estado
func (r *Repository) ToggleVMBoxEnable(id int) (bool, error) {
	query := `UPDATE voicemail SET commented = 1 - commented WHERE uniqueid = ?`
	result, err := r.conn.DB.Exec(query, id)
	if err != nil {
		return false, fmt.Errorf("error actualizando buzón %d: %w", id, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rows != 1 {
		return false, fmt.Errorf("%w: buzón %d (%d filas)", ErrUpdateMismatch, id, rows)
	}

	var enabled bool
	if err := r.conn.DB.QueryRow(`SELECT commented = 0 FROM voicemail WHERE uniqueid = ?`, id).Scan(&enabled); err != nil {
		return false, fmt.Errorf("error releyendo buzón %d: %w", id, err)
	}
	return enabled, nil
}

// GetQueue obtiene una cola por ID (solo colas activas de categoría queue)
func (r *Repository) GetQueue(id int) (*Queue, error) {
	return r.getQueue(`qf.id = ?`, id)
}

// GetQueueByNumber obtiene una cola por número y contexto
func (r *Repository) GetQueueByNumber(number, context string) (*Queue, error) {
	return r.getQueue(`qf.number = ? AND qf.context = ?`, number, context)
}

func (r *Repository) getQueue(where string, args ...any) (*Queue, error) {
	query := `
		SELECT qf.id, qf.name, COALESCE(qf.number, ''), COALESCE(qf.context, ''),
		       qf.timeout, q.musicclass, qf.preprocess_subroutine,
		       qf.announce_holdtime, qf.waittime, qf.waitratio,
		       COALESCE(qf.url, ''), COALESCE(qf.announceoverride, ''),
		       q.wrapuptime,
		       qf.data_quality,
		       qf.dtmf_hangup_callee_enabled, qf.dtmf_hangup_caller_enabled,
		       qf.retries, qf.ring,
		       qf.dtmf_transfer_callee_enabled, qf.dtmf_transfer_caller_enabled,
		       qf.dtmf_record_callee_enabled, qf.dtmf_record_caller_enabled,
		       qf.ignore_forward, qf.mark_answered_elsewhere, qf.set_continue
		FROM queuefeatures qf
		INNER JOIN queue q ON q.name = qf.name
		WHERE ` + where + `
		  AND q.commented = 0
		  AND q.category = 'queue'
	`

	var q Queue
	err := r.conn.DB.QueryRow(query, args...).Scan(
		&q.ID, &q.Name, &q.Number, &q.Context,
		&q.Timeout, &q.MusicClass, &q.PreprocessSubroutine,
		&q.AnnounceHoldtime, &q.WaitTime, &q.WaitRatio,
		&q.URL, &q.AnnounceOverride,
		&q.WrapupTime,
		&q.DataQuality,
		&q.HangupCallee, &q.HangupCaller,
		&q.Retries, &q.Ring,
		&q.TransferUser, &q.TransferCall,
		&q.RecordCallee, &q.RecordCaller,
		&q.IgnoreForward, &q.MarkAnswered, &q.SetContinue,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: cola (%v)", ErrNotFound, args)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando cola: %w", err)
	}
	return &q, nil
}

// GetQueuePickupGroups obtiene los grupos de captura a los que pertenece
// una cola
func (r *Repository) GetQueuePickupGroups(queueID int) ([]string, error) {
	rows, err := r.conn.DB.Query(`
		SELECT p.id
		FROM pickup p
		INNER JOIN pickupmember pm ON pm.pickupid = p.id
		WHERE p.commented = 0
		  AND pm.category = 'member'
		  AND pm.membertype = 'queue'
		  AND pm.memberid = ?
	`, queueID)
	if err != nil {
		return nil, fmt.Errorf("error consultando grupos de captura de la cola %d: %w", queueID, err)
	}
	defer rows.Close()

	var groups []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error escaneando grupo de captura: %w", err)
		}
		groups = append(groups, id)
	}
	return groups, rows.Err()
}

// GetAgent obtiene un agente por ID
func (r *Repository) GetAgent(id int) (*Agent, error) {
	return r.getAgent(`id = ?`, id)
}

// GetAgentByNumber obtiene un agente por número
func (r *Repository) GetAgentByNumber(number string) (*Agent, error) {
	return r.getAgent(`number = ?`, number)
}

func (r *Repository) getAgent(where string, args ...any) (*Agent, error) {
	query := `
		SELECT id, number, firstname, COALESCE(lastname, ''),
		       COALESCE(language, ''), COALESCE(preprocess_subroutine, '')
		FROM agentfeatures
		WHERE ` + where

	var a Agent
	err := r.conn.DB.QueryRow(query, args...).Scan(
		&a.ID, &a.Number, &a.Firstname, &a.Lastname,
		&a.Language, &a.PreprocessSubroutine,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: agente (%v)", ErrNotFound, args)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando agente: %w", err)
	}
	return &a, nil
}

// GetTrunk obtiene una troncal por ID resolviendo su endpoint a la interfaz
// de marcado: PJSIP/<nombre>, IAX2/<nombre> o la interfaz custom con sufijo
func (r *Repository) GetTrunk(id int) (*Trunk, error) {
	query := `
		SELECT tf.id,
		       es.name, ei.name, ec.interface, COALESCE(ec.intfsuffix, '')
		FROM trunkfeatures tf
		LEFT JOIN endpoint_sip es ON es.uuid = tf.endpoint_sip_uuid
		LEFT JOIN useriax ei ON ei.id = tf.endpoint_iax_id
		LEFT JOIN usercustom ec ON ec.id = tf.endpoint_custom_id
		WHERE tf.id = ?
	`

	var (
		t          Trunk
		sipName    sql.NullString
		iaxName    sql.NullString
		customIntf sql.NullString
		suffix     string
	)
	err := r.conn.DB.QueryRow(query, id).Scan(&t.ID, &sipName, &iaxName, &customIntf, &suffix)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: troncal %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando troncal %d: %w", id, err)
	}

	switch {
	case sipName.Valid:
		t.Interface = "PJSIP/" + sipName.String
	case iaxName.Valid:
		t.Interface = "IAX2/" + iaxName.String
	case customIntf.Valid:
		t.Interface = customIntf.String
		t.IntfSuffix = suffix
	default:
		return nil, fmt.Errorf("%w: troncal %d sin endpoint", ErrNotFound, id)
	}

	return &t, nil
}

// GetContext obtiene un contexto con sus inclusiones ordenadas, el propio
// contexto primero
func (r *Repository) GetContext(name string) (*Context, error) {
	var ctx Context
	err := r.conn.DB.QueryRow(
		`SELECT name, COALESCE(displayname, '') FROM context WHERE name = ?`, name,
	).Scan(&ctx.Name, &ctx.DisplayName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: contexto %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando contexto %s: %w", name, err)
	}

	ctx.Includes = []string{ctx.Name}

	rows, err := r.conn.DB.Query(
		`SELECT include FROM contextinclude WHERE context = ? ORDER BY priority`, name,
	)
	if err != nil {
		return nil, fmt.Errorf("error consultando inclusiones de %s: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var include string
		if err := rows.Scan(&include); err != nil {
			return nil, fmt.Errorf("error escaneando inclusión: %w", err)
		}
		ctx.Includes = append(ctx.Includes, include)
	}
	return &ctx, rows.Err()
}

// GetMeetingByUUID obtiene una reunión por UUID dentro de un tenant
func (r *Repository) GetMeetingByUUID(uuid, tenantUUID string) (*Meeting, error) {
	return r.getMeeting(`uuid = ? AND tenant_uuid = ?`, uuid, tenantUUID)
}

// GetMeetingByNumber obtiene una reunión por número dentro de un tenant
func (r *Repository) GetMeetingByNumber(number, tenantUUID string) (*Meeting, error) {
	return r.getMeeting(`number = ? AND tenant_uuid = ?`, number, tenantUUID)
}

func (r *Repository) getMeeting(where string, args ...any) (*Meeting, error) {
	query := `
		SELECT uuid, tenant_uuid, name, COALESCE(number, '')
		FROM meeting
		WHERE ` + where

	var m Meeting
	err := r.conn.DB.QueryRow(query, args...).Scan(&m.UUID, &m.TenantUUID, &m.Name, &m.Number)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: reunión (%v)", ErrNotFound, args)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando reunión: %w", err)
	}
	return &m, nil
}

// GetDID obtiene una entrada DID por extensión y contexto
func (r *Repository) GetDID(exten, context string) (*DID, error) {
	query := `
		SELECT i.id, e.exten, e.context,
		       COALESCE(i.preprocess_subroutine, ''), COALESCE(i.greeting_sound, '')
		FROM incall i
		INNER JOIN extensions e ON e.type = 'incall' AND e.typeval = i.id
		WHERE e.exten = ? AND e.context = ? AND e.commented = 0
	`

	var d DID
	err := r.conn.DB.QueryRow(query, exten, context).Scan(
		&d.ID, &d.Exten, &d.Context, &d.PreprocessSubroutine, &d.GreetingSound,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: DID %s@%s", ErrNotFound, exten, context)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando DID %s@%s: %w", exten, context, err)
	}
	return &d, nil
}

// GetDialAction obtiene la acción configurada para (evento, categoría,
// valor). La ausencia de regla devuelve la acción "none", nunca un error
func (r *Repository) GetDialAction(event, category, categoryVal string) (*DialActionRule, error) {
	query := `
		SELECT action, COALESCE(actionarg1, ''), COALESCE(actionarg2, '')
		FROM dialaction
		WHERE event = ? AND category = ? AND categoryval = ?
	`

	rule := &DialActionRule{
		Event:       event,
		Category:    category,
		CategoryVal: categoryVal,
		Action:      "none",
	}
	err := r.conn.DB.QueryRow(query, event, category, categoryVal).Scan(
		&rule.Action, &rule.Arg1, &rule.Arg2,
	)
	if err == sql.ErrNoRows {
		return rule, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando dialaction %s/%s/%s: %w", event, category, categoryVal, err)
	}
	return rule, nil
}

// GetCallerIDRule obtiene la regla de caller-id de una entidad, si la hay
func (r *Repository) GetCallerIDRule(typ, typeVal string) (*CallerIDRule, bool, error) {
	query := `
		SELECT mode, callerdisplay
		FROM callerid
		WHERE type = ? AND typeval = ? AND mode IS NOT NULL
	`

	var rule CallerIDRule
	err := r.conn.DB.QueryRow(query, typ, typeVal).Scan(&rule.Mode, &rule.CallerDisplay)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error consultando callerid %s/%s: %w", typ, typeVal, err)
	}
	return &rule, true, nil
}

// GetSchedule obtiene el horario asociado a (path, pathID). La ausencia de
// asociación no es un error: ok=false indica que no hay horario configurado.
// Una zona horaria nula cae a la zona global de la tabla infos
func (r *Repository) GetSchedule(path string, pathID int) (*ScheduleRow, bool, error) {
	query := `
		SELECT s.id, s.name, s.timezone,
		       s.fallback_action, COALESCE(s.fallback_actionid, ''),
		       COALESCE(s.fallback_actionargs, '')
		FROM schedule s
		INNER JOIN schedule_path sp ON sp.schedule_id = s.id
		WHERE sp.path = ? AND sp.pathid = ? AND s.commented = 0
	`

	var (
		row ScheduleRow
		tz  sql.NullString
	)
	err := r.conn.DB.QueryRow(query, path, pathID).Scan(
		&row.ID, &row.Name, &tz,
		&row.ClosedAction, &row.ClosedArg1, &row.ClosedArg2,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error consultando horario %s/%d: %w", path, pathID, err)
	}

	if tz.Valid && tz.String != "" {
		row.Timezone = tz.String
	} else {
		if err := r.conn.DB.QueryRow(`SELECT timezone FROM infos LIMIT 1`).Scan(&row.Timezone); err != nil {
			return nil, false, fmt.Errorf("error consultando zona horaria global: %w", err)
		}
	}

	rows, err := r.conn.DB.Query(`
		SELECT mode, COALESCE(hours, ''), COALESCE(weekdays, ''),
		       COALESCE(monthdays, ''), COALESCE(months, ''),
		       COALESCE(action, ''), COALESCE(actionid, ''), COALESCE(actionargs, '')
		FROM schedule_time
		WHERE schedule_id = ?
		ORDER BY id
	`, row.ID)
	if err != nil {
		return nil, false, fmt.Errorf("error consultando periodos del horario %d: %w", row.ID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p SchedulePeriod
		if err := rows.Scan(
			&p.Mode, &p.Hours, &p.WeekDays, &p.MonthDays, &p.Months,
			&p.Action, &p.ActionArg1, &p.ActionArg2,
		); err != nil {
			return nil, false, fmt.Errorf("error escaneando periodo: %w", err)
		}
		row.Periods = append(row.Periods, p)
	}
	return &row, true, rows.Err()
}

// GetFeatureByExten resuelve el nombre del servicio asociado a una extensión
// de servicio. Las extensiones patrón (prefijo _) casan por prefijo literal
func (r *Repository) GetFeatureByExten(exten string) (*FeatureExtension, error) {
	rows, err := r.conn.DB.Query(`
		SELECT typeval, exten, commented = 0
		FROM extensions
		WHERE context = 'xivo-features' AND type = 'extenfeatures' AND commented = 0
	`)
	if err != nil {
		return nil, fmt.Errorf("error consultando extensiones de servicio: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f FeatureExtension
		if err := rows.Scan(&f.Feature, &f.Exten, &f.Enabled); err != nil {
			return nil, fmt.Errorf("error escaneando extensión de servicio: %w", err)
		}
		if matchFeatureExten(f.Exten, exten) {
			return &f, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: extensión de servicio %s", ErrNotFound, exten)
}

// GetExtenByFeature resuelve la extensión configurada para un servicio
func (r *Repository) GetExtenByFeature(feature string) (string, error) {
	var exten string
	err := r.conn.DB.QueryRow(`
		SELECT exten
		FROM extensions
		WHERE context = 'xivo-features' AND type = 'extenfeatures'
		  AND typeval = ? AND commented = 0
	`, feature).Scan(&exten)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: servicio %s", ErrNotFound, feature)
	}
	if err != nil {
		return "", fmt.Errorf("error consultando servicio %s: %w", feature, err)
	}
	return exten, nil
}

// matchFeatureExten compara una extensión marcada contra una configurada.
// Una extensión patrón (prefijo _) casa si lo marcado empieza por la parte
// literal del patrón
func matchFeatureExten(configured, dialed string) bool {
	if strings.HasPrefix(configured, "_") {
		literal := configured[1:]
		for i, r := range literal {
			if r == 'X' || r == 'Z' || r == 'N' || r == '.' || r == '!' {
				literal = literal[:i]
				break
			}
		}
		return literal != "" && strings.HasPrefix(dialed, literal)
	}
	return configured == dialed
}

// GetAPIUser obtiene un usuario de la superficie de monitoreo
func (r *Repository) GetAPIUser(username string) (*APIUser, error) {
	query := `
		SELECT id, username, password_hash, role, created_at
		FROM agid_api_users
		WHERE username = ?
	`

	var u APIUser
	err := r.conn.DB.QueryRow(query, username).Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: usuario API %s", ErrNotFound, username)
	}
	if err != nil {
		return nil, fmt.Errorf("error consultando usuario API: %w", err)
	}
	return &u, nil
}

// GetRecentRequestLogs devuelve las últimas peticiones atendidas, de la
// más reciente a la más antigua
func (r *Repository) GetRecentRequestLogs(limit int) ([]RequestLog, error) {
	query := `
		SELECT id, script, channel, uniqueid, status, duration_ms, created_at
		FROM agid_request_log
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := r.conn.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("error consultando registro de peticiones: %w", err)
	}
	defer rows.Close()

	logs := make([]RequestLog, 0, limit)
	for rows.Next() {
		var l RequestLog
		if err := rows.Scan(&l.ID, &l.Script, &l.Channel, &l.UniqueID,
			&l.Status, &l.DurationMs, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("error escaneando registro de peticiones: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
