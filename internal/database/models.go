package database

import "time"

// User representa un usuario del PBX (tabla userfeatures)
type User struct {
	ID                   int     `db:"id" json:"id"`
	Firstname            string  `db:"firstname" json:"firstname"`
	Lastname             string  `db:"lastname" json:"lastname"`
	CallerID             *string `db:"callerid" json:"callerid"`
	OutCallerID          string  `db:"outcallerid" json:"outcallerid"`
	MobileNumber         string  `db:"mobilephonenumber" json:"mobilephonenumber"`
	RingSeconds          int     `db:"ringseconds" json:"ringseconds"`
	SimultCalls          int     `db:"simultcalls" json:"simultcalls"`
	EnableVoicemail      bool    `db:"enablevoicemail" json:"enablevoicemail"`
	VoicemailID          *int    `db:"voicemailid" json:"voicemailid"`
	EnableOnlineRec      bool    `db:"enableonlinerec" json:"enableonlinerec"`
	EnableUnconditional  bool    `db:"enableunc" json:"enableunc"`
	DestUnconditional    string  `db:"destunc" json:"destunc"`
	EnableBusy           bool    `db:"enablebusy" json:"enablebusy"`
	DestBusy             string  `db:"destbusy" json:"destbusy"`
	EnableRNA            bool    `db:"enablerna" json:"enablerna"`
	DestRNA              string  `db:"destrna" json:"destrna"`
	Language             string  `db:"language" json:"language"`
	MusicOnHold          string  `db:"musiconhold" json:"musiconhold"`
	PreprocessSubroutine string  `db:"preprocess_subroutine" json:"preprocess_subroutine"`
}

// VMBox representa un buzón de voz (tabla voicemail)
type VMBox struct {
	ID            int    `db:"uniqueid" json:"id"`
	Mailbox       string `db:"mailbox" json:"mailbox"`
	Context       string `db:"context" json:"context"`
	Password      string `db:"password" json:"password"`
	Email         string `db:"email" json:"email"`
	Language      string `db:"language" json:"language"`
	SkipCheckPass bool   `db:"skipcheckpass" json:"skipcheckpass"`
	Enabled       bool   `db:"enabled" json:"enabled"` // commented = 0
}

// Queue representa una cola de atención (queuefeatures + queue)
type Queue struct {
	ID                   int      `db:"id" json:"id"`
	Name                 string   `db:"name" json:"name"`
	Number               string   `db:"number" json:"number"`
	Context              string   `db:"context" json:"context"`
	Timeout              *int     `db:"timeout" json:"timeout"`
	MusicClass           *string  `db:"musicclass" json:"musicclass"`
	PreprocessSubroutine *string  `db:"preprocess_subroutine" json:"preprocess_subroutine"`
	AnnounceHoldtime     bool     `db:"announce_holdtime" json:"announce_holdtime"`
	WaitTime             *int     `db:"waittime" json:"waittime"`
	WaitRatio            *float64 `db:"waitratio" json:"waitratio"`
	URL                  string   `db:"url" json:"url"`
	AnnounceOverride     string   `db:"announceoverride" json:"announceoverride"`
	WrapupTime           *int     `db:"wrapuptime" json:"wrapuptime"`

	// Banderas que componen la cadena de opciones de la aplicación Queue
	DataQuality   bool `db:"data_quality" json:"data_quality"`
	HangupCallee  bool `db:"dtmf_hangup_callee_enabled" json:"dtmf_hangup_callee_enabled"`
	HangupCaller  bool `db:"dtmf_hangup_caller_enabled" json:"dtmf_hangup_caller_enabled"`
	Retries       bool `db:"retries" json:"retries"`
	Ring          bool `db:"ring" json:"ring"`
	TransferUser  bool `db:"dtmf_transfer_callee_enabled" json:"dtmf_transfer_callee_enabled"`
	TransferCall  bool `db:"dtmf_transfer_caller_enabled" json:"dtmf_transfer_caller_enabled"`
	RecordCallee  bool `db:"dtmf_record_callee_enabled" json:"dtmf_record_callee_enabled"`
	RecordCaller  bool `db:"dtmf_record_caller_enabled" json:"dtmf_record_caller_enabled"`
	IgnoreForward bool `db:"ignore_forward" json:"ignore_forward"`
	MarkAnswered  bool `db:"mark_answered_elsewhere" json:"mark_answered_elsewhere"`
	SetContinue   bool `db:"set_continue" json:"set_continue"`
}

// DialOptions compone la cadena de opciones que recibe la aplicación Queue
func (q *Queue) DialOptions() string {
	options := ""
	if q.DataQuality {
		options += "d"
	}
	if q.HangupCallee {
		options += "h"
	}
	if q.HangupCaller {
		options += "H"
	}
	if q.Retries {
		options += "n"
	}
	if q.Ring {
		options += "r"
	}
	if q.TransferUser {
		options += "t"
	}
	if q.TransferCall {
		options += "T"
	}
	if q.RecordCallee {
		options += "x"
	}
	if q.RecordCaller {
		options += "X"
	}
	if q.IgnoreForward {
		options += "i"
	}
	if q.MarkAnswered {
		options += "C"
	}
	if q.SetContinue {
		options += "c"
	}
	return options
}

// Agent representa un agente de cola (tabla agentfeatures)
type Agent struct {
	ID                   int    `db:"id" json:"id"`
	Number               string `db:"number" json:"number"`
	Firstname            string `db:"firstname" json:"firstname"`
	Lastname             string `db:"lastname" json:"lastname"`
	Language             string `db:"language" json:"language"`
	PreprocessSubroutine string `db:"preprocess_subroutine" json:"preprocess_subroutine"`
}

// Trunk representa una troncal resuelta a su interfaz de marcado
type Trunk struct {
	ID         int    `db:"id" json:"id"`
	Interface  string `json:"interface"`   // PJSIP/<nombre>, IAX2/<nombre> o interfaz custom
	IntfSuffix string `json:"intf_suffix"` // sufijo de marcado (solo custom)
}

// Context representa un contexto de dial-plan con sus inclusiones ordenadas
type Context struct {
	Name        string   `db:"name" json:"name"`
	DisplayName string   `db:"displayname" json:"displayname"`
	Includes    []string `json:"includes"` // el propio contexto primero
}

// Meeting representa una sala de reunión (acotada por tenant)
type Meeting struct {
	UUID       string `db:"uuid" json:"uuid"`
	TenantUUID string `db:"tenant_uuid" json:"tenant_uuid"`
	Name       string `db:"name" json:"name"`
	Number     string `db:"number" json:"number"`
}

// DID representa una entrada de llamada entrante (incall + extensions)
type DID struct {
	ID                   int    `db:"id" json:"id"`
	Exten                string `db:"exten" json:"exten"`
	Context              string `db:"context" json:"context"`
	PreprocessSubroutine string `db:"preprocess_subroutine" json:"preprocess_subroutine"`
	GreetingSound        string `db:"greeting_sound" json:"greeting_sound"`
}

// DialActionRule es la acción configurada para un evento sobre una categoría.
// La ausencia de regla se materializa como ("none", "", "")
type DialActionRule struct {
	Event       string `db:"event" json:"event"`
	Category    string `db:"category" json:"category"`
	CategoryVal string `db:"categoryval" json:"categoryval"`
	Action      string `db:"action" json:"action"`
	Arg1        string `db:"actionarg1" json:"actionarg1"`
	Arg2        string `db:"actionarg2" json:"actionarg2"`
}

// CallerIDRule es la regla de reescritura de caller-id de una entidad
type CallerIDRule struct {
	Mode          string `db:"mode" json:"mode"` // prepend, append, overwrite
	CallerDisplay string `db:"callerdisplay" json:"callerdisplay"`
}

// SchedulePeriod es un periodo crudo de horario tal como se persiste.
// Las dimensiones vacías significan "cualquiera"
type SchedulePeriod struct {
	Mode       string `db:"mode" json:"mode"` // opened | closed
	Hours      string `db:"hours" json:"hours"`
	WeekDays   string `db:"weekdays" json:"weekdays"`
	MonthDays  string `db:"monthdays" json:"monthdays"`
	Months     string `db:"months" json:"months"`
	Action     string `db:"action" json:"action"`
	ActionArg1 string `db:"actionarg1" json:"actionarg1"`
	ActionArg2 string `db:"actionarg2" json:"actionarg2"`
}

// ScheduleRow es un horario crudo con su acción por defecto y sus periodos
type ScheduleRow struct {
	ID           int              `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Timezone     string           `db:"timezone" json:"timezone"`
	ClosedAction string           `db:"fallback_action" json:"fallback_action"`
	ClosedArg1   string           `db:"fallback_actionid" json:"fallback_actionid"`
	ClosedArg2   string           `db:"fallback_actionargs" json:"fallback_actionargs"`
	Periods      []SchedulePeriod `json:"periods"`
}

// FeatureExtension es una extensión de servicio (tabla extensions, contexto features)
type FeatureExtension struct {
	Feature string `db:"feature" json:"feature"`
	Exten   string `db:"exten" json:"exten"`
	Enabled bool   `db:"enabled" json:"enabled"`
}

// APIUser es un usuario de la superficie de monitoreo del daemon
type APIUser struct {
	ID           int       `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// RequestLog registra una petición AGI atendida
type RequestLog struct {
	ID         int64     `db:"id" json:"id"`
	Script     string    `db:"script" json:"script"`
	Channel    string    `db:"channel" json:"channel"`
	UniqueID   string    `db:"uniqueid" json:"uniqueid"`
	Status     string    `db:"status" json:"status"` // done, failed, hangup
	DurationMs int       `db:"duration_ms" json:"duration_ms"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
