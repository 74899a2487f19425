package agid

// NewRegistry construye el mapa estático de scripts a handlers. Se crea una
// sola vez en el arranque y se pasa por referencia al despachador
func NewRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"incoming_queue_set_features": incomingQueueSetFeatures,
		"holdtime_announce":           holdtimeAnnounce,
		"check_diversion":             checkDiversion,
		"check_schedule":              checkSchedule,
		"incoming_did_set_features":   incomingDIDSetFeatures,
		"phone_progfunckey":           phoneProgfunckey,
		"callerid_extend":             calleridExtend,
		"get_user_interfaces":         getUserInterfaces,
		"wake_mobile":                 wakeMobile,
		"user_toggle_feature":         userToggleFeature,
		"meeting_name":                meetingName,
		"agent_get_status":            agentGetStatus,
	}
}
