package session

import log "github.com/sirupsen/logrus"

// Messages reported through the notification sink. Wording is the contract
// with the host UI, which surfaces these verbatim.
const (
	MsgProjectCreated    = "project created"
	MsgProjectCreateFail = "project create failed"
	MsgProjectUpdated    = "project updated"
	MsgProjectUpdateFail = "project update failed"
	MsgTaskCreated       = "task created"
	MsgTaskCreateFail    = "task create failed"
	MsgTaskUpdated       = "task updated"
	MsgTaskUpdateFail    = "task update failed"
	MsgTaskDeleted       = "task deleted"
	MsgTaskDeleteFail    = "task delete failed"
	MsgConnected         = "connection established"
	MsgMissingConfig     = "connection missing configuration"
	MsgDataRefreshed     = "data refreshed"
	MsgRefreshFailed     = "refresh failed"
)

// Sink receives a short human-readable message for every mutation outcome,
// connection event and reload failure.
type Sink interface {
	Notify(message string)
}

// LogSink reports notifications through the application logger.
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Notify(message string) {
	s.Logger.WithField("notice", true).Info(message)
}
