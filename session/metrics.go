package session

import (
	"time"

	log "github.com/sirupsen/logrus"
)

type opMetrics struct {
	logger     *log.Logger
	op         string
	collection string
	start      time.Time
	remoteDur  time.Duration
	reloadDur  time.Duration
	errorStage string
}

func newOpMetrics(logger *log.Logger, op, collection string) *opMetrics {
	return &opMetrics{
		logger:     logger,
		op:         op,
		collection: collection,
		start:      time.Now(),
	}
}

func (m *opMetrics) ObserveRemote(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.remoteDur = duration
}

func (m *opMetrics) ObserveReload(duration time.Duration) {
	if duration <= 0 {
		return
	}
	m.reloadDur = duration
}

func (m *opMetrics) SetErrorStage(stage string) {
	if stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *opMetrics) Log(err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"op":         m.op,
		"collection": m.collection,
		"total_ms":   durationToMillis(time.Since(m.start)),
	}
	if m.remoteDur > 0 {
		fields["remote_ms"] = durationToMillis(m.remoteDur)
	}
	if m.reloadDur > 0 {
		fields["reload_ms"] = durationToMillis(m.reloadDur)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("session.op.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
