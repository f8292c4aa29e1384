package services

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

// LogNotifier is the default alert sink when no delivery transport is wired.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(a Alert) error {
	n.Log.Warn().
		Str("type", a.Type).
		Str("severity", a.Severity).
		Str("device", a.Device).
		Time("at", a.Timestamp).
		Msg(a.Message)
	return nil
}

// StubReportGenerator stands in until a real reporting backend is attached.
// It emits a minimal JSON envelope so scheduled runs remain observable
// end to end.
type StubReportGenerator struct{}

func (StubReportGenerator) Generate(reportType, filters, format string) ([]byte, error) {
	return json.Marshal(map[string]string{
		"report_type": reportType,
		"filters":     filters,
		"format":      format,
	})
}

// LogMailer logs instead of sending; outbound email transport lives outside
// this service.
type LogMailer struct {
	Log zerolog.Logger
}

func (m LogMailer) Send(recipients, subject string, content []byte) error {
	m.Log.Info().
		Str("recipients", recipients).
		Str("subject", subject).
		Int("bytes", len(content)).
		Msg("report delivered")
	return nil
}
