package services

import (
	"fmt"
	"time"

	"attendsync/app/models"
	"attendsync/app/repo"

	"github.com/rs/zerolog"
)

const (
	AlertDeviceOffline   = "device_offline"
	AlertHighFailureRate = "high_failure_rate"
	AlertSyncDelayed     = "sync_delayed"
)

const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
)

type Alert struct {
	Type      string    `json:"type"`
	Severity  string    `json:"severity"`
	Device    string    `json:"device"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Notifier hands alerts to the delivery side (mail, push). Evaluation re-emits
// an alert on every pass while its condition holds; debouncing is the
// deliverer's problem.
type Notifier interface {
	Notify(Alert) error
}

type AlertService struct {
	devices  *repo.DeviceRepository
	commands *repo.CommandRepository

	now func() time.Time
}

func NewAlertService(devices *repo.DeviceRepository, commands *repo.CommandRepository) *AlertService {
	return &AlertService{devices: devices, commands: commands, now: time.Now}
}

// Evaluate runs the three threshold rules over the fleet. Rules are
// independent and can co-fire for one device. A device whose stats cannot be
// read is skipped; only the roster read itself aborts the pass.
func (s *AlertService) Evaluate() ([]Alert, error) {
	devices, err := s.devices.ListAll()
	if err != nil {
		return nil, err
	}

	now := s.now()
	alerts := []Alert{}

	for _, d := range devices {
		// Rule 1: status still claims online but the device went quiet.
		if d.Status == models.DeviceOnline && now.Sub(d.LastActivity) > 30*time.Minute {
			alerts = append(alerts, Alert{
				Type:      AlertDeviceOffline,
				Severity:  SeverityHigh,
				Device:    d.Serial,
				Message:   fmt.Sprintf("device %s has been silent for %d minutes", d.Serial, int(now.Sub(d.LastActivity).Minutes())),
				Timestamp: now,
			})
		}

		// Rule 2: failure spike in the trailing hour.
		success, failed, err := s.commands.TerminalStats(d.Serial, now.Add(-time.Hour))
		if err == nil {
			total := success + failed
			if failed > 5 && total > 0 && float64(failed)/float64(total) > 0.30 {
				alerts = append(alerts, Alert{
					Type:      AlertHighFailureRate,
					Severity:  SeverityMedium,
					Device:    d.Serial,
					Message:   fmt.Sprintf("device %s failed %d of %d commands in the last hour", d.Serial, failed, total),
					Timestamp: now,
				})
			}
		}

		// Rule 3: the queue is piling up.
		pending, err := s.commands.PendingCount(d.Serial)
		if err == nil && pending > 50 {
			alerts = append(alerts, Alert{
				Type:      AlertSyncDelayed,
				Severity:  SeverityMedium,
				Device:    d.Serial,
				Message:   fmt.Sprintf("device %s has %d commands waiting", d.Serial, pending),
				Timestamp: now,
			})
		}
	}

	return alerts, nil
}

// Monitor drives Evaluate on a fixed interval and sweeps retry-capped pending
// commands into dead_letter. Each Monitor owns its own ticker so instances
// (and tests) never collide on shared process state.
type Monitor struct {
	alerts   *AlertService
	commands *repo.CommandRepository
	notifier Notifier
	log      zerolog.Logger

	interval time.Duration
	retryCap int
	done     chan struct{}
}

func NewMonitor(alerts *AlertService, commands *repo.CommandRepository, notifier Notifier, log zerolog.Logger, interval time.Duration, retryCap int) *Monitor {
	return &Monitor{
		alerts:   alerts,
		commands: commands,
		notifier: notifier,
		log:      log,
		interval: interval,
		retryCap: retryCap,
		done:     make(chan struct{}),
	}
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	close(m.done)
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.runOnce()
		}
	}
}

func (m *Monitor) runOnce() {
	converted, err := m.commands.ConvertDeadLetters(m.retryCap)
	if err != nil {
		m.log.Error().Err(err).Msg("dead letter sweep failed")
	} else if converted > 0 {
		m.log.Warn().Int64("count", converted).Msg("commands moved to dead letter")
	}

	alerts, err := m.alerts.Evaluate()
	if err != nil {
		// DB trouble aborts this pass; the next tick retries.
		m.log.Error().Err(err).Msg("alert evaluation failed")
		return
	}
	for _, a := range alerts {
		m.log.Warn().Str("type", a.Type).Str("severity", a.Severity).Str("device", a.Device).Msg(a.Message)
		if m.notifier != nil {
			if err := m.notifier.Notify(a); err != nil {
				m.log.Error().Err(err).Str("type", a.Type).Msg("alert delivery failed")
			}
		}
	}
}
