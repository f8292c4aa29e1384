package services

import (
	"errors"
	"math"
	"time"

	"attendsync/app/apperr"
	"attendsync/app/models"
	"attendsync/app/repo"
)

const (
	HealthHealthy  = "healthy"
	HealthWarning  = "warning"
	HealthCritical = "critical"
	HealthOffline  = "offline"
)

// HealthFactors is the per-factor breakdown behind a score. Caps: online 30,
// recency 25, success rate 25, backlog 20.
type HealthFactors struct {
	Online      int `json:"online"`
	Recency     int `json:"recency"`
	SuccessRate int `json:"success_rate"`
	Backlog     int `json:"backlog"`
}

type HealthAssessment struct {
	DeviceSerial string        `json:"device_serial"`
	Score        int           `json:"score"`
	Status       string        `json:"status"`
	Factors      HealthFactors `json:"factors"`
}

// HealthCache is satisfied by the redis-backed cache; a nil cache disables it.
type HealthCache interface {
	Get(serial string) (*HealthAssessment, bool)
	Put(a HealthAssessment)
}

type HealthService struct {
	devices  *repo.DeviceRepository
	commands *repo.CommandRepository
	cache    HealthCache

	now func() time.Time
}

func NewHealthService(devices *repo.DeviceRepository, commands *repo.CommandRepository, cache HealthCache) *HealthService {
	return &HealthService{devices: devices, commands: commands, cache: cache, now: time.Now}
}

// Score computes a device's composite health. Health reads never fail the
// caller: an unknown device comes back as a zero-score offline assessment.
func (s *HealthService) Score(serial string) (HealthAssessment, error) {
	if s.cache != nil {
		if a, ok := s.cache.Get(serial); ok {
			return *a, nil
		}
	}

	dev, err := s.devices.FindBySerial(serial)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return HealthAssessment{DeviceSerial: serial, Status: HealthOffline}, nil
		}
		return HealthAssessment{}, err
	}

	a, err := s.assess(*dev)
	if err != nil {
		return HealthAssessment{}, err
	}
	if s.cache != nil {
		s.cache.Put(a)
	}
	return a, nil
}

// ScoreAll assesses every registered device. One device's failure only drops
// that device from the result.
func (s *HealthService) ScoreAll() ([]HealthAssessment, error) {
	devices, err := s.devices.ListAll()
	if err != nil {
		return nil, err
	}
	out := make([]HealthAssessment, 0, len(devices))
	for _, d := range devices {
		a, err := s.assess(d)
		if err != nil {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *HealthService) assess(dev models.Device) (HealthAssessment, error) {
	now := s.now()
	var f HealthFactors

	if dev.Status == models.DeviceOnline {
		f.Online = 30
	}

	f.Recency = recencyFactor(now.Sub(dev.LastActivity))

	success, failed, err := s.commands.TerminalStats(dev.Serial, now.Add(-24*time.Hour))
	if err != nil {
		return HealthAssessment{}, err
	}
	f.SuccessRate = successRateFactor(success, failed)

	pending, err := s.commands.PendingCount(dev.Serial)
	if err != nil {
		return HealthAssessment{}, err
	}
	f.Backlog = backlogFactor(pending)

	score := f.Online + f.Recency + f.SuccessRate + f.Backlog

	status := HealthOffline
	if dev.Status == models.DeviceOnline {
		switch {
		case score >= 80:
			status = HealthHealthy
		case score >= 50:
			status = HealthWarning
		default:
			status = HealthCritical
		}
	}

	return HealthAssessment{DeviceSerial: dev.Serial, Score: score, Status: status, Factors: f}, nil
}

// recencyFactor is a step function, not linear decay: a quiet device should
// not score like a dead one.
func recencyFactor(sinceActivity time.Duration) int {
	switch {
	case sinceActivity <= 5*time.Minute:
		return 25
	case sinceActivity <= 15*time.Minute:
		return 20
	case sinceActivity <= 30*time.Minute:
		return 10
	default:
		return 0
	}
}

// successRateFactor defaults to the full 25 when the window holds no terminal
// commands: absence of evidence is not evidence of failure.
func successRateFactor(success, failed int64) int {
	total := success + failed
	if total == 0 {
		return 25
	}
	return int(math.Round(25 * float64(success) / float64(total)))
}

func backlogFactor(pending int64) int {
	switch {
	case pending > 100:
		return 0
	case pending > 50:
		return 5
	case pending > 20:
		return 10
	case pending > 10:
		return 15
	default:
		return 20
	}
}
