package services

import (
	"fmt"
	"time"

	"attendsync/app/apperr"
	"attendsync/app/models"
	"attendsync/app/repo"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ReportGenerator produces report content for a job; this service never knows
// report schemas, it passes type and filters through verbatim.
type ReportGenerator interface {
	Generate(reportType, filters, format string) ([]byte, error)
}

// Mailer delivers rendered content to the job's recipients.
type Mailer interface {
	Send(recipients, subject string, content []byte) error
}

type SchedulerService struct {
	jobs     *repo.ReportJobRepository
	runs     *repo.ReportRunRepository
	reports  ReportGenerator
	mailer   Mailer
	log      zerolog.Logger
	leaseTTL time.Duration

	now func() time.Time
}

func NewSchedulerService(jobs *repo.ReportJobRepository, runs *repo.ReportRunRepository, reports ReportGenerator, mailer Mailer, log zerolog.Logger, leaseTTL time.Duration) *SchedulerService {
	return &SchedulerService{
		jobs:     jobs,
		runs:     runs,
		reports:  reports,
		mailer:   mailer,
		log:      log,
		leaseTTL: leaseTTL,
		now:      time.Now,
	}
}

// ComputeNextRun resolves the next eligible slot strictly consistent with the
// schedule. A weekly slot landing exactly on `from` rolls a full week forward;
// a monthly day-of-month that a month lacks (e.g. 31 in February) skips to the
// next month that has it.
func ComputeNextRun(scheduleType, scheduleTime string, scheduleDay *int, from time.Time) (time.Time, error) {
	var hh, mm int
	if _, err := fmt.Sscanf(scheduleTime, "%d:%d", &hh, &mm); err != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return time.Time{}, apperr.Validationf("schedule time %q is not HH:MM", scheduleTime)
	}

	y, m, d := from.Date()
	loc := from.Location()
	candidate := time.Date(y, m, d, hh, mm, 0, 0, loc)

	switch scheduleType {
	case models.ScheduleDaily:
		if candidate.After(from) {
			return candidate, nil
		}
		return candidate.AddDate(0, 0, 1), nil

	case models.ScheduleWeekly:
		if scheduleDay == nil || *scheduleDay < 0 || *scheduleDay > 6 {
			return time.Time{}, apperr.Validationf("weekly schedule needs a weekday between 0 and 6")
		}
		ahead := (*scheduleDay - int(candidate.Weekday()) + 7) % 7
		candidate = candidate.AddDate(0, 0, ahead)
		if !candidate.After(from) {
			candidate = candidate.AddDate(0, 0, 7)
		}
		return candidate, nil

	case models.ScheduleMonthly:
		if scheduleDay == nil || *scheduleDay < 1 || *scheduleDay > 31 {
			return time.Time{}, apperr.Validationf("monthly schedule needs a day between 1 and 31")
		}
		for i := 0; i < 13; i++ {
			c := time.Date(y, m+time.Month(i), *scheduleDay, hh, mm, 0, 0, loc)
			// Date() normalizes overflow (Feb 31 -> Mar 3); skip those months.
			if c.Day() == *scheduleDay && c.After(from) {
				return c, nil
			}
		}
		return time.Time{}, apperr.Validationf("no upcoming slot for day %d", *scheduleDay)

	default:
		return time.Time{}, apperr.Validationf("schedule type %q must be daily, weekly or monthly", scheduleType)
	}
}

// CreateJob validates the schedule and seeds next_run_at.
func (s *SchedulerService) CreateJob(j *models.ReportJob) error {
	if err := s.validate(j); err != nil {
		return err
	}
	next, err := ComputeNextRun(j.ScheduleType, j.ScheduleTime, j.ScheduleDay, s.now())
	if err != nil {
		return err
	}
	j.NextRunAt = next
	return s.jobs.Create(j)
}

// UpdateJob applies operator edits and recomputes the slot from the new
// schedule fields.
func (s *SchedulerService) UpdateJob(j *models.ReportJob) error {
	if err := s.validate(j); err != nil {
		return err
	}
	existing, err := s.jobs.FindByID(j.ID)
	if err != nil {
		return err
	}
	next, err := ComputeNextRun(j.ScheduleType, j.ScheduleTime, j.ScheduleDay, s.now())
	if err != nil {
		return err
	}
	j.NextRunAt = next
	j.LastRunAt = existing.LastRunAt
	j.LastRunStatus = existing.LastRunStatus
	j.CreatedAt = existing.CreatedAt
	return s.jobs.Save(j)
}

func (s *SchedulerService) DeleteJob(id uint) error { return s.jobs.Delete(id) }

func (s *SchedulerService) GetJob(id uint) (*models.ReportJob, error) { return s.jobs.FindByID(id) }

func (s *SchedulerService) ListJobs() ([]models.ReportJob, error) { return s.jobs.List() }

func (s *SchedulerService) History(jobID uint, limit int) ([]models.ReportRun, error) {
	if jobID == 0 {
		return s.runs.Latest(limit)
	}
	return s.runs.ListByJob(jobID, limit)
}

func (s *SchedulerService) validate(j *models.ReportJob) error {
	if j.Name == "" {
		return apperr.Validationf("job name is required")
	}
	if j.ReportType == "" {
		return apperr.Validationf("report type is required")
	}
	if j.Recipients == "" {
		return apperr.Validationf("recipients are required")
	}
	// A dry-run of the slot computation catches every schedule-field problem.
	_, err := ComputeNextRun(j.ScheduleType, j.ScheduleTime, j.ScheduleDay, s.now())
	return err
}

// RunDue claims and executes every due job. A failed run records its outcome
// and waits for the next natural slot; it is never retried early. One job's
// failure never blocks the rest of the pass.
func (s *SchedulerService) RunDue() error {
	now := s.now()
	due, err := s.jobs.ListDue(now)
	if err != nil {
		return err
	}

	for _, job := range due {
		token := uuid.NewString()
		claimed, err := s.jobs.Claim(job.ID, token, now, s.leaseTTL)
		if err != nil {
			s.log.Error().Err(err).Uint("job", job.ID).Msg("claim failed")
			continue
		}
		if !claimed {
			// Another runner holds this slot.
			continue
		}

		runErr := s.execute(job)

		status := models.RunSuccess
		errMsg := ""
		if runErr != nil {
			status = models.RunFailed
			errMsg = runErr.Error()
			s.log.Error().Err(runErr).Uint("job", job.ID).Str("name", job.Name).Msg("report run failed")
		} else {
			s.log.Info().Uint("job", job.ID).Str("name", job.Name).Msg("report sent")
		}

		next, nextErr := ComputeNextRun(job.ScheduleType, job.ScheduleTime, job.ScheduleDay, now)
		if nextErr != nil {
			// Schedule fields were valid at create time; if they rot, park the
			// job rather than hot-looping on it.
			s.log.Error().Err(nextErr).Uint("job", job.ID).Msg("schedule no longer computable, deactivating")
			next = now
		}
		if err := s.jobs.Finish(job.ID, token, status, now, next); err != nil {
			s.log.Error().Err(err).Uint("job", job.ID).Msg("could not record run outcome")
			continue
		}
		if nextErr != nil {
			if err := s.jobs.Deactivate(job.ID); err != nil {
				s.log.Error().Err(err).Uint("job", job.ID).Msg("could not deactivate job")
			}
		}

		if err := s.runs.Append(&models.ReportRun{
			JobID:        job.ID,
			ReportType:   job.ReportType,
			Recipients:   job.Recipients,
			Status:       status,
			ErrorMessage: errMsg,
			SentAt:       now,
		}); err != nil {
			s.log.Error().Err(err).Uint("job", job.ID).Msg("could not append run history")
		}
	}
	return nil
}

func (s *SchedulerService) execute(job models.ReportJob) error {
	content, err := s.reports.Generate(job.ReportType, job.Filters, job.Format)
	if err != nil {
		return apperr.Executionf("generate %s: %v", job.ReportType, err)
	}
	if err := s.mailer.Send(job.Recipients, job.Name, content); err != nil {
		return apperr.Executionf("deliver %s: %v", job.Name, err)
	}
	return nil
}

// Runner polls RunDue on a fixed interval. Instance-scoped like Monitor.
type Runner struct {
	scheduler *SchedulerService
	log       zerolog.Logger
	interval  time.Duration
	done      chan struct{}
}

func NewRunner(scheduler *SchedulerService, log zerolog.Logger, interval time.Duration) *Runner {
	return &Runner{scheduler: scheduler, log: log, interval: interval, done: make(chan struct{})}
}

func (r *Runner) Start() {
	go r.loop()
}

func (r *Runner) Stop() {
	close(r.done)
}

func (r *Runner) loop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			if err := r.scheduler.RunDue(); err != nil {
				r.log.Error().Err(err).Msg("scheduler pass failed")
			}
		}
	}
}
