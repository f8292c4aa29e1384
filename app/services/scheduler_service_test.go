package services

import (
	"errors"
	"testing"
	"time"

	"attendsync/app/apperr"
	"attendsync/app/models"
	"attendsync/app/repo"

	"github.com/matryer/is"
	"gorm.io/gorm"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02T15:04", value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return ts
}

func intp(v int) *int { return &v }

func TestComputeNextRunDaily(t *testing.T) {
	is := is.New(t)

	// still ahead of today's slot
	next, err := ComputeNextRun(models.ScheduleDaily, "09:00", nil, mustParse(t, "2024-01-01T08:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-01-01T09:00"))

	// today's slot already passed
	next, err = ComputeNextRun(models.ScheduleDaily, "09:00", nil, mustParse(t, "2024-01-01T09:30"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-01-02T09:00"))

	// exactly on the slot rolls to tomorrow
	next, err = ComputeNextRun(models.ScheduleDaily, "09:00", nil, mustParse(t, "2024-01-01T09:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-01-02T09:00"))
}

func TestComputeNextRunWeekly(t *testing.T) {
	is := is.New(t)

	// 2024-01-01 is a Monday; exactly on the slot rolls a full week
	next, err := ComputeNextRun(models.ScheduleWeekly, "09:00", intp(1), mustParse(t, "2024-01-01T09:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-01-08T09:00"))

	// earlier the same Monday keeps today's slot
	next, err = ComputeNextRun(models.ScheduleWeekly, "09:00", intp(1), mustParse(t, "2024-01-01T07:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-01-01T09:00"))

	// from a Wednesday, next Monday is five days out
	next, err = ComputeNextRun(models.ScheduleWeekly, "09:00", intp(1), mustParse(t, "2024-01-03T12:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-01-08T09:00"))
}

func TestComputeNextRunMonthly(t *testing.T) {
	is := is.New(t)

	next, err := ComputeNextRun(models.ScheduleMonthly, "06:30", intp(15), mustParse(t, "2024-01-10T00:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-01-15T06:30"))

	// already past the 15th, roll to next month
	next, err = ComputeNextRun(models.ScheduleMonthly, "06:30", intp(15), mustParse(t, "2024-01-20T00:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-02-15T06:30"))

	// day 31 skips months that lack it
	next, err = ComputeNextRun(models.ScheduleMonthly, "06:30", intp(31), mustParse(t, "2024-02-01T00:00"))
	is.NoErr(err)
	is.Equal(next, mustParse(t, "2024-03-31T06:30"))
}

func TestComputeNextRunValidation(t *testing.T) {
	is := is.New(t)

	_, err := ComputeNextRun("hourly", "09:00", nil, time.Now())
	is.True(errors.Is(err, apperr.ErrValidation))

	_, err = ComputeNextRun(models.ScheduleDaily, "25:00", nil, time.Now())
	is.True(errors.Is(err, apperr.ErrValidation))

	_, err = ComputeNextRun(models.ScheduleWeekly, "09:00", nil, time.Now())
	is.True(errors.Is(err, apperr.ErrValidation))

	_, err = ComputeNextRun(models.ScheduleWeekly, "09:00", intp(7), time.Now())
	is.True(errors.Is(err, apperr.ErrValidation))

	_, err = ComputeNextRun(models.ScheduleMonthly, "09:00", intp(0), time.Now())
	is.True(errors.Is(err, apperr.ErrValidation))
}

type fakeGenerator struct {
	fail  bool
	calls int
}

func (g *fakeGenerator) Generate(reportType, filters, format string) ([]byte, error) {
	g.calls++
	if g.fail {
		return nil, errors.New("report backend down")
	}
	return []byte("report"), nil
}

type fakeMailer struct {
	fail  bool
	calls int
}

func (m *fakeMailer) Send(recipients, subject string, content []byte) error {
	m.calls++
	if m.fail {
		return errors.New("smtp refused")
	}
	return nil
}

func newScheduler(db *gorm.DB, gen ReportGenerator, mail Mailer) *SchedulerService {
	return NewSchedulerService(
		repo.NewReportJobRepository(db),
		repo.NewReportRunRepository(db),
		gen, mail, zerologNop(), 10*time.Minute,
	)
}

func seedDueJob(t *testing.T, s *SchedulerService, now time.Time) *models.ReportJob {
	t.Helper()
	job := &models.ReportJob{
		Name: "daily attendance", ReportType: "attendance_summary",
		ScheduleType: models.ScheduleDaily, ScheduleTime: "09:00",
		Recipients: "ops@example.com", IsActive: true,
	}
	if err := s.CreateJob(job); err != nil {
		t.Fatalf("create job: %v", err)
	}
	job.NextRunAt = now.Add(-time.Minute)
	if err := s.jobs.Save(job); err != nil {
		t.Fatalf("backdate job: %v", err)
	}
	return job
}

func TestRunDueSuccessRecordsOutcome(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	gen := &fakeGenerator{}
	mail := &fakeMailer{}
	s := newScheduler(db, gen, mail)

	now := mustParse(t, "2024-01-01T09:30")
	s.now = func() time.Time { return now }
	job := seedDueJob(t, s, now)

	is.NoErr(s.RunDue())
	is.Equal(gen.calls, 1)
	is.Equal(mail.calls, 1)

	fresh, err := s.GetJob(job.ID)
	is.NoErr(err)
	is.Equal(fresh.LastRunStatus, models.RunSuccess)
	is.True(fresh.LastRunAt != nil)
	is.True(fresh.NextRunAt.Equal(mustParse(t, "2024-01-02T09:00")))

	runs, err := s.History(job.ID, 10)
	is.NoErr(err)
	is.Equal(len(runs), 1)
	is.Equal(runs[0].Status, models.RunSuccess)
}

func TestFailedRunAdvancesWithoutEarlyRetry(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	gen := &fakeGenerator{fail: true}
	mail := &fakeMailer{}
	s := newScheduler(db, gen, mail)

	now := mustParse(t, "2024-01-01T09:30")
	s.now = func() time.Time { return now }
	job := seedDueJob(t, s, now)

	is.NoErr(s.RunDue())
	is.Equal(gen.calls, 1)
	is.Equal(mail.calls, 0)

	fresh, err := s.GetJob(job.ID)
	is.NoErr(err)
	is.Equal(fresh.LastRunStatus, models.RunFailed)
	is.True(fresh.IsActive)
	is.True(fresh.NextRunAt.Equal(mustParse(t, "2024-01-02T09:00")))

	// the failure is not retried before the next natural slot
	is.NoErr(s.RunDue())
	is.Equal(gen.calls, 1)

	runs, err := s.History(job.ID, 10)
	is.NoErr(err)
	is.Equal(len(runs), 1)
	is.Equal(runs[0].Status, models.RunFailed)
	is.True(runs[0].ErrorMessage != "")
}

func TestDeliveryFailureIsAFailedRun(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	s := newScheduler(db, &fakeGenerator{}, &fakeMailer{fail: true})

	now := mustParse(t, "2024-01-01T09:30")
	s.now = func() time.Time { return now }
	job := seedDueJob(t, s, now)

	is.NoErr(s.RunDue())

	runs, err := s.History(job.ID, 10)
	is.NoErr(err)
	is.Equal(len(runs), 1)
	is.Equal(runs[0].Status, models.RunFailed)
}

func TestRunDueSkipsJobsClaimedElsewhere(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	gen := &fakeGenerator{}
	s := newScheduler(db, gen, &fakeMailer{})

	now := mustParse(t, "2024-01-01T09:30")
	s.now = func() time.Time { return now }
	job := seedDueJob(t, s, now)

	// another runner holds a fresh lease
	claimed, err := s.jobs.Claim(job.ID, "other-runner", now, 10*time.Minute)
	is.NoErr(err)
	is.True(claimed)

	is.NoErr(s.RunDue())
	is.Equal(gen.calls, 0)
}

func TestCreateJobValidatesAndSeedsNextRun(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	s := newScheduler(db, &fakeGenerator{}, &fakeMailer{})

	now := mustParse(t, "2024-01-01T08:00")
	s.now = func() time.Time { return now }

	job := &models.ReportJob{
		Name: "late arrivals", ReportType: "late_list",
		ScheduleType: models.ScheduleDaily, ScheduleTime: "09:00",
		Recipients: "hr@example.com", IsActive: true,
	}
	is.NoErr(s.CreateJob(job))
	is.Equal(job.NextRunAt, mustParse(t, "2024-01-01T09:00"))

	bad := &models.ReportJob{
		Name: "broken", ReportType: "late_list",
		ScheduleType: models.ScheduleWeekly, ScheduleTime: "09:00",
		Recipients: "hr@example.com",
	}
	err := s.CreateJob(bad)
	is.True(errors.Is(err, apperr.ErrValidation)) // weekly without a weekday

	missing := &models.ReportJob{ReportType: "late_list", ScheduleType: models.ScheduleDaily, ScheduleTime: "09:00"}
	err = s.CreateJob(missing)
	is.True(errors.Is(err, apperr.ErrValidation))
}

func TestUpdateJobRecomputesSlotAndKeepsHistory(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	s := newScheduler(db, &fakeGenerator{}, &fakeMailer{})

	now := mustParse(t, "2024-01-01T09:30")
	s.now = func() time.Time { return now }
	job := seedDueJob(t, s, now)

	is.NoErr(s.RunDue())

	edited := *job
	edited.ScheduleTime = "18:00"
	is.NoErr(s.UpdateJob(&edited))

	fresh, err := s.GetJob(job.ID)
	is.NoErr(err)
	is.True(fresh.NextRunAt.Equal(mustParse(t, "2024-01-01T18:00")))
	is.Equal(fresh.LastRunStatus, models.RunSuccess) // survives the edit
}
