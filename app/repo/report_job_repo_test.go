package repo

import (
	"testing"
	"time"

	"attendsync/app/models"

	"github.com/matryer/is"
)

func TestClaimFencesConcurrentRunners(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	r := NewReportJobRepository(db)

	now := time.Now()
	job := models.ReportJob{
		Name: "daily attendance", ReportType: "attendance_summary",
		ScheduleType: models.ScheduleDaily, ScheduleTime: "09:00",
		Recipients: "ops@example.com", IsActive: true,
		NextRunAt: now.Add(-time.Minute),
	}
	is.NoErr(r.Create(&job))

	lease := 10 * time.Minute
	got, err := r.Claim(job.ID, "runner-a", now, lease)
	is.NoErr(err)
	is.True(got)

	// second runner loses while the lease is fresh
	got, err = r.Claim(job.ID, "runner-b", now, lease)
	is.NoErr(err)
	is.True(!got)

	// an expired lease is up for grabs
	later := now.Add(lease + time.Minute)
	got, err = r.Claim(job.ID, "runner-b", later, lease)
	is.NoErr(err)
	is.True(got)
}

func TestFinishRequiresClaimToken(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	r := NewReportJobRepository(db)

	now := time.Now()
	job := models.ReportJob{
		Name: "weekly attendance", ReportType: "attendance_summary",
		ScheduleType: models.ScheduleWeekly, ScheduleTime: "09:00",
		Recipients: "ops@example.com", IsActive: true,
		NextRunAt: now.Add(-time.Minute),
	}
	is.NoErr(r.Create(&job))

	ok, err := r.Claim(job.ID, "runner-a", now, 10*time.Minute)
	is.NoErr(err)
	is.True(ok)

	// a runner without the token cannot record an outcome
	err = r.Finish(job.ID, "runner-b", models.RunSuccess, now, now.Add(24*time.Hour))
	is.True(err != nil)

	next := now.Add(24 * time.Hour)
	is.NoErr(r.Finish(job.ID, "runner-a", models.RunSuccess, now, next))

	fresh, err := r.FindByID(job.ID)
	is.NoErr(err)
	is.Equal(fresh.LastRunStatus, models.RunSuccess)
	is.Equal(fresh.ClaimToken, "")
	is.True(fresh.NextRunAt.Unix() == next.Unix())
}

func TestListDueSkipsInactiveAndFuture(t *testing.T) {
	is := is.New(t)
	r := NewReportJobRepository(newTestDB(t))

	now := time.Now()
	mk := func(name string, active bool, next time.Time) {
		t.Helper()
		is.NoErr(r.Create(&models.ReportJob{
			Name: name, ReportType: "attendance_summary",
			ScheduleType: models.ScheduleDaily, ScheduleTime: "09:00",
			Recipients: "ops@example.com", IsActive: active, NextRunAt: next,
		}))
	}
	mk("due", true, now.Add(-time.Minute))
	mk("future", true, now.Add(time.Hour))
	mk("inactive", false, now.Add(-time.Minute))

	due, err := r.ListDue(now)
	is.NoErr(err)
	is.Equal(len(due), 1)
	is.Equal(due[0].Name, "due")
}
