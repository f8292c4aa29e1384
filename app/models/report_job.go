package models

import "time"

const (
	ScheduleDaily   = "daily"
	ScheduleWeekly  = "weekly"
	ScheduleMonthly = "monthly"
)

const (
	RunSuccess = "success"
	RunFailed  = "failed"
)

// ReportJob is a recurring report subscription. NextRunAt always points at the
// next eligible slot for its schedule; ClaimToken/ClaimedAt fence concurrent
// runner processes off the same slot.
type ReportJob struct {
	ID            uint   `gorm:"primaryKey"`
	Name          string `gorm:"size:255;not null"`
	ReportType    string `gorm:"size:64;not null"`
	ScheduleType  string `gorm:"size:16;not null"` // daily | weekly | monthly
	ScheduleTime  string `gorm:"size:8;not null"`  // "HH:MM"
	ScheduleDay   *int   // weekday (0=Sunday) or day-of-month
	Recipients    string `gorm:"type:text"`
	Filters       string `gorm:"type:text"` // opaque JSON, interpreted by the report generator
	Format        string `gorm:"size:16;default:xlsx"`
	IsActive      bool   `gorm:"not null;default:true"`
	NextRunAt     time.Time
	LastRunAt     *time.Time
	LastRunStatus string `gorm:"size:16"`
	ClaimToken    string `gorm:"size:64"`
	ClaimedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReportRun is the append-only outcome trail, one row per execution attempt.
type ReportRun struct {
	ID           uint   `gorm:"primaryKey"`
	JobID        uint   `gorm:"index;not null"`
	ReportType   string `gorm:"size:64"`
	Recipients   string `gorm:"type:text"`
	Status       string `gorm:"size:16;not null"`
	ErrorMessage string `gorm:"type:text"`
	SentAt       time.Time
}
