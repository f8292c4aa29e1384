package models

import "time"

const (
	CommandPending    = "pending"
	CommandSuccess    = "success"
	CommandFailed     = "failed"
	CommandDeadLetter = "dead_letter"
)

// DeviceCommand is one row of the outbound sync queue. Rows are never deleted;
// the table doubles as a permanent audit log of everything pushed at a terminal.
type DeviceCommand struct {
	ID           uint   `gorm:"primaryKey"`
	DeviceSerial string `gorm:"index;size:191;not null"`
	Payload      string `gorm:"type:text;not null"`
	Status       string `gorm:"index;size:32;not null;default:pending"`
	Sequence     int    `gorm:"not null;default:1"`
	RetryCount   int    `gorm:"not null;default:0"`
	Response     string `gorm:"type:text"`
	CreatedAt    time.Time
	ExecutedAt   *time.Time
}
