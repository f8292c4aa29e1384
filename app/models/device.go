package models

import "time"

const (
	DeviceOnline  = "online"
	DeviceOffline = "offline"
)

type Device struct {
	ID           uint   `gorm:"primaryKey"`
	Serial       string `gorm:"uniqueIndex;size:191;not null"`
	Name         string `gorm:"size:255"`
	Status       string `gorm:"size:32;not null;default:offline"`
	Direction    string `gorm:"size:16;default:both"` // in | out | both
	LastActivity time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
