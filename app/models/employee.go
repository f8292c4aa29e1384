package models

import "time"

const (
	EmployeeActive   = "active"
	EmployeeResigned = "resigned"
)

type Employee struct {
	ID         uint   `gorm:"primaryKey"`
	Code       string `gorm:"uniqueIndex;size:191;not null"`
	Name       string `gorm:"size:255;not null"`
	Privilege  int    `gorm:"not null;default:0"`
	Password   string `gorm:"size:64"` // terminal credential, not an account password
	CardNumber string `gorm:"size:64"`
	Department string `gorm:"index;size:191"`
	Status     string `gorm:"size:32;not null;default:active"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
