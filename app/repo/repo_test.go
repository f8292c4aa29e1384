package repo

import (
	"testing"

	"attendsync/app/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	// a second pooled connection would see an empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Device{},
		&models.Employee{},
		&models.DeviceCommand{},
		&models.ReportJob{},
		&models.ReportRun{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gdb
}
