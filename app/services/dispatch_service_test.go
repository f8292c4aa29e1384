package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"attendsync/app/apperr"
	"attendsync/app/models"
	"attendsync/app/payload"
	"attendsync/app/repo"

	"github.com/matryer/is"
	"gorm.io/gorm"
)

func seedFleet(t *testing.T, db *gorm.DB, devices, employees int) {
	t.Helper()
	for i := 1; i <= devices; i++ {
		d := models.Device{Serial: fmt.Sprintf("T-%d", i), Name: fmt.Sprintf("Gate %d", i), Status: models.DeviceOnline, LastActivity: time.Now()}
		if err := db.Create(&d).Error; err != nil {
			t.Fatalf("seed device: %v", err)
		}
	}
	for i := 1; i <= employees; i++ {
		e := models.Employee{Code: fmt.Sprintf("%04d", i), Name: fmt.Sprintf("Employee %d", i), Department: "Assembly", Status: models.EmployeeActive}
		if err := db.Create(&e).Error; err != nil {
			t.Fatalf("seed employee: %v", err)
		}
	}
}

func newDispatch(db *gorm.DB) (*DispatchService, *repo.CommandRepository) {
	commands := repo.NewCommandRepository(db)
	return NewDispatchService(repo.NewDeviceRepository(db), commands, payload.LineEncoder{}), commands
}

func TestFanOutCrossProduct(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	seedFleet(t, db, 4, 3)
	dispatch, _ := newDispatch(db)

	var emps []models.Employee
	is.NoErr(db.Find(&emps).Error)

	var queued int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		queued, err = dispatch.DispatchRosterChangeIn(tx, emps)
		return err
	})
	is.NoErr(err)
	is.Equal(queued, 12) // 3 employees x 4 devices

	var n int64
	is.NoErr(db.Model(&models.DeviceCommand{}).Where("status = ?", models.CommandPending).Count(&n).Error)
	is.Equal(n, int64(12))

	// every command carries the employee's encoded record
	var cmd models.DeviceCommand
	is.NoErr(db.First(&cmd).Error)
	is.True(strings.HasPrefix(cmd.Payload, "OP=UPSERT_USER"))
}

func TestFanOutRollsBackWithCaller(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	seedFleet(t, db, 4, 3)
	dispatch, _ := newDispatch(db)

	var emps []models.Employee
	is.NoErr(db.Find(&emps).Error)

	boom := errors.New("roster mutation failed")
	err := db.Transaction(func(tx *gorm.DB) error {
		queued, err := dispatch.DispatchRosterChangeIn(tx, emps)
		is.NoErr(err)
		is.Equal(queued, 12)
		return boom
	})
	is.True(errors.Is(err, boom))

	var n int64
	is.NoErr(db.Model(&models.DeviceCommand{}).Count(&n).Error)
	is.Equal(n, int64(0)) // nothing survives the rollback
}

func TestFanOutRejectsEmptyEmployeeSet(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	seedFleet(t, db, 2, 0)
	dispatch, _ := newDispatch(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := dispatch.DispatchRosterChangeIn(tx, nil)
		return err
	})
	is.True(errors.Is(err, apperr.ErrValidation))
}

func TestFanOutWithEmptyRosterQueuesNothing(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	seedFleet(t, db, 0, 2)
	dispatch, _ := newDispatch(db)

	var emps []models.Employee
	is.NoErr(db.Find(&emps).Error)

	var queued int
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		queued, err = dispatch.DispatchRosterChangeIn(tx, emps)
		return err
	})
	is.NoErr(err)
	is.Equal(queued, 0)
}

func TestTransferMutatesAndDispatchesAtomically(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	seedFleet(t, db, 2, 2)
	dispatch, _ := newDispatch(db)
	roster := NewRosterService(db, repo.NewEmployeeRepository(db), dispatch)

	queued, err := roster.Transfer([]string{"0001", "0002"}, "Quality")
	is.NoErr(err)
	is.Equal(queued, 4)

	var e models.Employee
	is.NoErr(db.Where("code = ?", "0001").First(&e).Error)
	is.Equal(e.Department, "Quality")
}

func TestTransferUnknownCodeRollsBack(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	seedFleet(t, db, 2, 1)
	dispatch, _ := newDispatch(db)
	roster := NewRosterService(db, repo.NewEmployeeRepository(db), dispatch)

	_, err := roster.Transfer([]string{"0001", "9999"}, "Quality")
	is.True(errors.Is(err, apperr.ErrNotFound))

	var e models.Employee
	is.NoErr(db.Where("code = ?", "0001").First(&e).Error)
	is.Equal(e.Department, "Assembly") // untouched

	var n int64
	is.NoErr(db.Model(&models.DeviceCommand{}).Count(&n).Error)
	is.Equal(n, int64(0))
}

func TestResignDispatchesRemovals(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	seedFleet(t, db, 3, 1)
	dispatch, _ := newDispatch(db)
	roster := NewRosterService(db, repo.NewEmployeeRepository(db), dispatch)

	queued, err := roster.Resign([]string{"0001"})
	is.NoErr(err)
	is.Equal(queued, 3)

	var e models.Employee
	is.NoErr(db.Where("code = ?", "0001").First(&e).Error)
	is.Equal(e.Status, models.EmployeeResigned)

	var cmd models.DeviceCommand
	is.NoErr(db.First(&cmd).Error)
	is.Equal(cmd.Payload, "OP=DELETE_USER\nCODE=0001")
}

func TestRosterChangeRequiresCodes(t *testing.T) {
	is := is.New(t)
	db := newTestDB(t)
	dispatch, _ := newDispatch(db)
	roster := NewRosterService(db, repo.NewEmployeeRepository(db), dispatch)

	_, err := roster.Transfer(nil, "Quality")
	is.True(errors.Is(err, apperr.ErrValidation))

	_, err = roster.Transfer([]string{"0001"}, "")
	is.True(errors.Is(err, apperr.ErrValidation))

	_, err = roster.Resign(nil)
	is.True(errors.Is(err, apperr.ErrValidation))
}
