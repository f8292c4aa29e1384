package services

import (
	"attendsync/app/apperr"
	"attendsync/app/models"
	"attendsync/app/repo"

	"gorm.io/gorm"
)

// RosterService owns the roster mutations that require a device sync: each one
// runs in a single transaction so command rows never outlive a rolled-back
// mutation, and vice versa.
type RosterService struct {
	db        *gorm.DB
	employees *repo.EmployeeRepository
	dispatch  *DispatchService
}

func NewRosterService(db *gorm.DB, employees *repo.EmployeeRepository, dispatch *DispatchService) *RosterService {
	return &RosterService{db: db, employees: employees, dispatch: dispatch}
}

// Transfer moves employees to a new department and broadcasts their updated
// records to the fleet. Returns the number of commands queued.
func (s *RosterService) Transfer(codes []string, department string) (int, error) {
	if department == "" {
		return 0, apperr.Validationf("department is required")
	}
	return s.mutate(codes, func(tx *gorm.DB, emps []models.Employee) (int, error) {
		if _, err := s.employees.UpdateDepartmentIn(tx, codes, department); err != nil {
			return 0, err
		}
		for i := range emps {
			emps[i].Department = department
		}
		return s.dispatch.DispatchRosterChangeIn(tx, emps)
	})
}

// Resign marks employees resigned and queues their removal from every device.
func (s *RosterService) Resign(codes []string) (int, error) {
	return s.mutate(codes, func(tx *gorm.DB, emps []models.Employee) (int, error) {
		if _, err := s.employees.UpdateStatusIn(tx, codes, models.EmployeeResigned); err != nil {
			return 0, err
		}
		return s.dispatch.DispatchRemovalIn(tx, emps)
	})
}

// Rehire reactivates resigned employees and pushes their records back out.
func (s *RosterService) Rehire(codes []string) (int, error) {
	return s.mutate(codes, func(tx *gorm.DB, emps []models.Employee) (int, error) {
		if _, err := s.employees.UpdateStatusIn(tx, codes, models.EmployeeActive); err != nil {
			return 0, err
		}
		return s.dispatch.DispatchRosterChangeIn(tx, emps)
	})
}

func (s *RosterService) mutate(codes []string, fn func(tx *gorm.DB, emps []models.Employee) (int, error)) (int, error) {
	if len(codes) == 0 {
		return 0, apperr.Validationf("employee codes are required")
	}
	queued := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		emps, err := s.employees.FindByCodesIn(tx, codes)
		if err != nil {
			return err
		}
		if len(emps) != len(codes) {
			return apperr.NotFoundf("%d of %d employee codes unknown", len(codes)-len(emps), len(codes))
		}
		queued, err = fn(tx, emps)
		return err
	})
	if err != nil {
		return 0, err
	}
	return queued, nil
}
