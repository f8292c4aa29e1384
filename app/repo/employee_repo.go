package repo

import (
	"errors"

	"attendsync/app/apperr"
	"attendsync/app/models"

	"gorm.io/gorm"
)

type EmployeeRepository struct{ db *gorm.DB }

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository { return &EmployeeRepository{db: db} }

func (r *EmployeeRepository) Create(e *models.Employee) error {
	return r.db.Create(e).Error
}

func (r *EmployeeRepository) FindByCode(code string) (*models.Employee, error) {
	var e models.Employee
	if err := r.db.Where("code = ?", code).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("employee %s", code)
		}
		return nil, err
	}
	return &e, nil
}

func (r *EmployeeRepository) FindByCodesIn(tx *gorm.DB, codes []string) ([]models.Employee, error) {
	var emps []models.Employee
	if err := tx.Where("code IN ?", codes).Find(&emps).Error; err != nil {
		return nil, err
	}
	return emps, nil
}

func (r *EmployeeRepository) List() ([]models.Employee, error) {
	var emps []models.Employee
	if err := r.db.Order("code ASC").Find(&emps).Error; err != nil {
		return nil, err
	}
	return emps, nil
}

func (r *EmployeeRepository) UpdateDepartmentIn(tx *gorm.DB, codes []string, department string) (int64, error) {
	res := tx.Model(&models.Employee{}).Where("code IN ?", codes).Update("department", department)
	return res.RowsAffected, res.Error
}

func (r *EmployeeRepository) UpdateStatusIn(tx *gorm.DB, codes []string, status string) (int64, error) {
	res := tx.Model(&models.Employee{}).Where("code IN ?", codes).Update("status", status)
	return res.RowsAffected, res.Error
}
