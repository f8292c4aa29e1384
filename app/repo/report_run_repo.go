package repo

import (
	"attendsync/app/models"

	"gorm.io/gorm"
)

type ReportRunRepository struct{ db *gorm.DB }

func NewReportRunRepository(db *gorm.DB) *ReportRunRepository { return &ReportRunRepository{db: db} }

func (r *ReportRunRepository) Append(run *models.ReportRun) error {
	return r.db.Create(run).Error
}

func (r *ReportRunRepository) ListByJob(jobID uint, limit int) ([]models.ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []models.ReportRun
	err := r.db.Where("job_id = ?", jobID).Order("id DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *ReportRunRepository) Latest(limit int) ([]models.ReportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []models.ReportRun
	if err := r.db.Order("id DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}
