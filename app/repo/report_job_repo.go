package repo

import (
	"errors"
	"time"

	"attendsync/app/apperr"
	"attendsync/app/models"

	"gorm.io/gorm"
)

type ReportJobRepository struct{ db *gorm.DB }

func NewReportJobRepository(db *gorm.DB) *ReportJobRepository { return &ReportJobRepository{db: db} }

func (r *ReportJobRepository) Create(j *models.ReportJob) error {
	return r.db.Create(j).Error
}

func (r *ReportJobRepository) Save(j *models.ReportJob) error {
	return r.db.Save(j).Error
}

func (r *ReportJobRepository) FindByID(id uint) (*models.ReportJob, error) {
	var j models.ReportJob
	if err := r.db.First(&j, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("report job %d", id)
		}
		return nil, err
	}
	return &j, nil
}

func (r *ReportJobRepository) List() ([]models.ReportJob, error) {
	var jobs []models.ReportJob
	if err := r.db.Order("id ASC").Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *ReportJobRepository) Delete(id uint) error {
	res := r.db.Delete(&models.ReportJob{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("report job %d", id)
	}
	return nil
}

func (r *ReportJobRepository) Deactivate(id uint) error {
	return r.db.Model(&models.ReportJob{}).Where("id = ?", id).Update("is_active", false).Error
}

// ListDue returns active jobs whose slot has arrived. Claiming happens per job
// afterwards; this is only the candidate scan.
func (r *ReportJobRepository) ListDue(now time.Time) ([]models.ReportJob, error) {
	var jobs []models.ReportJob
	err := r.db.Where("is_active = ? AND next_run_at <= ?", true, now).
		Order("next_run_at ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

// Claim fences a due job with a token so two runner processes cannot both
// execute the same slot. An expired lease (claimed_at older than the TTL) is
// up for grabs again. Returns false when another runner holds the job.
func (r *ReportJobRepository) Claim(id uint, token string, now time.Time, leaseTTL time.Duration) (bool, error) {
	staleBefore := now.Add(-leaseTTL)
	res := r.db.Model(&models.ReportJob{}).
		Where("id = ? AND is_active = ? AND next_run_at <= ?", id, true, now).
		Where("claim_token = '' OR claim_token IS NULL OR claimed_at < ?", staleBefore).
		Updates(map[string]any{
			"claim_token": token,
			"claimed_at":  now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Finish records the outcome of a claimed run and advances the schedule. The
// token guard means a runner that lost its lease cannot clobber the winner.
func (r *ReportJobRepository) Finish(id uint, token, status string, ranAt, nextRunAt time.Time) error {
	res := r.db.Model(&models.ReportJob{}).
		Where("id = ? AND claim_token = ?", id, token).
		Updates(map[string]any{
			"last_run_status": status,
			"last_run_at":     ranAt,
			"next_run_at":     nextRunAt,
			"claim_token":     "",
			"claimed_at":      nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.InvalidTransitionf("report job %d is not claimed by this runner", id)
	}
	return nil
}
