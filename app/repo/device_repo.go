package repo

import (
	"errors"
	"time"

	"attendsync/app/apperr"
	"attendsync/app/models"

	"gorm.io/gorm"
)

type DeviceRepository struct{ db *gorm.DB }

func NewDeviceRepository(db *gorm.DB) *DeviceRepository { return &DeviceRepository{db: db} }

func (r *DeviceRepository) FindBySerial(serial string) (*models.Device, error) {
	var d models.Device
	if err := r.db.Where("serial = ?", serial).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFoundf("device %s", serial)
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeviceRepository) ListAll() ([]models.Device, error) {
	return r.listAll(r.db)
}

// ListAllIn reads the roster inside the caller's transaction so fan-out sees
// the same snapshot the mutation does.
func (r *DeviceRepository) ListAllIn(tx *gorm.DB) ([]models.Device, error) {
	return r.listAll(tx)
}

func (r *DeviceRepository) listAll(tx *gorm.DB) ([]models.Device, error) {
	var devices []models.Device
	if err := tx.Order("serial ASC").Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *DeviceRepository) Upsert(d *models.Device) error {
	var existing models.Device
	if err := r.db.Where("serial = ?", d.Serial).First(&existing).Error; err == nil {
		d.ID = existing.ID
		return r.db.Save(d).Error
	}
	return r.db.Create(d).Error
}

// Heartbeat records a successful communication from a terminal.
func (r *DeviceRepository) Heartbeat(serial string, at time.Time) error {
	res := r.db.Model(&models.Device{}).
		Where("serial = ?", serial).
		Updates(map[string]any{
			"status":        models.DeviceOnline,
			"last_activity": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("device %s", serial)
	}
	return nil
}

func (r *DeviceRepository) SetStatus(serial, status string) error {
	res := r.db.Model(&models.Device{}).Where("serial = ?", serial).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFoundf("device %s", serial)
	}
	return nil
}
