package repo

import (
	"errors"
	"time"

	"attendsync/app/apperr"
	"attendsync/app/models"

	"gorm.io/gorm"
)

type CommandRepository struct {
	db *gorm.DB
}

func NewCommandRepository(db *gorm.DB) *CommandRepository { return &CommandRepository{db: db} }

// Enqueue inserts a new pending command at the tail of a device's queue.
func (r *CommandRepository) Enqueue(serial, payload string, sequence int) (uint, error) {
	return r.EnqueueIn(r.db, serial, payload, sequence)
}

// EnqueueIn is the transactional variant: the dispatcher passes its own tx so
// queued commands commit or roll back together with the roster mutation.
func (r *CommandRepository) EnqueueIn(tx *gorm.DB, serial, payload string, sequence int) (uint, error) {
	if serial == "" {
		return 0, apperr.Validationf("device serial is required")
	}
	if payload == "" {
		return 0, apperr.Validationf("payload is required")
	}
	if sequence < 1 {
		sequence = 1
	}
	cmd := models.DeviceCommand{
		DeviceSerial: serial,
		Payload:      payload,
		Status:       models.CommandPending,
		Sequence:     sequence,
	}
	if err := tx.Create(&cmd).Error; err != nil {
		return 0, err
	}
	return cmd.ID, nil
}

// ListPending returns a device's open queue. Sequence is a soft ordering hint;
// concurrent dispatchers may interleave, so ties fall back to insertion order.
func (r *CommandRepository) ListPending(serial string) ([]models.DeviceCommand, error) {
	var cmds []models.DeviceCommand
	err := r.db.Where("device_serial = ? AND status = ?", serial, models.CommandPending).
		Order("sequence ASC, created_at ASC, id ASC").
		Find(&cmds).Error
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

// ListByDevice returns the full queue for inspection; with includeTerminal
// false only pending rows come back.
func (r *CommandRepository) ListByDevice(serial string, includeTerminal bool) ([]models.DeviceCommand, error) {
	q := r.db.Where("device_serial = ?", serial)
	if !includeTerminal {
		q = q.Where("status = ?", models.CommandPending)
	}
	var cmds []models.DeviceCommand
	if err := q.Order("id ASC").Find(&cmds).Error; err != nil {
		return nil, err
	}
	return cmds, nil
}

// MarkTerminal moves a command out of pending exactly once. The conditional
// update is the claim: with two consumers racing, one sees zero affected rows.
func (r *CommandRepository) MarkTerminal(id uint, status, response string) error {
	switch status {
	case models.CommandSuccess, models.CommandFailed, models.CommandDeadLetter:
	default:
		return apperr.Validationf("terminal status must be success, failed or dead_letter, got %q", status)
	}
	now := time.Now()
	res := r.db.Model(&models.DeviceCommand{}).
		Where("id = ? AND status = ?", id, models.CommandPending).
		Updates(map[string]any{
			"status":      status,
			"response":    response,
			"executed_at": now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var cmd models.DeviceCommand
		if err := r.db.First(&cmd, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFoundf("command %d", id)
			}
			return err
		}
		return apperr.InvalidTransitionf("command %d is already %s", id, cmd.Status)
	}
	return nil
}

// IncrementRetry records a transient delivery failure reported by the consumer;
// the command stays pending.
func (r *CommandRepository) IncrementRetry(id uint) error {
	res := r.db.Model(&models.DeviceCommand{}).
		Where("id = ? AND status = ?", id, models.CommandPending).
		Update("retry_count", gorm.Expr("retry_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.InvalidTransitionf("command %d is not pending", id)
	}
	return nil
}

func (r *CommandRepository) PendingCount(serial string) (int64, error) {
	var n int64
	err := r.db.Model(&models.DeviceCommand{}).
		Where("device_serial = ? AND status = ?", serial, models.CommandPending).
		Count(&n).Error
	return n, err
}

// TerminalStats counts terminal outcomes for one device since the given
// instant. Dead-lettered commands count as failures.
func (r *CommandRepository) TerminalStats(serial string, since time.Time) (success int64, failed int64, err error) {
	err = r.db.Model(&models.DeviceCommand{}).
		Where("device_serial = ? AND status = ? AND executed_at >= ?", serial, models.CommandSuccess, since).
		Count(&success).Error
	if err != nil {
		return 0, 0, err
	}
	err = r.db.Model(&models.DeviceCommand{}).
		Where("device_serial = ? AND status IN ? AND executed_at >= ?", serial,
			[]string{models.CommandFailed, models.CommandDeadLetter}, since).
		Count(&failed).Error
	if err != nil {
		return 0, 0, err
	}
	return success, failed, nil
}

// ConvertDeadLetters flips pending commands whose retry count reached the
// configured cap. Returns how many rows were converted.
func (r *CommandRepository) ConvertDeadLetters(retryCap int) (int64, error) {
	now := time.Now()
	res := r.db.Model(&models.DeviceCommand{}).
		Where("status = ? AND retry_count >= ?", models.CommandPending, retryCap).
		Updates(map[string]any{
			"status":      models.CommandDeadLetter,
			"response":    "retry cap reached",
			"executed_at": now,
		})
	return res.RowsAffected, res.Error
}
