package services

import (
	"attendsync/app/apperr"
	"attendsync/app/models"
	"attendsync/app/payload"
	"attendsync/app/repo"

	"gorm.io/gorm"
)

// DispatchService fans a roster change out into one queued command per
// affected employee per registered terminal. It always runs inside the
// caller's transaction: the roster mutation and the queued sync intent commit
// or roll back as one.
type DispatchService struct {
	devices  *repo.DeviceRepository
	commands *repo.CommandRepository
	enc      payload.Encoder
}

func NewDispatchService(devices *repo.DeviceRepository, commands *repo.CommandRepository, enc payload.Encoder) *DispatchService {
	return &DispatchService{devices: devices, commands: commands, enc: enc}
}

// DispatchRosterChangeIn queues an upsert-user command for every employee on
// every device. An empty roster is legal and queues nothing; an empty employee
// set is a caller bug and fails fast.
func (s *DispatchService) DispatchRosterChangeIn(tx *gorm.DB, employees []models.Employee) (int, error) {
	if len(employees) == 0 {
		return 0, apperr.Validationf("roster change affects no employees")
	}
	instructions := make([]payload.Instruction, 0, len(employees))
	for _, e := range employees {
		instructions = append(instructions, payload.UpsertUser{
			Code:       e.Code,
			Name:       e.Name,
			Privilege:  e.Privilege,
			Credential: e.Password,
			CardNumber: e.CardNumber,
		})
	}
	return s.dispatchIn(tx, instructions)
}

// DispatchRemovalIn queues a delete-user command per employee per device, used
// when employees leave the roster.
func (s *DispatchService) DispatchRemovalIn(tx *gorm.DB, employees []models.Employee) (int, error) {
	if len(employees) == 0 {
		return 0, apperr.Validationf("roster change affects no employees")
	}
	instructions := make([]payload.Instruction, 0, len(employees))
	for _, e := range employees {
		instructions = append(instructions, payload.DeleteUser{Code: e.Code})
	}
	return s.dispatchIn(tx, instructions)
}

func (s *DispatchService) dispatchIn(tx *gorm.DB, instructions []payload.Instruction) (int, error) {
	devices, err := s.devices.ListAllIn(tx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, in := range instructions {
		encoded, err := s.enc.Encode(in)
		if err != nil {
			return 0, apperr.Validationf("encode %s: %v", in.Op(), err)
		}
		for _, d := range devices {
			if _, err := s.commands.EnqueueIn(tx, d.Serial, encoded, 1); err != nil {
				return 0, err
			}
			queued++
		}
	}
	return queued, nil
}
