package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/andreatascato-rgb/gestione-magazzino/internal/dto"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/model"
	"github.com/andreatascato-rgb/gestione-magazzino/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// registerDetailMovements is how many movements a register detail embeds.
const registerDetailMovements = 50

type CashService interface {
	CreateRegister(ctx context.Context, req dto.CreateCashRegisterRequest) (*dto.CashRegisterResponse, error)
	GetRegister(ctx context.Context, id string) (*dto.CashRegisterResponse, error)
	ListRegisters(ctx context.Context) ([]dto.CashRegisterResponse, error)
	RenameRegister(ctx context.Context, id string, req dto.UpdateCashRegisterRequest) (*dto.CashRegisterResponse, error)
	DeleteRegister(ctx context.Context, id string) error

	RecordMovement(ctx context.Context, req dto.CreateCashMovementRequest) (*dto.CashMovementResponse, error)
	ListMovements(ctx context.Context, filter dto.CashMovementFilter) ([]dto.CashMovementResponse, error)
}

type cashService struct {
	repo   repository.CashRepository
	limits ListLimits
	now    func() time.Time
}

func NewCashService(repo repository.CashRepository, limits ListLimits) CashService {
	return &cashService{repo: repo, limits: limits, now: time.Now}
}

func (s *cashService) CreateRegister(ctx context.Context, req dto.CreateCashRegisterRequest) (*dto.CashRegisterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}
	if req.InitialBalance.IsNegative() {
		return nil, newError(ErrValidation, "initialBalance must not be negative")
	}
	if err := checkCents(req.InitialBalance, "initialBalance"); err != nil {
		return nil, err
	}
	reg := &model.CashRegister{
		Name:           name,
		InitialBalance: req.InitialBalance,
		CurrentBalance: req.InitialBalance,
	}
	if err := s.repo.CreateRegister(ctx, reg); err != nil {
		return nil, err
	}
	resp := mapCashRegister(*reg)
	return &resp, nil
}

func (s *cashService) GetRegister(ctx context.Context, rawID string) (*dto.CashRegisterResponse, error) {
	id, err := parseEntityID(rawID, "cash register")
	if err != nil {
		return nil, err
	}
	reg, err := s.repo.FindRegisterWithMovements(ctx, id, registerDetailMovements)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "cash register not found")
		}
		return nil, err
	}
	resp := mapCashRegister(*reg)
	return &resp, nil
}

func (s *cashService) ListRegisters(ctx context.Context) ([]dto.CashRegisterResponse, error) {
	list, err := s.repo.ListRegisters(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]dto.CashRegisterResponse, 0, len(list))
	for _, r := range list {
		result = append(result, mapCashRegister(r))
	}
	return result, nil
}

func (s *cashService) RenameRegister(ctx context.Context, rawID string, req dto.UpdateCashRegisterRequest) (*dto.CashRegisterResponse, error) {
	id, err := parseEntityID(rawID, "cash register")
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, newError(ErrValidation, "name is required")
	}
	reg, err := s.repo.RenameRegister(ctx, id, name)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "cash register not found")
		}
		return nil, err
	}
	resp := mapCashRegister(*reg)
	return &resp, nil
}

func (s *cashService) DeleteRegister(ctx context.Context, rawID string) error {
	id, err := parseEntityID(rawID, "cash register")
	if err != nil {
		return err
	}
	used, err := s.repo.HasMovements(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return newError(ErrInUse, "cash register has movements and cannot be deleted")
	}
	if err := s.repo.DeleteRegister(ctx, id); err != nil {
		switch {
		case repository.IsNotFound(err):
			return newError(ErrNotFound, "cash register not found")
		case repository.IsForeignKeyViolation(err):
			return newError(ErrInUse, "cash register has movements and cannot be deleted")
		}
		return err
	}
	return nil
}

// RecordMovement appends a cash movement and moves the register balance by
// its signed amount in one transaction. The balance is incremented in SQL
// and validated afterwards; a negative result rolls everything back.
func (s *cashService) RecordMovement(ctx context.Context, req dto.CreateCashMovementRequest) (*dto.CashMovementResponse, error) {
	registerID, err := parseRefID(req.CashRegisterID, "cashRegisterId")
	if err != nil {
		return nil, err
	}
	movType := model.MovementType(strings.TrimSpace(req.Type))
	if !movType.Valid() {
		return nil, newError(ErrValidation, "type must be IN or OUT")
	}
	if !req.Amount.IsPositive() {
		return nil, newError(ErrValidation, "amount must be greater than zero")
	}
	if err := checkCents(req.Amount, "amount"); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindRegisterByID(ctx, registerID); err != nil {
		if repository.IsNotFound(err) {
			return nil, newError(ErrNotFound, "cash register not found")
		}
		return nil, err
	}

	date := s.now()
	if req.Date != nil {
		date = req.Date.Time
	}
	mov := &model.CashMovement{
		CashRegisterID: registerID,
		Type:           movType,
		Amount:         req.Amount,
		Description:    trimmedOrNil(req.Description),
		Date:           date,
	}

	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.CreateMovementTx(tx, mov); err != nil {
			return err
		}
		reg, err := s.repo.ApplyDeltaTx(tx, registerID, mov.Delta())
		if err != nil {
			return err
		}
		if reg.CurrentBalance.IsNegative() {
			return newError(ErrInsufficientBalance,
				"insufficient balance: available %s, requested %s",
				reg.CurrentBalance.Add(mov.Amount).StringFixed(2), mov.Amount.StringFixed(2))
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			return nil, err
		}
		if repository.IsNotFound(err) || repository.IsForeignKeyViolation(err) {
			return nil, newError(ErrNotFound, "cash register not found")
		}
		return nil, err
	}

	log.Info().
		Str("movement_id", mov.ID.String()).
		Str("cash_register_id", registerID.String()).
		Str("type", string(movType)).
		Str("amount", mov.Amount.StringFixed(2)).
		Msg("cash movement recorded")

	resp := mapCashMovement(*mov)
	return &resp, nil
}

func (s *cashService) ListMovements(ctx context.Context, filter dto.CashMovementFilter) ([]dto.CashMovementResponse, error) {
	registerID, err := optionalRefID(filter.CashRegisterID, "cashRegisterId")
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListMovements(ctx, repository.CashMovementFilter{
		CashRegisterID: registerID,
		Limit:          s.limits.Resolve(filter.Limit),
	})
	if err != nil {
		return nil, err
	}
	result := make([]dto.CashMovementResponse, 0, len(list))
	for _, m := range list {
		result = append(result, mapCashMovement(m))
	}
	return result, nil
}
