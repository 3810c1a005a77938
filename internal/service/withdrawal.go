package service

import (
	"context"
	"fmt"

	"digimarket/internal/model"
	"digimarket/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// minimumWithdrawalCents is the smallest amount a payout can be requested for.
const minimumWithdrawalCents = 2000

type WithdrawalService interface {
	// Request debits the user's balance and opens a pending withdrawal,
	// both in one transaction. The debit is conditional: a balance that
	// cannot cover the amount fails the request without any change.
	Request(ctx context.Context, userID string, amountCents int64) (*model.Withdrawal, error)

	// Reject credits the debited amount back, exactly as recorded at
	// request time, and moves the withdrawal to rejected.
	Reject(ctx context.Context, withdrawalID string) (*model.Withdrawal, error)

	// Complete records the external transfer reference. The balance was
	// already debited at request time, so there is no balance effect.
	Complete(ctx context.Context, withdrawalID, transferRef string) (*model.Withdrawal, error)

	ListByUser(ctx context.Context, userID string) ([]*model.Withdrawal, error)
}

type withdrawalServiceImpl struct {
	db             *gorm.DB
	userRepo       repository.UserRepository
	withdrawalRepo repository.WithdrawalRepository
	logger         *zap.Logger
}

func NewWithdrawalService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	withdrawalRepo repository.WithdrawalRepository,
	logger *zap.Logger,
) WithdrawalService {
	return &withdrawalServiceImpl{
		db:             db,
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		logger:         logger,
	}
}

func (s *withdrawalServiceImpl) Request(ctx context.Context, userID string, amountCents int64) (*model.Withdrawal, error) {
	if amountCents < minimumWithdrawalCents {
		return nil, model.ErrBelowMinimumWithdrawal
	}

	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}

	withdrawal := &model.Withdrawal{
		ID:          uuid.NewString(),
		UserID:      userID,
		AmountCents: amountCents,
		Status:      model.WithdrawalStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.userRepo.DebitBalance(ctx, tx, userID, amountCents); err != nil {
			return err
		}
		return s.withdrawalRepo.Create(ctx, tx, withdrawal)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal requested",
		zap.String("withdrawal_id", withdrawal.ID),
		zap.String("user_id", userID),
		zap.Int64("amount_cents", amountCents))

	return withdrawal, nil
}

func (s *withdrawalServiceImpl) Reject(ctx context.Context, withdrawalID string) (*model.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("resolve withdrawal %s: %w", withdrawalID, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.withdrawalRepo.Resolve(ctx, tx, withdrawal.ID, model.WithdrawalStatusRejected, ""); err != nil {
			return err
		}
		// compensate with the recorded amount, never a recomputed one
		return s.userRepo.CreditBalance(ctx, tx, withdrawal.UserID, withdrawal.AmountCents)
	})

	if err != nil {
		return nil, err
	}

	withdrawal.Status = model.WithdrawalStatusRejected

	s.logger.Info("withdrawal rejected",
		zap.String("withdrawal_id", withdrawal.ID),
		zap.String("user_id", withdrawal.UserID),
		zap.Int64("amount_cents", withdrawal.AmountCents))

	return withdrawal, nil
}

func (s *withdrawalServiceImpl) Complete(ctx context.Context, withdrawalID, transferRef string) (*model.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.FindByID(ctx, withdrawalID)
	if err != nil {
		return nil, fmt.Errorf("resolve withdrawal %s: %w", withdrawalID, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.withdrawalRepo.Resolve(ctx, tx, withdrawal.ID, model.WithdrawalStatusCompleted, transferRef)
	})

	if err != nil {
		return nil, err
	}

	withdrawal.Status = model.WithdrawalStatusCompleted
	withdrawal.TransferRef = transferRef

	s.logger.Info("withdrawal completed",
		zap.String("withdrawal_id", withdrawal.ID),
		zap.String("transfer_ref", transferRef))

	return withdrawal, nil
}

func (s *withdrawalServiceImpl) ListByUser(ctx context.Context, userID string) ([]*model.Withdrawal, error) {
	return s.withdrawalRepo.FindByUser(ctx, userID)
}
