package repository

import (
	"context"
	"errors"
	"time"

	"digimarket/internal/model"

	"gorm.io/gorm"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, tx *gorm.DB, withdrawal *model.Withdrawal) error
	FindByID(ctx context.Context, withdrawalID string) (*model.Withdrawal, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Withdrawal, error)
	// Resolve moves a pending withdrawal to completed or rejected. Only
	// pending rows match, so a withdrawal can be resolved once.
	Resolve(ctx context.Context, tx *gorm.DB, withdrawalID string, to model.WithdrawalStatus, transferRef string) error
}

type withdrawalRepoImpl struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepoImpl{
		db: db,
	}
}

func (r *withdrawalRepoImpl) Create(ctx context.Context, tx *gorm.DB, withdrawal *model.Withdrawal) error {
	return tx.WithContext(ctx).Create(withdrawal).Error
}

func (r *withdrawalRepoImpl) FindByID(ctx context.Context, withdrawalID string) (*model.Withdrawal, error) {
	var withdrawal model.Withdrawal
	err := r.db.WithContext(ctx).
		Where("id = ?", withdrawalID).
		First(&withdrawal).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &withdrawal, nil
}

func (r *withdrawalRepoImpl) FindByUser(ctx context.Context, userID string) ([]*model.Withdrawal, error) {
	var withdrawals []*model.Withdrawal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&withdrawals).Error

	if err != nil {
		return nil, err
	}

	return withdrawals, nil
}

func (r *withdrawalRepoImpl) Resolve(ctx context.Context, tx *gorm.DB, withdrawalID string, to model.WithdrawalStatus, transferRef string) error {
	result := tx.WithContext(ctx).Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, model.WithdrawalStatusPending).
		Updates(map[string]interface{}{
			"status":       to,
			"transfer_ref": transferRef,
			"updated_at":   time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrInvalidTransition
	}

	return nil
}
