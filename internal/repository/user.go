package repository

import (
	"context"
	"errors"
	"time"

	"digimarket/internal/model"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, userID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// CreditBalance adds delta cents to the user's balance as a single
	// atomic update. Concurrent credits never lose updates.
	CreditBalance(ctx context.Context, tx *gorm.DB, userID string, deltaCents int64) error
	// DebitBalance subtracts delta cents, failing with ErrInsufficientBalance
	// if the result would be negative. Check and write are one statement.
	DebitBalance(ctx context.Context, tx *gorm.DB, userID string, deltaCents int64) error
	UpdatePlan(ctx context.Context, userID, planID string) error
	UpdateBillingRefs(ctx context.Context, userID, customerID, subscriptionID string) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{
		db: db,
	}
}

func (r *userRepoImpl) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepoImpl) FindByID(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("id = ?", userID).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) CreditBalance(ctx context.Context, tx *gorm.DB, userID string, deltaCents int64) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"balance_cents": gorm.Expr("balance_cents + ?", deltaCents),
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *userRepoImpl) DebitBalance(ctx context.Context, tx *gorm.DB, userID string, deltaCents int64) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND balance_cents >= ?", userID, deltaCents).
		Updates(map[string]interface{}{
			"balance_cents": gorm.Expr("balance_cents - ?", deltaCents),
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrInsufficientBalance
	}

	return nil
}

func (r *userRepoImpl) UpdatePlan(ctx context.Context, userID, planID string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("plan_id", planID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *userRepoImpl) UpdateBillingRefs(ctx context.Context, userID, customerID, subscriptionID string) error {
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"billing_customer_id":     customerID,
			"billing_subscription_id": subscriptionID,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}
