package repository

import (
	"context"
	"errors"

	"digimarket/internal/model"

	"gorm.io/gorm"
)

type CouponRepository interface {
	Create(ctx context.Context, coupon *model.Coupon) error
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	FindBySeller(ctx context.Context, sellerID string) ([]*model.Coupon, error)
	// ConsumeUsage bumps usage_count by one, refusing to pass max_usage.
	// Check and increment are a single statement so two settlements racing
	// on the last use cannot both succeed.
	ConsumeUsage(ctx context.Context, tx *gorm.DB, couponID string) error
	Delete(ctx context.Context, couponID string) error
}

type couponRepoImpl struct {
	db *gorm.DB
}

func NewCouponRepository(db *gorm.DB) CouponRepository {
	return &couponRepoImpl{
		db: db,
	}
}

func (r *couponRepoImpl) Create(ctx context.Context, coupon *model.Coupon) error {
	return r.db.WithContext(ctx).Create(coupon).Error
}

func (r *couponRepoImpl) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ?", code).
		First(&coupon).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &coupon, nil
}

func (r *couponRepoImpl) FindBySeller(ctx context.Context, sellerID string) ([]*model.Coupon, error) {
	var coupons []*model.Coupon
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Find(&coupons).Error

	if err != nil {
		return nil, err
	}

	return coupons, nil
}

func (r *couponRepoImpl) ConsumeUsage(ctx context.Context, tx *gorm.DB, couponID string) error {
	result := tx.WithContext(ctx).Model(&model.Coupon{}).
		Where("id = ? AND (max_usage IS NULL OR usage_count < max_usage)", couponID).
		Update("usage_count", gorm.Expr("usage_count + 1"))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrCouponInvalid
	}

	return nil
}

func (r *couponRepoImpl) Delete(ctx context.Context, couponID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", couponID).
		Delete(&model.Coupon{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}
