package repository

import (
	"context"
	"errors"
	"time"

	"digimarket/internal/model"

	"gorm.io/gorm"
)

type SaleRepository interface {
	Create(ctx context.Context, tx *gorm.DB, sale *model.Sale) error
	FindByID(ctx context.Context, saleID string) (*model.Sale, error)
	FindByPaymentRef(ctx context.Context, paymentRef string) (*model.Sale, error)
	FindBySeller(ctx context.Context, sellerID string) ([]*model.Sale, error)
	// UpdateStatus transitions a sale, guarded on its current status.
	UpdateStatus(ctx context.Context, tx *gorm.DB, saleID string, from, to model.SaleStatus) error
}

type saleRepoImpl struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepoImpl{
		db: db,
	}
}

func (r *saleRepoImpl) Create(ctx context.Context, tx *gorm.DB, sale *model.Sale) error {
	err := tx.WithContext(ctx).Create(sale).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return model.ErrDuplicatePayment
	}

	return err
}

func (r *saleRepoImpl) FindByID(ctx context.Context, saleID string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Where("id = ?", saleID).
		First(&sale).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &sale, nil
}

func (r *saleRepoImpl) FindByPaymentRef(ctx context.Context, paymentRef string) (*model.Sale, error) {
	var sale model.Sale
	err := r.db.WithContext(ctx).
		Where("payment_ref = ?", paymentRef).
		First(&sale).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &sale, nil
}

func (r *saleRepoImpl) FindBySeller(ctx context.Context, sellerID string) ([]*model.Sale, error) {
	var sales []*model.Sale
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&sales).Error

	if err != nil {
		return nil, err
	}

	return sales, nil
}

func (r *saleRepoImpl) UpdateStatus(ctx context.Context, tx *gorm.DB, saleID string, from, to model.SaleStatus) error {
	result := tx.WithContext(ctx).Model(&model.Sale{}).
		Where("id = ? AND status = ?", saleID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrInvalidTransition
	}

	return nil
}
