package repository

import (
	"context"
	"errors"
	"time"

	"digimarket/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductUpdate lists the fields a seller may change. Nil fields are left
// untouched; anything not listed here is immutable after creation.
type ProductUpdate struct {
	Name           *string
	PriceCents     *int64
	CommissionType *model.CommissionType
	CommissionRate *decimal.Decimal
	Active         *bool
	Visible        *bool
	PaymentEnabled *bool
	Category       *string
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, productID string) (*model.Product, error)
	FindBySeller(ctx context.Context, sellerID string) ([]*model.Product, error)
	Update(ctx context.Context, productID string, update *ProductUpdate) error
	Delete(ctx context.Context, productID string) error
	CountBySeller(ctx context.Context, sellerID string) (int64, error)
}

type productRepoImpl struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepoImpl{
		db: db,
	}
}

func (r *productRepoImpl) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepoImpl) FindByID(ctx context.Context, productID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", productID).
		First(&product).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func (r *productRepoImpl) FindBySeller(ctx context.Context, sellerID string) ([]*model.Product, error) {
	var products []*model.Product
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Find(&products).Error

	if err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepoImpl) Update(ctx context.Context, productID string, update *ProductUpdate) error {
	assignments := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if update.Name != nil {
		assignments["name"] = *update.Name
	}
	if update.PriceCents != nil {
		assignments["price_cents"] = *update.PriceCents
	}
	if update.CommissionType != nil {
		assignments["commission_type"] = *update.CommissionType
	}
	if update.CommissionRate != nil {
		assignments["commission_rate"] = *update.CommissionRate
	}
	if update.Active != nil {
		assignments["active"] = *update.Active
	}
	if update.Visible != nil {
		assignments["visible"] = *update.Visible
	}
	if update.PaymentEnabled != nil {
		assignments["payment_enabled"] = *update.PaymentEnabled
	}
	if update.Category != nil {
		assignments["category"] = *update.Category
	}

	result := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", productID).
		Updates(assignments)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *productRepoImpl) Delete(ctx context.Context, productID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", productID).
		Delete(&model.Product{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *productRepoImpl) CountBySeller(ctx context.Context, sellerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("seller_id = ?", sellerID).
		Count(&count).Error

	return count, err
}
