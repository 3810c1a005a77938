package repository

import (
	"context"
	"errors"
	"time"

	"digimarket/internal/model"

	"gorm.io/gorm"
)

type AffiliateRepository interface {
	Create(ctx context.Context, relation *model.AffiliateRelation) error
	FindByID(ctx context.Context, relationID string) (*model.AffiliateRelation, error)
	Find(ctx context.Context, affiliateID, productID string) (*model.AffiliateRelation, error)
	FindByAffiliate(ctx context.Context, affiliateID string) ([]*model.AffiliateRelation, error)
	UpdateStatus(ctx context.Context, relationID string, from, to model.RelationStatus) error
	// CountApprovedBySeller counts approved relations across all of the
	// seller's products, for plan affiliate-limit checks.
	CountApprovedBySeller(ctx context.Context, sellerID string) (int64, error)
}

type affiliateRepoImpl struct {
	db *gorm.DB
}

func NewAffiliateRepository(db *gorm.DB) AffiliateRepository {
	return &affiliateRepoImpl{
		db: db,
	}
}

func (r *affiliateRepoImpl) Create(ctx context.Context, relation *model.AffiliateRelation) error {
	return r.db.WithContext(ctx).Create(relation).Error
}

func (r *affiliateRepoImpl) FindByID(ctx context.Context, relationID string) (*model.AffiliateRelation, error) {
	var relation model.AffiliateRelation
	err := r.db.WithContext(ctx).
		Where("id = ?", relationID).
		First(&relation).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &relation, nil
}

func (r *affiliateRepoImpl) Find(ctx context.Context, affiliateID, productID string) (*model.AffiliateRelation, error) {
	var relation model.AffiliateRelation
	err := r.db.WithContext(ctx).
		Where("affiliate_id = ? AND product_id = ?", affiliateID, productID).
		First(&relation).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &relation, nil
}

func (r *affiliateRepoImpl) FindByAffiliate(ctx context.Context, affiliateID string) ([]*model.AffiliateRelation, error) {
	var relations []*model.AffiliateRelation
	err := r.db.WithContext(ctx).
		Where("affiliate_id = ?", affiliateID).
		Find(&relations).Error

	if err != nil {
		return nil, err
	}

	return relations, nil
}

func (r *affiliateRepoImpl) UpdateStatus(ctx context.Context, relationID string, from, to model.RelationStatus) error {
	result := r.db.WithContext(ctx).Model(&model.AffiliateRelation{}).
		Where("id = ? AND status = ?", relationID, from).
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

func (r *affiliateRepoImpl) CountApprovedBySeller(ctx context.Context, sellerID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.AffiliateRelation{}).
		Joins("JOIN products ON products.id = affiliate_relations.product_id").
		Where("products.seller_id = ? AND affiliate_relations.status = ?", sellerID, model.RelationStatusApproved).
		Count(&count).Error

	return count, err
}
