package repository

import (
	"context"
	"errors"

	"digimarket/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FreePlanID is the plan every user starts on.
const FreePlanID = "plan_free"

func limit(n int64) *int64 { return &n }

type PlanRepository interface {
	Seed(ctx context.Context) error
	FindByID(ctx context.Context, planID string) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
}

type planRepoImpl struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepoImpl{
		db: db,
	}
}

func (r *planRepoImpl) Seed(ctx context.Context) error {
	plans := []model.Plan{
		{ID: FreePlanID, Name: "Free", PriceCents: 0, ProductLimit: limit(3), AffiliateLimit: limit(3), PlatformFeePercent: decimal.NewFromInt(9), SupportTier: "community"},
		{ID: "plan_start", Name: "Start", PriceCents: 2900, ProductLimit: limit(10), AffiliateLimit: limit(10), PlatformFeePercent: decimal.NewFromInt(8), SupportTier: "email"},
		{ID: "plan_pro", Name: "Pro", PriceCents: 4900, ProductLimit: limit(50), AffiliateLimit: limit(50), PlatformFeePercent: decimal.NewFromInt(7), SupportTier: "priority", Highlight: true},
		{ID: "plan_master", Name: "Master", PriceCents: 9900, ProductLimit: limit(200), AffiliateLimit: limit(200), PlatformFeePercent: decimal.NewFromInt(6), SupportTier: "priority"},
		{ID: "plan_infinity", Name: "Infinity", PriceCents: 19900, PlatformFeePercent: decimal.NewFromInt(5), SupportTier: "dedicated"},
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&plans).Error
}

func (r *planRepoImpl) FindByID(ctx context.Context, planID string) (*model.Plan, error) {
	var plan model.Plan
	err := r.db.WithContext(ctx).
		Where("id = ?", planID).
		First(&plan).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *planRepoImpl) List(ctx context.Context) ([]*model.Plan, error) {
	var plans []*model.Plan
	err := r.db.WithContext(ctx).
		Order("price_cents ASC").
		Find(&plans).Error

	if err != nil {
		return nil, err
	}

	return plans, nil
}
