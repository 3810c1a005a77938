package service

import (
	"context"
	"fmt"
	"time"

	"digimarket/internal/dto"
	"digimarket/internal/model"
	"digimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EvaluateCoupon validates a coupon against a product and returns the
// discount in cents. Validity requires scope match (nil product scope means
// any product of the coupon's seller), remaining usage, and no expiry.
// The usage increment itself is not done here; the settlement transaction
// consumes usage atomically so the ceiling check cannot race.
func EvaluateCoupon(coupon *model.Coupon, product *model.Product, now time.Time) (int64, error) {
	if coupon.ProductID != nil {
		if *coupon.ProductID != product.ID {
			return 0, model.ErrCouponInvalid
		}
	} else if coupon.SellerID != product.SellerID {
		return 0, model.ErrCouponInvalid
	}
	if coupon.MaxUsage != nil && coupon.UsageCount >= *coupon.MaxUsage {
		return 0, model.ErrCouponInvalid
	}
	if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
		return 0, model.ErrCouponInvalid
	}

	var discount decimal.Decimal
	if coupon.Type == model.CouponPercentage {
		discount = decimal.NewFromInt(product.PriceCents).Mul(coupon.Value).Div(hundred).Round(0)
	} else {
		discount = coupon.Value.Round(0)
	}

	return discount.IntPart(), nil
}

type CouponService interface {
	Create(ctx context.Context, sellerID string, req *dto.CreateCouponRequest) (*model.Coupon, error)
	ListBySeller(ctx context.Context, sellerID string) ([]*model.Coupon, error)
	Delete(ctx context.Context, sellerID, couponID string) error
}

type couponServiceImpl struct {
	couponRepo  repository.CouponRepository
	productRepo repository.ProductRepository
	logger      *zap.Logger
}

func NewCouponService(
	couponRepo repository.CouponRepository,
	productRepo repository.ProductRepository,
	logger *zap.Logger,
) CouponService {
	return &couponServiceImpl{
		couponRepo:  couponRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

func (s *couponServiceImpl) Create(ctx context.Context, sellerID string, req *dto.CreateCouponRequest) (*model.Coupon, error) {
	couponType := model.CouponType(req.Type)
	if couponType != model.CouponPercentage && couponType != model.CouponFixed {
		return nil, fmt.Errorf("unknown coupon type %q", req.Type)
	}

	value, err := decimal.NewFromString(req.Value)
	if err != nil {
		return nil, fmt.Errorf("parse coupon value: %w", err)
	}
	if value.IsNegative() {
		return nil, fmt.Errorf("coupon value must not be negative")
	}

	// a product-scoped coupon must point at one of the seller's own products
	if req.ProductID != nil {
		product, err := s.productRepo.FindByID(ctx, *req.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve coupon product: %w", err)
		}
		if product.SellerID != sellerID {
			return nil, model.ErrForbidden
		}
	}

	coupon := &model.Coupon{
		ID:        uuid.NewString(),
		SellerID:  sellerID,
		Code:      req.Code,
		Type:      couponType,
		Value:     value,
		ProductID: req.ProductID,
		MaxUsage:  req.MaxUsage,
		ExpiresAt: req.ExpiresAt,
	}

	if err := s.couponRepo.Create(ctx, coupon); err != nil {
		return nil, fmt.Errorf("store coupon: %w", err)
	}

	s.logger.Info("coupon created",
		zap.String("coupon_id", coupon.ID),
		zap.String("seller_id", sellerID),
		zap.String("code", coupon.Code))

	return coupon, nil
}

func (s *couponServiceImpl) ListBySeller(ctx context.Context, sellerID string) ([]*model.Coupon, error) {
	return s.couponRepo.FindBySeller(ctx, sellerID)
}

func (s *couponServiceImpl) Delete(ctx context.Context, sellerID, couponID string) error {
	coupons, err := s.couponRepo.FindBySeller(ctx, sellerID)
	if err != nil {
		return fmt.Errorf("list seller coupons: %w", err)
	}

	for _, coupon := range coupons {
		if coupon.ID == couponID {
			return s.couponRepo.Delete(ctx, couponID)
		}
	}

	return model.ErrNotFound
}
