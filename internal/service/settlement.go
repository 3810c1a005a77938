package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digimarket/internal/dto"
	"digimarket/internal/model"
	"digimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SettlementService interface {
	// Settle turns a trusted payment event into balance credits and a
	// completed Sale record, atomically. Replaying an event returns
	// ErrDuplicatePayment and changes nothing.
	Settle(ctx context.Context, event *dto.PaymentEvent) (*model.Sale, error)

	// Refund reverses a completed sale: debits the credited parties by
	// exactly their recorded shares and flips the sale to refunded.
	Refund(ctx context.Context, saleID string) (*model.Sale, error)
}

type settlementServiceImpl struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	planRepo      repository.PlanRepository
	productRepo   repository.ProductRepository
	couponRepo    repository.CouponRepository
	saleRepo      repository.SaleRepository
	affiliateRepo repository.AffiliateRepository
	eventRepo     repository.PaymentEventRepository
	logger        *zap.Logger
}

func NewSettlementService(
	db *gorm.DB,
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	productRepo repository.ProductRepository,
	couponRepo repository.CouponRepository,
	saleRepo repository.SaleRepository,
	affiliateRepo repository.AffiliateRepository,
	eventRepo repository.PaymentEventRepository,
	logger *zap.Logger,
) SettlementService {
	return &settlementServiceImpl{
		db:            db,
		userRepo:      userRepo,
		planRepo:      planRepo,
		productRepo:   productRepo,
		couponRepo:    couponRepo,
		saleRepo:      saleRepo,
		affiliateRepo: affiliateRepo,
		eventRepo:     eventRepo,
		logger:        logger,
	}
}

func (s *settlementServiceImpl) Settle(ctx context.Context, event *dto.PaymentEvent) (*model.Sale, error) {
	processed, err := s.eventRepo.Exists(ctx, event.EventID)
	if err != nil {
		return nil, fmt.Errorf("check payment event: %w", err)
	}
	if processed {
		return nil, model.ErrDuplicatePayment
	}

	product, err := s.productRepo.FindByID(ctx, event.ProductID)
	if err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", event.ProductID, err)
	}

	seller, err := s.userRepo.FindByID(ctx, product.SellerID)
	if err != nil {
		return nil, fmt.Errorf("resolve seller %s: %w", product.SellerID, err)
	}

	feePercent, err := s.resolveSellerFeePercent(ctx, seller)
	if err != nil {
		return nil, err
	}

	// the listed price is authoritative; without a coupon in play, a
	// mismatching gross amount means the checkout page was stale
	if event.CouponCode == "" && event.GrossAmountCents != product.PriceCents {
		s.logger.Warn("event gross amount differs from listed price",
			zap.String("product_id", product.ID),
			zap.Int64("gross_amount_cents", event.GrossAmountCents),
			zap.Int64("price_cents", product.PriceCents))
	}

	// A coupon that is missing, out of scope, exhausted or expired never
	// blocks settlement; the buyer already paid. It just applies no discount.
	var coupon *model.Coupon
	var discountCents int64
	if event.CouponCode != "" {
		coupon, discountCents = s.evaluateCouponCode(ctx, event.CouponCode, product)
	}

	hasAffiliate := event.AffiliateID != "" && s.affiliateApproved(ctx, event.AffiliateID, product.ID)

	var sale *model.Sale
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.eventRepo.MarkProcessed(ctx, tx, event.EventID, "payment.succeeded"); err != nil {
			return err
		}

		// consume coupon usage inside the transaction: the ceiling check
		// and the increment are one statement, and a failed settlement
		// rolls the consumption back
		if coupon != nil {
			if err := s.couponRepo.ConsumeUsage(ctx, tx, coupon.ID); err != nil {
				if !errors.Is(err, model.ErrCouponInvalid) {
					return fmt.Errorf("consume coupon usage: %w", err)
				}
				// lost the race on the last remaining use
				s.logger.Warn("coupon exhausted during settlement",
					zap.String("coupon_id", coupon.ID),
					zap.String("payment_ref", event.PaymentRef))
				discountCents = 0
			}
		}

		amountCents := product.PriceCents - discountCents
		if amountCents < 0 {
			amountCents = 0
		}

		split := ComputeSplit(product, amountCents, hasAffiliate)
		platformFeeCents := PlatformFee(split.SellerBeforeFeeCents, feePercent)
		sellerAmountCents := amountCents - split.AffiliateCents - platformFeeCents

		if split.AffiliateCents > 0 {
			if err := s.userRepo.CreditBalance(ctx, tx, event.AffiliateID, split.AffiliateCents); err != nil {
				return fmt.Errorf("credit affiliate %s: %w", event.AffiliateID, err)
			}
		}
		if err := s.userRepo.CreditBalance(ctx, tx, seller.ID, sellerAmountCents); err != nil {
			return fmt.Errorf("credit seller %s: %w", seller.ID, err)
		}

		sale = &model.Sale{
			ID:                   uuid.NewString(),
			ProductID:            product.ID,
			BuyerID:              event.BuyerID,
			SellerID:             seller.ID,
			AmountCents:          amountCents,
			SellerAmountCents:    sellerAmountCents,
			AffiliateAmountCents: split.AffiliateCents,
			PlatformFeeCents:     platformFeeCents,
			Status:               model.SaleStatusCompleted,
			PaymentMethod:        event.PaymentMethod,
			PaymentRef:           event.PaymentRef,
		}
		if hasAffiliate {
			affiliateID := event.AffiliateID
			sale.AffiliateID = &affiliateID
		}

		return s.saleRepo.Create(ctx, tx, sale)
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("sale settled",
		zap.String("sale_id", sale.ID),
		zap.String("payment_ref", sale.PaymentRef),
		zap.Int64("amount_cents", sale.AmountCents),
		zap.Int64("seller_amount_cents", sale.SellerAmountCents),
		zap.Int64("affiliate_amount_cents", sale.AffiliateAmountCents),
		zap.Int64("platform_fee_cents", sale.PlatformFeeCents))

	return sale, nil
}

func (s *settlementServiceImpl) Refund(ctx context.Context, saleID string) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("resolve sale %s: %w", saleID, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.saleRepo.UpdateStatus(ctx, tx, sale.ID, model.SaleStatusCompleted, model.SaleStatusRefunded); err != nil {
			return err
		}
		if err := s.userRepo.DebitBalance(ctx, tx, sale.SellerID, sale.SellerAmountCents); err != nil {
			return fmt.Errorf("debit seller %s: %w", sale.SellerID, err)
		}
		if sale.AffiliateID != nil && sale.AffiliateAmountCents > 0 {
			if err := s.userRepo.DebitBalance(ctx, tx, *sale.AffiliateID, sale.AffiliateAmountCents); err != nil {
				return fmt.Errorf("debit affiliate %s: %w", *sale.AffiliateID, err)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	sale.Status = model.SaleStatusRefunded

	s.logger.Info("sale refunded",
		zap.String("sale_id", sale.ID),
		zap.String("payment_ref", sale.PaymentRef))

	return sale, nil
}

// resolveSellerFeePercent looks up the seller's plan fee. Sellers without a
// plan fall back to the free plan; an unresolvable plan is a configuration
// failure and aborts settlement before anything is mutated.
func (s *settlementServiceImpl) resolveSellerFeePercent(ctx context.Context, seller *model.User) (decimal.Decimal, error) {
	planID := seller.PlanID
	if planID == "" {
		planID = repository.FreePlanID
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		s.logger.Error("seller plan unresolvable",
			zap.String("seller_id", seller.ID),
			zap.String("plan_id", planID),
			zap.Error(err))
		return decimal.Zero, fmt.Errorf("%w: plan %s: %v", model.ErrPlanUnavailable, planID, err)
	}

	return plan.PlatformFeePercent, nil
}

func (s *settlementServiceImpl) evaluateCouponCode(ctx context.Context, code string, product *model.Product) (*model.Coupon, int64) {
	coupon, err := s.couponRepo.FindByCode(ctx, code)
	if err != nil {
		s.logger.Warn("coupon code not applicable",
			zap.String("code", code),
			zap.Error(err))
		return nil, 0
	}

	discountCents, err := EvaluateCoupon(coupon, product, time.Now())
	if err != nil {
		s.logger.Warn("coupon code not applicable",
			zap.String("code", code),
			zap.Error(err))
		return nil, 0
	}

	return coupon, discountCents
}

// affiliateApproved reports whether the affiliate holds an approved relation
// for the product. A self-declared affiliate id without approval earns
// nothing; the seller keeps the full share.
func (s *settlementServiceImpl) affiliateApproved(ctx context.Context, affiliateID, productID string) bool {
	relation, err := s.affiliateRepo.Find(ctx, affiliateID, productID)
	if err != nil || relation.Status != model.RelationStatusApproved {
		s.logger.Warn("affiliate not approved for product, commission skipped",
			zap.String("affiliate_id", affiliateID),
			zap.String("product_id", productID))
		return false
	}

	return true
}
