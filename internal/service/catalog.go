package service

import (
	"context"
	"fmt"

	"digimarket/internal/dto"
	"digimarket/internal/model"
	"digimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogService manages seller products and affiliate relations, enforcing
// the seller's plan limits (nil limit means unlimited).
type CatalogService interface {
	CreateProduct(ctx context.Context, sellerID string, req *dto.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, sellerID, productID string, req *dto.UpdateProductRequest) error
	DeleteProduct(ctx context.Context, sellerID, productID string) error
	ListProducts(ctx context.Context, sellerID string) ([]*model.Product, error)

	RequestAffiliation(ctx context.Context, affiliateID, productID string) (*model.AffiliateRelation, error)
	ApproveAffiliation(ctx context.Context, sellerID, relationID string) error
	RejectAffiliation(ctx context.Context, sellerID, relationID string) error
}

type catalogServiceImpl struct {
	userRepo      repository.UserRepository
	planRepo      repository.PlanRepository
	productRepo   repository.ProductRepository
	affiliateRepo repository.AffiliateRepository
	logger        *zap.Logger
}

func NewCatalogService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	productRepo repository.ProductRepository,
	affiliateRepo repository.AffiliateRepository,
	logger *zap.Logger,
) CatalogService {
	return &catalogServiceImpl{
		userRepo:      userRepo,
		planRepo:      planRepo,
		productRepo:   productRepo,
		affiliateRepo: affiliateRepo,
		logger:        logger,
	}
}

func (s *catalogServiceImpl) CreateProduct(ctx context.Context, sellerID string, req *dto.CreateProductRequest) (*model.Product, error) {
	commissionType := model.CommissionType(req.CommissionType)
	if commissionType != model.CommissionPercentage && commissionType != model.CommissionFixed {
		return nil, fmt.Errorf("unknown commission type %q", req.CommissionType)
	}

	commissionRate, err := decimal.NewFromString(req.CommissionRate)
	if err != nil {
		return nil, fmt.Errorf("parse commission rate: %w", err)
	}
	if commissionRate.IsNegative() {
		return nil, fmt.Errorf("commission rate must not be negative")
	}

	plan, err := s.sellerPlan(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	if plan.ProductLimit != nil {
		count, err := s.productRepo.CountBySeller(ctx, sellerID)
		if err != nil {
			return nil, fmt.Errorf("count seller products: %w", err)
		}
		if count >= *plan.ProductLimit {
			return nil, model.ErrLimitReached
		}
	}

	product := &model.Product{
		ID:             uuid.NewString(),
		SellerID:       sellerID,
		Name:           req.Name,
		PriceCents:     req.PriceCents,
		CommissionType: commissionType,
		CommissionRate: commissionRate,
		Active:         true,
		Visible:        true,
		PaymentEnabled: true,
		Category:       req.Category,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("store product: %w", err)
	}

	s.logger.Info("product created",
		zap.String("product_id", product.ID),
		zap.String("seller_id", sellerID))

	return product, nil
}

func (s *catalogServiceImpl) UpdateProduct(ctx context.Context, sellerID, productID string, req *dto.UpdateProductRequest) error {
	if err := s.requireOwnership(ctx, sellerID, productID); err != nil {
		return err
	}

	update := &repository.ProductUpdate{
		Name:           req.Name,
		PriceCents:     req.PriceCents,
		Active:         req.Active,
		Visible:        req.Visible,
		PaymentEnabled: req.PaymentEnabled,
		Category:       req.Category,
	}

	if req.CommissionType != nil {
		commissionType := model.CommissionType(*req.CommissionType)
		if commissionType != model.CommissionPercentage && commissionType != model.CommissionFixed {
			return fmt.Errorf("unknown commission type %q", *req.CommissionType)
		}
		update.CommissionType = &commissionType
	}
	if req.CommissionRate != nil {
		commissionRate, err := decimal.NewFromString(*req.CommissionRate)
		if err != nil {
			return fmt.Errorf("parse commission rate: %w", err)
		}
		update.CommissionRate = &commissionRate
	}

	return s.productRepo.Update(ctx, productID, update)
}

func (s *catalogServiceImpl) DeleteProduct(ctx context.Context, sellerID, productID string) error {
	if err := s.requireOwnership(ctx, sellerID, productID); err != nil {
		return err
	}

	return s.productRepo.Delete(ctx, productID)
}

func (s *catalogServiceImpl) ListProducts(ctx context.Context, sellerID string) ([]*model.Product, error) {
	return s.productRepo.FindBySeller(ctx, sellerID)
}

func (s *catalogServiceImpl) RequestAffiliation(ctx context.Context, affiliateID, productID string) (*model.AffiliateRelation, error) {
	if _, err := s.productRepo.FindByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("resolve product %s: %w", productID, err)
	}

	relation := &model.AffiliateRelation{
		ID:          uuid.NewString(),
		AffiliateID: affiliateID,
		ProductID:   productID,
		Status:      model.RelationStatusPending,
	}

	if err := s.affiliateRepo.Create(ctx, relation); err != nil {
		return nil, fmt.Errorf("store affiliate relation: %w", err)
	}

	s.logger.Info("affiliation requested",
		zap.String("relation_id", relation.ID),
		zap.String("affiliate_id", affiliateID),
		zap.String("product_id", productID))

	return relation, nil
}

func (s *catalogServiceImpl) ApproveAffiliation(ctx context.Context, sellerID, relationID string) error {
	relation, err := s.affiliateRepo.FindByID(ctx, relationID)
	if err != nil {
		return fmt.Errorf("resolve relation %s: %w", relationID, err)
	}

	if err := s.requireOwnership(ctx, sellerID, relation.ProductID); err != nil {
		return err
	}

	plan, err := s.sellerPlan(ctx, sellerID)
	if err != nil {
		return err
	}

	if plan.AffiliateLimit != nil {
		count, err := s.affiliateRepo.CountApprovedBySeller(ctx, sellerID)
		if err != nil {
			return fmt.Errorf("count approved affiliates: %w", err)
		}
		if count >= *plan.AffiliateLimit {
			return model.ErrLimitReached
		}
	}

	return s.affiliateRepo.UpdateStatus(ctx, relationID, model.RelationStatusPending, model.RelationStatusApproved)
}

func (s *catalogServiceImpl) RejectAffiliation(ctx context.Context, sellerID, relationID string) error {
	relation, err := s.affiliateRepo.FindByID(ctx, relationID)
	if err != nil {
		return fmt.Errorf("resolve relation %s: %w", relationID, err)
	}

	if err := s.requireOwnership(ctx, sellerID, relation.ProductID); err != nil {
		return err
	}

	return s.affiliateRepo.UpdateStatus(ctx, relationID, model.RelationStatusPending, model.RelationStatusRejected)
}

func (s *catalogServiceImpl) sellerPlan(ctx context.Context, sellerID string) (*model.Plan, error) {
	seller, err := s.userRepo.FindByID(ctx, sellerID)
	if err != nil {
		return nil, fmt.Errorf("resolve seller %s: %w", sellerID, err)
	}

	planID := seller.PlanID
	if planID == "" {
		planID = repository.FreePlanID
	}

	plan, err := s.planRepo.FindByID(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("%w: plan %s: %v", model.ErrPlanUnavailable, planID, err)
	}

	return plan, nil
}

func (s *catalogServiceImpl) requireOwnership(ctx context.Context, sellerID, productID string) error {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("resolve product %s: %w", productID, err)
	}
	if product.SellerID != sellerID {
		return model.ErrForbidden
	}

	return nil
}
