package service

import (
	"context"
	"fmt"

	"digimarket/internal/client"
	"digimarket/internal/dto"
	"digimarket/internal/model"
	"digimarket/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type UserService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error)
	GetByID(ctx context.Context, userID string) (*model.User, error)
	ListPlans(ctx context.Context) ([]*model.Plan, error)
	// Subscribe moves the user onto a plan. Paid plans go through the
	// billing gateway; the returned references are stored on the user.
	Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*model.User, error)
}

type userServiceImpl struct {
	userRepo      repository.UserRepository
	planRepo      repository.PlanRepository
	billingClient client.BillingClient
	logger        *zap.Logger
}

func NewUserService(
	userRepo repository.UserRepository,
	planRepo repository.PlanRepository,
	billingClient client.BillingClient,
	logger *zap.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:      userRepo,
		planRepo:      planRepo,
		billingClient: billingClient,
		logger:        logger,
	}
}

func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error) {
	role := model.Role(req.Role)
	switch role {
	case model.RoleBuyer, model.RoleVendor, model.RoleAffiliate, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", req.Role)
	}

	user := &model.User{
		ID:     uuid.NewString(),
		Email:  req.Email,
		Name:   req.Name,
		Role:   role,
		PlanID: repository.FreePlanID,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("store user: %w", err)
	}

	s.logger.Info("user registered",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	return user, nil
}

func (s *userServiceImpl) GetByID(ctx context.Context, userID string) (*model.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

func (s *userServiceImpl) ListPlans(ctx context.Context) ([]*model.Plan, error) {
	return s.planRepo.List(ctx)
}

func (s *userServiceImpl) Subscribe(ctx context.Context, userID string, req *dto.SubscribeRequest) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve user %s: %w", userID, err)
	}

	plan, err := s.planRepo.FindByID(ctx, req.PlanID)
	if err != nil {
		return nil, fmt.Errorf("resolve plan %s: %w", req.PlanID, err)
	}

	// moving to the free plan just cancels any running subscription
	if plan.PriceCents == 0 {
		if user.BillingSubscriptionID != "" {
			if err := s.billingClient.CancelSubscription(ctx, user.BillingSubscriptionID); err != nil {
				return nil, err
			}
			if err := s.userRepo.UpdateBillingRefs(ctx, user.ID, user.BillingCustomerID, ""); err != nil {
				return nil, err
			}
			user.BillingSubscriptionID = ""
		}
	} else {
		customerID, paymentToken, err := s.billingClient.CreateCustomer(ctx, req.PaymentNonce, user.Name, user.Email)
		if err != nil {
			return nil, err
		}

		subscriptionID, err := s.billingClient.Subscribe(ctx, paymentToken, plan.ID, plan.PriceCents)
		if err != nil {
			return nil, err
		}

		if err := s.userRepo.UpdateBillingRefs(ctx, user.ID, customerID, subscriptionID); err != nil {
			return nil, err
		}
		user.BillingCustomerID = customerID
		user.BillingSubscriptionID = subscriptionID
	}

	if err := s.userRepo.UpdatePlan(ctx, user.ID, plan.ID); err != nil {
		return nil, err
	}
	user.PlanID = plan.ID

	s.logger.Info("user subscribed",
		zap.String("user_id", user.ID),
		zap.String("plan_id", plan.ID))

	return user, nil
}
