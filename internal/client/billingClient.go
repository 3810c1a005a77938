package client

import (
	"context"
	"fmt"

	"digimarket/internal/config"

	"github.com/braintree-go/braintree-go"
)

// BillingClient is the external billing gateway used for paid seller plans.
// The settlement core never talks to it; only the user service does.
type BillingClient interface {
	// CreateCustomer vaults a frontend payment nonce and returns the
	// gateway customer id plus the vaulted payment token.
	CreateCustomer(ctx context.Context, nonce, name, email string) (customerID, paymentToken string, err error)

	// Subscribe attaches a vaulted payment token to a billing plan and
	// returns the gateway subscription id.
	Subscribe(ctx context.Context, paymentToken, planID string, priceCents int64) (string, error)

	// CancelSubscription cancels an active subscription.
	CancelSubscription(ctx context.Context, subscriptionID string) error
}

type billingClientImpl struct {
	gateway *braintree.Braintree
}

func NewBillingClient(cfg *config.Billing) BillingClient {
	env := braintree.Sandbox
	if cfg.Environment == "production" {
		env = braintree.Production
	}

	gateway := braintree.New(
		env,
		cfg.MerchantID,
		cfg.PublicKey,
		cfg.PrivateKey,
	)

	return &billingClientImpl{
		gateway: gateway,
	}
}

func (c *billingClientImpl) CreateCustomer(ctx context.Context, nonce, name, email string) (string, string, error) {
	req := &braintree.CustomerRequest{
		PaymentMethodNonce: nonce,
		FirstName:          name,
		Email:              email,
	}

	customer, err := c.gateway.Customer().Create(ctx, req)
	if err != nil {
		return "", "", fmt.Errorf("create billing customer: %w", err)
	}

	if customer.DefaultPaymentMethod() == nil {
		return "", "", fmt.Errorf("no default payment method returned from vault")
	}

	return customer.Id, customer.DefaultPaymentMethod().GetToken(), nil
}

func (c *billingClientImpl) Subscribe(ctx context.Context, paymentToken, planID string, priceCents int64) (string, error) {
	// Braintree expects NewDecimal(unscaled, scale); prices are stored as
	// cents so the scale is always 2.
	price := braintree.NewDecimal(priceCents, 2)

	req := &braintree.SubscriptionRequest{
		PaymentMethodToken: paymentToken,
		PlanId:             planID,
		Price:              price,
	}

	sub, err := c.gateway.Subscription().Create(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create subscription: %w", err)
	}

	return sub.Id, nil
}

func (c *billingClientImpl) CancelSubscription(ctx context.Context, subscriptionID string) error {
	_, err := c.gateway.Subscription().Cancel(ctx, subscriptionID)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	return nil
}
