package dto

import "time"

// PaymentEvent is the trusted payment-succeeded notification. Signature
// verification happens upstream; by the time it reaches the settlement
// engine the money has already moved.
type PaymentEvent struct {
	EventID          string `json:"event_id"`
	ProductID        string `json:"product_id"`
	BuyerID          string `json:"buyer_id"`
	SellerID         string `json:"seller_id"`
	AffiliateID      string `json:"affiliate_id,omitempty"`
	CouponCode       string `json:"coupon_code,omitempty"`
	GrossAmountCents int64  `json:"gross_amount_cents"`
	PaymentMethod    string `json:"payment_method"`
	PaymentRef       string `json:"payment_ref"`
}

type SettlementResponse struct {
	SaleID               string `json:"sale_id"`
	AmountCents          int64  `json:"amount_cents"`
	SellerAmountCents    int64  `json:"seller_amount_cents"`
	AffiliateAmountCents int64  `json:"affiliate_amount_cents"`
	PlatformFeeCents     int64  `json:"platform_fee_cents"`
	Status               string `json:"status"`
}

type WithdrawalRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

type WithdrawalResolution struct {
	TransferRef string `json:"transfer_ref,omitempty"`
}

type RegisterRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

type SubscribeRequest struct {
	PlanID       string `json:"plan_id"`
	PaymentNonce string `json:"payment_nonce"`
}

type CreateProductRequest struct {
	Name           string `json:"name"`
	PriceCents     int64  `json:"price_cents"`
	CommissionType string `json:"commission_type"`
	CommissionRate string `json:"commission_rate"` // decimal string
	Category       string `json:"category,omitempty"`
}

type UpdateProductRequest struct {
	Name           *string `json:"name,omitempty"`
	PriceCents     *int64  `json:"price_cents,omitempty"`
	CommissionType *string `json:"commission_type,omitempty"`
	CommissionRate *string `json:"commission_rate,omitempty"`
	Active         *bool   `json:"active,omitempty"`
	Visible        *bool   `json:"visible,omitempty"`
	PaymentEnabled *bool   `json:"payment_enabled,omitempty"`
	Category       *string `json:"category,omitempty"`
}

type CreateCouponRequest struct {
	Code      string     `json:"code"`
	Type      string     `json:"type"`
	Value     string     `json:"value"` // decimal string
	ProductID *string    `json:"product_id,omitempty"`
	MaxUsage  *int64     `json:"max_usage,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type AffiliateRequest struct {
	ProductID string `json:"product_id"`
}
