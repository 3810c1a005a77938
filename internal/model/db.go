package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleBuyer     Role = "buyer"
	RoleVendor    Role = "vendor"
	RoleAffiliate Role = "affiliate"
	RoleAdmin     Role = "admin"
)

type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFixed      CouponType = "fixed"
)

type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusRefunded  SaleStatus = "refunded"
)

type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

type RelationStatus string

const (
	RelationStatusPending  RelationStatus = "pending"
	RelationStatusApproved RelationStatus = "approved"
	RelationStatusRejected RelationStatus = "rejected"
)

// Monetary amounts are stored as int64 cents. Percentage rates are stored
// as decimals so plan fees like 7.5% survive round trips.

type User struct {
	ID           string `gorm:"primaryKey;size:64;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	Name         string `gorm:"size:255"`
	Role         Role   `gorm:"size:16;index;not null"`
	BalanceCents int64  `gorm:"not null;default:0"` // mutated only by settlement and withdrawal paths
	PlanID       string `gorm:"size:64;index;not null"`

	// external billing gateway references, set when the user subscribes to a paid plan
	BillingCustomerID     string `gorm:"size:64"`
	BillingSubscriptionID string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Plan struct {
	ID         string `gorm:"primaryKey;size:64;not null"`
	Name       string `gorm:"size:64;not null"`
	PriceCents int64  `gorm:"not null"`

	// nil = unlimited
	ProductLimit   *int64
	AffiliateLimit *int64

	PlatformFeePercent decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SupportTier        string          `gorm:"size:32"`
	Highlight          bool            `gorm:"not null;default:false"`
}

type Product struct {
	ID             string          `gorm:"primaryKey;size:64;not null"`
	SellerID       string          `gorm:"size:64;index;not null"`
	Name           string          `gorm:"size:255;not null"`
	PriceCents     int64           `gorm:"not null"`
	CommissionType CommissionType  `gorm:"size:16;not null"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(12,2);not null"` // percent, or flat cents when fixed
	Active         bool            `gorm:"not null;default:true"`
	Visible        bool            `gorm:"not null;default:true"`
	PaymentEnabled bool            `gorm:"not null;default:true"`
	Category       string          `gorm:"size:64;index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Coupon struct {
	ID       string          `gorm:"primaryKey;size:64;not null"`
	SellerID string          `gorm:"size:64;index;not null"`
	Code     string          `gorm:"size:64;uniqueIndex;not null"`
	Type     CouponType      `gorm:"size:16;not null"`
	Value    decimal.Decimal `gorm:"type:decimal(12,2);not null"` // percent, or flat cents when fixed

	// nil = applies to every product of the seller
	ProductID *string `gorm:"size:64;index"`
	// nil = unlimited
	MaxUsage   *int64
	UsageCount int64 `gorm:"not null;default:0"` // monotonic, bumped only by ConsumeUsage
	ExpiresAt  *time.Time
	CreatedAt  time.Time
}

// Sale is the append-only settlement record. Only Status is ever updated.
type Sale struct {
	ID          string  `gorm:"primaryKey;size:64;not null"`
	ProductID   string  `gorm:"size:64;index;not null"`
	BuyerID     string  `gorm:"size:64;index;not null"`
	SellerID    string  `gorm:"size:64;index;not null"`
	AffiliateID *string `gorm:"size:64;index"`

	AmountCents          int64 `gorm:"not null"` // charged amount after discount
	SellerAmountCents    int64 `gorm:"not null"`
	AffiliateAmountCents int64 `gorm:"not null;default:0"`
	PlatformFeeCents     int64 `gorm:"not null"`

	Status        SaleStatus `gorm:"size:16;index;not null"`
	PaymentMethod string     `gorm:"size:32"`
	PaymentRef    string     `gorm:"size:128;uniqueIndex;not null"` // external payment reference, dedupe key

	CreatedAt time.Time
	UpdatedAt time.Time
}

type AffiliateRelation struct {
	ID          string         `gorm:"primaryKey;size:64;not null"`
	AffiliateID string         `gorm:"size:64;not null;uniqueIndex:idx_affiliate_product"`
	ProductID   string         `gorm:"size:64;not null;uniqueIndex:idx_affiliate_product"`
	Status      RelationStatus `gorm:"size:16;index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Withdrawal struct {
	ID          string           `gorm:"primaryKey;size:64;not null"`
	UserID      string           `gorm:"size:64;index;not null"`
	AmountCents int64            `gorm:"not null"`
	Status      WithdrawalStatus `gorm:"size:16;index;not null"`
	TransferRef string           `gorm:"size:128"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type PaymentEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
