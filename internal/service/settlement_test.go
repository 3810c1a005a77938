package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"digimarket/internal/client"
	"digimarket/internal/dto"
	"digimarket/internal/model"
	"digimarket/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// named in-memory database, shared across the pool connections
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := client.InitDB(dsn)
	require.NoError(t, err)

	require.NoError(t, repository.NewPlanRepository(db).Seed(context.Background()))
	return db
}

type settlementFixture struct {
	db        *gorm.DB
	users     repository.UserRepository
	products  repository.ProductRepository
	coupons   repository.CouponRepository
	sales     repository.SaleRepository
	relations repository.AffiliateRepository
	svc       SettlementService

	seller    *model.User
	buyer     *model.User
	affiliate *model.User
	product   *model.Product
}

// newSettlementFixture wires a settlement service over sqlite with the
// canonical scenario: product price 100.00, percentage commission 10%, the
// seller on the 5% fee plan, and an approved affiliate.
func newSettlementFixture(t *testing.T) *settlementFixture {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()

	f := &settlementFixture{
		db:        db,
		users:     repository.NewUserRepository(db),
		products:  repository.NewProductRepository(db),
		coupons:   repository.NewCouponRepository(db),
		sales:     repository.NewSaleRepository(db),
		relations: repository.NewAffiliateRepository(db),
	}

	f.svc = NewSettlementService(
		db,
		f.users,
		repository.NewPlanRepository(db),
		f.products,
		f.coupons,
		f.sales,
		f.relations,
		repository.NewPaymentEventRepository(db),
		zaptest.NewLogger(t),
	)

	f.seller = &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleVendor, PlanID: "plan_infinity"}
	f.buyer = &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleBuyer, PlanID: repository.FreePlanID}
	f.affiliate = &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleAffiliate, PlanID: repository.FreePlanID}
	for _, u := range []*model.User{f.seller, f.buyer, f.affiliate} {
		require.NoError(t, f.users.Create(ctx, u))
	}

	f.product = &model.Product{
		ID:             uuid.NewString(),
		SellerID:       f.seller.ID,
		Name:           "E-Book",
		PriceCents:     10000,
		CommissionType: model.CommissionPercentage,
		CommissionRate: decimal.NewFromInt(10),
		Active:         true,
		Visible:        true,
		PaymentEnabled: true,
	}
	require.NoError(t, f.products.Create(ctx, f.product))

	require.NoError(t, f.relations.Create(ctx, &model.AffiliateRelation{
		ID:          uuid.NewString(),
		AffiliateID: f.affiliate.ID,
		ProductID:   f.product.ID,
		Status:      model.RelationStatusApproved,
	}))

	return f
}

func (f *settlementFixture) event() *dto.PaymentEvent {
	return &dto.PaymentEvent{
		EventID:          uuid.NewString(),
		ProductID:        f.product.ID,
		BuyerID:          f.buyer.ID,
		SellerID:         f.seller.ID,
		GrossAmountCents: f.product.PriceCents,
		PaymentMethod:    "card",
		PaymentRef:       uuid.NewString(),
	}
}

func (f *settlementFixture) balance(t *testing.T, userID string) int64 {
	t.Helper()
	user, err := f.users.FindByID(context.Background(), userID)
	require.NoError(t, err)
	return user.BalanceCents
}

func TestSettleWithAffiliate(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	event := f.event()
	event.AffiliateID = f.affiliate.ID

	sale, err := f.svc.Settle(ctx, event)
	require.NoError(t, err)

	// price 100.00, commission 10% -> raw 10.00, affiliate keeps 96% = 9.60,
	// seller share before fee 90.40, 5% plan fee 4.52, seller nets 85.88
	assert.Equal(t, int64(10000), sale.AmountCents)
	assert.Equal(t, int64(960), sale.AffiliateAmountCents)
	assert.Equal(t, int64(452), sale.PlatformFeeCents)
	assert.Equal(t, int64(8588), sale.SellerAmountCents)
	assert.Equal(t, sale.AmountCents, sale.SellerAmountCents+sale.AffiliateAmountCents+sale.PlatformFeeCents)
	assert.Equal(t, model.SaleStatusCompleted, sale.Status)

	assert.Equal(t, int64(8588), f.balance(t, f.seller.ID))
	assert.Equal(t, int64(960), f.balance(t, f.affiliate.ID))
}

func TestSettleWithoutAffiliate(t *testing.T) {
	f := newSettlementFixture(t)

	sale, err := f.svc.Settle(context.Background(), f.event())
	require.NoError(t, err)

	assert.Equal(t, int64(0), sale.AffiliateAmountCents)
	assert.Nil(t, sale.AffiliateID)
	assert.Equal(t, int64(500), sale.PlatformFeeCents) // 5% of the full amount
	assert.Equal(t, int64(9500), sale.SellerAmountCents)
	assert.Equal(t, sale.AmountCents, sale.SellerAmountCents+sale.PlatformFeeCents)
}

func TestSettleUnapprovedAffiliateEarnsNothing(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	outsider := &model.User{ID: uuid.NewString(), Email: uuid.NewString() + "@test", Role: model.RoleAffiliate, PlanID: repository.FreePlanID}
	require.NoError(t, f.users.Create(ctx, outsider))

	event := f.event()
	event.AffiliateID = outsider.ID

	sale, err := f.svc.Settle(ctx, event)
	require.NoError(t, err)

	assert.Equal(t, int64(0), sale.AffiliateAmountCents)
	assert.Nil(t, sale.AffiliateID)
	assert.Equal(t, int64(0), f.balance(t, outsider.ID))
	assert.Equal(t, int64(9500), f.balance(t, f.seller.ID))
}

func TestSettleReplayIsIdempotent(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	event := f.event()
	event.AffiliateID = f.affiliate.ID

	_, err := f.svc.Settle(ctx, event)
	require.NoError(t, err)

	_, err = f.svc.Settle(ctx, event)
	require.ErrorIs(t, err, model.ErrDuplicatePayment)

	// balances credited exactly once
	assert.Equal(t, int64(8588), f.balance(t, f.seller.ID))
	assert.Equal(t, int64(960), f.balance(t, f.affiliate.ID))

	var count int64
	require.NoError(t, f.db.Model(&model.Sale{}).Where("payment_ref = ?", event.PaymentRef).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSettleSamePaymentRefDifferentEvent(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	first := f.event()
	_, err := f.svc.Settle(ctx, first)
	require.NoError(t, err)

	replay := f.event()
	replay.PaymentRef = first.PaymentRef

	_, err = f.svc.Settle(ctx, replay)
	require.ErrorIs(t, err, model.ErrDuplicatePayment)

	// the failed attempt must not leave any credit behind
	assert.Equal(t, int64(9500), f.balance(t, f.seller.ID))
}

func TestSettleMissingProduct(t *testing.T) {
	f := newSettlementFixture(t)

	event := f.event()
	event.ProductID = "nope"

	_, err := f.svc.Settle(context.Background(), event)
	require.ErrorIs(t, err, model.ErrNotFound)

	assert.Equal(t, int64(0), f.balance(t, f.seller.ID))
}

func TestSettleUnresolvablePlanIsFatal(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	require.NoError(t, f.db.Model(&model.User{}).Where("id = ?", f.seller.ID).Update("plan_id", "plan_gone").Error)

	_, err := f.svc.Settle(ctx, f.event())
	require.ErrorIs(t, err, model.ErrPlanUnavailable)

	assert.Equal(t, int64(0), f.balance(t, f.seller.ID))
}

func TestSettleWithPercentageCoupon(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	require.NoError(t, f.coupons.Create(ctx, &model.Coupon{
		ID:       uuid.NewString(),
		SellerID: f.seller.ID,
		Code:     "TWENTY",
		Type:     model.CouponPercentage,
		Value:    decimal.NewFromInt(20),
	}))

	event := f.event()
	event.CouponCode = "TWENTY"

	sale, err := f.svc.Settle(ctx, event)
	require.NoError(t, err)

	assert.Equal(t, int64(8000), sale.AmountCents)
	assert.Equal(t, sale.AmountCents, sale.SellerAmountCents+sale.PlatformFeeCents)
}

func TestSettleWithFixedCoupon(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	require.NoError(t, f.coupons.Create(ctx, &model.Coupon{
		ID:       uuid.NewString(),
		SellerID: f.seller.ID,
		Code:     "FIFTEEN",
		Type:     model.CouponFixed,
		Value:    decimal.NewFromInt(1500),
	}))

	event := f.event()
	event.CouponCode = "FIFTEEN"

	sale, err := f.svc.Settle(ctx, event)
	require.NoError(t, err)

	assert.Equal(t, int64(8500), sale.AmountCents)
}

func TestSettleCouponScopedToOtherProduct(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	other := &model.Product{
		ID:             uuid.NewString(),
		SellerID:       f.seller.ID,
		Name:           "Other",
		PriceCents:     5000,
		CommissionType: model.CommissionPercentage,
		CommissionRate: decimal.NewFromInt(10),
	}
	require.NoError(t, f.products.Create(ctx, other))

	require.NoError(t, f.coupons.Create(ctx, &model.Coupon{
		ID:        uuid.NewString(),
		SellerID:  f.seller.ID,
		Code:      "SCOPED",
		Type:      model.CouponPercentage,
		Value:     decimal.NewFromInt(20),
		ProductID: &other.ID,
	}))

	event := f.event()
	event.CouponCode = "SCOPED"

	sale, err := f.svc.Settle(ctx, event)
	require.NoError(t, err)

	// out-of-scope coupon applies no discount but never blocks settlement
	assert.Equal(t, int64(10000), sale.AmountCents)
}

func TestSettleCouponMaxUsageConsumedOnce(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	maxUsage := int64(1)
	coupon := &model.Coupon{
		ID:       uuid.NewString(),
		SellerID: f.seller.ID,
		Code:     "ONCE",
		Type:     model.CouponPercentage,
		Value:    decimal.NewFromInt(20),
		MaxUsage: &maxUsage,
	}
	require.NoError(t, f.coupons.Create(ctx, coupon))

	first := f.event()
	first.CouponCode = "ONCE"
	sale, err := f.svc.Settle(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), sale.AmountCents)

	second := f.event()
	second.CouponCode = "ONCE"
	sale, err = f.svc.Settle(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), sale.AmountCents)

	stored, err := f.coupons.FindByCode(ctx, "ONCE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.UsageCount)
}

func TestRefundReversesCredits(t *testing.T) {
	f := newSettlementFixture(t)
	ctx := context.Background()

	event := f.event()
	event.AffiliateID = f.affiliate.ID

	sale, err := f.svc.Settle(ctx, event)
	require.NoError(t, err)

	refunded, err := f.svc.Refund(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SaleStatusRefunded, refunded.Status)

	assert.Equal(t, int64(0), f.balance(t, f.seller.ID))
	assert.Equal(t, int64(0), f.balance(t, f.affiliate.ID))

	// a sale refunds once
	_, err = f.svc.Refund(ctx, sale.ID)
	require.ErrorIs(t, err, model.ErrInvalidTransition)
}
