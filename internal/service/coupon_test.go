package service

import (
	"testing"
	"time"

	"digimarket/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var couponNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testProduct() *model.Product {
	return &model.Product{ID: "prod-1", SellerID: "seller-1", PriceCents: 10000}
}

func sellerCoupon(couponType model.CouponType, value int64) *model.Coupon {
	return &model.Coupon{
		ID:       "coupon-1",
		SellerID: "seller-1",
		Code:     "CODE",
		Type:     couponType,
		Value:    decimal.NewFromInt(value),
	}
}

func TestEvaluateCouponPercentage(t *testing.T) {
	discount, err := EvaluateCoupon(sellerCoupon(model.CouponPercentage, 20), testProduct(), couponNow)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), discount)
}

func TestEvaluateCouponFixed(t *testing.T) {
	discount, err := EvaluateCoupon(sellerCoupon(model.CouponFixed, 1500), testProduct(), couponNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), discount)
}

func TestEvaluateCouponScope(t *testing.T) {
	productID := "prod-1"
	coupon := sellerCoupon(model.CouponPercentage, 20)
	coupon.ProductID = &productID

	_, err := EvaluateCoupon(coupon, testProduct(), couponNow)
	require.NoError(t, err)

	otherID := "prod-other"
	coupon.ProductID = &otherID
	_, err = EvaluateCoupon(coupon, testProduct(), couponNow)
	assert.ErrorIs(t, err, model.ErrCouponInvalid)
}

func TestEvaluateCouponSellerWideScope(t *testing.T) {
	// nil product scope covers the seller's catalog, nobody else's
	coupon := sellerCoupon(model.CouponPercentage, 20)

	_, err := EvaluateCoupon(coupon, testProduct(), couponNow)
	require.NoError(t, err)

	foreign := testProduct()
	foreign.SellerID = "seller-2"
	_, err = EvaluateCoupon(coupon, foreign, couponNow)
	assert.ErrorIs(t, err, model.ErrCouponInvalid)
}

func TestEvaluateCouponExhausted(t *testing.T) {
	maxUsage := int64(5)
	coupon := sellerCoupon(model.CouponPercentage, 20)
	coupon.MaxUsage = &maxUsage
	coupon.UsageCount = 5

	_, err := EvaluateCoupon(coupon, testProduct(), couponNow)
	assert.ErrorIs(t, err, model.ErrCouponInvalid)

	coupon.UsageCount = 4
	_, err = EvaluateCoupon(coupon, testProduct(), couponNow)
	assert.NoError(t, err)
}

func TestEvaluateCouponExpiry(t *testing.T) {
	expired := couponNow.Add(-time.Hour)
	coupon := sellerCoupon(model.CouponPercentage, 20)
	coupon.ExpiresAt = &expired

	_, err := EvaluateCoupon(coupon, testProduct(), couponNow)
	assert.ErrorIs(t, err, model.ErrCouponInvalid)

	// expiring exactly now is still valid
	atNow := couponNow
	coupon.ExpiresAt = &atNow
	_, err = EvaluateCoupon(coupon, testProduct(), couponNow)
	assert.NoError(t, err)
}
