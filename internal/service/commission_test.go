package service

import (
	"testing"

	"digimarket/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func percentageProduct(rate int64) *model.Product {
	return &model.Product{
		CommissionType: model.CommissionPercentage,
		CommissionRate: decimal.NewFromInt(rate),
	}
}

func fixedProduct(cents int64) *model.Product {
	return &model.Product{
		CommissionType: model.CommissionFixed,
		CommissionRate: decimal.NewFromInt(cents),
	}
}

func TestComputeSplitNoAffiliate(t *testing.T) {
	split := ComputeSplit(percentageProduct(10), 10000, false)

	assert.Equal(t, int64(0), split.AffiliateCents)
	assert.Equal(t, int64(10000), split.SellerBeforeFeeCents)
}

func TestComputeSplitPercentage(t *testing.T) {
	split := ComputeSplit(percentageProduct(10), 10000, true)

	// raw 1000, minus the flat 4% affiliate-side fee
	assert.Equal(t, int64(960), split.AffiliateCents)
	assert.Equal(t, int64(9040), split.SellerBeforeFeeCents)
}

func TestComputeSplitFixedIgnoresAmount(t *testing.T) {
	// flat 5.00 commission regardless of the charged amount
	for _, amount := range []int64{10000, 8000, 2000} {
		split := ComputeSplit(fixedProduct(500), amount, true)
		assert.Equal(t, int64(480), split.AffiliateCents)
		assert.Equal(t, amount-480, split.SellerBeforeFeeCents)
	}
}

func TestComputeSplitClampsToAmount(t *testing.T) {
	// fixed commission larger than the charge cannot exceed it
	split := ComputeSplit(fixedProduct(20000), 10000, true)

	assert.Equal(t, int64(10000), split.AffiliateCents)
	assert.Equal(t, int64(0), split.SellerBeforeFeeCents)
}

func TestComputeSplitZeroAmount(t *testing.T) {
	split := ComputeSplit(percentageProduct(10), 0, true)

	assert.Equal(t, int64(0), split.AffiliateCents)
	assert.Equal(t, int64(0), split.SellerBeforeFeeCents)
}

func TestPlatformFee(t *testing.T) {
	assert.Equal(t, int64(452), PlatformFee(9040, decimal.NewFromInt(5)))
	assert.Equal(t, int64(500), PlatformFee(10000, decimal.NewFromInt(5)))
	assert.Equal(t, int64(0), PlatformFee(0, decimal.NewFromInt(5)))

	// fractional rates round at the final cent
	assert.Equal(t, int64(750), PlatformFee(10000, decimal.RequireFromString("7.5")))
}

func TestSplitAndFeeSumIdentity(t *testing.T) {
	feePercent := decimal.NewFromInt(7)

	for _, amount := range []int64{1, 99, 10000, 123457, 999999} {
		split := ComputeSplit(percentageProduct(13), amount, true)
		fee := PlatformFee(split.SellerBeforeFeeCents, feePercent)
		seller := amount - split.AffiliateCents - fee

		assert.GreaterOrEqual(t, seller, int64(0))
		assert.Equal(t, amount, seller+split.AffiliateCents+fee)
	}
}
