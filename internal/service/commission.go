package service

import (
	"digimarket/internal/model"

	"github.com/shopspring/decimal"
)

// affiliateFeePercent is the flat platform cut taken from every affiliate
// commission, independent of the seller's plan.
const affiliateFeePercent = 4

var (
	hundred        = decimal.NewFromInt(100)
	affiliateShare = hundred.Sub(decimal.NewFromInt(affiliateFeePercent)).Div(hundred) // 0.96
)

// Split is the outcome of dividing a charged amount between the affiliate
// and the seller, before the seller-side platform fee.
type Split struct {
	AffiliateCents       int64
	SellerBeforeFeeCents int64
}

// ComputeSplit divides amountCents between affiliate and seller.
//
// Percentage commission scales with the charged amount; fixed commission is
// a flat per-sale amount regardless of discounts. The affiliate keeps 96% of
// the raw commission, clamped to [0, amount] so a commission can never
// exceed what the buyer paid. Rounding happens once, on the affiliate share;
// the seller share is the exact remainder.
func ComputeSplit(product *model.Product, amountCents int64, hasAffiliate bool) Split {
	if !hasAffiliate {
		return Split{AffiliateCents: 0, SellerBeforeFeeCents: amountCents}
	}

	amount := decimal.NewFromInt(amountCents)

	var raw decimal.Decimal
	if product.CommissionType == model.CommissionPercentage {
		raw = amount.Mul(product.CommissionRate).Div(hundred)
	} else {
		raw = product.CommissionRate
	}

	affiliate := raw.Mul(affiliateShare).Round(0)
	if affiliate.IsNegative() {
		affiliate = decimal.Zero
	}
	if affiliate.GreaterThan(amount) {
		affiliate = amount
	}

	affiliateCents := affiliate.IntPart()
	return Split{
		AffiliateCents:       affiliateCents,
		SellerBeforeFeeCents: amountCents - affiliateCents,
	}
}

// PlatformFee computes the plan-determined fee on the seller's share.
// The fee never applies to the affiliate's share of the sale.
func PlatformFee(sellerBeforeFeeCents int64, feePercent decimal.Decimal) int64 {
	return decimal.NewFromInt(sellerBeforeFeeCents).
		Mul(feePercent).
		Div(hundred).
		Round(0).
		IntPart()
}
