package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
)

// CartTotal sums quantity times the snapshotted unit price across all lines.
func CartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		line := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
	}
	return total
}

// DiscountedTotal applies a percentage discount to a total and rounds the
// result to two decimal places, half away from zero. A 10 percent discount on
// 100.00 yields exactly 90.00.
func DiscountedTotal(total decimal.Decimal, percent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(100).Sub(percent).Div(decimal.NewFromInt(100))
	return total.Mul(factor).Round(2)
}

// OrderTotal selects the payable amount for checkout: the discounted total
// when a coupon is applied, the raw cart total otherwise, plus tax and
// shipping.
func OrderTotal(cart *models.Cart, tax, shipping decimal.Decimal) decimal.Decimal {
	base := cart.TotalCartPrice
	if cart.TotalPriceAfterDiscount != nil {
		base = *cart.TotalPriceAfterDiscount
	}
	return base.Add(tax).Add(shipping)
}

// MinorUnits converts an amount in major currency units to integer minor
// units (cents) for payment-provider APIs.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
