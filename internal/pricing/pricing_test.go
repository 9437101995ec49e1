package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCartTotalSumsLines(t *testing.T) {
	items := []models.CartItem{
		{Price: dec("19.99"), Quantity: 2},
		{Price: dec("5.00"), Quantity: 3},
	}

	require.True(t, CartTotal(items).Equal(dec("54.98")))
}

func TestCartTotalEmpty(t *testing.T) {
	require.True(t, CartTotal(nil).IsZero())
}

func TestDiscountedTotalTenPercentOfHundred(t *testing.T) {
	got := DiscountedTotal(dec("100.00"), dec("10"))
	require.Equal(t, "90", got.String())
}

func TestDiscountedTotalRoundsHalfUp(t *testing.T) {
	// 15% off 33.33 = 28.3305, rounds to 28.33
	require.Equal(t, "28.33", DiscountedTotal(dec("33.33"), dec("15")).StringFixed(2))
	// 10% off 10.05 = 9.045, half rounds away to 9.05
	require.Equal(t, "9.05", DiscountedTotal(dec("10.05"), dec("10")).StringFixed(2))
}

func TestOrderTotalPrefersDiscountedPrice(t *testing.T) {
	discounted := dec("90.00")
	cart := &models.Cart{
		TotalCartPrice:          dec("100.00"),
		TotalPriceAfterDiscount: &discounted,
	}

	got := OrderTotal(cart, decimal.Zero, decimal.Zero)
	require.True(t, got.Equal(dec("90.00")))
}

func TestOrderTotalFallsBackToCartTotal(t *testing.T) {
	cart := &models.Cart{TotalCartPrice: dec("100.00")}

	got := OrderTotal(cart, dec("2.50"), dec("7.00"))
	require.True(t, got.Equal(dec("109.50")))
}

func TestMinorUnits(t *testing.T) {
	require.Equal(t, int64(9050), MinorUnits(dec("90.50")))
	require.Equal(t, int64(100), MinorUnits(dec("1")))
}
