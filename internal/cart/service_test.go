package cart

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopcore-labs/shopcore-backend/internal/coupons"
	"github.com/shopcore-labs/shopcore-backend/internal/products"
	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 0,
  sold INTEGER NOT NULL DEFAULT 0,
  cover_image TEXT,
  images TEXT,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  total_cart_price NUMERIC NOT NULL DEFAULT 0,
  total_price_after_discount NUMERIC,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  color TEXT,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount NUMERIC NOT NULL,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`}

	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func newCartService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := setupCartTestDB(t)
	couponSvc, err := coupons.NewService(coupons.NewRepository(db))
	require.NoError(t, err)

	svc, err := NewService(NewRepository(db), testTxRunner{db: db}, products.NewRepository(db), couponSvc)
	require.NoError(t, err)
	return svc, db
}

func seedProduct(t *testing.T, db *gorm.DB, price string, active bool) *models.Product {
	t.Helper()

	p, err := decimal.NewFromString(price)
	require.NoError(t, err)
	product := &models.Product{
		Name:        "Widget",
		Description: "A widget",
		Price:       p,
		Quantity:    10,
		IsActive:    active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func TestAddItemCreatesCartAndSnapshotsPrice(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "25.00", true)

	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Color: "red"})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].Price.Equal(product.Price))
	assert.True(t, cart.TotalCartPrice.Equal(product.Price))
	assert.Nil(t, cart.TotalPriceAfterDiscount)

	// a later catalog price change must not move the existing line
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("99.00")).Error)

	cart, err = svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cart.Items[0].Price.Equal(decimal.RequireFromString("25.00")))
}

func TestAddItemMergesSameProductAndColor(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "10.00", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Color: "blue"})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Color: "blue"})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.TotalCartPrice.Equal(decimal.RequireFromString("20.00")))
}

func TestAddItemDifferentColorIsNewLine(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "10.00", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Color: "blue"})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Color: "green"})
	require.NoError(t, err)

	assert.Len(t, cart.Items, 2)
}

func TestAddItemUnknownOrInactiveProduct(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	inactive := seedProduct(t, db, "10.00", false)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: uuid.New()})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: inactive.ID})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGetCartMissing(t *testing.T) {
	svc, _ := newCartService(t)

	_, err := svc.GetCart(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestApplyCouponTenPercent(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "50.00", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	coupon := &models.Coupon{
		Code:      "TEN",
		Discount:  decimal.NewFromInt(10),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(coupon).Error)

	cart, err := svc.ApplyCoupon(ctx, userID, "TEN")
	require.NoError(t, err)

	assert.True(t, cart.TotalCartPrice.Equal(decimal.RequireFromString("100.00")))
	require.NotNil(t, cart.TotalPriceAfterDiscount)
	assert.True(t, cart.TotalPriceAfterDiscount.Equal(decimal.RequireFromString("90.00")))
}

func TestApplyCouponInvalidLeavesTotalsUntouched(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "50.00", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	_, err = svc.ApplyCoupon(ctx, userID, "NOPE")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	cart, err := svc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.True(t, cart.TotalCartPrice.Equal(decimal.RequireFromString("50.00")))
	assert.Nil(t, cart.TotalPriceAfterDiscount)
}

func TestMutationClearsAppliedDiscount(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "50.00", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	coupon := &models.Coupon{
		Code:      "TEN",
		Discount:  decimal.NewFromInt(10),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, db.Create(coupon).Error)

	cart, err := svc.ApplyCoupon(ctx, userID, "TEN")
	require.NoError(t, err)
	require.NotNil(t, cart.TotalPriceAfterDiscount)

	cart, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	assert.Nil(t, cart.TotalPriceAfterDiscount)
	assert.True(t, cart.TotalCartPrice.Equal(decimal.RequireFromString("100.00")))
}

func TestUpdateItemQuantity(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "20.00", true)

	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItemQuantity(ctx, userID, itemID, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, cart.TotalCartPrice.Equal(decimal.RequireFromString("100.00")))
}

func TestUpdateItemQuantityRejectsBelowOne(t *testing.T) {
	svc, _ := newCartService(t)

	for _, qty := range []int{0, -3} {
		_, err := svc.UpdateItemQuantity(context.Background(), uuid.New(), uuid.New(), qty)
		require.Error(t, err)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestUpdateItemQuantityMissingItem(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "20.00", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	_, err = svc.UpdateItemQuantity(ctx, userID, uuid.New(), 2)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "20.00", true)

	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.RemoveItem(ctx, userID, itemID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 0)
	assert.True(t, cart.TotalCartPrice.IsZero())

	// removing the same line again is a no-op
	cart, err = svc.RemoveItem(ctx, userID, itemID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 0)
}

func TestClearIsIdempotent(t *testing.T) {
	svc, db := newCartService(t)
	ctx := context.Background()
	userID := uuid.New()
	product := seedProduct(t, db, "20.00", true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, userID))
	require.NoError(t, svc.Clear(ctx, userID))

	_, err = svc.GetCart(ctx, userID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
