package coupons

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
)

func setupCouponsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS coupons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  discount NUMERIC NOT NULL,
  expires_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newCouponsService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := setupCouponsTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc, db
}

func TestValidateReturnsEligibleCoupon(t *testing.T) {
	svc, _ := newCouponsService(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Create(ctx, UpsertCouponInput{
		Code:      "SUMMER10",
		Discount:  decimal.NewFromInt(10),
		ExpiresAt: now.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	coupon, err := svc.Validate(ctx, "SUMMER10", now)
	require.NoError(t, err)
	assert.Equal(t, "SUMMER10", coupon.Code)
	assert.True(t, coupon.Discount.Equal(decimal.NewFromInt(10)))
}

func TestValidateExpiredCouponLooksMissing(t *testing.T) {
	svc, _ := newCouponsService(t)
	ctx := context.Background()
	now := time.Now()

	_, err := svc.Create(ctx, UpsertCouponInput{
		Code:      "BYGONE",
		Discount:  decimal.NewFromInt(25),
		ExpiresAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)

	_, expiredErr := svc.Validate(ctx, "BYGONE", now)
	_, missingErr := svc.Validate(ctx, "NEVERWAS", now)

	require.Error(t, expiredErr)
	require.Error(t, missingErr)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(expiredErr).Code())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(missingErr).Code())
	assert.Equal(t, pkgerrors.As(missingErr).Message(), pkgerrors.As(expiredErr).Message())
}

func TestValidateBlankCode(t *testing.T) {
	svc, _ := newCouponsService(t)

	_, err := svc.Validate(context.Background(), "   ", time.Now())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCouponCRUDLifecycle(t *testing.T) {
	svc, _ := newCouponsService(t)
	ctx := context.Background()
	expiry := time.Now().Add(48 * time.Hour)

	created, err := svc.Create(ctx, UpsertCouponInput{
		Code:      "WELCOME5",
		Discount:  decimal.NewFromInt(5),
		ExpiresAt: expiry,
	})
	require.NoError(t, err)
	require.NotEqual(t, "", created.ID.String())

	updated, err := svc.Update(ctx, created.ID, UpsertCouponInput{
		Code:      "WELCOME15",
		Discount:  decimal.NewFromInt(15),
		ExpiresAt: expiry,
	})
	require.NoError(t, err)
	assert.Equal(t, "WELCOME15", updated.Code)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateRejectsOutOfRangeDiscount(t *testing.T) {
	svc, _ := newCouponsService(t)

	_, err := svc.Create(context.Background(), UpsertCouponInput{
		Code:      "TOOBIG",
		Discount:  decimal.NewFromInt(120),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}
