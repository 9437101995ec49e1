package orders

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

	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	"github.com/shopcore-labs/shopcore-backend/pkg/enums"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schemas := []string{`
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  shipping_address TEXT,
  total_order_price NUMERIC NOT NULL,
  payment_method TEXT NOT NULL DEFAULT 'cash',
  is_paid INTEGER NOT NULL DEFAULT 0,
  paid_at DATETIME,
  is_delivered INTEGER NOT NULL DEFAULT 0,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  color TEXT,
  price NUMERIC NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME
);`}

	for _, schema := range schemas {
		require.NoError(t, db.Exec(schema).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, userID uuid.UUID) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:          userID,
		TotalOrderPrice: decimal.NewFromInt(40),
		PaymentMethod:   enums.PaymentMethodCash,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Price: decimal.NewFromInt(20), Quantity: 2},
		},
	}
	created, err := NewRepository(db).Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func newOrdersService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()

	db := setupOrdersTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc, db
}

func TestGetAndListOrders(t *testing.T) {
	svc, db := newOrdersService(t)
	ctx := context.Background()
	userID := uuid.New()
	order := seedOrder(t, db, userID)
	seedOrder(t, db, uuid.New())

	got, err := svc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, userID, got.UserID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 2, got.Items[0].Quantity)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetMissingOrder(t *testing.T) {
	svc, _ := newOrdersService(t)

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestMarkPaidAndDelivered(t *testing.T) {
	svc, db := newOrdersService(t)
	ctx := context.Background()
	order := seedOrder(t, db, uuid.New())
	now := time.Now().UTC().Truncate(time.Second)

	paid, err := svc.MarkPaid(ctx, order.ID, now)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)

	delivered, err := svc.MarkDelivered(ctx, order.ID, now)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
}

func TestMarkPaidMissingOrder(t *testing.T) {
	svc, _ := newOrdersService(t)

	_, err := svc.MarkPaid(context.Background(), uuid.New(), time.Now())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
