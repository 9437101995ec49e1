package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	"github.com/shopcore-labs/shopcore-backend/internal/checkout"
	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
)

type stubFinalizer struct {
	calls []checkout.CardOrderInput
	err   error
}

func (s *stubFinalizer) FinalizeCardOrder(_ context.Context, input checkout.CardOrderInput) (*models.Order, error) {
	s.calls = append(s.calls, input)
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: uuid.New()}, nil
}

type fakeIdempotencyStore struct {
	keys map[string]string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{keys: map[string]string{}}
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.keys[key] = fmt.Sprint(value)
	return nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.keys[key]; ok {
		return false, nil
	}
	f.keys[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "sc:idempotency:" + scope + ":" + id
}

func completedEvent(t *testing.T, session stripe.CheckoutSession) *stripe.Event {
	t.Helper()

	raw, err := json.Marshal(session)
	require.NoError(t, err)
	return &stripe.Event{
		ID:      "evt_1",
		Type:    stripe.EventTypeCheckoutSessionCompleted,
		Created: time.Now().Unix(),
		Data:    &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventFinalizesCardOrder(t *testing.T) {
	finalizer := &stubFinalizer{}
	svc, err := NewService(finalizer)
	require.NoError(t, err)

	cartID := uuid.New()
	event := completedEvent(t, stripe.CheckoutSession{
		ClientReferenceID: cartID.String(),
		CustomerEmail:     "shopper@example.com",
		AmountTotal:       9000,
		Metadata: map[string]string{
			"details":    "1 Main St",
			"phone":      "555-0100",
			"city":       "Springfield",
			"postalCode": "12345",
		},
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))

	require.Len(t, finalizer.calls, 1)
	input := finalizer.calls[0]
	assert.Equal(t, cartID, input.CartID)
	assert.Equal(t, "shopper@example.com", input.PayerEmail)
	assert.True(t, input.AmountTotal.Equal(decimal.RequireFromString("90.00")))
	assert.Equal(t, "Springfield", input.ShippingAddress.City)
	assert.False(t, input.PaidAt.IsZero())
}

func TestHandleEventPrefersCustomerDetailsEmail(t *testing.T) {
	finalizer := &stubFinalizer{}
	svc, err := NewService(finalizer)
	require.NoError(t, err)

	event := completedEvent(t, stripe.CheckoutSession{
		ClientReferenceID: uuid.New().String(),
		CustomerEmail:     "fallback@example.com",
		CustomerDetails:   &stripe.CheckoutSessionCustomerDetails{Email: "payer@example.com"},
	})

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	require.Len(t, finalizer.calls, 1)
	assert.Equal(t, "payer@example.com", finalizer.calls[0].PayerEmail)
}

func TestHandleEventIgnoresUnknownTypes(t *testing.T) {
	finalizer := &stubFinalizer{}
	svc, err := NewService(finalizer)
	require.NoError(t, err)

	event := &stripe.Event{
		Type: stripe.EventTypeInvoicePaid,
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}

	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, finalizer.calls)
}

func TestHandleEventRejectsBadCartReference(t *testing.T) {
	finalizer := &stubFinalizer{}
	svc, err := NewService(finalizer)
	require.NoError(t, err)

	for _, ref := range []string{"", "not-a-uuid"} {
		event := completedEvent(t, stripe.CheckoutSession{
			ClientReferenceID: ref,
			CustomerEmail:     "shopper@example.com",
		})
		handleErr := svc.HandleEvent(context.Background(), event)
		require.Error(t, handleErr)
		assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(handleErr).Code())
	}
	assert.Empty(t, finalizer.calls)
}

func TestIdempotencyGuardBlocksReplay(t *testing.T) {
	guard, err := NewIdempotencyGuard(newFakeIdempotencyStore(), time.Hour, "stripe-webhook")
	require.NoError(t, err)
	ctx := context.Background()

	replay, err := guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, replay)

	replay, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, replay)

	// releasing the claim re-arms the event for the provider's retry
	require.NoError(t, guard.Delete(ctx, "evt_1"))
	replay, err = guard.CheckAndMark(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, replay)
}
