package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/shopcore-labs/shopcore-backend/internal/checkout"
	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
	"github.com/shopcore-labs/shopcore-backend/pkg/types"
)

type cardOrderFinalizer interface {
	FinalizeCardOrder(ctx context.Context, input checkout.CardOrderInput) (*models.Order, error)
}

// Service turns verified provider events into domain actions.
type Service struct {
	checkout cardOrderFinalizer
}

func NewService(finalizer cardOrderFinalizer) (*Service, error) {
	if finalizer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "checkout finalizer required")
	}
	return &Service{checkout: finalizer}, nil
}

// HandleEvent dispatches one verified event. Unrecognized event types are
// acknowledged without action so the provider does not retry them forever.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.completeCheckout(ctx, &session, event.Created)
	default:
		return nil
	}
}

func (s *Service) completeCheckout(ctx context.Context, session *stripe.CheckoutSession, createdEpoch int64) error {
	if session.ClientReferenceID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session missing cart reference")
	}
	cartID, err := uuid.Parse(session.ClientReferenceID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cart reference")
	}

	email := payerEmail(session)
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session missing payer email")
	}

	paidAt := time.Now()
	if createdEpoch > 0 {
		paidAt = time.Unix(createdEpoch, 0)
	}

	input := checkout.CardOrderInput{
		CartID:          cartID,
		PayerEmail:      email,
		AmountTotal:     decimal.New(session.AmountTotal, -2),
		ShippingAddress: types.AddressFromMetadata(session.Metadata),
		PaidAt:          paidAt,
	}

	_, err = s.checkout.FinalizeCardOrder(ctx, input)
	return err
}

func payerEmail(session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	return session.CustomerEmail
}
