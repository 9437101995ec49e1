package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripego "github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/shopcore-labs/shopcore-backend/internal/cart"
	"github.com/shopcore-labs/shopcore-backend/internal/inventory"
	"github.com/shopcore-labs/shopcore-backend/internal/orders"
	"github.com/shopcore-labs/shopcore-backend/internal/pricing"
	"github.com/shopcore-labs/shopcore-backend/internal/users"
	"github.com/shopcore-labs/shopcore-backend/pkg/config"
	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	"github.com/shopcore-labs/shopcore-backend/pkg/enums"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
	stripepkg "github.com/shopcore-labs/shopcore-backend/pkg/stripe"
	"github.com/shopcore-labs/shopcore-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type paymentClient interface {
	CreateCheckoutSession(ctx context.Context, input stripepkg.CheckoutSessionInput) (*stripego.CheckoutSession, error)
}

// Service orchestrates the two purchase paths: immediate cash finalization
// and the card flow split into session creation plus webhook finalization.
type Service interface {
	CreateCashOrder(ctx context.Context, userID, cartID uuid.UUID, address types.Address) (*models.Order, error)
	CreateCheckoutSession(ctx context.Context, userID, cartID uuid.UUID, address types.Address) (*stripego.CheckoutSession, error)
	FinalizeCardOrder(ctx context.Context, input CardOrderInput) (*models.Order, error)
}

type service struct {
	tx       txRunner
	carts    *cart.Repository
	orders   *orders.Repository
	users    *users.Repository
	payments paymentClient
	tax      decimal.Decimal
	shipping decimal.Decimal
}

// NewService builds the checkout orchestrator.
func NewService(tx txRunner, carts *cart.Repository, orderRepo *orders.Repository, userRepo *users.Repository, payments paymentClient, cfg config.CheckoutConfig) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}

	tax, err := decimal.NewFromString(cfg.TaxPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid tax price %q: %w", cfg.TaxPrice, err)
	}
	shipping, err := decimal.NewFromString(cfg.ShippingPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid shipping price %q: %w", cfg.ShippingPrice, err)
	}

	return &service{
		tx:       tx,
		carts:    carts,
		orders:   orderRepo,
		users:    userRepo,
		payments: payments,
		tax:      tax,
		shipping: shipping,
	}, nil
}

// CardOrderInput carries the provider-confirmed payment details used to
// finalize a card order from a webhook event.
type CardOrderInput struct {
	CartID          uuid.UUID
	PayerEmail      string
	AmountTotal     decimal.Decimal
	ShippingAddress types.Address
	PaidAt          time.Time
}

// CreateCashOrder finalizes the cart as an unpaid cash-on-delivery order.
// Order creation, stock adjustment and cart deletion commit together or not
// at all.
func (s *service) CreateCashOrder(ctx context.Context, userID, cartID uuid.UUID, address types.Address) (*models.Order, error) {
	sourceCart, err := s.loadCartForUser(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}

	total := pricing.OrderTotal(sourceCart, s.tax, s.shipping)

	order := &models.Order{
		UserID:          userID,
		Items:           orderItemsFromCart(sourceCart),
		ShippingAddress: address,
		TotalOrderPrice: total,
		PaymentMethod:   enums.PaymentMethodCash,
	}

	if err := s.finalize(ctx, order, sourceCart.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// CreateCheckoutSession opens a hosted payment session for the cart. Nothing
// is written; the order materializes only when the provider confirms payment.
func (s *service) CreateCheckoutSession(ctx context.Context, userID, cartID uuid.UUID, address types.Address) (*stripego.CheckoutSession, error) {
	sourceCart, err := s.loadCartForUser(ctx, userID, cartID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	total := pricing.OrderTotal(sourceCart, s.tax, s.shipping)

	session, err := s.payments.CreateCheckoutSession(ctx, stripepkg.CheckoutSessionInput{
		CartID:        sourceCart.ID.String(),
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		AmountMinor:   pricing.MinorUnits(total),
		Metadata:      address.Metadata(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating checkout session")
	}
	return session, nil
}

// FinalizeCardOrder turns a confirmed payment into a paid card order. The
// payer is resolved by the email the provider reports; the sale amount is the
// provider-confirmed total, not a recomputation.
func (s *service) FinalizeCardOrder(ctx context.Context, input CardOrderInput) (*models.Order, error) {
	user, err := s.users.FindByEmail(ctx, input.PayerEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no user for payer email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving payer")
	}

	sourceCart, err := s.loadCart(ctx, input.CartID)
	if err != nil {
		return nil, err
	}

	paidAt := input.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	order := &models.Order{
		UserID:          user.ID,
		Items:           orderItemsFromCart(sourceCart),
		ShippingAddress: input.ShippingAddress,
		TotalOrderPrice: input.AmountTotal,
		PaymentMethod:   enums.PaymentMethodCard,
		IsPaid:          true,
		PaidAt:          &paidAt,
	}

	if err := s.finalize(ctx, order, sourceCart.ID); err != nil {
		return nil, err
	}
	return order, nil
}

// finalize runs the single transaction shared by both purchase paths.
func (s *service) finalize(ctx context.Context, order *models.Order, cartID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.orders.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		if err := inventory.ApplyOrderDeltas(ctx, tx, order.Items); err != nil {
			return err
		}

		cartRepo := s.carts.WithTx(tx)
		if err := cartRepo.DeleteItemsByCart(ctx, cartID); err != nil {
			return err
		}
		return cartRepo.DeleteByID(ctx, cartID)
	})
	if err != nil {
		if coded := pkgerrors.As(err); coded != nil {
			return coded
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finalizing order")
	}
	return nil
}

func (s *service) loadCart(ctx context.Context, cartID uuid.UUID) (*models.Cart, error) {
	sourceCart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	if len(sourceCart.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	return sourceCart, nil
}

func (s *service) loadCartForUser(ctx context.Context, userID, cartID uuid.UUID) (*models.Cart, error) {
	sourceCart, err := s.loadCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	// a cart owned by someone else is indistinguishable from a missing one
	if sourceCart.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
	}
	return sourceCart, nil
}

func orderItemsFromCart(c *models.Cart) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Color:     line.Color,
			Price:     line.Price,
			Quantity:  line.Quantity,
		})
	}
	return items
}
