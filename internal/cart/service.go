package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopcore-labs/shopcore-backend/internal/pricing"
	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type couponValidator interface {
	Validate(ctx context.Context, code string, now time.Time) (*models.Coupon, error)
}

// Service exposes the per-user cart operations.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.Cart, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	products productLoader
	coupons  couponValidator
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, products productLoader, coupons couponValidator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if coupons == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		coupons:  coupons,
	}, nil
}

// AddItemInput is the payload for adding one unit of a product to the cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Color     string    `json:"color"`
}

// AddItem adds one unit of the product in the given color. An existing
// (product, color) line absorbs the add as a quantity increment; the unit
// price is snapshotted from the catalog only when the line is first created.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	var out *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			cart, err = repo.Create(ctx, &models.Cart{UserID: userID})
		}
		if err != nil {
			return err
		}

		var existing *models.CartItem
		for i := range cart.Items {
			if cart.Items[i].ProductID == input.ProductID && cart.Items[i].Color == input.Color {
				existing = &cart.Items[i]
				break
			}
		}

		if existing != nil {
			if err := repo.UpdateItemQuantity(ctx, existing.ID, existing.Quantity+1); err != nil {
				return err
			}
		} else {
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: input.ProductID,
				Color:     input.Color,
				Price:     product.Price,
				Quantity:  1,
			}
			if _, err := repo.CreateItem(ctx, item); err != nil {
				return err
			}
		}

		out, err = s.recompute(ctx, repo, cart.ID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "adding cart item")
	}
	return out, nil
}

// GetCart returns the user's cart, or not found when none exists yet.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	cart, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cart for this user")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return cart, nil
}

// UpdateItemQuantity sets the quantity on an existing line. Quantities below
// one are rejected; removal goes through RemoveItem.
func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.Cart, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}

		var found bool
		for i := range cart.Items {
			if cart.Items[i].ID == itemID {
				found = true
				break
			}
		}
		if !found {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}

		if err := repo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
			return err
		}

		out, err = s.recompute(ctx, repo, cart.ID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "updating cart item")
	}
	return out, nil
}

// RemoveItem deletes a line if present. Removing an absent line is a no-op
// that still returns the current cart.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Cart, error) {
	var out *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}

		removed, err := repo.DeleteItem(ctx, cart.ID, itemID)
		if err != nil {
			return err
		}
		if removed == 0 {
			out = cart
			return nil
		}

		out, err = s.recompute(ctx, repo, cart.ID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "removing cart item")
	}
	return out, nil
}

// Clear deletes the user's cart entirely. Clearing an absent cart succeeds.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := repo.DeleteItemsByCart(ctx, cart.ID); err != nil {
			return err
		}
		return repo.DeleteByID(ctx, cart.ID)
	})
	if err != nil {
		return wrapCartErr(err, "clearing cart")
	}
	return nil
}

// ApplyCoupon computes the discounted total for the current cart contents.
// The raw total is untouched so the coupon can be re-derived or dropped.
func (s *service) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*models.Cart, error) {
	coupon, err := s.coupons.Validate(ctx, code, time.Now())
	if err != nil {
		return nil, err
	}

	var out *models.Cart
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.FindByUser(ctx, userID)
		if err != nil {
			return err
		}

		discounted := pricing.DiscountedTotal(cart.TotalCartPrice, coupon.Discount)
		if err := repo.UpdateTotals(ctx, cart.ID, cart.TotalCartPrice, &discounted); err != nil {
			return err
		}

		out, err = repo.FindByID(ctx, cart.ID)
		return err
	})
	if err != nil {
		return nil, wrapCartErr(err, "applying coupon")
	}
	return out, nil
}

// recompute rederives the cart total from its lines and clears any applied
// discount, then returns the fresh cart.
func (s *service) recompute(ctx context.Context, repo *Repository, cartID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}

	total := pricing.CartTotal(cart.Items)
	if err := repo.UpdateTotals(ctx, cartID, total, nil); err != nil {
		return nil, err
	}

	cart.TotalCartPrice = total
	cart.TotalPriceAfterDiscount = nil
	return cart, nil
}

func wrapCartErr(err error, msg string) error {
	if coded := pkgerrors.As(err); coded != nil {
		return coded
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "no cart for this user")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
