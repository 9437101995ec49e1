package coupons

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
)

// Service exposes coupon validation for checkout plus admin management.
type Service interface {
	Validate(ctx context.Context, code string, now time.Time) (*models.Coupon, error)
	Create(ctx context.Context, input UpsertCouponInput) (*models.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertCouponInput) (*models.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
}

type service struct {
	repo *Repository
}

// NewService builds a coupon service backed by the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &service{repo: repo}, nil
}

// UpsertCouponInput captures the admin payload for creating or updating a coupon.
type UpsertCouponInput struct {
	Code      string          `json:"code" validate:"required"`
	Discount  decimal.Decimal `json:"discount" validate:"required"`
	ExpiresAt time.Time       `json:"expiresAt" validate:"required"`
}

// Validate resolves a coupon code to an eligible coupon. Unknown and expired
// codes both surface as not found so callers cannot probe coupon lifetimes.
func (s *service) Validate(ctx context.Context, code string, now time.Time) (*models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}

	coupon, err := s.repo.FindEligibleByCode(ctx, code, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon is invalid or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "looking up coupon")
	}
	return coupon, nil
}

func (s *service) Create(ctx context.Context, input UpsertCouponInput) (*models.Coupon, error) {
	if err := validateCouponInput(input); err != nil {
		return nil, err
	}

	coupon := &models.Coupon{
		Code:      strings.TrimSpace(input.Code),
		Discount:  input.Discount,
		ExpiresAt: input.ExpiresAt,
	}
	created, err := s.repo.Create(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating coupon")
	}
	return created, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertCouponInput) (*models.Coupon, error) {
	if err := validateCouponInput(input); err != nil {
		return nil, err
	}

	coupon, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	coupon.Code = strings.TrimSpace(input.Code)
	coupon.Discount = input.Discount
	coupon.ExpiresAt = input.ExpiresAt

	updated, err := s.repo.Update(ctx, coupon)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating coupon")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting coupon")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "coupon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading coupon")
	}
	return coupon, nil
}

func (s *service) List(ctx context.Context) ([]models.Coupon, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing coupons")
	}
	return all, nil
}

func validateCouponInput(input UpsertCouponInput) error {
	if strings.TrimSpace(input.Code) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "coupon code is required")
	}
	if input.Discount.IsNegative() || input.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "discount must be between 0 and 100")
	}
	if input.ExpiresAt.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry is required")
	}
	return nil
}
