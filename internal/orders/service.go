package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopcore-labs/shopcore-backend/pkg/db/models"
	pkgerrors "github.com/shopcore-labs/shopcore-backend/pkg/errors"
)

// Service exposes order history reads and the admin fulfillment updates.
type Service interface {
	List(ctx context.Context) ([]models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (*models.Order, error)
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (*models.Order, error)
}

type service struct {
	repo *Repository
}

// NewService builds an order service backed by the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]models.Order, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	return all, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) MarkPaid(ctx context.Context, id uuid.UUID, at time.Time) (*models.Order, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.MarkPaid(ctx, id, at); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order paid")
	}
	return s.Get(ctx, id)
}

func (s *service) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (*models.Order, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.MarkDelivered(ctx, id, at); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking order delivered")
	}
	return s.Get(ctx, id)
}
