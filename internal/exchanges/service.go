package exchanges

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/internal/inventory"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/auth"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput is a customer's request to swap an order item for a
// different size or quantity of the same product.
type CreateInput struct {
	OrderItemID uuid.UUID
	NewSize     string
	NewQuantity int
	Actor       auth.Actor
}

// Service drives the exchange workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Exchange, error)
	Transition(ctx context.Context, exchangeID uuid.UUID, target enums.ExchangeStatus, actor auth.Actor) (*models.Exchange, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Exchange, error)
}

type service struct {
	repo       *Repository
	ordersRepo orders.Repository
	tx         txRunner
	window     time.Duration
	now        func() time.Time
}

// NewService builds the exchange workflow service.
func NewService(repo *Repository, ordersRepo orders.Repository, tx txRunner, window time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("exchanges repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if window <= 0 {
		return nil, fmt.Errorf("return window must be positive")
	}
	return &service{
		repo:       repo,
		ordersRepo: ordersRepo,
		tx:         tx,
		window:     window,
		now:        time.Now,
	}, nil
}

// Create opens an exchange request. Stock does not move until the
// request is approved.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Exchange, error) {
	if strings.TrimSpace(input.NewSize) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new size is required")
	}
	if input.NewQuantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new quantity must be positive")
	}
	now := s.now()

	var result *models.Exchange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		item, err := ordersRepo.FindItem(ctx, input.OrderItemID)
		if err != nil {
			return err
		}
		if !input.Actor.Privileged && item.UserID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order item belongs to another user")
		}

		order, err := ordersRepo.FindByID(ctx, item.OrderID)
		if err != nil {
			return err
		}
		if err := orders.CheckReturnWindow(order, now, s.window); err != nil {
			return err
		}

		for _, check := range []func(context.Context, uuid.UUID) (bool, error){repo.HasActive, repo.HasActiveReturn} {
			active, err := check(ctx, item.ID)
			if err != nil {
				return err
			}
			if active {
				return pkgerrors.New(pkgerrors.CodeDuplicateRequest, fmt.Sprintf("order item %s already has an open request", item.ID))
			}
		}

		result, err = repo.Create(ctx, &models.Exchange{
			ID:           uuid.New(),
			OrderItemID:  item.ID,
			OrderID:      item.OrderID,
			ProductID:    item.ProductID,
			UserID:       item.UserID,
			OriginalSize: item.Size,
			NewSize:      input.NewSize,
			NewQuantity:  input.NewQuantity,
			Status:       enums.ExchangeStatusRequested,
		})
		if err != nil {
			return err
		}
		return ordersRepo.SetItemStatus(ctx, item.ID, enums.OrderItemStatusExchangeRequest)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

var legal = map[enums.ExchangeStatus][]enums.ExchangeStatus{
	enums.ExchangeStatusRequested: {enums.ExchangeStatusApproved, enums.ExchangeStatusRejected},
	enums.ExchangeStatusApproved:  {enums.ExchangeStatusCompleted},
}

func canTransition(from, to enums.ExchangeStatus) bool {
	for _, candidate := range legal[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transition moves an exchange through its lifecycle. Approval restores the
// original quantity and reserves the new one inside a single transaction;
// if the new size cannot be reserved, everything rolls back and the request
// stays requested for a later retry.
func (s *service) Transition(ctx context.Context, exchangeID uuid.UUID, target enums.ExchangeStatus, actor auth.Actor) (*models.Exchange, error) {
	if !actor.Privileged {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff may process exchanges")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown exchange status %q", target))
	}

	var result *models.Exchange
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		row, err := repo.FindByID(ctx, exchangeID)
		if err != nil {
			return err
		}
		if !canTransition(row.Status, target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move exchange from %s to %s", row.Status, target))
		}

		moved, err := repo.UpdateStatusFrom(ctx, row.ID, row.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("exchange %s changed concurrently", row.ID))
		}

		switch target {
		case enums.ExchangeStatusApproved:
			item, err := ordersRepo.FindItem(ctx, row.OrderItemID)
			if err != nil {
				return err
			}
			if err := inventory.Restore(ctx, tx, row.ProductID, item.Quantity); err != nil {
				return err
			}
			reserve := []inventory.Reservation{{ProductID: row.ProductID, Size: row.NewSize, Qty: row.NewQuantity}}
			if err := inventory.Reserve(ctx, tx, reserve); err != nil {
				return err
			}
			if err := ordersRepo.SetItemStatus(ctx, row.OrderItemID, enums.OrderItemStatusExchanged); err != nil {
				return err
			}
		case enums.ExchangeStatusRejected:
			if err := ordersRepo.SetItemStatus(ctx, row.OrderItemID, enums.OrderItemStatusExchangeRejected); err != nil {
				return err
			}
		}

		result, err = repo.FindByID(ctx, row.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Exchange, error) {
	return s.repo.ListByUser(ctx, userID)
}
