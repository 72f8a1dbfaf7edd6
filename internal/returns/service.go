package returns

import (
	"context"
	"fmt"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/internal/inventory"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
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

// CreateInput is a customer's refund request for part of an order item.
type CreateInput struct {
	OrderItemID uuid.UUID
	Quantity    int
	Actor       auth.Actor
}

// Service drives the return workflow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Return, error)
	Transition(ctx context.Context, returnID uuid.UUID, target enums.ReturnStatus, actor auth.Actor) (*models.Return, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Return, error)
}

type service struct {
	repo       *Repository
	ordersRepo orders.Repository
	payments   *payments.Repository
	tx         txRunner
	window     time.Duration
	now        func() time.Time
}

// NewService builds the return workflow service.
func NewService(repo *Repository, ordersRepo orders.Repository, paymentsRepo *payments.Repository, tx txRunner, window time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("returns repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if paymentsRepo == nil {
		return nil, fmt.Errorf("payments repository required")
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
		payments:   paymentsRepo,
		tx:         tx,
		window:     window,
		now:        time.Now,
	}, nil
}

// Create opens a return request. The refund amount is frozen here from
// the order-time unit price; later catalog price changes never move it.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Return, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return quantity must be positive")
	}
	now := s.now()

	var result *models.Return
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

		returned, err := repo.ReturnedQuantity(ctx, item.ID)
		if err != nil {
			return err
		}
		if input.Quantity > item.Quantity-returned {
			return pkgerrors.New(pkgerrors.CodeQuantityExceedsOrdered, fmt.Sprintf(
				"cannot return %d of %d ordered (%d already returned)",
				input.Quantity, item.Quantity, returned,
			))
		}

		for _, check := range []func(context.Context, uuid.UUID) (bool, error){repo.HasActive, repo.HasActiveExchange} {
			active, err := check(ctx, item.ID)
			if err != nil {
				return err
			}
			if active {
				return pkgerrors.New(pkgerrors.CodeDuplicateRequest, fmt.Sprintf("order item %s already has an open request", item.ID))
			}
		}

		result, err = repo.Create(ctx, &models.Return{
			ID:          uuid.New(),
			OrderItemID: item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			UserID:      item.UserID,
			Quantity:    input.Quantity,
			AmountCents: item.UnitPriceCents * input.Quantity,
			Status:      enums.ReturnStatusRequested,
		})
		if err != nil {
			return err
		}
		return ordersRepo.SetItemStatus(ctx, item.ID, enums.OrderItemStatusReturnRequested)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// legal maps each return status to the statuses it may move to. Only
// privileged actors transition returns at all.
var legal = map[enums.ReturnStatus][]enums.ReturnStatus{
	enums.ReturnStatusRequested: {enums.ReturnStatusApproved, enums.ReturnStatusRejected},
	enums.ReturnStatusApproved:  {enums.ReturnStatusRefunded},
}

func canTransition(from, to enums.ReturnStatus) bool {
	for _, candidate := range legal[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// Transition moves a return through its lifecycle. Approval restores the
// returned quantity to stock exactly once, guarded by the conditional
// status write.
func (s *service) Transition(ctx context.Context, returnID uuid.UUID, target enums.ReturnStatus, actor auth.Actor) (*models.Return, error) {
	if !actor.Privileged {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only staff may process returns")
	}
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown return status %q", target))
	}

	var result *models.Return
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		row, err := repo.FindByID(ctx, returnID)
		if err != nil {
			return err
		}
		if !canTransition(row.Status, target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move return from %s to %s", row.Status, target))
		}

		moved, err := repo.UpdateStatusFrom(ctx, row.ID, row.Status, target)
		if err != nil {
			return err
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("return %s changed concurrently", row.ID))
		}

		switch target {
		case enums.ReturnStatusApproved:
			if err := inventory.Restore(ctx, tx, row.ProductID, row.Quantity); err != nil {
				return err
			}
			if err := ordersRepo.SetItemStatus(ctx, row.OrderItemID, enums.OrderItemStatusReturned); err != nil {
				return err
			}
		case enums.ReturnStatusRejected:
			if err := ordersRepo.SetItemStatus(ctx, row.OrderItemID, enums.OrderItemStatusReturnRejected); err != nil {
				return err
			}
		case enums.ReturnStatusRefunded:
			// Full-order refunds flip the payment record; partial refunds
			// are settled out of band by finance.
			payment, err := s.payments.WithTx(tx).GetByOrderID(ctx, row.OrderID)
			if err != nil {
				return err
			}
			if payment.AmountCents == row.AmountCents {
				if err := s.payments.WithTx(tx).UpdateStatus(ctx, row.OrderID, enums.PaymentStatusRefunded); err != nil {
					return err
				}
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

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Return, error) {
	return s.repo.ListByUser(ctx, userID)
}
