package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/internal/inventory"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/auth"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/metrics"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/otp"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// TransitionInput carries one status-change request.
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Actor   auth.Actor
}

// Service drives the order lifecycle and read paths.
type Service interface {
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error)
	ListAll(ctx context.Context, params pagination.Params) ([]models.Order, string, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	payments    *payments.Repository
	checkoutMet *metrics.CheckoutMetrics
	now         func() time.Time
	newOTP      func() (string, error)
}

// NewService builds the order lifecycle service.
func NewService(repo Repository, tx txRunner, paymentsRepo *payments.Repository, met *metrics.CheckoutMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if paymentsRepo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		payments:    paymentsRepo,
		checkoutMet: met,
		now:         time.Now,
		newOTP:      otp.Generate,
	}, nil
}

// Transition applies one status change with its side effects, all inside
// a single transaction. The status write is conditional on the status
// the decision was made against, so two racing transitions on the same
// order resolve to exactly one winner.
func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", input.Target))
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var order *models.Order
		var err error
		if input.Actor.Privileged {
			order, err = repo.FindByID(ctx, input.OrderID)
		} else {
			order, err = repo.FindByIDForUser(ctx, input.OrderID, input.Actor.UserID)
		}
		if err != nil {
			return err
		}

		// Retried cancellations land here; the restore already ran once.
		if order.Status == input.Target && input.Target == enums.OrderStatusCancelled {
			result = order
			return nil
		}

		if !input.Actor.Privileged && !OwnerMay(order.Status, input.Target) {
			return pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("customers cannot move an order from %s to %s", order.Status, input.Target))
		}
		if !CanTransition(order.Status, input.Target) {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("cannot move order from %s to %s", order.Status, input.Target))
		}

		extra, err := s.sideEffects(ctx, tx, order, input.Target)
		if err != nil {
			return err
		}

		moved, err := repo.UpdateStatusFrom(ctx, order.ID, order.Status, input.Target, extra)
		if err != nil {
			return err
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order %s changed concurrently", order.ID))
		}

		result, err = repo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		s.checkoutMet.IncTransition(input.Target.String(), "failure")
		return nil, err
	}
	s.checkoutMet.IncTransition(input.Target.String(), "success")
	return result, nil
}

// sideEffects computes the extra column writes for the target status and
// runs the stock restore for cancellations.
func (s *service) sideEffects(ctx context.Context, tx *gorm.DB, order *models.Order, target enums.OrderStatus) (map[string]any, error) {
	repo := s.repo.WithTx(tx)
	switch target {
	case enums.OrderStatusOutForDelivery:
		code, err := s.newOTP()
		if err != nil {
			return nil, err
		}
		return map[string]any{"delivery_otp": code}, nil

	case enums.OrderStatusDelivered:
		if order.PaymentMethod == enums.PaymentMethodCOD {
			if err := s.payments.WithTx(tx).UpdateStatus(ctx, order.ID, enums.PaymentStatusSuccess); err != nil {
				return nil, err
			}
		}
		return map[string]any{
			"delivery_otp":  nil,
			"delivery_date": s.now(),
		}, nil

	case enums.OrderStatusCancelled:
		first, err := repo.MarkStockRestored(ctx, order.ID)
		if err != nil {
			return nil, err
		}
		if first {
			for _, item := range order.Items {
				if err := inventory.Restore(ctx, tx, item.ProductID, item.Quantity); err != nil {
					return nil, err
				}
			}
		}
		return nil, nil

	default:
		return nil, nil
	}
}

func (s *service) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	return s.repo.FindByIDForUser(ctx, orderID, userID)
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, string, error) {
	return s.repo.ListByUser(ctx, userID, params)
}

func (s *service) ListAll(ctx context.Context, params pagination.Params) ([]models.Order, string, error) {
	return s.repo.List(ctx, params)
}
