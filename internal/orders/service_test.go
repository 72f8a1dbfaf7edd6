package orders

import (
	"context"
	"testing"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/auth"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type stubTxRunner struct {
	db *gorm.DB
}

func (s *stubTxRunner) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.Transaction(fn)
}

type fixture struct {
	db  *gorm.DB
	svc *service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Order{}, &models.OrderItem{}, &models.Payment{}, &models.ProductStock{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db), &stubTxRunner{db: db}, payments.NewRepository(db), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	impl.now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	impl.newOTP = func() (string, error) { return "123456", nil }
	return &fixture{db: db, svc: impl}
}

func (f *fixture) seedOrder(t *testing.T, status enums.OrderStatus, method enums.PaymentMethod, qty int) (*models.Order, uuid.UUID) {
	t.Helper()
	productID := uuid.New()
	if err := f.db.Create(&models.ProductStock{ProductID: productID, AvailableQty: 10}).Error; err != nil {
		t.Fatalf("seed stock: %v", err)
	}
	userID := uuid.New()
	order := models.Order{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        status,
		SubtotalCents: 79900 * qty,
		TotalCents:    79900 * qty,
		PaymentMethod: method,
		Items: []models.OrderItem{{
			ID:             uuid.New(),
			UserID:         userID,
			ProductID:      productID,
			Name:           "Crew Neck Tee",
			Size:           "M",
			Quantity:       qty,
			UnitPriceCents: 79900,
			Status:         enums.OrderItemStatusOrdered,
		}},
	}
	if err := f.db.Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	paymentType := enums.PaymentTypeCOD
	if method == enums.PaymentMethodOnline {
		paymentType = enums.PaymentTypeUPI
	}
	payment := models.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		UserID:      userID,
		Type:        paymentType,
		Status:      enums.PaymentStatusPending,
		AmountCents: order.TotalCents,
		InvoiceNo:   "INV-TEST-" + uuid.NewString(),
	}
	if err := f.db.Create(&payment).Error; err != nil {
		t.Fatalf("seed payment: %v", err)
	}
	return &order, productID
}

func paginationParams(limit int, cursor string) pagination.Params {
	return pagination.Params{Limit: limit, Cursor: cursor}
}

func privileged() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Privileged: true}
}

func TestForwardChainSideEffects(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	order, _ := f.seedOrder(t, enums.OrderStatusPlaced, enums.PaymentMethodCOD, 2)
	admin := privileged()

	chain := []enums.OrderStatus{
		enums.OrderStatusConfirmed,
		enums.OrderStatusPacked,
		enums.OrderStatusShipped,
		enums.OrderStatusOutForDelivery,
	}
	for _, target := range chain {
		if _, err := f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: target, Actor: admin}); err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
	}

	var current models.Order
	if err := f.db.First(&current, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if current.DeliveryOTP == nil || *current.DeliveryOTP != "123456" {
		t.Fatalf("expected delivery otp issued, got %v", current.DeliveryOTP)
	}

	if _, err := f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: enums.OrderStatusDelivered, Actor: admin}); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if err := f.db.First(&current, "id = ?", order.ID).Error; err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if current.DeliveryOTP != nil {
		t.Fatalf("expected otp cleared on delivery, got %v", *current.DeliveryOTP)
	}
	if current.DeliveryDate == nil || !current.DeliveryDate.Equal(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected delivery date stamped, got %v", current.DeliveryDate)
	}

	var payment models.Payment
	if err := f.db.First(&payment, "order_id = ?", order.ID).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.Status != enums.PaymentStatusSuccess {
		t.Fatalf("expected cod payment settled on delivery, got %s", payment.Status)
	}
}

func TestInvalidTransition(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	order, _ := f.seedOrder(t, enums.OrderStatusPlaced, enums.PaymentMethodCOD, 1)

	_, err := f.svc.Transition(context.Background(), TransitionInput{
		OrderID: order.ID,
		Target:  enums.OrderStatusShipped,
		Actor:   privileged(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestCancelRestoresStockOnce(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	order, productID := f.seedOrder(t, enums.OrderStatusConfirmed, enums.PaymentMethodCOD, 3)

	// Simulate the stock decrement that happened at placement.
	err := f.db.Model(&models.ProductStock{}).
		Where("product_id = ?", productID).
		UpdateColumn("available_qty", gorm.Expr("available_qty - ?", 3)).Error
	if err != nil {
		t.Fatalf("decrement stock: %v", err)
	}

	owner := auth.Actor{UserID: order.UserID}
	if _, err := f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: enums.OrderStatusCancelled, Actor: owner}); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var stock models.ProductStock
	if err := f.db.First(&stock, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	if stock.AvailableQty != 10 {
		t.Fatalf("expected stock restored to 10, got %d", stock.AvailableQty)
	}

	// A retried cancellation must not restore a second time.
	if _, err := f.svc.Transition(ctx, TransitionInput{OrderID: order.ID, Target: enums.OrderStatusCancelled, Actor: owner}); err != nil {
		t.Fatalf("retried cancel: %v", err)
	}
	if err := f.db.First(&stock, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("reload stock: %v", err)
	}
	if stock.AvailableQty != 10 {
		t.Fatalf("expected stock unchanged after retry, got %d", stock.AvailableQty)
	}
}

func TestOwnerPolicy(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	packed, _ := f.seedOrder(t, enums.OrderStatusPacked, enums.PaymentMethodCOD, 1)
	owner := auth.Actor{UserID: packed.UserID}

	// Owners cannot cancel once the order is packed.
	_, err := f.svc.Transition(ctx, TransitionInput{OrderID: packed.ID, Target: enums.OrderStatusCancelled, Actor: owner})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// A privileged actor still can.
	if _, err := f.svc.Transition(ctx, TransitionInput{OrderID: packed.ID, Target: enums.OrderStatusCancelled, Actor: privileged()}); err != nil {
		t.Fatalf("privileged cancel: %v", err)
	}

	// Owners cannot drive forward transitions at all.
	placed, _ := f.seedOrder(t, enums.OrderStatusPlaced, enums.PaymentMethodCOD, 1)
	_, err = f.svc.Transition(ctx, TransitionInput{OrderID: placed.ID, Target: enums.OrderStatusConfirmed, Actor: auth.Actor{UserID: placed.UserID}})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for owner forward move, got %v", err)
	}

	// An owner cannot touch someone else's order at all.
	_, err = f.svc.Transition(ctx, TransitionInput{OrderID: placed.ID, Target: enums.OrderStatusCancelled, Actor: auth.Actor{UserID: uuid.New()}})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}
}

func TestListForUserPaginates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		order := models.Order{
			ID:            uuid.New(),
			UserID:        userID,
			Status:        enums.OrderStatusPlaced,
			TotalCents:    1000,
			PaymentMethod: enums.PaymentMethodCOD,
			CreatedAt:     base.Add(time.Duration(i) * time.Hour),
		}
		if err := f.db.Create(&order).Error; err != nil {
			t.Fatalf("seed order %d: %v", i, err)
		}
	}

	first, next, err := f.svc.ListForUser(ctx, userID, paginationParams(2, ""))
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first) != 2 || next == "" {
		t.Fatalf("expected full first page with cursor, got %d rows", len(first))
	}
	second, next2, err := f.svc.ListForUser(ctx, userID, paginationParams(2, next))
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second) != 1 || next2 != "" {
		t.Fatalf("expected final page of 1, got %d rows cursor %q", len(second), next2)
	}
	if !first[0].CreatedAt.After(second[0].CreatedAt) {
		t.Fatal("expected newest-first ordering across pages")
	}
}
