package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/internal/address"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/cart"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/products"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
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

type stubCoupons struct {
	discount int
	err      error
	calls    int
}

func (s *stubCoupons) Validate(_ context.Context, _ string, _ int) (int, error) {
	s.calls++
	if s.err != nil {
		return 0, s.err
	}
	return s.discount, nil
}

type stubGateway struct {
	ref      string
	validSig string
}

func (s *stubGateway) Initiate(_ context.Context, _ int) (string, error) {
	return s.ref, nil
}

func (s *stubGateway) VerifySignature(_, _, signature string) bool {
	return signature == s.validSig
}

type fixture struct {
	db      *gorm.DB
	svc     Service
	coupons *stubCoupons
	gateway *stubGateway
	now     time.Time
	userID  uuid.UUID
	addrID  uuid.UUID
	tee     uuid.UUID
	jeans   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Product{}, &models.ProductStock{}, &models.CartItem{}, &models.Address{},
		&models.Order{}, &models.OrderItem{}, &models.Payment{}, &models.PendingGatewayOrder{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{
		db:      db,
		coupons: &stubCoupons{},
		gateway: &stubGateway{ref: "order_test_ref", validSig: "good-signature"},
		now:     time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		userID:  uuid.New(),
		addrID:  uuid.New(),
		tee:     uuid.New(),
		jeans:   uuid.New(),
	}

	svc, err := NewService(
		&stubTxRunner{db: db},
		cart.NewRepository(db),
		products.NewRepository(db),
		address.NewRepository(db),
		payments.NewRepository(db),
		NewPendingRepository(db),
		orders.NewRepository(db),
		f.coupons,
		f.gateway,
		nil,
		30*time.Minute,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.(*service).now = func() time.Time { return f.now }
	f.svc = svc

	seed := []any{
		&models.Product{ID: f.tee, Name: "Crew Neck Tee", PriceCents: 79900},
		&models.Product{ID: f.jeans, Name: "Slim Fit Jeans", PriceCents: 249900},
		&models.ProductStock{ProductID: f.tee, AvailableQty: 10},
		&models.ProductStock{ProductID: f.jeans, AvailableQty: 1},
		&models.Address{
			ID: f.addrID, UserID: f.userID, Name: "Asha Rao", Phone: "9876543210",
			Line1: "14 MG Road", City: "Bengaluru", State: "Karnataka",
			PostalCode: "560001", Country: "IN",
		},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return f
}

func (f *fixture) fillCart(t *testing.T, teeQty, jeansQty int) {
	t.Helper()
	if teeQty > 0 {
		item := models.CartItem{ID: uuid.New(), UserID: f.userID, ProductID: f.tee, Size: "M", Quantity: teeQty}
		if err := f.db.Create(&item).Error; err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}
	if jeansQty > 0 {
		item := models.CartItem{ID: uuid.New(), UserID: f.userID, ProductID: f.jeans, Size: "32", Quantity: jeansQty}
		if err := f.db.Create(&item).Error; err != nil {
			t.Fatalf("seed cart: %v", err)
		}
	}
}

func (f *fixture) stockQty(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	var row models.ProductStock
	if err := f.db.First(&row, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load stock: %v", err)
	}
	return row.AvailableQty
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestPlaceCOD(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 2, 1)
	f.coupons.discount = 20000
	coupon := "FLAT200"

	order, err := f.svc.PlaceCOD(context.Background(), f.userID, f.addrID, &coupon)
	if err != nil {
		t.Fatalf("place cod: %v", err)
	}

	if order.Status != enums.OrderStatusPlaced {
		t.Fatalf("expected placed order, got %s", order.Status)
	}
	wantSubtotal := 2*79900 + 249900
	if order.SubtotalCents != wantSubtotal || order.DiscountCents != 20000 || order.TotalCents != wantSubtotal-20000 {
		t.Fatalf("unexpected totals: %+v", order)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(order.Items))
	}
	if order.ShippingAddress.Line1 != "14 MG Road" {
		t.Fatalf("expected embedded address snapshot, got %+v", order.ShippingAddress)
	}
	if order.Payment == nil || order.Payment.Type != enums.PaymentTypeCOD || order.Payment.Status != enums.PaymentStatusPending {
		t.Fatalf("unexpected payment: %+v", order.Payment)
	}
	if order.Payment.InvoiceNo == "" {
		t.Fatal("expected invoice number")
	}

	if got := f.stockQty(t, f.tee); got != 8 {
		t.Fatalf("expected tee stock 8, got %d", got)
	}
	if got := f.stockQty(t, f.jeans); got != 0 {
		t.Fatalf("expected jeans stock 0, got %d", got)
	}
	if got := f.count(t, &models.CartItem{}); got != 0 {
		t.Fatalf("expected cart consumed, %d lines left", got)
	}
}

func TestPlaceCODEmptyCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.PlaceCOD(context.Background(), f.userID, f.addrID, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestPlaceCODInsufficientStockRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 2, 2) // only 1 pair of jeans in stock

	_, err := f.svc.PlaceCOD(context.Background(), f.userID, f.addrID, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	if got := f.stockQty(t, f.tee); got != 10 {
		t.Fatalf("expected tee stock untouched, got %d", got)
	}
	if got := f.count(t, &models.Order{}); got != 0 {
		t.Fatalf("expected no order rows, got %d", got)
	}
	if got := f.count(t, &models.Payment{}); got != 0 {
		t.Fatalf("expected no payment rows, got %d", got)
	}
	if got := f.count(t, &models.CartItem{}); got != 2 {
		t.Fatalf("expected cart intact, got %d lines", got)
	}
}

func TestPlaceCODInvalidAddressRollsBack(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 1, 0)

	_, err := f.svc.PlaceCOD(context.Background(), f.userID, uuid.New(), nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidAddress {
		t.Fatalf("expected invalid address, got %v", err)
	}
	if got := f.stockQty(t, f.tee); got != 10 {
		t.Fatalf("expected reservation rolled back, got %d", got)
	}
}

func TestPlaceCODInvalidCoupon(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 1, 0)
	f.coupons.err = pkgerrors.New(pkgerrors.CodeInvalidCoupon, "coupon NOPE does not exist")
	coupon := "NOPE"

	_, err := f.svc.PlaceCOD(context.Background(), f.userID, f.addrID, &coupon)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInvalidCoupon {
		t.Fatalf("expected invalid coupon, got %v", err)
	}
	if got := f.stockQty(t, f.tee); got != 10 {
		t.Fatalf("coupon failure must not touch stock, got %d", got)
	}
}

func TestInitiateCreatesPendingWithoutStock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 1, 1)

	res, err := f.svc.Initiate(context.Background(), f.userID, f.addrID, nil)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if res.GatewayOrderRef != "order_test_ref" {
		t.Fatalf("unexpected ref %s", res.GatewayOrderRef)
	}
	if res.AmountCents != 79900+249900 {
		t.Fatalf("unexpected amount %d", res.AmountCents)
	}
	if !res.ExpiresAt.Equal(f.now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", res.ExpiresAt)
	}

	if got := f.stockQty(t, f.tee); got != 10 {
		t.Fatalf("initiate must not reserve stock, got %d", got)
	}
	if got := f.count(t, &models.Order{}); got != 0 {
		t.Fatalf("initiate must not create orders, got %d", got)
	}
	if got := f.count(t, &models.PendingGatewayOrder{}); got != 1 {
		t.Fatalf("expected 1 pending gateway order, got %d", got)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 1, 0)
	ctx := context.Background()

	if _, err := f.svc.Initiate(ctx, f.userID, f.addrID, nil); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	upi := "asharao@okbank"
	order, err := f.svc.Confirm(ctx, f.userID, ConfirmInput{
		GatewayOrderRef:  "order_test_ref",
		GatewayPaymentID: "pay_123",
		Signature:        "good-signature",
		PaymentType:      enums.PaymentTypeUPI,
		UPIID:            &upi,
	})
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}

	if order.Payment == nil || order.Payment.Status != enums.PaymentStatusSuccess || order.Payment.Type != enums.PaymentTypeUPI {
		t.Fatalf("unexpected payment: %+v", order.Payment)
	}
	if order.Payment.GatewayPaymentID == nil || *order.Payment.GatewayPaymentID != "pay_123" {
		t.Fatalf("expected gateway payment id recorded")
	}
	if got := f.stockQty(t, f.tee); got != 9 {
		t.Fatalf("expected stock reserved at confirm, got %d", got)
	}

	var pending models.PendingGatewayOrder
	if err := f.db.First(&pending, "gateway_order_ref = ?", "order_test_ref").Error; err != nil {
		t.Fatalf("load pending: %v", err)
	}
	if pending.Status != enums.GatewayOrderStatusConfirmed {
		t.Fatalf("expected pending confirmed, got %s", pending.Status)
	}

	// A replayed confirm for the same reference must fail cleanly.
	_, err = f.svc.Confirm(ctx, f.userID, ConfirmInput{
		GatewayOrderRef:  "order_test_ref",
		GatewayPaymentID: "pay_123",
		Signature:        "good-signature",
		PaymentType:      enums.PaymentTypeUPI,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict on replay, got %v", err)
	}
}

func TestConfirmBadSignature(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 1, 0)
	ctx := context.Background()

	if _, err := f.svc.Initiate(ctx, f.userID, f.addrID, nil); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	_, err := f.svc.Confirm(ctx, f.userID, ConfirmInput{
		GatewayOrderRef:  "order_test_ref",
		GatewayPaymentID: "pay_123",
		Signature:        "forged",
		PaymentType:      enums.PaymentTypeCard,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePaymentVerification {
		t.Fatalf("expected verification failure, got %v", err)
	}
	if got := f.stockQty(t, f.tee); got != 10 {
		t.Fatalf("signature failure must not touch stock, got %d", got)
	}
	if got := f.count(t, &models.Order{}); got != 0 {
		t.Fatalf("expected no order rows, got %d", got)
	}
}

func TestConfirmExpired(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 1, 0)
	ctx := context.Background()

	if _, err := f.svc.Initiate(ctx, f.userID, f.addrID, nil); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	svc := f.svc.(*service)
	later := f.now.Add(31 * time.Minute)
	svc.now = func() time.Time { return later }

	_, err := f.svc.Confirm(ctx, f.userID, ConfirmInput{
		GatewayOrderRef:  "order_test_ref",
		GatewayPaymentID: "pay_123",
		Signature:        "good-signature",
		PaymentType:      enums.PaymentTypeUPI,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected expired gateway order conflict, got %v", err)
	}
}

func TestConfirmCartChanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.fillCart(t, 1, 0)
	ctx := context.Background()

	if _, err := f.svc.Initiate(ctx, f.userID, f.addrID, nil); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	// The customer adds jeans after initiating payment for just the tee.
	f.fillCart(t, 0, 1)

	_, err := f.svc.Confirm(ctx, f.userID, ConfirmInput{
		GatewayOrderRef:  "order_test_ref",
		GatewayPaymentID: "pay_123",
		Signature:        "good-signature",
		PaymentType:      enums.PaymentTypeUPI,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected amount mismatch conflict, got %v", err)
	}
	if got := f.stockQty(t, f.tee); got != 10 {
		t.Fatalf("mismatch must not touch stock, got %d", got)
	}
}
