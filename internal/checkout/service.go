package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/internal/address"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/cart"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/coupons"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/inventory"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/products"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/metrics"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway mirrors payments.Gateway so tests can stub the collaborator.
type Gateway interface {
	Initiate(ctx context.Context, amountCents int) (string, error)
	VerifySignature(orderRef, paymentID, signature string) bool
}

// InitiateResult is handed back to the client so it can complete the
// payment against the gateway.
type InitiateResult struct {
	GatewayOrderRef string    `json:"gateway_order_ref"`
	AmountCents     int       `json:"amount_cents"`
	ExpiresAt       time.Time `json:"expires_at"`
}

// ConfirmInput carries the gateway's capture proof back to us.
type ConfirmInput struct {
	GatewayOrderRef  string
	GatewayPaymentID string
	Signature        string
	PaymentType      enums.PaymentType
	CardRef          *string
	UPIID            *string
}

// Service places orders. COD places immediately; online splits into
// initiate and confirm, with stock touched only at confirm.
type Service interface {
	PlaceCOD(ctx context.Context, userID, addressID uuid.UUID, couponCode *string) (*models.Order, error)
	Initiate(ctx context.Context, userID, addressID uuid.UUID, couponCode *string) (*InitiateResult, error)
	Confirm(ctx context.Context, userID uuid.UUID, input ConfirmInput) (*models.Order, error)
}

type service struct {
	tx          txRunner
	cartRepo    *cart.Repository
	products    *products.Repository
	addresses   *address.Repository
	payments    *payments.Repository
	pending     *PendingRepository
	ordersRepo  orders.Repository
	coupons     coupons.Validator
	gateway     Gateway
	checkoutMet *metrics.CheckoutMetrics
	pendingTTL  time.Duration
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	cartRepo *cart.Repository,
	productRepo *products.Repository,
	addressRepo *address.Repository,
	paymentsRepo *payments.Repository,
	pendingRepo *PendingRepository,
	ordersRepo orders.Repository,
	couponValidator coupons.Validator,
	gateway Gateway,
	met *metrics.CheckoutMetrics,
	pendingTTL time.Duration,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if cartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if addressRepo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if paymentsRepo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if pendingRepo == nil {
		return nil, fmt.Errorf("pending gateway order repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if couponValidator == nil {
		return nil, fmt.Errorf("coupon validator required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if pendingTTL <= 0 {
		return nil, fmt.Errorf("pending gateway order ttl must be positive")
	}
	return &service{
		tx:          tx,
		cartRepo:    cartRepo,
		products:    productRepo,
		addresses:   addressRepo,
		payments:    paymentsRepo,
		pending:     pendingRepo,
		ordersRepo:  ordersRepo,
		coupons:     couponValidator,
		gateway:     gateway,
		checkoutMet: met,
		pendingTTL:  pendingTTL,
		now:         time.Now,
	}, nil
}

// PlaceCOD places an order settled on delivery. The payment row starts
// pending and is settled by the delivery transition.
func (s *service) PlaceCOD(ctx context.Context, userID, addressID uuid.UUID, couponCode *string) (*models.Order, error) {
	quote, err := s.quote(ctx, userID, couponCode)
	if err != nil {
		s.checkoutMet.IncPlacement(enums.PaymentMethodCOD.String(), "failure")
		return nil, err
	}

	order, err := s.place(ctx, placement{
		userID:        userID,
		addressID:     addressID,
		couponCode:    couponCode,
		quote:         quote,
		method:        enums.PaymentMethodCOD,
		paymentType:   enums.PaymentTypeCOD,
		paymentStatus: enums.PaymentStatusPending,
	})
	if err != nil {
		s.checkoutMet.IncPlacement(enums.PaymentMethodCOD.String(), "failure")
		return nil, err
	}
	s.checkoutMet.IncPlacement(enums.PaymentMethodCOD.String(), "success")
	return order, nil
}

// Initiate computes the total, registers it with the gateway, and
// records a pending gateway order. No stock is reserved and no order
// rows exist yet; an abandoned initiate simply expires.
func (s *service) Initiate(ctx context.Context, userID, addressID uuid.UUID, couponCode *string) (*InitiateResult, error) {
	if _, err := s.addresses.Get(ctx, addressID, userID); err != nil {
		return nil, err
	}
	quote, err := s.quote(ctx, userID, couponCode)
	if err != nil {
		return nil, err
	}

	ref, err := s.gateway.Initiate(ctx, quote.totalCents)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payment gateway initiate failed")
	}

	expiresAt := s.now().Add(s.pendingTTL)
	_, err = s.pending.Create(ctx, &models.PendingGatewayOrder{
		ID:              uuid.New(),
		UserID:          userID,
		AddressID:       addressID,
		CouponCode:      couponCode,
		AmountCents:     quote.totalCents,
		GatewayOrderRef: ref,
		Status:          enums.GatewayOrderStatusPending,
		ExpiresAt:       expiresAt,
	})
	if err != nil {
		return nil, err
	}
	return &InitiateResult{GatewayOrderRef: ref, AmountCents: quote.totalCents, ExpiresAt: expiresAt}, nil
}

// Confirm verifies the gateway signature and then runs the same
// placement transaction as COD. A signature mismatch aborts before any
// stock is touched.
func (s *service) Confirm(ctx context.Context, userID uuid.UUID, input ConfirmInput) (*models.Order, error) {
	order, err := s.confirm(ctx, userID, input)
	if err != nil {
		s.checkoutMet.IncPlacement(enums.PaymentMethodOnline.String(), "failure")
		return nil, err
	}
	s.checkoutMet.IncPlacement(enums.PaymentMethodOnline.String(), "success")
	return order, nil
}

func (s *service) confirm(ctx context.Context, userID uuid.UUID, input ConfirmInput) (*models.Order, error) {
	if input.PaymentType != enums.PaymentTypeCard && input.PaymentType != enums.PaymentTypeUPI {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "online payment type must be card or upi")
	}

	pending, err := s.pending.FindByRefForUser(ctx, input.GatewayOrderRef, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if pending.Status != enums.GatewayOrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("gateway order %s is %s", pending.GatewayOrderRef, pending.Status))
	}
	if now.After(pending.ExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("gateway order %s has expired", pending.GatewayOrderRef))
	}

	if !s.gateway.VerifySignature(input.GatewayOrderRef, input.GatewayPaymentID, input.Signature) {
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "gateway signature verification failed")
	}

	quote, err := s.quote(ctx, userID, pending.CouponCode)
	if err != nil {
		return nil, err
	}
	if quote.totalCents != pending.AmountCents {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart total changed since payment was initiated")
	}

	return s.place(ctx, placement{
		userID:           userID,
		addressID:        pending.AddressID,
		couponCode:       pending.CouponCode,
		quote:            quote,
		method:           enums.PaymentMethodOnline,
		paymentType:      input.PaymentType,
		paymentStatus:    enums.PaymentStatusSuccess,
		cardRef:          input.CardRef,
		upiID:            input.UPIID,
		gatewayOrderRef:  &pending.GatewayOrderRef,
		gatewayPaymentID: &input.GatewayPaymentID,
		pendingID:        &pending.ID,
	})
}

// cartQuote is the priced cart at coupon-validation time. The placement
// transaction re-reads the cart and rejects the placement if the totals
// no longer match, so the coupon call never needs to run inside the
// transaction.
type cartQuote struct {
	subtotalCents int
	discountCents int
	totalCents    int
}

func (s *service) quote(ctx context.Context, userID uuid.UUID, couponCode *string) (cartQuote, error) {
	lines, err := s.cartRepo.ListByUser(ctx, userID)
	if err != nil {
		return cartQuote{}, err
	}
	subtotal, err := s.priceLines(ctx, s.products, lines)
	if err != nil {
		return cartQuote{}, err
	}

	discount := 0
	if couponCode != nil && *couponCode != "" {
		discount, err = s.coupons.Validate(ctx, *couponCode, subtotal)
		if err != nil {
			return cartQuote{}, err
		}
	}
	return cartQuote{subtotalCents: subtotal, discountCents: discount, totalCents: subtotal - discount}, nil
}

func (s *service) priceLines(ctx context.Context, repo *products.Repository, lines []models.CartItem) (int, error) {
	if len(lines) == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	catalog, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	subtotal := 0
	for _, line := range lines {
		product, ok := catalog[line.ProductID]
		if !ok {
			return 0, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s no longer exists", line.ProductID))
		}
		subtotal += product.PriceCents * line.Quantity
	}
	return subtotal, nil
}

// placement is everything the shared transactional algorithm needs.
type placement struct {
	userID           uuid.UUID
	addressID        uuid.UUID
	couponCode       *string
	quote            cartQuote
	method           enums.PaymentMethod
	paymentType      enums.PaymentType
	paymentStatus    enums.PaymentStatus
	cardRef          *string
	upiID            *string
	gatewayOrderRef  *string
	gatewayPaymentID *string
	pendingID        *uuid.UUID
}

// place runs the placement transaction: re-read the cart, reserve stock
// conditionally, snapshot the address, write order + items + payment,
// consume the cart lines. Any failure rolls the whole thing back.
func (s *service) place(ctx context.Context, input placement) (*models.Order, error) {
	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		productRepo := s.products.WithTx(tx)
		addressRepo := s.addresses.WithTx(tx)
		paymentRepo := s.payments.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		// The cart is re-read inside the transaction; the earlier quote
		// was only used to validate the coupon.
		lines, err := cartRepo.ListByUser(ctx, input.userID)
		if err != nil {
			return err
		}
		subtotal, err := s.priceLines(ctx, productRepo, lines)
		if err != nil {
			return err
		}
		if subtotal != input.quote.subtotalCents {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout")
		}

		requests := make([]inventory.Reservation, len(lines))
		for i, line := range lines {
			requests[i] = inventory.Reservation{ProductID: line.ProductID, Size: line.Size, Qty: line.Quantity}
		}
		if err := inventory.Reserve(ctx, tx, requests); err != nil {
			return err
		}

		shipTo, err := addressRepo.Get(ctx, input.addressID, input.userID)
		if err != nil {
			return err
		}
		snapshot := address.Snapshot(shipTo)
		if missing := snapshot.Validate(); missing != "" {
			return pkgerrors.New(pkgerrors.CodeInvalidAddress, fmt.Sprintf("address is missing %s", missing))
		}

		catalog, err := productRepo.FindByIDs(ctx, productIDs(lines))
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:              uuid.New(),
			UserID:          input.userID,
			ShippingAddress: snapshot,
			Status:          enums.OrderStatusPlaced,
			SubtotalCents:   subtotal,
			DiscountCents:   input.quote.discountCents,
			TotalCents:      input.quote.totalCents,
			CouponCode:      input.couponCode,
			PaymentMethod:   input.method,
		}
		for _, line := range lines {
			product := catalog[line.ProductID]
			order.Items = append(order.Items, models.OrderItem{
				ID:             uuid.New(),
				UserID:         input.userID,
				ProductID:      line.ProductID,
				Name:           product.Name,
				Size:           line.Size,
				Quantity:       line.Quantity,
				UnitPriceCents: product.PriceCents,
				Status:         enums.OrderItemStatusOrdered,
			})
		}
		if _, err := ordersRepo.Create(ctx, order); err != nil {
			return err
		}

		invoiceNo, err := payments.NewInvoiceNo(s.now())
		if err != nil {
			return err
		}
		_, err = paymentRepo.Create(ctx, &models.Payment{
			ID:               uuid.New(),
			OrderID:          order.ID,
			UserID:           input.userID,
			Type:             input.paymentType,
			Status:           input.paymentStatus,
			AmountCents:      input.quote.totalCents,
			InvoiceNo:        invoiceNo,
			CardRef:          input.cardRef,
			UPIID:            input.upiID,
			GatewayOrderRef:  input.gatewayOrderRef,
			GatewayPaymentID: input.gatewayPaymentID,
		})
		if err != nil {
			return err
		}

		if input.pendingID != nil {
			confirmed, err := s.pending.WithTx(tx).MarkConfirmed(ctx, *input.pendingID)
			if err != nil {
				return err
			}
			if !confirmed {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "gateway order already confirmed")
			}
		}

		if err := cartRepo.DeleteByUser(ctx, input.userID); err != nil {
			return err
		}

		result, err = ordersRepo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func productIDs(lines []models.CartItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]struct{}, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}
