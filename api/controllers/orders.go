package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/responses"
	"github.com/Ch-Lokesh-21/truestyle-backend/api/validators"
	internalorders "github.com/Ch-Lokesh-21/truestyle-backend/internal/orders"
	"github.com/Ch-Lokesh-21/truestyle-backend/internal/payments"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/pagination"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/types"
)

type orderItemResponse struct {
	ID             uuid.UUID `json:"id"`
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	Size           string    `json:"size"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int       `json:"unit_price_cents"`
	Status         string    `json:"status"`
}

type paymentResponse struct {
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	AmountCents int     `json:"amount_cents"`
	InvoiceNo   string  `json:"invoice_no"`
	CardRef     *string `json:"card_ref,omitempty"`
	UPIID       *string `json:"upi_id,omitempty"`
}

type orderResponse struct {
	ID              uuid.UUID           `json:"id"`
	OrderNumber     int64               `json:"order_number"`
	Status          string              `json:"status"`
	SubtotalCents   int                 `json:"subtotal_cents"`
	DiscountCents   int                 `json:"discount_cents"`
	TotalCents      int                 `json:"total_cents"`
	CouponCode      *string             `json:"coupon_code,omitempty"`
	PaymentMethod   string              `json:"payment_method"`
	ShippingAddress types.Address       `json:"shipping_address"`
	DeliveryDate    *time.Time          `json:"delivery_date,omitempty"`
	Items           []orderItemResponse `json:"items"`
	Payment         *paymentResponse    `json:"payment,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

func newOrderResponse(order *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemResponse{
			ID:             item.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			Size:           item.Size,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			Status:         string(item.Status),
		})
	}
	resp := orderResponse{
		ID:              order.ID,
		OrderNumber:     order.OrderNumber,
		Status:          string(order.Status),
		SubtotalCents:   order.SubtotalCents,
		DiscountCents:   order.DiscountCents,
		TotalCents:      order.TotalCents,
		CouponCode:      order.CouponCode,
		PaymentMethod:   string(order.PaymentMethod),
		ShippingAddress: order.ShippingAddress,
		DeliveryDate:    order.DeliveryDate,
		Items:           items,
		CreatedAt:       order.CreatedAt,
	}
	if order.Payment != nil {
		resp.Payment = &paymentResponse{
			Type:        string(order.Payment.Type),
			Status:      string(order.Payment.Status),
			AmountCents: order.Payment.AmountCents,
			InvoiceNo:   order.Payment.InvoiceNo,
			CardRef:     payments.MaskCard(order.Payment.CardRef),
			UPIID:       payments.MaskUPI(order.Payment.UPIID),
		}
	}
	return resp
}

func newOrderListResponse(orders []models.Order, next string) map[string]any {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, newOrderResponse(&orders[i]))
	}
	resp := map[string]any{"orders": out}
	if next != "" {
		resp["next_cursor"] = next
	}
	return resp
}

func paginationFrom(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}

type statusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderDetail returns one owned order with items and payment.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.GetForUser(r.Context(), orderID, actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

// OrderListMine pages through the caller's orders, newest first.
func OrderListMine(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params, err := paginationFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, next, err := svc.ListForUser(r.Context(), actor.UserID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(orders, next))
	}
}

// OrderListAll pages through every order. Privileged surface.
func OrderListAll(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := paginationFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, next, err := svc.ListAll(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderListResponse(orders, next))
	}
}

// OrderStatusUpdate moves an order along its lifecycle. The service
// enforces who may perform which transition.
func OrderStatusUpdate(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := parseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseOrderStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		order, err := svc.Transition(r.Context(), internalorders.TransitionInput{
			OrderID: orderID,
			Target:  target,
			Actor:   actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
