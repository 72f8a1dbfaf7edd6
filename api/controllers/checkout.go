package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/responses"
	"github.com/Ch-Lokesh-21/truestyle-backend/api/validators"
	checkoutsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/checkout"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
)

type placeCODRequest struct {
	AddressID  uuid.UUID `json:"address_id" validate:"required"`
	CouponCode *string   `json:"coupon_code,omitempty" validate:"omitempty,max=32"`
}

type initiateRequest struct {
	AddressID  uuid.UUID `json:"address_id" validate:"required"`
	CouponCode *string   `json:"coupon_code,omitempty" validate:"omitempty,max=32"`
}

type confirmRequest struct {
	GatewayOrderRef  string  `json:"gateway_order_ref" validate:"required,max=64"`
	GatewayPaymentID string  `json:"gateway_payment_id" validate:"required,max=64"`
	Signature        string  `json:"signature" validate:"required,max=128"`
	PaymentType      string  `json:"payment_type" validate:"required"`
	CardRef          *string `json:"card_ref,omitempty" validate:"omitempty,max=64"`
	UPIID            *string `json:"upi_id,omitempty" validate:"omitempty,max=64"`
}

// PlaceCOD converts the cart into a cash-on-delivery order.
func PlaceCOD(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload placeCODRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		order, err := svc.PlaceCOD(r.Context(), actor.UserID, payload.AddressID, payload.CouponCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}

// InitiateOrder opens a gateway order for the cart's current total.
// No stock is reserved until the payment is confirmed.
func InitiateOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload initiateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Initiate(r.Context(), actor.UserID, payload.AddressID, payload.CouponCode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ConfirmOrder verifies the gateway capture proof and places the order.
func ConfirmOrder(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload confirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentType, err := enums.ParsePaymentType(payload.PaymentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment type"))
			return
		}
		order, err := svc.Confirm(r.Context(), actor.UserID, checkoutsvc.ConfirmInput{
			GatewayOrderRef:  payload.GatewayOrderRef,
			GatewayPaymentID: payload.GatewayPaymentID,
			Signature:        payload.Signature,
			PaymentType:      paymentType,
			CardRef:          payload.CardRef,
			UPIID:            payload.UPIID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(order))
	}
}
