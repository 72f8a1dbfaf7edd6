package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/responses"
	"github.com/Ch-Lokesh-21/truestyle-backend/api/validators"
	exchangesvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/exchanges"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
)

type exchangeCreateRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	NewSize     string    `json:"new_size" validate:"required,max=8"`
	NewQuantity int       `json:"new_quantity" validate:"required,min=1,max=50"`
}

type exchangeResponse struct {
	ID           uuid.UUID `json:"id"`
	OrderItemID  uuid.UUID `json:"order_item_id"`
	OrderID      uuid.UUID `json:"order_id"`
	ProductID    uuid.UUID `json:"product_id"`
	OriginalSize string    `json:"original_size"`
	NewSize      string    `json:"new_size"`
	NewQuantity  int       `json:"new_quantity"`
	Status       string    `json:"status"`
	RequestedAt  time.Time `json:"requested_at"`
}

func newExchangeResponse(row *models.Exchange) exchangeResponse {
	return exchangeResponse{
		ID:           row.ID,
		OrderItemID:  row.OrderItemID,
		OrderID:      row.OrderID,
		ProductID:    row.ProductID,
		OriginalSize: row.OriginalSize,
		NewSize:      row.NewSize,
		NewQuantity:  row.NewQuantity,
		Status:       string(row.Status),
		RequestedAt:  row.CreatedAt,
	}
}

// ExchangeCreate opens a size or quantity swap for one delivered order item.
func ExchangeCreate(svc exchangesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload exchangeCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), exchangesvc.CreateInput{
			OrderItemID: payload.OrderItemID,
			NewSize:     payload.NewSize,
			NewQuantity: payload.NewQuantity,
			Actor:       actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newExchangeResponse(row))
	}
}

// ExchangeList shows the caller's exchange requests.
func ExchangeList(svc exchangesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := svc.ListForUser(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]exchangeResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newExchangeResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"exchanges": out})
	}
}

// ExchangeDecision approves, rejects, or completes an exchange. Privileged surface.
func ExchangeDecision(svc exchangesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		exchangeID, err := parseUUIDParam(r, "exchangeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseExchangeStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		row, err := svc.Transition(r.Context(), exchangeID, target, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newExchangeResponse(row))
	}
}
