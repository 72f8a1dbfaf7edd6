package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/responses"
	"github.com/Ch-Lokesh-21/truestyle-backend/api/validators"
	returnsvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/returns"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
)

type returnCreateRequest struct {
	OrderItemID uuid.UUID `json:"order_item_id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,min=1,max=50"`
}

type returnResponse struct {
	ID          uuid.UUID `json:"id"`
	OrderItemID uuid.UUID `json:"order_item_id"`
	OrderID     uuid.UUID `json:"order_id"`
	ProductID   uuid.UUID `json:"product_id"`
	Quantity    int       `json:"quantity"`
	AmountCents int       `json:"amount_cents"`
	Status      string    `json:"status"`
	RequestedAt time.Time `json:"requested_at"`
}

func newReturnResponse(row *models.Return) returnResponse {
	return returnResponse{
		ID:          row.ID,
		OrderItemID: row.OrderItemID,
		OrderID:     row.OrderID,
		ProductID:   row.ProductID,
		Quantity:    row.Quantity,
		AmountCents: row.AmountCents,
		Status:      string(row.Status),
		RequestedAt: row.CreatedAt,
	}
}

// ReturnCreate opens a return request for one delivered order item.
func ReturnCreate(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload returnCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.Create(r.Context(), returnsvc.CreateInput{
			OrderItemID: payload.OrderItemID,
			Quantity:    payload.Quantity,
			Actor:       actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newReturnResponse(row))
	}
}

// ReturnList shows the caller's return requests.
func ReturnList(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
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
		out := make([]returnResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newReturnResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"returns": out})
	}
}

// ReturnDecision approves, rejects, or refunds a return. Privileged surface.
func ReturnDecision(svc returnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		returnID, err := parseUUIDParam(r, "returnId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload statusUpdateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		target, err := enums.ParseReturnStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		row, err := svc.Transition(r.Context(), returnID, target, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newReturnResponse(row))
	}
}
