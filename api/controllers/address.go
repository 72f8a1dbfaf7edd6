package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/Ch-Lokesh-21/truestyle-backend/api/responses"
	"github.com/Ch-Lokesh-21/truestyle-backend/api/validators"
	addresssvc "github.com/Ch-Lokesh-21/truestyle-backend/internal/address"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/logger"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/types"
)

type addressCreateRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Phone      string `json:"phone" validate:"required,max=20"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"required,max=80"`
	State      string `json:"state" validate:"required,max=80"`
	PostalCode string `json:"postal_code" validate:"required,max=12"`
	Country    string `json:"country,omitempty" validate:"omitempty,len=2"`
}

type addressResponse struct {
	ID uuid.UUID `json:"id"`
	types.Address
}

func newAddressResponse(addr *models.Address) addressResponse {
	return addressResponse{
		ID:      addr.ID,
		Address: addresssvc.Snapshot(addr),
	}
}

// AddressCreate saves a new address-book entry for the caller.
func AddressCreate(repo *addresssvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload addressCreateRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		country := payload.Country
		if country == "" {
			country = "IN"
		}
		addr := &models.Address{
			ID:         uuid.New(),
			UserID:     actor.UserID,
			Name:       validators.SanitizeString(payload.Name, 120),
			Phone:      validators.SanitizeString(payload.Phone, 20),
			Line1:      validators.SanitizeString(payload.Line1, 200),
			Line2:      validators.SanitizeString(payload.Line2, 200),
			City:       validators.SanitizeString(payload.City, 80),
			State:      validators.SanitizeString(payload.State, 80),
			PostalCode: validators.SanitizeString(payload.PostalCode, 12),
			Country:    country,
		}
		created, err := repo.Create(r.Context(), addr)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newAddressResponse(created))
	}
}

// AddressList returns the caller's address book.
func AddressList(repo *addresssvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rows, err := repo.ListByUser(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]addressResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newAddressResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"addresses": out})
	}
}

// AddressDelete removes an owned address-book entry.
func AddressDelete(repo *addresssvc.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		addressID, err := parseUUIDParam(r, "addressId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.Delete(r.Context(), addressID, actor.UserID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
