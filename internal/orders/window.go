package orders

import (
	"fmt"
	"time"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/db/models"
	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	pkgerrors "github.com/Ch-Lokesh-21/truestyle-backend/pkg/errors"
)

// CheckReturnWindow verifies the order is delivered and still inside the
// after-sales window. The caller reads "now" once and passes it in so a
// single request never evaluates the day boundary twice.
func CheckReturnWindow(order *models.Order, now time.Time, window time.Duration) error {
	if order.Status != enums.OrderStatusDelivered || order.DeliveryDate == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order %s is %s, not delivered", order.ID, order.Status))
	}
	cutoff := order.DeliveryDate.Add(window)
	if now.After(cutoff) {
		return pkgerrors.New(pkgerrors.CodeWindowExpired, fmt.Sprintf(
			"order was delivered %s and the window closed %s",
			order.DeliveryDate.Format(time.RFC3339), cutoff.Format(time.RFC3339),
		))
	}
	return nil
}
