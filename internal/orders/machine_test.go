package orders

import (
	"testing"

	"github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from enums.OrderStatus
		to   enums.OrderStatus
		want bool
	}{
		{"placed to confirmed", enums.OrderStatusPlaced, enums.OrderStatusConfirmed, true},
		{"confirmed to packed", enums.OrderStatusConfirmed, enums.OrderStatusPacked, true},
		{"packed to shipped", enums.OrderStatusPacked, enums.OrderStatusShipped, true},
		{"shipped to out for delivery", enums.OrderStatusShipped, enums.OrderStatusOutForDelivery, true},
		{"out for delivery to delivered", enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered, true},
		{"skip a step", enums.OrderStatusPlaced, enums.OrderStatusPacked, false},
		{"backward", enums.OrderStatusPacked, enums.OrderStatusConfirmed, false},
		{"cancel while placed", enums.OrderStatusPlaced, enums.OrderStatusCancelled, true},
		{"cancel while confirmed", enums.OrderStatusConfirmed, enums.OrderStatusCancelled, true},
		{"cancel while packed", enums.OrderStatusPacked, enums.OrderStatusCancelled, true},
		{"cancel after shipped", enums.OrderStatusShipped, enums.OrderStatusCancelled, false},
		{"cancel after delivered", enums.OrderStatusDelivered, enums.OrderStatusCancelled, false},
		{"leave cancelled", enums.OrderStatusCancelled, enums.OrderStatusConfirmed, false},
		{"leave delivered", enums.OrderStatusDelivered, enums.OrderStatusConfirmed, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestOwnerMay(t *testing.T) {
	t.Parallel()

	require.True(t, OwnerMay(enums.OrderStatusPlaced, enums.OrderStatusCancelled))
	require.True(t, OwnerMay(enums.OrderStatusConfirmed, enums.OrderStatusCancelled))
	require.False(t, OwnerMay(enums.OrderStatusPacked, enums.OrderStatusCancelled))
	require.False(t, OwnerMay(enums.OrderStatusPlaced, enums.OrderStatusConfirmed))
	require.False(t, OwnerMay(enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered))
}
