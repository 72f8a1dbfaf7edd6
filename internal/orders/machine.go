package orders

import "github.com/Ch-Lokesh-21/truestyle-backend/pkg/enums"

// forward is the fulfillment chain. Each status has exactly one legal
// next status; everything else is an invalid transition.
var forward = map[enums.OrderStatus]enums.OrderStatus{
	enums.OrderStatusPlaced:         enums.OrderStatusConfirmed,
	enums.OrderStatusConfirmed:      enums.OrderStatusPacked,
	enums.OrderStatusPacked:         enums.OrderStatusShipped,
	enums.OrderStatusShipped:        enums.OrderStatusOutForDelivery,
	enums.OrderStatusOutForDelivery: enums.OrderStatusDelivered,
}

// cancellable holds the statuses an order can still be cancelled from.
// Once shipped, the parcel is with the carrier and cancellation closes.
var cancellable = map[enums.OrderStatus]struct{}{
	enums.OrderStatusPlaced:    {},
	enums.OrderStatusConfirmed: {},
	enums.OrderStatusPacked:    {},
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to enums.OrderStatus) bool {
	if to == enums.OrderStatusCancelled {
		_, ok := cancellable[from]
		return ok
	}
	return forward[from] == to
}

// ownerCancellable holds the statuses from which the owning customer may
// self-cancel. Later cancellations need a privileged actor.
var ownerCancellable = map[enums.OrderStatus]struct{}{
	enums.OrderStatusPlaced:    {},
	enums.OrderStatusConfirmed: {},
}

// OwnerMay reports whether the owning customer may request the move
// themselves. Customers only get self-service cancellation early in the
// lifecycle; every forward transition is driven by fulfillment staff.
func OwnerMay(from, to enums.OrderStatus) bool {
	if to != enums.OrderStatusCancelled {
		return false
	}
	_, ok := ownerCancellable[from]
	return ok
}
