package enums

import "fmt"

// OrderItemStatus tracks the post-purchase lifecycle of a single order line.
type OrderItemStatus string

const (
	OrderItemStatusOrdered          OrderItemStatus = "ordered"
	OrderItemStatusReturnRequested  OrderItemStatus = "return_requested"
	OrderItemStatusReturned         OrderItemStatus = "returned"
	OrderItemStatusReturnRejected   OrderItemStatus = "return_rejected"
	OrderItemStatusExchangeRequest  OrderItemStatus = "exchange_requested"
	OrderItemStatusExchanged        OrderItemStatus = "exchanged"
	OrderItemStatusExchangeRejected OrderItemStatus = "exchange_rejected"
)

var validOrderItemStatuses = []OrderItemStatus{
	OrderItemStatusOrdered,
	OrderItemStatusReturnRequested,
	OrderItemStatusReturned,
	OrderItemStatusReturnRejected,
	OrderItemStatusExchangeRequest,
	OrderItemStatusExchanged,
	OrderItemStatusExchangeRejected,
}

// String implements fmt.Stringer.
func (o OrderItemStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderItemStatus.
func (o OrderItemStatus) IsValid() bool {
	for _, candidate := range validOrderItemStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// ParseOrderItemStatus converts raw input into an OrderItemStatus.
func ParseOrderItemStatus(value string) (OrderItemStatus, error) {
	for _, candidate := range validOrderItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order item status %q", value)
}
