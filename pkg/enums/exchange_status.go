package enums

import "fmt"

// ExchangeStatus tracks the lifecycle of an exchange request.
type ExchangeStatus string

const (
	ExchangeStatusRequested ExchangeStatus = "requested"
	ExchangeStatusApproved  ExchangeStatus = "approved"
	ExchangeStatusRejected  ExchangeStatus = "rejected"
	ExchangeStatusCompleted ExchangeStatus = "completed"
)

var validExchangeStatuses = []ExchangeStatus{
	ExchangeStatusRequested,
	ExchangeStatusApproved,
	ExchangeStatusRejected,
	ExchangeStatusCompleted,
}

// String implements fmt.Stringer.
func (e ExchangeStatus) String() string {
	return string(e)
}

// IsValid reports whether the value is a known ExchangeStatus.
func (e ExchangeStatus) IsValid() bool {
	for _, candidate := range validExchangeStatuses {
		if candidate == e {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (e ExchangeStatus) IsTerminal() bool {
	return e == ExchangeStatusRejected || e == ExchangeStatusCompleted
}

// ParseExchangeStatus converts raw input into an ExchangeStatus.
func ParseExchangeStatus(value string) (ExchangeStatus, error) {
	for _, candidate := range validExchangeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid exchange status %q", value)
}
