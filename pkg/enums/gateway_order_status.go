package enums

// GatewayOrderStatus tracks a gateway order between initiate and confirm.
type GatewayOrderStatus string

const (
	GatewayOrderStatusPending   GatewayOrderStatus = "pending"
	GatewayOrderStatusConfirmed GatewayOrderStatus = "confirmed"
	GatewayOrderStatusExpired   GatewayOrderStatus = "expired"
)

var validGatewayOrderStatuses = []GatewayOrderStatus{
	GatewayOrderStatusPending,
	GatewayOrderStatusConfirmed,
	GatewayOrderStatusExpired,
}

// String implements fmt.Stringer.
func (g GatewayOrderStatus) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GatewayOrderStatus.
func (g GatewayOrderStatus) IsValid() bool {
	for _, candidate := range validGatewayOrderStatuses {
		if candidate == g {
			return true
		}
	}
	return false
}
