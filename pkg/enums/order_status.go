package enums

import "fmt"

// OrderStatus tracks the lifecycle of an order row.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusAccepted  OrderStatus = "accepted"
	OrderStatusFulfilled OrderStatus = "fulfilled"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCanceled  OrderStatus = "canceled"
	OrderStatusExpired   OrderStatus = "expired"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusCreated,
	OrderStatusAccepted,
	OrderStatusFulfilled,
	OrderStatusDelivered,
	OrderStatusCanceled,
	OrderStatusExpired,
}

var orderStatusLabels = map[OrderStatus]string{
	OrderStatusCreated:   "Created",
	OrderStatusAccepted:  "Accepted",
	OrderStatusFulfilled: "Fulfilled",
	OrderStatusDelivered: "Delivered",
	OrderStatusCanceled:  "Canceled",
	OrderStatusExpired:   "Expired",
}

// OrderStatuses returns every known status in lifecycle order.
func OrderStatuses() []OrderStatus {
	return append([]OrderStatus(nil), validOrderStatuses...)
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// Label is the human readable status name.
func (s OrderStatus) Label() string {
	if label, ok := orderStatusLabels[s]; ok {
		return label
	}
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
