package enums

import "fmt"

// OrderStatus tracks the lifecycle of a customer order.
type OrderStatus string

const (
	OrderStatusPendingPayment          OrderStatus = "pending_payment"
	OrderStatusPendingVerification     OrderStatus = "pending_verification"
	OrderStatusPendingSellerAcceptance OrderStatus = "pending_seller_acceptance"
	OrderStatusAccepted                OrderStatus = "accepted"
	OrderStatusProcessing              OrderStatus = "processing"
	OrderStatusShipped                 OrderStatus = "shipped"
	OrderStatusOutForDelivery          OrderStatus = "out_for_delivery"
	OrderStatusDelivered               OrderStatus = "delivered"
	OrderStatusCancelled               OrderStatus = "cancelled"
	OrderStatusReturnRequested         OrderStatus = "return_requested"
	OrderStatusRefundApproved          OrderStatus = "refund_approved"
	OrderStatusReturnRejected          OrderStatus = "return_rejected"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusPendingVerification,
	OrderStatusPendingSellerAcceptance,
	OrderStatusAccepted,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusReturnRequested,
	OrderStatusRefundApproved,
	OrderStatusReturnRejected,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition leaves this status.
// Delivered is terminal for the order machine itself; the per-item return
// sub-flow moves the aggregate onward through its own edges.
func (o OrderStatus) IsTerminal() bool {
	switch o {
	case OrderStatusCancelled, OrderStatusRefundApproved, OrderStatusReturnRejected:
		return true
	default:
		return false
	}
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
