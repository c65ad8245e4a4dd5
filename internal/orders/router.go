package orders

import (
	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
)

// FulfillmentPath names the two branches an order can take after payment
// verification.
type FulfillmentPath string

const (
	FulfillmentDirect FulfillmentPath = "direct"
	FulfillmentSeller FulfillmentPath = "seller"
)

// Route decides which branch an order takes out of verification, based
// solely on whether a seller store is assigned to fulfill it. The function
// is pure; the assignment is fixed at creation, so the decision is stable
// no matter how often it is evaluated.
func Route(order *models.Order) FulfillmentPath {
	if order != nil && order.FulfilledByStoreID != nil {
		return FulfillmentSeller
	}
	return FulfillmentDirect
}

// VerificationTarget returns the status an order moves to when an admin
// verifies its payment.
func VerificationTarget(order *models.Order) enums.OrderStatus {
	if Route(order) == FulfillmentSeller {
		return enums.OrderStatusPendingSellerAcceptance
	}
	return enums.OrderStatusProcessing
}
