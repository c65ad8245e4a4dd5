package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
)

// Transition commands. One struct per table edge, each carrying exactly the
// fields that edge needs, so illegal field combinations are unrepresentable.

// VerifyPaymentInput moves an order out of verification; the target status
// depends on the fulfillment route, never on the input.
type VerifyPaymentInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// RequestCorrectionInput attaches a mandatory note explaining a payment
// discrepancy while keeping the order in verification.
type RequestCorrectionInput struct {
	OrderID uuid.UUID
	Actor   Actor
	Note    string
}

// SellerDecision is the choice an assigned seller makes on a pending order.
type SellerDecision string

const (
	SellerDecisionAccept  SellerDecision = "accept"
	SellerDecisionDecline SellerDecision = "decline"
)

// SellerDecisionInput accepts or declines an order awaiting seller acceptance.
type SellerDecisionInput struct {
	OrderID  uuid.UUID
	Actor    Actor
	Decision SellerDecision
}

// MarkShippedInput advances a direct-fulfillment order to shipped.
type MarkShippedInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// MarkOutForDeliveryInput advances an order to out for delivery from either
// branch: shipped on the direct path, accepted on the seller path.
type MarkOutForDeliveryInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// MarkDeliveredInput completes the delivery leg of either branch.
type MarkDeliveredInput struct {
	OrderID uuid.UUID
	Actor   Actor
}

// ListFilters describe the inputs supported by the order list queries.
type ListFilters struct {
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// ReturnSummary is derived at read time from the per-item return records.
// The order-level status is a coarse aggregate; this is the authoritative
// per-item picture.
type ReturnSummary struct {
	Requested int `json:"requested"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
}

// OrderSummary exposes the aggregated fields returned by list queries.
type OrderSummary struct {
	ID                 uuid.UUID            `json:"id"`
	OrderNumber        int64                `json:"order_number"`
	Status             enums.OrderStatus    `json:"status"`
	DeliveryMethod     enums.DeliveryMethod `json:"delivery_method"`
	TotalPaise         int                  `json:"total_paise"`
	TotalItems         int                  `json:"total_items"`
	FulfilledByStoreID *int64               `json:"fulfilled_by_store_id,omitempty"`
	Returns            *ReturnSummary       `json:"returns,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// OrderDetail pairs the stored order with its derived return summary.
type OrderDetail struct {
	Order   models.Order   `json:"order"`
	Returns *ReturnSummary `json:"returns,omitempty"`
}

// SummarizeReturns tallies the per-item return states. It returns nil when
// no item has ever had a return requested.
func SummarizeReturns(items []models.OrderLineItem) *ReturnSummary {
	var summary ReturnSummary
	found := false
	for _, item := range items {
		if item.ReturnStatus == nil {
			continue
		}
		found = true
		switch *item.ReturnStatus {
		case enums.ReturnStatusPending:
			summary.Requested++
		case enums.ReturnStatusApproved:
			summary.Approved++
		case enums.ReturnStatusRejected:
			summary.Rejected++
		}
	}
	if !found {
		return nil
	}
	return &summary
}

func summarize(order models.Order) OrderSummary {
	return OrderSummary{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		Status:             order.Status,
		DeliveryMethod:     order.DeliveryMethod,
		TotalPaise:         order.TotalPaise,
		TotalItems:         len(order.Items),
		FulfilledByStoreID: order.FulfilledByStoreID,
		Returns:            SummarizeReturns(order.Items),
		CreatedAt:          order.CreatedAt,
	}
}
