package notifications

import (
	"context"
	"fmt"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	"github.com/voltline/voltline-backend/pkg/logger"
)

// Recorder turns order lifecycle events into in-app notifications for the
// purchasing customer. All writes are best-effort: failures are logged and
// never surfaced to the transition that triggered them.
type Recorder struct {
	repo Repository
	logg *logger.Logger
}

// NewRecorder builds a notification recorder.
func NewRecorder(repo Repository, logg *logger.Logger) (*Recorder, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Recorder{repo: repo, logg: logg}, nil
}

// OrderStatusChanged records a status update notification for the customer.
func (r *Recorder) OrderStatusChanged(ctx context.Context, order *models.Order) {
	if order == nil {
		return
	}
	kind := enums.NotificationTypeOrderUpdate
	switch order.Status {
	case enums.OrderStatusRefundApproved, enums.OrderStatusReturnRejected:
		kind = enums.NotificationTypeReturnResolved
	}
	r.record(ctx, &models.Notification{
		UserID:  order.CustomerID,
		Type:    kind,
		Title:   fmt.Sprintf("Order #%d updated", order.OrderNumber),
		Message: statusMessage(order.Status),
		OrderID: &order.ID,
	})
}

// CorrectionRequested records the admin's correction note for the customer.
func (r *Recorder) CorrectionRequested(ctx context.Context, order *models.Order, note string) {
	if order == nil {
		return
	}
	r.record(ctx, &models.Notification{
		UserID:  order.CustomerID,
		Type:    enums.NotificationTypeCorrectionNote,
		Title:   fmt.Sprintf("Payment issue on order #%d", order.OrderNumber),
		Message: note,
		OrderID: &order.ID,
	})
}

func (r *Recorder) record(ctx context.Context, notification *models.Notification) {
	if err := r.repo.Create(ctx, notification); err != nil {
		logCtx := r.logg.WithFields(ctx, map[string]any{
			"user_id": notification.UserID,
			"type":    string(notification.Type),
		})
		r.logg.Error(logCtx, "record notification failed", err)
	}
}

func statusMessage(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusProcessing:
		return "Your payment was verified and the order is being processed."
	case enums.OrderStatusPendingSellerAcceptance:
		return "Your payment was verified and the order was sent to the seller."
	case enums.OrderStatusAccepted:
		return "The seller accepted your order."
	case enums.OrderStatusShipped:
		return "Your order has been shipped."
	case enums.OrderStatusOutForDelivery:
		return "Your order is out for delivery."
	case enums.OrderStatusDelivered:
		return "Your order was delivered."
	case enums.OrderStatusCancelled:
		return "Your order was cancelled."
	case enums.OrderStatusReturnRequested:
		return "Your return request was received."
	case enums.OrderStatusRefundApproved:
		return "Your return was approved and a refund is on the way."
	case enums.OrderStatusReturnRejected:
		return "Your return request was rejected."
	default:
		return fmt.Sprintf("Your order is now %s.", status)
	}
}
