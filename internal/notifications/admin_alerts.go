package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"

	"github.com/voltline/voltline-backend/pkg/db/models"
	vlpubsub "github.com/voltline/voltline-backend/pkg/pubsub"
)

// AdminAlerts publishes payment alerts to the admin channel. Callers bound
// the publish with a deadline; a failed publish is theirs to log.
type AdminAlerts struct {
	publisher *pubsub.Publisher
}

type paymentAlert struct {
	OrderID     string  `json:"order_id"`
	OrderNumber int64   `json:"order_number"`
	CustomerID  int64   `json:"customer_id"`
	PaymentRef  *string `json:"payment_ref,omitempty"`
	TotalPaise  int     `json:"total_paise"`
}

// NewAdminAlerts builds the admin alert publisher on the configured topic.
func NewAdminAlerts(client *vlpubsub.Client) (*AdminAlerts, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client required")
	}
	publisher := client.AdminAlertsPublisher()
	if publisher == nil {
		return nil, fmt.Errorf("admin alerts topic not configured")
	}
	return &AdminAlerts{publisher: publisher}, nil
}

// PaymentSubmitted publishes one alert carrying the order and purchaser
// identity. The call blocks until the publish is acknowledged or ctx ends.
func (a *AdminAlerts) PaymentSubmitted(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order required")
	}
	payload, err := json.Marshal(paymentAlert{
		OrderID:     order.ID.String(),
		OrderNumber: order.OrderNumber,
		CustomerID:  order.CustomerID,
		PaymentRef:  order.PaymentRef,
		TotalPaise:  order.TotalPaise,
	})
	if err != nil {
		return fmt.Errorf("marshal payment alert: %w", err)
	}

	result := a.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":     "payment_submitted",
			"order_id": order.ID.String(),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish payment alert: %w", err)
	}
	return nil
}
