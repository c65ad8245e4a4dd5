package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/internal/orders"
	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
)

// AdminNotifier carries the payment alert to the admin channel. The send is
// advisory and time-bounded; implementations must tolerate cancellation.
type AdminNotifier interface {
	PaymentSubmitted(ctx context.Context, order *models.Order) error
}

// ConfirmPaymentInput submits a customer's payment evidence for an order
// awaiting payment.
type ConfirmPaymentInput struct {
	OrderID    uuid.UUID
	Actor      orders.Actor
	PaymentRef string
	ProofURL   *string
}

// Service defines payment confirmation operations.
type Service interface {
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*models.Order, error)
}

type service struct {
	repo          orders.Repository
	alerts        AdminNotifier
	logg          *logger.Logger
	notifyTimeout time.Duration
	// onNotified, when set, runs after the alert goroutine finishes.
	onNotified func()
}

// NewService builds the payment confirmation service.
func NewService(repo orders.Repository, alerts AdminNotifier, logg *logger.Logger, notifyTimeout time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if notifyTimeout <= 0 {
		notifyTimeout = 3 * time.Second
	}
	return &service{
		repo:          repo,
		alerts:        alerts,
		logg:          logg,
		notifyTimeout: notifyTimeout,
	}, nil
}

func (s *service) ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	ref := strings.TrimSpace(input.PaymentRef)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}

	order, err := s.repo.Find(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := orders.Authorize(order, input.Actor, enums.OrderStatusPendingVerification); err != nil {
		return nil, err
	}

	updates := map[string]any{
		"status":      enums.OrderStatusPendingVerification,
		"payment_ref": ref,
	}
	if input.ProofURL != nil && strings.TrimSpace(*input.ProofURL) != "" {
		updates["payment_proof_url"] = strings.TrimSpace(*input.ProofURL)
	}

	err = s.repo.UpdateStatusCAS(ctx, order.ID, order.Status, updates)
	switch {
	case err == nil:
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	case errors.Is(err, orders.ErrStaleStatus):
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order changed since read, re-fetch and retry")
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment submission")
	}

	order.Status = enums.OrderStatusPendingVerification
	order.PaymentRef = &ref
	if url, ok := updates["payment_proof_url"].(string); ok {
		order.PaymentProofURL = &url
	}

	// Confirmation of receipt of money is the critical path; alerting the
	// admin channel is advisory. Fire and forget with a bounded deadline.
	s.dispatchAlert(ctx, order)

	return order, nil
}

func (s *service) dispatchAlert(ctx context.Context, order *models.Order) {
	if s.alerts == nil {
		return
	}
	logCtx := s.logg.WithFields(ctx, map[string]any{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
	})
	go func() {
		defer func() {
			if s.onNotified != nil {
				s.onNotified()
			}
		}()
		alertCtx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.alerts.PaymentSubmitted(alertCtx, order); err != nil {
			s.logg.Error(logCtx, "admin payment alert failed", err)
		}
	}()
}
