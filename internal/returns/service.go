package returns

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
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RequestReturnInput opens a return on a single line item of a delivered
// order.
type RequestReturnInput struct {
	OrderID    uuid.UUID
	LineItemID uuid.UUID
	Actor      orders.Actor
	Reason     string
}

// ReturnDecision resolves a pending return request.
type ReturnDecision string

const (
	ReturnDecisionApprove ReturnDecision = "approve"
	ReturnDecisionReject  ReturnDecision = "reject"
)

// ResolveReturnInput approves or rejects a pending line-item return.
type ResolveReturnInput struct {
	OrderID    uuid.UUID
	LineItemID uuid.UUID
	Actor      orders.Actor
	Decision   ReturnDecision
}

// Service defines the return/refund sub-flow operations.
type Service interface {
	RequestReturn(ctx context.Context, input RequestReturnInput) (*models.Order, error)
	ResolveReturn(ctx context.Context, input ResolveReturnInput) (*models.Order, error)
}

type service struct {
	repo     orders.Repository
	tx       txRunner
	notifier orders.Notifier
	now      func() time.Time
}

// NewService builds the returns service. The notifier may be nil.
func NewService(repo orders.Repository, tx txRunner, notifier orders.Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

func (s *service) RequestReturn(ctx context.Context, input RequestReturnInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.LineItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "return reason required")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, item, err := s.loadPair(ctx, repo, input.OrderID, input.LineItemID)
		if err != nil {
			return err
		}

		// Authorize covers both requirements: the order must be exactly
		// delivered and the caller must be its customer.
		if err := orders.Authorize(order, input.Actor, enums.OrderStatusReturnRequested); err != nil {
			return err
		}
		if item.HasReturnRequest() {
			return pkgerrors.New(pkgerrors.CodeValidation, "return already requested for this item")
		}

		now := s.now().UTC()
		if err := repo.UpdateLineItem(ctx, item.ID, map[string]any{
			"return_status":       enums.ReturnStatusPending,
			"return_reason":       reason,
			"return_requested_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record return request")
		}

		if err := applyCAS(ctx, repo, order.ID, order.Status, map[string]any{
			"status": enums.OrderStatusReturnRequested,
		}); err != nil {
			return err
		}

		order.Status = enums.OrderStatusReturnRequested
		pending := enums.ReturnStatusPending
		for i := range order.Items {
			if order.Items[i].ID == item.ID {
				order.Items[i].ReturnStatus = &pending
				order.Items[i].ReturnReason = &reason
				order.Items[i].ReturnRequestedAt = &now
			}
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, result)
	return result, nil
}

func (s *service) ResolveReturn(ctx context.Context, input ResolveReturnInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.LineItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item id required")
	}

	var orderTarget enums.OrderStatus
	var itemTarget enums.ReturnStatus
	switch input.Decision {
	case ReturnDecisionApprove:
		orderTarget = enums.OrderStatusRefundApproved
		itemTarget = enums.ReturnStatusApproved
	case ReturnDecisionReject:
		orderTarget = enums.OrderStatusReturnRejected
		itemTarget = enums.ReturnStatusRejected
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be approve or reject")
	}

	var result *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, item, err := s.loadPair(ctx, repo, input.OrderID, input.LineItemID)
		if err != nil {
			return err
		}
		if err := orders.Authorize(order, input.Actor, orderTarget); err != nil {
			return err
		}
		if item.ReturnStatus == nil || *item.ReturnStatus != enums.ReturnStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "line item has no pending return")
		}

		// Only the targeted item is touched; sibling items keep their state.
		if err := repo.UpdateLineItem(ctx, item.ID, map[string]any{
			"return_status": itemTarget,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve return request")
		}

		if err := applyCAS(ctx, repo, order.ID, order.Status, map[string]any{
			"status": orderTarget,
		}); err != nil {
			return err
		}

		order.Status = orderTarget
		resolved := itemTarget
		for i := range order.Items {
			if order.Items[i].ID == item.ID {
				order.Items[i].ReturnStatus = &resolved
			}
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyStatus(ctx, result)
	return result, nil
}

func (s *service) loadPair(ctx context.Context, repo orders.Repository, orderID, lineItemID uuid.UUID) (*models.Order, *models.OrderLineItem, error) {
	order, err := repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	item, err := repo.FindLineItem(ctx, lineItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "line item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load line item")
	}
	if item.OrderID != order.ID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "line item does not belong to order")
	}
	return order, item, nil
}

func (s *service) notifyStatus(ctx context.Context, order *models.Order) {
	if s.notifier == nil || order == nil {
		return
	}
	s.notifier.OrderStatusChanged(ctx, order)
}

func applyCAS(ctx context.Context, repo orders.Repository, orderID uuid.UUID, expected enums.OrderStatus, updates map[string]any) error {
	err := repo.UpdateStatusCAS(ctx, orderID, expected, updates)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	case errors.Is(err, orders.ErrStaleStatus):
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed since read, re-fetch and retry")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
}
