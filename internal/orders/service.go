package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/pagination"
)

// Service defines the transition and read operations on orders.
type Service interface {
	VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Order, error)
	RequestCorrection(ctx context.Context, input RequestCorrectionInput) (*models.Order, error)
	SellerDecision(ctx context.Context, input SellerDecisionInput) (*models.Order, error)
	MarkShipped(ctx context.Context, input MarkShippedInput) (*models.Order, error)
	MarkOutForDelivery(ctx context.Context, input MarkOutForDeliveryInput) (*models.Order, error)
	MarkDelivered(ctx context.Context, input MarkDeliveredInput) (*models.Order, error)
	Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error)
	ListMine(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListForStore(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListAll(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error)
}

type service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

// NewService builds the order service with the required dependencies. The
// notifier may be nil; customer notifications are advisory.
func NewService(repo Repository, notifier Notifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	return &service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}, nil
}

func (s *service) VerifyPayment(ctx context.Context, input VerifyPaymentInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.load(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}

	// The fork is evaluated exactly once, here, and never revisited.
	target := VerificationTarget(order)
	if err := Authorize(order, input.Actor, target); err != nil {
		return nil, err
	}

	updates := map[string]any{"status": target}
	if target == enums.OrderStatusProcessing {
		// Direct verification clears any prior correction note.
		updates["verification_notes"] = nil
	}
	if err := s.applyCAS(ctx, order.ID, order.Status, updates); err != nil {
		return nil, err
	}

	order.Status = target
	if target == enums.OrderStatusProcessing {
		order.VerificationNotes = nil
	}
	s.notifyStatus(ctx, order)
	return order, nil
}

func (s *service) RequestCorrection(ctx context.Context, input RequestCorrectionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	note := strings.TrimSpace(input.Note)
	if note == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "correction note required")
	}

	order, err := s.load(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(order, input.Actor, enums.OrderStatusPendingVerification); err != nil {
		return nil, err
	}

	// Last write wins: resubmitting a note is always permitted while the
	// order sits in verification.
	updates := map[string]any{
		"status":             enums.OrderStatusPendingVerification,
		"verification_notes": note,
	}
	if err := s.applyCAS(ctx, order.ID, order.Status, updates); err != nil {
		return nil, err
	}

	order.VerificationNotes = &note
	if s.notifier != nil {
		s.notifier.CorrectionRequested(ctx, order, note)
	}
	return order, nil
}

func (s *service) SellerDecision(ctx context.Context, input SellerDecisionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var target enums.OrderStatus
	switch input.Decision {
	case SellerDecisionAccept:
		target = enums.OrderStatusAccepted
	case SellerDecisionDecline:
		target = enums.OrderStatusCancelled
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or decline")
	}

	order, err := s.load(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(order, input.Actor, target); err != nil {
		return nil, err
	}

	updates := map[string]any{"status": target}
	if target == enums.OrderStatusCancelled {
		now := s.now().UTC()
		updates["cancelled_at"] = now
		order.CancelledAt = &now
	}
	if err := s.applyCAS(ctx, order.ID, order.Status, updates); err != nil {
		return nil, err
	}

	order.Status = target
	s.notifyStatus(ctx, order)
	return order, nil
}

func (s *service) MarkShipped(ctx context.Context, input MarkShippedInput) (*models.Order, error) {
	return s.advance(ctx, input.OrderID, input.Actor, enums.OrderStatusShipped, nil)
}

func (s *service) MarkOutForDelivery(ctx context.Context, input MarkOutForDeliveryInput) (*models.Order, error) {
	return s.advance(ctx, input.OrderID, input.Actor, enums.OrderStatusOutForDelivery, nil)
}

func (s *service) MarkDelivered(ctx context.Context, input MarkDeliveredInput) (*models.Order, error) {
	now := s.now().UTC()
	return s.advance(ctx, input.OrderID, input.Actor, enums.OrderStatusDelivered, map[string]any{
		"delivered_at": now,
	})
}

// advance performs a plain status transition with optional extra column
// updates. The edge is selected by the order's current status, so the same
// command serves both branches where the table allows it.
func (s *service) advance(ctx context.Context, orderID uuid.UUID, actor Actor, target enums.OrderStatus, extra map[string]any) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := Authorize(order, actor, target); err != nil {
		return nil, err
	}

	updates := map[string]any{"status": target}
	for col, val := range extra {
		updates[col] = val
	}
	if err := s.applyCAS(ctx, order.ID, order.Status, updates); err != nil {
		return nil, err
	}

	order.Status = target
	if at, ok := extra["delivered_at"].(time.Time); ok {
		order.DeliveredAt = &at
	}
	s.notifyStatus(ctx, order)
	return order, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID uuid.UUID) (*OrderDetail, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if err := actor.Validate(); err != nil {
		return nil, err
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := authorizeRead(order, actor); err != nil {
		return nil, err
	}
	return &OrderDetail{
		Order:   *order,
		Returns: SummarizeReturns(order.Items),
	}, nil
}

func (s *service) ListMine(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if actor.Role != enums.RoleCustomer {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customer role required")
	}
	list, err := s.repo.ListByCustomer(ctx, actor.UserID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return list, nil
}

func (s *service) ListForStore(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if actor.Role != enums.RoleSeller {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "seller role required")
	}
	list, err := s.repo.ListBySeller(ctx, *actor.StoreID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list store orders")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, actor Actor, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if err := actor.Validate(); err != nil {
		return nil, err
	}
	if actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	list, err := s.repo.ListAll(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) applyCAS(ctx context.Context, orderID uuid.UUID, expected enums.OrderStatus, updates map[string]any) error {
	err := s.repo.UpdateStatusCAS(ctx, orderID, expected, updates)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	case errors.Is(err, ErrStaleStatus):
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order changed since read, re-fetch and retry")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
}

func (s *service) notifyStatus(ctx context.Context, order *models.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.OrderStatusChanged(ctx, order)
}

// authorizeRead applies the same ownership rules as transitions to plain
// reads: admins see everything, customers their own orders, sellers the
// orders assigned to their store.
func authorizeRead(order *models.Order, actor Actor) error {
	switch actor.Role {
	case enums.RoleAdmin:
		return nil
	case enums.RoleCustomer:
		if order.CustomerID != actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		return nil
	case enums.RoleSeller:
		if order.FulfilledByStoreID == nil || actor.StoreID == nil || *order.FulfilledByStoreID != *actor.StoreID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not fulfilled by this store")
		}
		return nil
	default:
		return pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}
}
