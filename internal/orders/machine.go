package orders

import (
	"fmt"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
)

// Actor identifies the authenticated party attempting a transition. Every
// transition call receives an explicit Actor; nothing reads ambient session
// state.
type Actor struct {
	UserID  int64
	Role    enums.Role
	StoreID *int64
}

// Validate rejects actors that cannot be authorized for any edge.
func (a Actor) Validate() error {
	if a.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !a.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, fmt.Sprintf("unknown role %q", a.Role))
	}
	if a.Role == enums.RoleSeller && a.StoreID == nil {
		return pkgerrors.New(pkgerrors.CodeForbidden, "store context missing")
	}
	return nil
}

type edge struct {
	From enums.OrderStatus
	To   enums.OrderStatus
}

// pathConstraint narrows an edge to one side of the fulfillment fork.
type pathConstraint int

const (
	anyPath pathConstraint = iota
	// directOnly requires fulfilled_by_store_id to be unset.
	directOnly
	// sellerOnly requires fulfilled_by_store_id to be set.
	sellerOnly
)

type edgeRule struct {
	roles         map[enums.Role]bool
	path          pathConstraint
	customerOwned bool
	sellerOwned   bool
}

func roles(rs ...enums.Role) map[enums.Role]bool {
	m := make(map[enums.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// transitionTable is the single source of truth for legal status edges.
// An edge absent from this map is illegal for every actor.
var transitionTable = map[edge]edgeRule{
	{enums.OrderStatusPendingPayment, enums.OrderStatusPendingVerification}: {
		roles:         roles(enums.RoleCustomer),
		customerOwned: true,
	},
	{enums.OrderStatusPendingVerification, enums.OrderStatusProcessing}: {
		roles: roles(enums.RoleAdmin),
		path:  directOnly,
	},
	{enums.OrderStatusPendingVerification, enums.OrderStatusPendingSellerAcceptance}: {
		roles: roles(enums.RoleAdmin),
		path:  sellerOnly,
	},
	// Correction request: a self-loop, not a no-op. The admin attaches a
	// note rejecting the payment claim without cancelling the order.
	{enums.OrderStatusPendingVerification, enums.OrderStatusPendingVerification}: {
		roles: roles(enums.RoleAdmin),
	},
	{enums.OrderStatusPendingSellerAcceptance, enums.OrderStatusAccepted}: {
		roles:       roles(enums.RoleSeller),
		path:        sellerOnly,
		sellerOwned: true,
	},
	{enums.OrderStatusPendingSellerAcceptance, enums.OrderStatusCancelled}: {
		roles:       roles(enums.RoleSeller),
		path:        sellerOnly,
		sellerOwned: true,
	},
	// The seller path has no distinct shipped step.
	{enums.OrderStatusAccepted, enums.OrderStatusOutForDelivery}: {
		roles:       roles(enums.RoleSeller),
		path:        sellerOnly,
		sellerOwned: true,
	},
	{enums.OrderStatusProcessing, enums.OrderStatusShipped}: {
		roles: roles(enums.RoleAdmin),
		path:  directOnly,
	},
	{enums.OrderStatusShipped, enums.OrderStatusOutForDelivery}: {
		roles: roles(enums.RoleAdmin),
		path:  directOnly,
	},
	{enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered}: {
		roles:       roles(enums.RoleAdmin, enums.RoleSeller),
		sellerOwned: true,
	},
	{enums.OrderStatusDelivered, enums.OrderStatusReturnRequested}: {
		roles:         roles(enums.RoleCustomer),
		customerOwned: true,
	},
	{enums.OrderStatusReturnRequested, enums.OrderStatusRefundApproved}: {
		roles:       roles(enums.RoleAdmin, enums.RoleSeller),
		sellerOwned: true,
	},
	{enums.OrderStatusReturnRequested, enums.OrderStatusReturnRejected}: {
		roles:       roles(enums.RoleAdmin, enums.RoleSeller),
		sellerOwned: true,
	},
}

// CanTransition reports whether any actor could legally move an order
// between the two statuses. Ownership and fork constraints still apply.
func CanTransition(from, to enums.OrderStatus) bool {
	_, ok := transitionTable[edge{from, to}]
	return ok
}

// Authorize checks that the actor may move the order from its current
// status to the target status. It returns nil only when the edge exists,
// the role is allowed, the fork constraint holds and the actor owns the
// relevant side of the order. Authorization never mutates the order.
func Authorize(order *models.Order, actor Actor, to enums.OrderStatus) error {
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if err := actor.Validate(); err != nil {
		return err
	}

	rule, ok := transitionTable[edge{order.Status, to}]
	if !ok {
		return pkgerrors.New(
			pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, to),
		)
	}
	if !rule.roles[actor.Role] {
		return pkgerrors.New(
			pkgerrors.CodeForbidden,
			fmt.Sprintf("role %s may not move order from %s to %s", actor.Role, order.Status, to),
		)
	}

	switch rule.path {
	case directOnly:
		if order.FulfilledByStoreID != nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is assigned to a seller store")
		}
	case sellerOnly:
		if order.FulfilledByStoreID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not assigned to a seller store")
		}
	}

	if rule.customerOwned && actor.Role == enums.RoleCustomer && order.CustomerID != actor.UserID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	if rule.sellerOwned && actor.Role == enums.RoleSeller {
		if order.FulfilledByStoreID == nil || actor.StoreID == nil || *order.FulfilledByStoreID != *actor.StoreID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order is not fulfilled by this store")
		}
	}
	return nil
}
