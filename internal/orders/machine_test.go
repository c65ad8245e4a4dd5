package orders

import (
	"testing"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
)

func int64Ptr(v int64) *int64 { return &v }

func directOrder(status enums.OrderStatus) *models.Order {
	return &models.Order{CustomerID: 11, Status: status}
}

func sellerOrder(status enums.OrderStatus, storeID int64) *models.Order {
	return &models.Order{CustomerID: 11, Status: status, FulfilledByStoreID: int64Ptr(storeID)}
}

func customer(id int64) Actor { return Actor{UserID: id, Role: enums.RoleCustomer} }
func admin() Actor            { return Actor{UserID: 1, Role: enums.RoleAdmin} }
func seller(storeID int64) Actor {
	return Actor{UserID: 99, Role: enums.RoleSeller, StoreID: int64Ptr(storeID)}
}

func assertCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected pkg error, got %v", err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, appErr.Code(), err)
	}
}

func TestAuthorizeAllowedEdges(t *testing.T) {
	cases := []struct {
		name  string
		order *models.Order
		actor Actor
		to    enums.OrderStatus
	}{
		{"customer submits payment", directOrder(enums.OrderStatusPendingPayment), customer(11), enums.OrderStatusPendingVerification},
		{"admin verifies direct", directOrder(enums.OrderStatusPendingVerification), admin(), enums.OrderStatusProcessing},
		{"admin verifies seller assigned", sellerOrder(enums.OrderStatusPendingVerification, 7), admin(), enums.OrderStatusPendingSellerAcceptance},
		{"admin correction self-loop", directOrder(enums.OrderStatusPendingVerification), admin(), enums.OrderStatusPendingVerification},
		{"seller accepts", sellerOrder(enums.OrderStatusPendingSellerAcceptance, 7), seller(7), enums.OrderStatusAccepted},
		{"seller declines", sellerOrder(enums.OrderStatusPendingSellerAcceptance, 7), seller(7), enums.OrderStatusCancelled},
		{"seller dispatches without shipped step", sellerOrder(enums.OrderStatusAccepted, 7), seller(7), enums.OrderStatusOutForDelivery},
		{"admin ships", directOrder(enums.OrderStatusProcessing), admin(), enums.OrderStatusShipped},
		{"admin out for delivery", directOrder(enums.OrderStatusShipped), admin(), enums.OrderStatusOutForDelivery},
		{"admin delivers", directOrder(enums.OrderStatusOutForDelivery), admin(), enums.OrderStatusDelivered},
		{"seller delivers own order", sellerOrder(enums.OrderStatusOutForDelivery, 7), seller(7), enums.OrderStatusDelivered},
		{"customer requests return", directOrder(enums.OrderStatusDelivered), customer(11), enums.OrderStatusReturnRequested},
		{"admin approves refund", directOrder(enums.OrderStatusReturnRequested), admin(), enums.OrderStatusRefundApproved},
		{"seller rejects return", sellerOrder(enums.OrderStatusReturnRequested, 7), seller(7), enums.OrderStatusReturnRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := Authorize(tc.order, tc.actor, tc.to); err != nil {
				t.Fatalf("expected edge to be allowed, got %v", err)
			}
		})
	}
}

func TestAuthorizeRejectsMissingEdges(t *testing.T) {
	cases := []struct {
		name  string
		order *models.Order
		actor Actor
		to    enums.OrderStatus
	}{
		{"skip verification", directOrder(enums.OrderStatusPendingPayment), admin(), enums.OrderStatusProcessing},
		{"skip shipped", directOrder(enums.OrderStatusProcessing), admin(), enums.OrderStatusOutForDelivery},
		{"deliver from processing", directOrder(enums.OrderStatusProcessing), admin(), enums.OrderStatusDelivered},
		{"reopen cancelled", directOrder(enums.OrderStatusCancelled), admin(), enums.OrderStatusProcessing},
		{"return before delivery", directOrder(enums.OrderStatusShipped), customer(11), enums.OrderStatusReturnRequested},
		{"seller path shipped step", sellerOrder(enums.OrderStatusAccepted, 7), seller(7), enums.OrderStatusShipped},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertCode(t, Authorize(tc.order, tc.actor, tc.to), pkgerrors.CodeStateConflict)
		})
	}
}

func TestAuthorizeRejectsWrongRole(t *testing.T) {
	cases := []struct {
		name  string
		order *models.Order
		actor Actor
		to    enums.OrderStatus
	}{
		{"customer cannot verify", directOrder(enums.OrderStatusPendingVerification), customer(11), enums.OrderStatusProcessing},
		{"seller cannot verify", sellerOrder(enums.OrderStatusPendingVerification, 7), seller(7), enums.OrderStatusPendingSellerAcceptance},
		{"admin cannot submit payment", directOrder(enums.OrderStatusPendingPayment), admin(), enums.OrderStatusPendingVerification},
		{"customer cannot ship", directOrder(enums.OrderStatusProcessing), customer(11), enums.OrderStatusShipped},
		{"admin cannot request return", directOrder(enums.OrderStatusDelivered), admin(), enums.OrderStatusReturnRequested},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertCode(t, Authorize(tc.order, tc.actor, tc.to), pkgerrors.CodeForbidden)
		})
	}
}

func TestAuthorizeEnforcesOwnership(t *testing.T) {
	t.Run("other customer blocked", func(t *testing.T) {
		err := Authorize(directOrder(enums.OrderStatusPendingPayment), customer(12), enums.OrderStatusPendingVerification)
		assertCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("other store blocked", func(t *testing.T) {
		err := Authorize(sellerOrder(enums.OrderStatusPendingSellerAcceptance, 7), seller(8), enums.OrderStatusAccepted)
		assertCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("seller without store context", func(t *testing.T) {
		actor := Actor{UserID: 99, Role: enums.RoleSeller}
		err := Authorize(sellerOrder(enums.OrderStatusPendingSellerAcceptance, 7), actor, enums.OrderStatusAccepted)
		assertCode(t, err, pkgerrors.CodeForbidden)
	})

	t.Run("seller cannot deliver unassigned order", func(t *testing.T) {
		err := Authorize(directOrder(enums.OrderStatusOutForDelivery), seller(7), enums.OrderStatusDelivered)
		assertCode(t, err, pkgerrors.CodeForbidden)
	})
}

func TestAuthorizeEnforcesForkConstraints(t *testing.T) {
	t.Run("direct verification blocked when store assigned", func(t *testing.T) {
		err := Authorize(sellerOrder(enums.OrderStatusPendingVerification, 7), admin(), enums.OrderStatusProcessing)
		assertCode(t, err, pkgerrors.CodeStateConflict)
	})

	t.Run("seller verification blocked without store", func(t *testing.T) {
		err := Authorize(directOrder(enums.OrderStatusPendingVerification), admin(), enums.OrderStatusPendingSellerAcceptance)
		assertCode(t, err, pkgerrors.CodeStateConflict)
	})
}

func TestRouteIsDeterministic(t *testing.T) {
	direct := directOrder(enums.OrderStatusPendingVerification)
	assigned := sellerOrder(enums.OrderStatusPendingVerification, 7)

	for i := 0; i < 10; i++ {
		if got := Route(direct); got != FulfillmentDirect {
			t.Fatalf("expected direct path, got %s", got)
		}
		if got := Route(assigned); got != FulfillmentSeller {
			t.Fatalf("expected seller path, got %s", got)
		}
	}

	if got := VerificationTarget(direct); got != enums.OrderStatusProcessing {
		t.Fatalf("expected processing target, got %s", got)
	}
	if got := VerificationTarget(assigned); got != enums.OrderStatusPendingSellerAcceptance {
		t.Fatalf("expected pending seller acceptance target, got %s", got)
	}
}

func TestCanTransitionCoversTerminalStates(t *testing.T) {
	terminals := []enums.OrderStatus{
		enums.OrderStatusCancelled,
		enums.OrderStatusRefundApproved,
		enums.OrderStatusReturnRejected,
	}
	for _, from := range terminals {
		for _, to := range []enums.OrderStatus{
			enums.OrderStatusProcessing,
			enums.OrderStatusPendingVerification,
			enums.OrderStatusDelivered,
		} {
			if CanTransition(from, to) {
				t.Fatalf("terminal state %s must not transition to %s", from, to)
			}
		}
	}
}
