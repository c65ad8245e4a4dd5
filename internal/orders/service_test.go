package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/pagination"
)

type casCall struct {
	expected enums.OrderStatus
	updates  map[string]any
}

type stubOrdersRepo struct {
	order    *models.Order
	findErr  error
	casErr   error
	casCalls []casCall
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	return order, nil
}

func (s *stubOrdersRepo) CreateLineItems(ctx context.Context, items []models.OrderLineItem) error {
	return nil
}

func (s *stubOrdersRepo) Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.order == nil || s.order.ID != orderID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s.order
	return &copied, nil
}

func (s *stubOrdersRepo) FindLineItem(ctx context.Context, lineItemID uuid.UUID) (*models.OrderLineItem, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrdersRepo) UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, expected enums.OrderStatus, updates map[string]any) error {
	if s.casErr != nil {
		return s.casErr
	}
	if s.order == nil || s.order.ID != orderID {
		return gorm.ErrRecordNotFound
	}
	if s.order.Status != expected {
		return ErrStaleStatus
	}
	s.casCalls = append(s.casCalls, casCall{expected: expected, updates: updates})
	if status, ok := updates["status"].(enums.OrderStatus); ok {
		s.order.Status = status
	}
	if note, ok := updates["verification_notes"]; ok {
		if note == nil {
			s.order.VerificationNotes = nil
		} else if str, ok := note.(string); ok {
			s.order.VerificationNotes = &str
		}
	}
	return nil
}

func (s *stubOrdersRepo) UpdateLineItem(ctx context.Context, lineItemID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubOrdersRepo) ListByCustomer(ctx context.Context, customerID int64, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) ListBySeller(ctx context.Context, storeID int64, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

func (s *stubOrdersRepo) ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error) {
	return &OrderList{}, nil
}

type stubNotifier struct {
	statusChanges []enums.OrderStatus
	corrections   []string
}

func (n *stubNotifier) OrderStatusChanged(ctx context.Context, order *models.Order) {
	n.statusChanges = append(n.statusChanges, order.Status)
}

func (n *stubNotifier) CorrectionRequested(ctx context.Context, order *models.Order, note string) {
	n.corrections = append(n.corrections, note)
}

func newTestService(t *testing.T, repo Repository, notifier Notifier) Service {
	t.Helper()
	svc, err := NewService(repo, notifier)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func pendingVerificationOrder(storeID *int64) *models.Order {
	return &models.Order{
		ID:                 uuid.New(),
		CustomerID:         11,
		Status:             enums.OrderStatusPendingVerification,
		FulfilledByStoreID: storeID,
	}
}

func TestVerifyPaymentDirectPath(t *testing.T) {
	note := "UTR mismatch"
	repo := &stubOrdersRepo{order: pendingVerificationOrder(nil)}
	repo.order.VerificationNotes = &note
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	order, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: repo.order.ID,
		Actor:   admin(),
	})
	if err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if order.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing, got %s", order.Status)
	}
	if order.VerificationNotes != nil {
		t.Fatalf("expected verification notes to be cleared")
	}
	if repo.order.VerificationNotes != nil {
		t.Fatalf("expected stored notes to be cleared")
	}
	if len(notifier.statusChanges) != 1 || notifier.statusChanges[0] != enums.OrderStatusProcessing {
		t.Fatalf("expected one status notification, got %v", notifier.statusChanges)
	}
}

func TestVerifyPaymentSellerPath(t *testing.T) {
	repo := &stubOrdersRepo{order: pendingVerificationOrder(int64Ptr(7))}
	svc := newTestService(t, repo, nil)

	order, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: repo.order.ID,
		Actor:   admin(),
	})
	if err != nil {
		t.Fatalf("verify payment: %v", err)
	}
	if order.Status != enums.OrderStatusPendingSellerAcceptance {
		t.Fatalf("expected pending seller acceptance, got %s", order.Status)
	}
}

func TestVerifyPaymentForbiddenLeavesOrderUnchanged(t *testing.T) {
	repo := &stubOrdersRepo{order: pendingVerificationOrder(nil)}
	svc := newTestService(t, repo, nil)

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: repo.order.ID,
		Actor:   customer(11),
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
	if len(repo.casCalls) != 0 {
		t.Fatalf("expected no writes after authorization failure")
	}
	if repo.order.Status != enums.OrderStatusPendingVerification {
		t.Fatalf("order status must be unchanged, got %s", repo.order.Status)
	}
}

func TestRequestCorrectionRequiresNote(t *testing.T) {
	repo := &stubOrdersRepo{order: pendingVerificationOrder(nil)}
	svc := newTestService(t, repo, nil)

	_, err := svc.RequestCorrection(context.Background(), RequestCorrectionInput{
		OrderID: repo.order.ID,
		Actor:   admin(),
		Note:    "   ",
	})
	assertCode(t, err, pkgerrors.CodeValidation)
	if len(repo.casCalls) != 0 {
		t.Fatalf("expected validation to reject before any write")
	}
}

func TestRequestCorrectionLastWriteWins(t *testing.T) {
	repo := &stubOrdersRepo{order: pendingVerificationOrder(nil)}
	notifier := &stubNotifier{}
	svc := newTestService(t, repo, notifier)

	for _, note := range []string{"UTR mismatch", "UTR mismatch", "amount short by 100"} {
		order, err := svc.RequestCorrection(context.Background(), RequestCorrectionInput{
			OrderID: repo.order.ID,
			Actor:   admin(),
			Note:    note,
		})
		if err != nil {
			t.Fatalf("request correction: %v", err)
		}
		if order.Status != enums.OrderStatusPendingVerification {
			t.Fatalf("correction must keep order in verification, got %s", order.Status)
		}
	}

	if repo.order.VerificationNotes == nil || *repo.order.VerificationNotes != "amount short by 100" {
		t.Fatalf("expected last note to win, got %v", repo.order.VerificationNotes)
	}
	if len(notifier.corrections) != 3 {
		t.Fatalf("expected a notification per correction, got %d", len(notifier.corrections))
	}
}

func TestSellerDecisionDeclineSetsCancelledAt(t *testing.T) {
	repo := &stubOrdersRepo{order: &models.Order{
		ID:                 uuid.New(),
		CustomerID:         11,
		Status:             enums.OrderStatusPendingSellerAcceptance,
		FulfilledByStoreID: int64Ptr(7),
	}}
	svc := newTestService(t, repo, nil)

	order, err := svc.SellerDecision(context.Background(), SellerDecisionInput{
		OrderID:  repo.order.ID,
		Actor:    seller(7),
		Decision: SellerDecisionDecline,
	})
	if err != nil {
		t.Fatalf("seller decision: %v", err)
	}
	if order.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", order.Status)
	}
	if order.CancelledAt == nil {
		t.Fatalf("expected cancelled_at to be set")
	}
	if _, ok := repo.casCalls[0].updates["cancelled_at"]; !ok {
		t.Fatalf("expected cancelled_at column update")
	}
}

func TestSellerDecisionWrongStoreForbidden(t *testing.T) {
	repo := &stubOrdersRepo{order: &models.Order{
		ID:                 uuid.New(),
		CustomerID:         11,
		Status:             enums.OrderStatusPendingSellerAcceptance,
		FulfilledByStoreID: int64Ptr(7),
	}}
	svc := newTestService(t, repo, nil)

	_, err := svc.SellerDecision(context.Background(), SellerDecisionInput{
		OrderID:  repo.order.ID,
		Actor:    seller(8),
		Decision: SellerDecisionAccept,
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
	if len(repo.casCalls) != 0 {
		t.Fatalf("expected no writes for foreign store")
	}
}

func TestMarkDeliveredSetsDeliveredAt(t *testing.T) {
	repo := &stubOrdersRepo{order: &models.Order{
		ID:         uuid.New(),
		CustomerID: 11,
		Status:     enums.OrderStatusOutForDelivery,
	}}
	svc := newTestService(t, repo, nil)

	order, err := svc.MarkDelivered(context.Background(), MarkDeliveredInput{
		OrderID: repo.order.ID,
		Actor:   admin(),
	})
	if err != nil {
		t.Fatalf("mark delivered: %v", err)
	}
	if order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}
	if order.DeliveredAt == nil {
		t.Fatalf("expected delivered_at to be set")
	}
}

func TestStaleStatusSurfacesStateConflict(t *testing.T) {
	repo := &stubOrdersRepo{
		order:  pendingVerificationOrder(nil),
		casErr: ErrStaleStatus,
	}
	svc := newTestService(t, repo, nil)

	_, err := svc.VerifyPayment(context.Background(), VerifyPaymentInput{
		OrderID: repo.order.ID,
		Actor:   admin(),
	})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestOrderNotFound(t *testing.T) {
	repo := &stubOrdersRepo{}
	svc := newTestService(t, repo, nil)

	_, err := svc.MarkShipped(context.Background(), MarkShippedInput{
		OrderID: uuid.New(),
		Actor:   admin(),
	})
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestDirectPathHappySequence(t *testing.T) {
	repo := &stubOrdersRepo{order: pendingVerificationOrder(nil)}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()
	id := repo.order.ID

	if _, err := svc.VerifyPayment(ctx, VerifyPaymentInput{OrderID: id, Actor: admin()}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := svc.MarkShipped(ctx, MarkShippedInput{OrderID: id, Actor: admin()}); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if _, err := svc.MarkOutForDelivery(ctx, MarkOutForDeliveryInput{OrderID: id, Actor: admin()}); err != nil {
		t.Fatalf("out for delivery: %v", err)
	}
	order, err := svc.MarkDelivered(ctx, MarkDeliveredInput{OrderID: id, Actor: admin()})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}

	want := []enums.OrderStatus{
		enums.OrderStatusProcessing,
		enums.OrderStatusShipped,
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered,
	}
	if len(repo.casCalls) != len(want) {
		t.Fatalf("expected %d writes, got %d", len(want), len(repo.casCalls))
	}
	for i, call := range repo.casCalls {
		if got := call.updates["status"]; got != want[i] {
			t.Fatalf("write %d: expected status %s, got %v", i, want[i], got)
		}
	}
}

func TestSellerPathHappySequence(t *testing.T) {
	repo := &stubOrdersRepo{order: pendingVerificationOrder(int64Ptr(7))}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()
	id := repo.order.ID

	if _, err := svc.VerifyPayment(ctx, VerifyPaymentInput{OrderID: id, Actor: admin()}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := svc.SellerDecision(ctx, SellerDecisionInput{OrderID: id, Actor: seller(7), Decision: SellerDecisionAccept}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := svc.MarkOutForDelivery(ctx, MarkOutForDeliveryInput{OrderID: id, Actor: seller(7)}); err != nil {
		t.Fatalf("out for delivery: %v", err)
	}
	order, err := svc.MarkDelivered(ctx, MarkDeliveredInput{OrderID: id, Actor: seller(7)})
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if order.Status != enums.OrderStatusDelivered {
		t.Fatalf("expected delivered, got %s", order.Status)
	}

	// The seller path never passes through shipped.
	for _, call := range repo.casCalls {
		if call.updates["status"] == enums.OrderStatusShipped {
			t.Fatalf("seller path must not produce a shipped status")
		}
	}
}

func TestGetAppliesOwnershipRules(t *testing.T) {
	pending := enums.ReturnStatusPending
	repo := &stubOrdersRepo{order: &models.Order{
		ID:                 uuid.New(),
		CustomerID:         11,
		Status:             enums.OrderStatusReturnRequested,
		FulfilledByStoreID: int64Ptr(7),
		Items: []models.OrderLineItem{
			{ID: uuid.New(), ReturnStatus: &pending},
			{ID: uuid.New()},
		},
	}}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()

	detail, err := svc.Get(ctx, customer(11), repo.order.ID)
	if err != nil {
		t.Fatalf("owner get: %v", err)
	}
	if detail.Returns == nil || detail.Returns.Requested != 1 {
		t.Fatalf("expected derived return summary, got %+v", detail.Returns)
	}

	if _, err := svc.Get(ctx, customer(12), repo.order.ID); err == nil {
		t.Fatalf("expected foreign customer to be rejected")
	}
	if _, err := svc.Get(ctx, seller(8), repo.order.ID); err == nil {
		t.Fatalf("expected foreign seller to be rejected")
	}
	if _, err := svc.Get(ctx, admin(), repo.order.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestListRoleGates(t *testing.T) {
	repo := &stubOrdersRepo{}
	svc := newTestService(t, repo, nil)
	ctx := context.Background()
	params := pagination.Params{Limit: 10}

	if _, err := svc.ListMine(ctx, admin(), params, ListFilters{}); err == nil {
		t.Fatalf("expected ListMine to reject admins")
	}
	if _, err := svc.ListAll(ctx, customer(11), params, ListFilters{}); err == nil {
		t.Fatalf("expected ListAll to reject customers")
	}
	if _, err := svc.ListForStore(ctx, seller(7), params, ListFilters{}); err != nil {
		t.Fatalf("seller list: %v", err)
	}
	if _, err := svc.ListAll(ctx, admin(), params, ListFilters{}); err != nil {
		t.Fatalf("admin list: %v", err)
	}
}
