package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
	"github.com/voltline/voltline-backend/pkg/enums"
	"github.com/voltline/voltline-backend/pkg/pagination"
)

// Repository defines persistence operations for the order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateLineItems(ctx context.Context, items []models.OrderLineItem) error
	Find(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindLineItem(ctx context.Context, lineItemID uuid.UUID) (*models.OrderLineItem, error)
	// UpdateStatusCAS applies the updates only when the stored status still
	// matches expected. It returns ErrStaleStatus when another actor moved
	// the order first.
	UpdateStatusCAS(ctx context.Context, orderID uuid.UUID, expected enums.OrderStatus, updates map[string]any) error
	UpdateLineItem(ctx context.Context, lineItemID uuid.UUID, updates map[string]any) error
	ListByCustomer(ctx context.Context, customerID int64, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListBySeller(ctx context.Context, storeID int64, params pagination.Params, filters ListFilters) (*OrderList, error)
	ListAll(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderList, error)
}

// Notifier records customer-facing notifications for order events.
// Implementations are best-effort: failures are logged, never returned.
type Notifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order)
	CorrectionRequested(ctx context.Context, order *models.Order, note string)
}
