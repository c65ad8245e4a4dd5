package inventory

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
)

// VariantDetail joins a sellable variant with its parent product. Checkout
// reads these to snapshot line items and to decide which store fulfills
// the order.
type VariantDetail struct {
	Variant models.ProductVariant
	Product models.Product
}

// Repository exposes read-only catalog and stock queries. Nothing in the
// order flow mutates inventory counts.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindVariantDetail(ctx context.Context, variantID int64) (*VariantDetail, error)
	// AvailableQty sums the stock for a variant at the given location.
	// A nil storeID addresses platform-held stock.
	AvailableQty(ctx context.Context, variantID int64, storeID *int64) (int, error)
	ListByStore(ctx context.Context, storeID *int64) ([]models.InventoryItem, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository backed by the provided DB.
func NewRepository(db *gorm.DB) Repository {
	if db == nil {
		return nil
	}
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindVariantDetail(ctx context.Context, variantID int64) (*VariantDetail, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		return nil, err
	}

	var product models.Product
	err = r.db.WithContext(ctx).
		Where("id = ?", variant.ProductID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}

	return &VariantDetail{Variant: variant, Product: product}, nil
}

func (r *repository) AvailableQty(ctx context.Context, variantID int64, storeID *int64) (int, error) {
	query := r.db.WithContext(ctx).
		Model(&models.InventoryItem{}).
		Where("variant_id = ?", variantID)
	if storeID == nil {
		query = query.Where("store_id IS NULL")
	} else {
		query = query.Where("store_id = ?", *storeID)
	}

	var total *int
	if err := query.Select("SUM(available_qty)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *repository) ListByStore(ctx context.Context, storeID *int64) ([]models.InventoryItem, error) {
	query := r.db.WithContext(ctx).Model(&models.InventoryItem{})
	if storeID == nil {
		query = query.Where("store_id IS NULL")
	} else {
		query = query.Where("store_id = ?", *storeID)
	}

	var items []models.InventoryItem
	if err := query.Order("variant_id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
