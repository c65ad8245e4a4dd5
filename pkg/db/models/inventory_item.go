package models

import "time"

// InventoryItem tracks per-location stock for a variant. The order flow
// reads these counts but never mutates them.
type InventoryItem struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	VariantID    int64     `gorm:"column:variant_id;not null;index"`
	StoreID      *int64    `gorm:"column:store_id;index"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
