package models

import (
	"time"

	"github.com/voltline/voltline-backend/pkg/types"
)

// ProductVariant is a sellable configuration of a product (colour,
// storage size and so on) with its own price.
type ProductVariant struct {
	ID         int64         `gorm:"column:id;primaryKey;autoIncrement"`
	ProductID  int64         `gorm:"column:product_id;not null;index"`
	Attributes types.JSONMap `gorm:"column:attributes;type:jsonb;serializer:json"`
	PricePaise int           `gorm:"column:price_paise;not null"`
	IsActive   bool          `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
