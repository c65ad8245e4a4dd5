package models

import "time"

// Product is a catalog entry. StoreID is nil for platform-fulfilled
// products and set for products a seller store fulfills itself.
type Product struct {
	ID             int64     `gorm:"column:id;primaryKey;autoIncrement"`
	StoreID        *int64    `gorm:"column:store_id;index"`
	Name           string    `gorm:"column:name;not null"`
	Category       string    `gorm:"column:category;not null"`
	BasePricePaise int       `gorm:"column:base_price_paise;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
