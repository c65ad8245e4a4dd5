package models

import "time"

// Store is an independent seller storefront. Orders carrying its id in
// fulfilled_by_store_id route through the seller-acceptance branch.
type Store struct {
	ID          int64     `gorm:"column:id;primaryKey;autoIncrement"`
	OwnerUserID int64     `gorm:"column:owner_user_id;not null;index"`
	Name        string    `gorm:"column:name;not null"`
	City        string    `gorm:"column:city;not null"`
	Pincode     string    `gorm:"column:pincode;not null"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
