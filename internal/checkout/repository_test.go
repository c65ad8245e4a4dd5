package checkout

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltline/voltline-backend/pkg/db/models"
)

func setupCheckoutTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	coupons := `
CREATE TABLE IF NOT EXISTS coupons (
  code TEXT PRIMARY KEY,
  percent_off NUMERIC NOT NULL,
  max_discount_paise INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(coupons).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM coupons")
	})

	return db
}

func TestFindActiveCoupon(t *testing.T) {
	db := setupCheckoutTestDB(t)
	repo := NewRepository(db)

	require.NoError(t, db.Create(&models.Coupon{
		Code:             "LAUNCH20",
		PercentOff:       decimal.NewFromInt(20),
		MaxDiscountPaise: 50000,
		IsActive:         true,
	}).Error)
	require.NoError(t, db.Create(&models.Coupon{
		Code:       "EXPIRED5",
		PercentOff: decimal.NewFromInt(5),
		IsActive:   false,
	}).Error)

	coupon, err := repo.FindActiveCoupon(context.Background(), "launch20")
	require.NoError(t, err)
	require.NotNil(t, coupon)
	assert.Equal(t, "LAUNCH20", coupon.Code)
	assert.Equal(t, 50000, coupon.MaxDiscountPaise)
	assert.True(t, coupon.PercentOff.Equal(decimal.NewFromInt(20)))

	inactive, err := repo.FindActiveCoupon(context.Background(), "EXPIRED5")
	require.NoError(t, err)
	assert.Nil(t, inactive)

	missing, err := repo.FindActiveCoupon(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, missing)

	blank, err := repo.FindActiveCoupon(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, blank)
}
