package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Coupon is a named, time-bounded percentage discount. Only coupons whose
// expiry is strictly in the future are eligible for application.
type Coupon struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Code      string          `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Discount  decimal.Decimal `gorm:"column:discount;type:numeric(5,2);not null" json:"discount"`
	ExpiresAt time.Time       `gorm:"column:expires_at;not null" json:"expiresAt"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (c *Coupon) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
