package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the single live pre-checkout cart for a user. TotalCartPrice is
// recomputed after every mutation; TotalPriceAfterDiscount is only present
// while a valid coupon is applied and is cleared whenever the items change.
type Cart struct {
	ID                      uuid.UUID        `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID                  uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user"`
	Items                   []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"cartItems"`
	TotalCartPrice          decimal.Decimal  `gorm:"column:total_cart_price;type:numeric(10,2);not null;default:0" json:"totalCartPrice"`
	TotalPriceAfterDiscount *decimal.Decimal `gorm:"column:total_price_after_discount;type:numeric(10,2)" json:"totalPriceAfterDiscount,omitempty"`
	CreatedAt               time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt               time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
