package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shopcore-labs/shopcore-backend/pkg/enums"
	"github.com/shopcore-labs/shopcore-backend/pkg/types"
)

// Order is the immutable record of a finalized purchase. Items are owned
// copies of the cart lines at checkout time; the source cart is deleted and
// never referenced again, so order history survives any cart churn.
type Order struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index" json:"user"`
	Items           []OrderItem         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"cartItems"`
	ShippingAddress types.Address       `gorm:"column:shipping_address;type:jsonb;serializer:json" json:"shippingAddress"`
	TotalOrderPrice decimal.Decimal     `gorm:"column:total_order_price;type:numeric(10,2);not null" json:"totalOrderPrice"`
	PaymentMethod   enums.PaymentMethod `gorm:"column:payment_method;not null;default:'cash'" json:"paymentMethodType"`
	IsPaid          bool                `gorm:"column:is_paid;not null;default:false" json:"isPaid"`
	PaidAt          *time.Time          `gorm:"column:paid_at" json:"paidAt,omitempty"`
	IsDelivered     bool                `gorm:"column:is_delivered;not null;default:false" json:"isDelivered"`
	DeliveredAt     *time.Time          `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
