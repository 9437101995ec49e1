package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the catalog listing. Quantity is on-hand stock and Sold the
// cumulative units sold; both counters are mutated only by order
// finalization, never by cart operations.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string          `gorm:"column:name;not null" json:"name"`
	Description string          `gorm:"column:description;not null" json:"description"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	Quantity    int             `gorm:"column:quantity;not null;default:0" json:"quantity"`
	Sold        int             `gorm:"column:sold;not null;default:0" json:"sold"`
	CoverImage  string          `gorm:"column:cover_image" json:"coverImage"`
	Images      pq.StringArray  `gorm:"column:images;type:text[]" json:"images,omitempty"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true" json:"isActive"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
