package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Order is the per-vendor order row the bundled dashboard aggregates over.
type Order struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber    int64      `gorm:"column:order_number;not null"`
	BuyerStoreID   uuid.UUID  `gorm:"column:buyer_store_id;type:uuid;not null"`
	VendorStoreID  uuid.UUID  `gorm:"column:vendor_store_id;type:uuid;not null"`
	Status         string     `gorm:"column:status;type:text;not null;default:'created'"`
	PaymentMethod  string     `gorm:"column:payment_method;type:text;not null;default:'cash'"`
	Currency       string     `gorm:"column:currency;type:text;not null;default:'USD'"`
	SubtotalCents  int64      `gorm:"column:subtotal_cents;not null"`
	DiscountsCents int64      `gorm:"column:discounts_cents;not null;default:0"`
	TotalCents     int64      `gorm:"column:total_cents;not null"`
	BuyerZip       *string    `gorm:"column:buyer_zip"`
	CanceledAt     *time.Time `gorm:"column:canceled_at"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null"`
}

// TableName pins the table regardless of naming strategy.
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns an ID when the caller did not.
func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
