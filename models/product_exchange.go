package models

import "time"

// ExchangeStatus is the redemption lifecycle state.
type ExchangeStatus string

const (
	ExchangeStatusExchanged ExchangeStatus = "exchanged"
	ExchangeStatusUsed      ExchangeStatus = "used"
	ExchangeStatusExpired   ExchangeStatus = "expired"
)

// ProductExchange records one coupon redemption. The points charge lives
// in the ledger; this row tracks the coupon's validity window.
type ProductExchange struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string         `gorm:"index;not null" json:"user_id"`
	ProductID    string         `gorm:"index;not null" json:"product_id"`
	Points       int            `gorm:"not null" json:"points"`
	Status       ExchangeStatus `gorm:"not null;default:'exchanged';index" json:"status"`
	ExchangeTime time.Time      `gorm:"not null" json:"exchange_time"`
	// ExpireAt is the last valid local date, YYYY-MM-DD.
	ExpireAt string `gorm:"size:10;not null" json:"expire_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`

	Timestamps
}
