package models

// ProductStatus controls where a catalog entry may appear.
type ProductStatus string

const (
	// ProductStatusExchangeable: listed in the redemption store.
	ProductStatusExchangeable ProductStatus = "exchangeable"
	// ProductStatusSurpriseOnly: only handed out as a check-in surprise.
	ProductStatusSurpriseOnly ProductStatus = "surprise_only"
	ProductStatusDisabled     ProductStatus = "disabled"
)

// Product is a coupon catalog entry.
type Product struct {
	ID          string        `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string        `gorm:"not null" json:"name"`
	Slug        string        `gorm:"uniqueIndex;not null" json:"slug"`
	Description string        `gorm:"type:text" json:"description"`
	Points      int           `gorm:"not null" json:"points"`
	ImageURL    string        `gorm:"type:text" json:"image_url"`
	Status      ProductStatus `gorm:"not null;default:'exchangeable';index" json:"status"`

	Timestamps
}
