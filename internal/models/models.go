package models

import "time"

const (
	SectionIndex   = "index"
	SectionCatalog = "catalog"
)

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Email        string `gorm:"uniqueIndex;not null"     json:"email"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	IsAdmin      bool   `gorm:"not null;default:false"   json:"is_admin"`
}

type Product struct {
	ID      uint    `gorm:"primaryKey;autoIncrement"                        json:"id"`
	Name    string  `gorm:"not null;uniqueIndex:idx_products_name_section"  json:"name"`
	Price   float64 `gorm:"not null"                                        json:"price"`
	Image   *string `json:"image"`
	Section string  `gorm:"not null;uniqueIndex:idx_products_name_section"  json:"section"`
}

// Order rows are append-only: created inside checkout, never updated.
type Order struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	Total     float64   `gorm:"not null"                 json:"total"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem captures the product price at purchase time, not a live
// reference to Product.Price.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement"   json:"id"`
	OrderID   uint    `gorm:"index;not null"             json:"order_id"`
	ProductID uint    `gorm:"not null"                   json:"product_id"`
	Quantity  uint    `gorm:"not null;check:quantity>0"  json:"quantity"`
	Price     float64 `gorm:"not null"                   json:"price"`
}

func ValidSection(s string) bool {
	return s == SectionIndex || s == SectionCatalog
}
