package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID         int64           `gorm:"primaryKey;autoIncrement" db:"id" json:"id"`
	Name       string          `gorm:"size:200;not null;index" db:"name" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(18,2);not null" db:"price" json:"price"`
	CategoryID int64           `gorm:"not null;index" db:"category_id" json:"category_id"`
	Category   *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" db:"-" json:"-"`
	CreatedAt  time.Time       `gorm:"not null" db:"created_at" json:"created_at"`
	UpdatedAt  *time.Time      `gorm:"autoUpdateTime:false" db:"updated_at" json:"updated_at"`

	// CategoryName is filled by joined reads only.
	CategoryName *string `gorm:"-" db:"category_name" json:"category_name"`
}

// ProductGroup is one row of the per-category aggregate report.
type ProductGroup struct {
	CategoryID   int64           `db:"category_id" json:"category_id"`
	CategoryName string          `db:"category_name" json:"category_name"`
	ProductCount int64           `db:"product_count" json:"product_count"`
	TotalValue   decimal.Decimal `db:"total_value" json:"total_value"`
	AveragePrice decimal.Decimal `db:"average_price" json:"average_price"`
	MinPrice     decimal.Decimal `db:"min_price" json:"min_price"`
	MaxPrice     decimal.Decimal `db:"max_price" json:"max_price"`
}
