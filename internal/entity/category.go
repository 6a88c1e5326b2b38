package entity

import (
	"time"
)

type Category struct {
	ID        int64      `gorm:"primaryKey;autoIncrement" db:"id" json:"id"`
	Name      string     `gorm:"size:100;not null" db:"name" json:"name"`
	CreatedAt time.Time  `gorm:"not null" db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `gorm:"autoUpdateTime:false" db:"updated_at" json:"updated_at"`
}
