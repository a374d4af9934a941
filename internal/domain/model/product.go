package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 商品（マーチ）。価格はバリアントで上書きできる。
type Product struct {
	ID          int64            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string           `gorm:"type:varchar(200);not null" json:"name"`
	Slug        string           `gorm:"type:varchar(220);not null;uniqueIndex" json:"slug"`
	Description string           `gorm:"type:text;not null;default:''" json:"description"`
	Price       decimal.Decimal  `gorm:"type:numeric(10,2);not null" json:"price"`
	ImageURL    string           `gorm:"type:varchar(500)" json:"image_url"`
	IsActive    bool             `gorm:"not null;index" json:"is_active"`
	IsFeatured  bool             `gorm:"not null;default:false;index" json:"is_featured"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"-"`
	CreatedAt   time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time        `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}
