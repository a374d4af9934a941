package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// カートの明細。同じバリアントは1行にまとめる。
type CartItem struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CartID    int64          `gorm:"not null;uniqueIndex:uniq_cart_variant" json:"cart_id"`
	VariantID int64          `gorm:"not null;uniqueIndex:uniq_cart_variant" json:"variant_id"`
	Variant   ProductVariant `gorm:"foreignKey:VariantID" json:"-"`
	Quantity  int64          `gorm:"not null" json:"quantity"`
	AddedAt   time.Time      `gorm:"not null;autoCreateTime" json:"added_at"`
}

// 明細金額 = バリアント価格 × 数量
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Variant.FinalPrice().Mul(decimal.NewFromInt(i.Quantity))
}
