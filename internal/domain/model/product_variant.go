package model

import "github.com/shopspring/decimal"

type Size string

const (
	SizeS  Size = "S"
	SizeM  Size = "M"
	SizeL  Size = "L"
	SizeXL Size = "XL"
)

// Valid は S/M/L/XL のどれか
func (s Size) Valid() bool {
	return s.Rank() > 0
}

// Rank は表示順（S→XL）。不明なサイズは 0。
func (s Size) Rank() int {
	switch s {
	case SizeS:
		return 1
	case SizeM:
		return 2
	case SizeL:
		return 3
	case SizeXL:
		return 4
	}
	return 0
}

// 商品×サイズ。在庫はバリアント単位。
type ProductVariant struct {
	ID            int64               `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID     int64               `gorm:"not null;uniqueIndex:uniq_product_size" json:"product_id"`
	Product       Product             `gorm:"foreignKey:ProductID" json:"-"`
	Size          Size                `gorm:"type:varchar(4);not null;uniqueIndex:uniq_product_size" json:"size"`
	PriceOverride decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"price_override"`
	StockQty      int64               `gorm:"not null;default:0" json:"stock_qty"`
	IsActive      bool                `gorm:"not null" json:"is_active"`
}

// 上書き価格があればそれ、無ければ商品価格
func (v ProductVariant) FinalPrice() decimal.Decimal {
	if v.PriceOverride.Valid {
		return v.PriceOverride.Decimal
	}
	return v.Product.Price
}
