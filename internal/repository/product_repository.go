package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// バリアントの取得だけを約束（Product も読み込む）。
type VariantRepository interface {
	FindActiveByID(ctx context.Context, id int64) (model.ProductVariant, error)
}

// GET /merch/ の検索条件
type ProductListQuery struct {
	Page     int
	Limit    int
	Featured bool
}

// カタログ（公開商品と管理用の登録・在庫更新）。
// 読み出しでは Variants に「販売中かつ在庫あり」のバリアントだけが入る。
type ProductRepository interface {
	ListActive(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindActiveBySlug(ctx context.Context, slug string) (model.Product, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// Variants もまとめて作成する
	Create(ctx context.Context, p model.Product) (model.Product, error)
	UpdateVariantStock(ctx context.Context, variantID int64, stock int64) error
}
