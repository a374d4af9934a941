package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartRepository interface {
	// セッションのカートを取得し、無ければ作成
	GetOrCreateBySession(ctx context.Context, sessionKey string) (model.Cart, error)
	FindBySession(ctx context.Context, sessionKey string) (model.Cart, error)
	Clear(ctx context.Context, cartID int64) error
}
