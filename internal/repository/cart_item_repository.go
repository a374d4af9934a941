package repository

import (
	"context"

	"storefront/internal/domain/model"
)

type CartItemRepository interface {
	// Variant.Product まで読み込んだ明細を追加順で返す
	ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error)
	FindByCartAndVariant(ctx context.Context, cartID int64, variantID int64) (model.CartItem, error)
	Create(ctx context.Context, item model.CartItem) (model.CartItem, error)
	UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error
	DeleteByID(ctx context.Context, cartItemID int64) error
	// セッションのカートに属する明細だけ返す（他人の明細は ErrNotFound）
	FindOwned(ctx context.Context, cartItemID int64, sessionKey string) (model.CartItem, error)
	CountByCartID(ctx context.Context, cartID int64) (int64, error)
}
