package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/shopspring/decimal"
)

// 受け取り場所（店舗受け取りのみ）
const PickupLocation = "Triunfo, Maputo"

const (
	msgInternal        = "Erro interno."
	msgVariantNotFound = "Produto não encontrado."
	msgItemNotFound    = "Item não encontrado."
	msgInvalidQty      = "Quantidade inválida."
	msgOutOfStock      = "Quantidade solicitada não disponível em estoque."
)

// CartUsecase はセッション単位カートの業務ロジック。
// 価格・在庫の判断はすべてここで行い、クライアントは結果を表示するだけ。
type CartUsecase struct {
	tx    repo.TransactionManager
	carts repo.CartRepository
	items repo.CartItemRepository
}

// DI
func NewCartUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	items repo.CartItemRepository,
) *CartUsecase {
	return &CartUsecase{
		tx:    tx,
		carts: carts,
		items: items,
	}
}

// CartLineOutput はスナップショットの1行。
type CartLineOutput struct {
	ID      int64   `json:"id"`
	Product string  `json:"product"`
	Size    *string `json:"size"`
	Qty     int64   `json:"qty"`
	Line    string  `json:"line"`
	Image   *string `json:"image"`
}

// SnapshotOutput は GET /cart/modal-data/ と各変更系の応答。
type SnapshotOutput struct {
	OK     bool             `json:"ok"`
	Items  []CartLineOutput `json:"items"`
	Count  int              `json:"count"`
	Total  string           `json:"total"`
	Pickup string           `json:"pickup"`
}

type AddToCartInput struct {
	VariantID int64
	Quantity  int64
}

type AddToCartOutput struct {
	OK        bool   `json:"ok"`
	CartCount int64  `json:"cart_count"`
	Message   string `json:"message"`
}

// GetSnapshot はカートの現在値を返す（カートが無ければ空）。
func (u *CartUsecase) GetSnapshot(ctx context.Context, sessionKey string) (SnapshotOutput, error) {
	if sessionKey == "" {
		return SnapshotOutput{}, NewHTTPError(http.StatusUnauthorized, "sessão inválida")
	}

	cart, err := u.carts.FindBySession(ctx, sessionKey)
	if errors.Is(err, repo.ErrNotFound) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return SnapshotOutput{}, NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	return buildSnapshot(ctx, u.items, cart.ID)
}

// AddToCart はバリアントを追加する。同じバリアントは数量を加算し、在庫で頭打ちにする。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionKey string, in AddToCartInput) (AddToCartOutput, error) {
	if sessionKey == "" {
		return AddToCartOutput{}, NewHTTPError(http.StatusUnauthorized, "sessão inválida")
	}
	if in.VariantID <= 0 {
		return AddToCartOutput{}, NewHTTPError(http.StatusNotFound, msgVariantNotFound)
	}
	if in.Quantity < 1 {
		return AddToCartOutput{}, NewHTTPError(http.StatusBadRequest, msgInvalidQty)
	}

	var out AddToCartOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		v, err := r.Variants().FindActiveByID(ctx, in.VariantID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, msgVariantNotFound)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}
		if v.StockQty < in.Quantity {
			return NewHTTPError(http.StatusConflict, msgOutOfStock)
		}

		cart, err := r.Carts().GetOrCreateBySession(ctx, sessionKey)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}

		message := fmt.Sprintf("%s adicionado ao carrinho!", v.Product.Name)

		existing, err := r.CartItems().FindByCartAndVariant(ctx, cart.ID, v.ID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			if _, err := r.CartItems().Create(ctx, model.CartItem{
				CartID:    cart.ID,
				VariantID: v.ID,
				Quantity:  in.Quantity,
			}); err != nil {
				return NewHTTPError(http.StatusInternalServerError, msgInternal)
			}
		case err != nil:
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		default:
			// 既存行は加算、在庫を超えたら在庫数に合わせる
			qty := existing.Quantity + in.Quantity
			if qty > v.StockQty {
				qty = v.StockQty
				message = fmt.Sprintf("Quantidade ajustada para o estoque disponível: %d.", v.StockQty)
			}
			if err := r.CartItems().UpdateQuantity(ctx, existing.ID, qty); err != nil {
				return NewHTTPError(http.StatusInternalServerError, msgInternal)
			}
		}

		count, err := r.CartItems().CountByCartID(ctx, cart.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}

		out = AddToCartOutput{OK: true, CartCount: count, Message: message}
		return nil
	})

	if err != nil {
		return AddToCartOutput{}, err
	}
	return out, nil
}

// SetQuantity は数量を設定する。0以下なら行を削除、在庫超過は 409 で何も変えない。
func (u *CartUsecase) SetQuantity(ctx context.Context, sessionKey string, itemID int64, qty int64) (SnapshotOutput, error) {
	if sessionKey == "" {
		return SnapshotOutput{}, NewHTTPError(http.StatusUnauthorized, "sessão inválida")
	}
	if itemID <= 0 {
		return SnapshotOutput{}, NewHTTPError(http.StatusNotFound, msgItemNotFound)
	}

	var out SnapshotOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.CartItems().FindOwned(ctx, itemID, sessionKey)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, msgItemNotFound)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}

		if qty <= 0 {
			if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, msgInternal)
			}
		} else {
			if available := item.Variant.StockQty; qty > available {
				return NewHTTPError(http.StatusConflict, fmt.Sprintf("Quantidade não disponível. Estoque: %d", available))
			}
			if err := r.CartItems().UpdateQuantity(ctx, item.ID, qty); err != nil {
				return NewHTTPError(http.StatusInternalServerError, msgInternal)
			}
		}

		out, err = buildSnapshot(ctx, r.CartItems(), item.CartID)
		return err
	})

	if err != nil {
		return SnapshotOutput{}, err
	}
	return out, nil
}

// RemoveItem は明細を削除する。
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionKey string, itemID int64) (SnapshotOutput, error) {
	if sessionKey == "" {
		return SnapshotOutput{}, NewHTTPError(http.StatusUnauthorized, "sessão inválida")
	}
	if itemID <= 0 {
		return SnapshotOutput{}, NewHTTPError(http.StatusNotFound, msgItemNotFound)
	}

	var out SnapshotOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		item, err := r.CartItems().FindOwned(ctx, itemID, sessionKey)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, msgItemNotFound)
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}

		if err := r.CartItems().DeleteByID(ctx, item.ID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusNotFound, msgItemNotFound)
			}
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}

		out, err = buildSnapshot(ctx, r.CartItems(), item.CartID)
		return err
	})

	if err != nil {
		return SnapshotOutput{}, err
	}
	return out, nil
}

// Clear はカートの明細をすべて削除する。
func (u *CartUsecase) Clear(ctx context.Context, sessionKey string) (SnapshotOutput, error) {
	if sessionKey == "" {
		return SnapshotOutput{}, NewHTTPError(http.StatusUnauthorized, "sessão inválida")
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cart, err := r.Carts().FindBySession(ctx, sessionKey)
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}
		if err := r.Carts().Clear(ctx, cart.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, msgInternal)
		}
		return nil
	})

	if err != nil {
		return SnapshotOutput{}, err
	}
	return emptySnapshot(), nil
}

func emptySnapshot() SnapshotOutput {
	return SnapshotOutput{
		OK:     true,
		Items:  []CartLineOutput{},
		Count:  0,
		Total:  decimal.Zero.StringFixed(2),
		Pickup: PickupLocation,
	}
}

// cartIDの明細からスナップショットを作る。金額は小数2桁の文字列。
func buildSnapshot(ctx context.Context, items repo.CartItemRepository, cartID int64) (SnapshotOutput, error) {
	list, err := items.ListByCartID(ctx, cartID)
	if err != nil {
		return SnapshotOutput{}, NewHTTPError(http.StatusInternalServerError, msgInternal)
	}

	out := emptySnapshot()
	out.Items = make([]CartLineOutput, 0, len(list))
	total := decimal.Zero

	for _, it := range list {
		line := it.LineTotal()
		total = total.Add(line)
		out.Items = append(out.Items, toCartLineOutput(it, line))
	}

	out.Count = len(out.Items)
	out.Total = total.StringFixed(2)
	return out, nil
}

func toCartLineOutput(it model.CartItem, line decimal.Decimal) CartLineOutput {
	o := CartLineOutput{
		ID:      it.ID,
		Product: it.Variant.Product.Name,
		Qty:     it.Quantity,
		Line:    line.StringFixed(2),
	}
	if s := string(it.Variant.Size); s != "" {
		o.Size = &s
	}
	if img := it.Variant.Product.ImageURL; img != "" {
		o.Image = &img
	}
	return o
}
