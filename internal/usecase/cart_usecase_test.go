package usecase_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	carts     repo.CartRepository
	cartItems repo.CartItemRepository
	variants  repo.VariantRepository
}

func (r *TxReposMock) Carts() repo.CartRepository         { return r.carts }
func (r *TxReposMock) CartItems() repo.CartItemRepository { return r.cartItems }
func (r *TxReposMock) Variants() repo.VariantRepository   { return r.variants }

// =====================
// Repository mocks
// =====================

type CartRepoMock struct{ mock.Mock }

func (m *CartRepoMock) GetOrCreateBySession(ctx context.Context, sessionKey string) (model.Cart, error) {
	args := m.Called(ctx, sessionKey)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) FindBySession(ctx context.Context, sessionKey string) (model.Cart, error) {
	args := m.Called(ctx, sessionKey)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepoMock) Clear(ctx context.Context, cartID int64) error {
	args := m.Called(ctx, cartID)
	return args.Error(0)
}

type CartItemRepoMock struct{ mock.Mock }

func (m *CartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	items, _ := args.Get(0).([]model.CartItem)
	return items, args.Error(1)
}

func (m *CartItemRepoMock) FindByCartAndVariant(ctx context.Context, cartID int64, variantID int64) (model.CartItem, error) {
	args := m.Called(ctx, cartID, variantID)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) Create(ctx context.Context, item model.CartItem) (model.CartItem, error) {
	args := m.Called(ctx, item)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) UpdateQuantity(ctx context.Context, cartItemID int64, qty int64) error {
	args := m.Called(ctx, cartItemID, qty)
	return args.Error(0)
}

func (m *CartItemRepoMock) DeleteByID(ctx context.Context, cartItemID int64) error {
	args := m.Called(ctx, cartItemID)
	return args.Error(0)
}

func (m *CartItemRepoMock) FindOwned(ctx context.Context, cartItemID int64, sessionKey string) (model.CartItem, error) {
	args := m.Called(ctx, cartItemID, sessionKey)
	it, _ := args.Get(0).(model.CartItem)
	return it, args.Error(1)
}

func (m *CartItemRepoMock) CountByCartID(ctx context.Context, cartID int64) (int64, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).(int64), args.Error(1)
}

type VariantRepoMock struct{ mock.Mock }

func (m *VariantRepoMock) FindActiveByID(ctx context.Context, id int64) (model.ProductVariant, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(model.ProductVariant)
	return v, args.Error(1)
}

// =====================
// helpers
// =====================

const session = "0b9a1f5e-2c55-4d0f-9a7d-3f1a6c2b8e11"

type fixture struct {
	tx       *TxManagerMock
	carts    *CartRepoMock
	items    *CartItemRepoMock
	variants *VariantRepoMock
	uc       *usecase.CartUsecase
}

func newFixture() *fixture {
	f := &fixture{
		tx:       new(TxManagerMock),
		carts:    new(CartRepoMock),
		items:    new(CartItemRepoMock),
		variants: new(VariantRepoMock),
	}
	f.tx.Repos = &TxReposMock{carts: f.carts, cartItems: f.items, variants: f.variants}
	f.tx.On("WithinTx", mock.Anything).Return(nil)
	f.uc = usecase.NewCartUsecase(f.tx, f.carts, f.items)
	return f
}

func tshirt(stock int64) model.ProductVariant {
	return model.ProductVariant{
		ID:        7,
		ProductID: 1,
		Product:   model.Product{ID: 1, Name: "T-Shirt Planeta", Price: decimal.RequireFromString("1250.00"), ImageURL: "/media/tshirt.jpg", IsActive: true},
		Size:      model.SizeM,
		StockQty:  stock,
		IsActive:  true,
	}
}

func bone(stock int64) model.ProductVariant {
	return model.ProductVariant{
		ID:            8,
		ProductID:     2,
		Product:       model.Product{ID: 2, Name: "Boné", Price: decimal.RequireFromString("350.00"), IsActive: true},
		PriceOverride: decimal.NewNullDecimal(decimal.RequireFromString("300.00")),
		StockQty:      stock,
		IsActive:      true,
	}
}

func assertHTTPError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	he, ok := usecase.AsHTTPError(err)
	require.True(t, ok, "expected *HTTPError, got %v", err)
	assert.Equal(t, status, he.Status)
	if msg != "" {
		assert.Equal(t, msg, he.Message)
	}
}

// =====================
// GetSnapshot
// =====================

func TestCartUsecase_GetSnapshot_NoCartIsEmpty(t *testing.T) {
	f := newFixture()
	f.carts.On("FindBySession", mock.Anything, session).Return(model.Cart{}, repo.ErrNotFound)

	out, err := f.uc.GetSnapshot(context.Background(), session)
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Empty(t, out.Items)
	assert.NotNil(t, out.Items)
	assert.Equal(t, 0, out.Count)
	assert.Equal(t, "0.00", out.Total)
	assert.Equal(t, "Triunfo, Maputo", out.Pickup)
	f.items.AssertNotCalled(t, "ListByCartID", mock.Anything, mock.Anything)
}

func TestCartUsecase_GetSnapshot_PricesOnServer(t *testing.T) {
	f := newFixture()
	f.carts.On("FindBySession", mock.Anything, session).Return(model.Cart{ID: 3, SessionKey: session}, nil)
	f.items.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 11, CartID: 3, VariantID: 7, Variant: tshirt(5), Quantity: 2},
		{ID: 12, CartID: 3, VariantID: 8, Variant: bone(5), Quantity: 1},
	}, nil)

	out, err := f.uc.GetSnapshot(context.Background(), session)
	require.NoError(t, err)

	require.Len(t, out.Items, 2)
	assert.Equal(t, 2, out.Count)
	assert.Equal(t, "2800.00", out.Total)

	first := out.Items[0]
	assert.Equal(t, int64(11), first.ID)
	assert.Equal(t, "T-Shirt Planeta", first.Product)
	require.NotNil(t, first.Size)
	assert.Equal(t, "M", *first.Size)
	assert.Equal(t, "2500.00", first.Line)
	require.NotNil(t, first.Image)

	second := out.Items[1]
	assert.Nil(t, second.Size)
	assert.Nil(t, second.Image)
	assert.Equal(t, "300.00", second.Line, "variant override wins over product price")
}

func TestCartUsecase_GetSnapshot_DBError(t *testing.T) {
	f := newFixture()
	f.carts.On("FindBySession", mock.Anything, session).Return(model.Cart{}, errors.New("boom"))

	_, err := f.uc.GetSnapshot(context.Background(), session)
	assertHTTPError(t, err, http.StatusInternalServerError, "")
}

// =====================
// AddToCart
// =====================

func TestCartUsecase_AddToCart_NewLine(t *testing.T) {
	f := newFixture()
	f.variants.On("FindActiveByID", mock.Anything, int64(7)).Return(tshirt(5), nil)
	f.carts.On("GetOrCreateBySession", mock.Anything, session).Return(model.Cart{ID: 3}, nil)
	f.items.On("FindByCartAndVariant", mock.Anything, int64(3), int64(7)).Return(model.CartItem{}, repo.ErrNotFound)
	f.items.On("Create", mock.Anything, mock.MatchedBy(func(it model.CartItem) bool {
		return it.CartID == 3 && it.VariantID == 7 && it.Quantity == 2
	})).Return(model.CartItem{ID: 11}, nil)
	f.items.On("CountByCartID", mock.Anything, int64(3)).Return(int64(1), nil)

	out, err := f.uc.AddToCart(context.Background(), session, usecase.AddToCartInput{VariantID: 7, Quantity: 2})
	require.NoError(t, err)

	assert.True(t, out.OK)
	assert.Equal(t, int64(1), out.CartCount)
	assert.Equal(t, "T-Shirt Planeta adicionado ao carrinho!", out.Message)
	f.items.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_MergeClampsToStock(t *testing.T) {
	f := newFixture()
	f.variants.On("FindActiveByID", mock.Anything, int64(7)).Return(tshirt(4), nil)
	f.carts.On("GetOrCreateBySession", mock.Anything, session).Return(model.Cart{ID: 3}, nil)
	f.items.On("FindByCartAndVariant", mock.Anything, int64(3), int64(7)).Return(model.CartItem{ID: 11, Quantity: 3}, nil)
	f.items.On("UpdateQuantity", mock.Anything, int64(11), int64(4)).Return(nil)
	f.items.On("CountByCartID", mock.Anything, int64(3)).Return(int64(1), nil)

	out, err := f.uc.AddToCart(context.Background(), session, usecase.AddToCartInput{VariantID: 7, Quantity: 2})
	require.NoError(t, err)

	assert.Equal(t, "Quantidade ajustada para o estoque disponível: 4.", out.Message)
	f.items.AssertExpectations(t)
	f.items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_NewLineBeyondStock(t *testing.T) {
	f := newFixture()
	f.variants.On("FindActiveByID", mock.Anything, int64(7)).Return(tshirt(1), nil)

	_, err := f.uc.AddToCart(context.Background(), session, usecase.AddToCartInput{VariantID: 7, Quantity: 2})
	assertHTTPError(t, err, http.StatusConflict, "Quantidade solicitada não disponível em estoque.")
	f.carts.AssertNotCalled(t, "GetOrCreateBySession", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_UnknownVariant(t *testing.T) {
	f := newFixture()
	f.variants.On("FindActiveByID", mock.Anything, int64(404)).Return(model.ProductVariant{}, repo.ErrNotFound)

	_, err := f.uc.AddToCart(context.Background(), session, usecase.AddToCartInput{VariantID: 404, Quantity: 1})
	assertHTTPError(t, err, http.StatusNotFound, "Produto não encontrado.")
}

func TestCartUsecase_AddToCart_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.uc.AddToCart(context.Background(), session, usecase.AddToCartInput{VariantID: 7, Quantity: 0})
	assertHTTPError(t, err, http.StatusBadRequest, "Quantidade inválida.")

	_, err = f.uc.AddToCart(context.Background(), "", usecase.AddToCartInput{VariantID: 7, Quantity: 1})
	assertHTTPError(t, err, http.StatusUnauthorized, "")

	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

// =====================
// SetQuantity / RemoveItem / Clear
// =====================

func TestCartUsecase_SetQuantity_Updates(t *testing.T) {
	f := newFixture()
	f.items.On("FindOwned", mock.Anything, int64(11), session).Return(model.CartItem{ID: 11, CartID: 3, Variant: tshirt(5), Quantity: 1}, nil)
	f.items.On("UpdateQuantity", mock.Anything, int64(11), int64(3)).Return(nil)
	f.items.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 11, CartID: 3, Variant: tshirt(5), Quantity: 3},
	}, nil)

	out, err := f.uc.SetQuantity(context.Background(), session, 11, 3)
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(3), out.Items[0].Qty)
	assert.Equal(t, "3750.00", out.Total)
}

func TestCartUsecase_SetQuantity_BeyondStockChangesNothing(t *testing.T) {
	f := newFixture()
	f.items.On("FindOwned", mock.Anything, int64(11), session).Return(model.CartItem{ID: 11, CartID: 3, Variant: tshirt(2), Quantity: 1}, nil)

	_, err := f.uc.SetQuantity(context.Background(), session, 11, 5)
	assertHTTPError(t, err, http.StatusConflict, "Quantidade não disponível. Estoque: 2")
	f.items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_SetQuantity_ZeroRemoves(t *testing.T) {
	f := newFixture()
	f.items.On("FindOwned", mock.Anything, int64(11), session).Return(model.CartItem{ID: 11, CartID: 3, Variant: tshirt(2)}, nil)
	f.items.On("DeleteByID", mock.Anything, int64(11)).Return(nil)
	f.items.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{}, nil)

	out, err := f.uc.SetQuantity(context.Background(), session, 11, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	f.items.AssertExpectations(t)
}

func TestCartUsecase_SetQuantity_OtherSessionsItem(t *testing.T) {
	f := newFixture()
	f.items.On("FindOwned", mock.Anything, int64(11), session).Return(model.CartItem{}, repo.ErrNotFound)

	_, err := f.uc.SetQuantity(context.Background(), session, 11, 2)
	assertHTTPError(t, err, http.StatusNotFound, "Item não encontrado.")
}

func TestCartUsecase_RemoveItem(t *testing.T) {
	f := newFixture()
	f.items.On("FindOwned", mock.Anything, int64(12), session).Return(model.CartItem{ID: 12, CartID: 3}, nil)
	f.items.On("DeleteByID", mock.Anything, int64(12)).Return(nil)
	f.items.On("ListByCartID", mock.Anything, int64(3)).Return([]model.CartItem{
		{ID: 11, CartID: 3, Variant: tshirt(5), Quantity: 1},
	}, nil)

	out, err := f.uc.RemoveItem(context.Background(), session, 12)
	require.NoError(t, err)

	require.Len(t, out.Items, 1)
	assert.Equal(t, int64(11), out.Items[0].ID)
	assert.Equal(t, "1250.00", out.Total)
}

func TestCartUsecase_RemoveItem_InvalidID(t *testing.T) {
	f := newFixture()

	_, err := f.uc.RemoveItem(context.Background(), session, 0)
	assertHTTPError(t, err, http.StatusNotFound, "")
	f.tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestCartUsecase_Clear(t *testing.T) {
	f := newFixture()
	f.carts.On("FindBySession", mock.Anything, session).Return(model.Cart{ID: 3}, nil)
	f.carts.On("Clear", mock.Anything, int64(3)).Return(nil)

	out, err := f.uc.Clear(context.Background(), session)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	f.carts.AssertExpectations(t)
}

func TestCartUsecase_Clear_NoCart(t *testing.T) {
	f := newFixture()
	f.carts.On("FindBySession", mock.Anything, session).Return(model.Cart{}, repo.ErrNotFound)

	_, err := f.uc.Clear(context.Background(), session)
	require.NoError(t, err)
	f.carts.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}
