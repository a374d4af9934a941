package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ProductServiceMock struct{ mock.Mock }

func (m *ProductServiceMock) ListPublicProducts(ctx context.Context, in usecase.ListProductsInput) (usecase.ProductListOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(usecase.ProductListOutput)
	return out, args.Error(1)
}

func (m *ProductServiceMock) GetProductDetail(ctx context.Context, slug string) (usecase.ProductOutput, error) {
	args := m.Called(ctx, slug)
	out, _ := args.Get(0).(usecase.ProductOutput)
	return out, args.Error(1)
}

func (m *ProductServiceMock) AdminCreateProduct(ctx context.Context, in usecase.AdminCreateProductInput) (usecase.ProductOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(usecase.ProductOutput)
	return out, args.Error(1)
}

func (m *ProductServiceMock) AdminUpdateInventory(ctx context.Context, variantID int64, stock int64) error {
	args := m.Called(ctx, variantID, stock)
	return args.Error(0)
}

var (
	_ ProductService      = (*usecase.ProductUsecase)(nil)
	_ AdminProductService = (*usecase.ProductUsecase)(nil)
)

func sampleProduct() usecase.ProductOutput {
	return usecase.ProductOutput{
		ID:    3,
		Name:  "Boné Planeta",
		Slug:  "bone-planeta",
		Price: "300.00",
		Variants: []usecase.VariantOutput{
			{ID: 8, Size: "M", Price: "300.00", Stock: 20},
		},
	}
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestProductHandler_List(t *testing.T) {
	svc := new(ProductServiceMock)
	e := echo.New()
	NewProductHandler(svc).RegisterRoutes(e)

	svc.On("ListPublicProducts", mock.Anything, usecase.ListProductsInput{Page: 2, Featured: true}).
		Return(usecase.ProductListOutput{OK: true, Items: []usecase.ProductOutput{sampleProduct()}, Total: 25, Page: 2, Limit: 24}, nil).Once()

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/merch/?page=2&featured=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body usecase.ProductListOutput
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.OK)
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(8), body.Items[0].Variants[0].ID)

	svc.AssertExpectations(t)
}

func TestProductHandler_ListInvalidQuery(t *testing.T) {
	svc := new(ProductServiceMock)
	e := echo.New()
	NewProductHandler(svc).RegisterRoutes(e)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/merch/?page=x", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Página inválida.", decodeError(t, rec).Error)

	svc.AssertNotCalled(t, "ListPublicProducts", mock.Anything, mock.Anything)
}

func TestProductHandler_Detail(t *testing.T) {
	svc := new(ProductServiceMock)
	e := echo.New()
	NewProductHandler(svc).RegisterRoutes(e)

	svc.On("GetProductDetail", mock.Anything, "bone-planeta").Return(sampleProduct(), nil).Once()
	svc.On("GetProductDetail", mock.Anything, "nada").
		Return(usecase.ProductOutput{}, usecase.NewHTTPError(http.StatusNotFound, "Produto não encontrado.")).Once()

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/merch/bone-planeta/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "bone-planeta", body["slug"])
	assert.Equal(t, AddToCartAction, body["add_to_cart"])
	assert.Len(t, body["variants"], 1)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/merch/nada/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorResponse{OK: false, Error: "Produto não encontrado."}, decodeError(t, rec))

	svc.AssertExpectations(t)
}

func newAdminEcho(svc AdminProductService, token string) *echo.Echo {
	e := echo.New()
	NewAdminProductHandler(svc).RegisterRoutes(e, config.Config{AdminToken: token})
	return e
}

func adminJSON(method, path, body, token string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	return req
}

func TestAdminProductHandler_Create(t *testing.T) {
	svc := new(ProductServiceMock)
	e := newAdminEcho(svc, "s3cret")

	svc.On("AdminCreateProduct", mock.Anything, usecase.AdminCreateProductInput{
		Name:     "Boné Planeta",
		Price:    "300",
		IsActive: true,
		Variants: []usecase.AdminVariantInput{
			{Size: "M", Stock: 20},
			{Size: "L", Stock: 2, PriceOverride: "350.5"},
		},
	}).Return(sampleProduct(), nil).Once()

	body := `{"name":"Boné Planeta","price":300,"variants":[{"size":"M","stock":20},{"size":"L","stock":2,"price_override":"350.50"}]}`
	rec := serve(e, adminJSON(http.MethodPost, "/admin/products", body, "s3cret"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out ProductCreatedResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.True(t, out.OK)
	assert.Equal(t, "bone-planeta", out.Product.Slug)

	svc.AssertExpectations(t)
}

func TestAdminProductHandler_RequiresToken(t *testing.T) {
	svc := new(ProductServiceMock)
	e := newAdminEcho(svc, "s3cret")

	rec := serve(e, adminJSON(http.MethodPost, "/admin/products", `{}`, "wrong"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// トークン未設定なら /admin は存在しない
	e = newAdminEcho(svc, "")
	rec = serve(e, adminJSON(http.MethodPost, "/admin/products", `{}`, ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	svc.AssertNotCalled(t, "AdminCreateProduct", mock.Anything, mock.Anything)
}

func TestAdminProductHandler_UpdateInventory(t *testing.T) {
	svc := new(ProductServiceMock)
	e := newAdminEcho(svc, "s3cret")

	svc.On("AdminUpdateInventory", mock.Anything, int64(8), int64(0)).Return(nil).Once()

	rec := serve(e, adminJSON(http.MethodPut, "/admin/variants/8/stock", `{"stock":0}`, "s3cret"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"message":"Estoque atualizado."}`, rec.Body.String())

	rec = serve(e, adminJSON(http.MethodPut, "/admin/variants/8/stock", `{}`, "s3cret"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.AssertExpectations(t)
}
