package handler

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 商品詳細フォームの送信先
const AddToCartAction = "/cart/add/"

// ProductService は公開カタログ（*usecase.ProductUsecase が実装）。
type ProductService interface {
	ListPublicProducts(ctx context.Context, in usecase.ListProductsInput) (usecase.ProductListOutput, error)
	GetProductDetail(ctx context.Context, slug string) (usecase.ProductOutput, error)
}

// /merch の公開API
type ProductHandler struct {
	uc ProductService
}

// DI
func NewProductHandler(uc ProductService) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// 詳細は「カートに追加」フォームに必要な送信先とバリアントを返す
type ProductDetailResponse struct {
	OK bool `json:"ok"`
	usecase.ProductOutput
	AddToCart string `json:"add_to_cart"`
}

func (h *ProductHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/merch/", h.list)
	e.GET("/merch/:slug/", h.detail)
}

func (h *ProductHandler) list(c echo.Context) error {
	// page（default 1）
	page := 1
	if v := c.QueryParam("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("Página inválida."))
		}
		page = p
	}

	// limit（default 24）
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("Limite inválido."))
		}
		limit = l
	}

	featured := false
	switch c.QueryParam("featured") {
	case "1", "true", "yes":
		featured = true
	}

	out, err := h.uc.ListPublicProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		Limit:    limit,
		Featured: featured,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) detail(c echo.Context) error {
	p, err := h.uc.GetProductDetail(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ProductDetailResponse{OK: true, ProductOutput: p, AddToCart: AddToCartAction})
}
