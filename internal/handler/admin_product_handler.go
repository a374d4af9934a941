package handler

import (
	"context"
	"net/http"
	"strconv"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// AdminProductService は商品登録と在庫更新（*usecase.ProductUsecase が実装）。
type AdminProductService interface {
	AdminCreateProduct(ctx context.Context, in usecase.AdminCreateProductInput) (usecase.ProductOutput, error)
	AdminUpdateInventory(ctx context.Context, variantID int64, stock int64) error
}

// 価格は数値でも文字列でも受け付ける
type VariantCreateRequest struct {
	Size          string              `json:"size"`
	PriceOverride decimal.NullDecimal `json:"price_override"`
	Stock         int64               `json:"stock"`
}

type ProductCreateRequest struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Price       decimal.NullDecimal    `json:"price"`
	ImageURL    string                 `json:"image_url"`
	IsActive    *bool                  `json:"is_active"` // 省略時は公開
	IsFeatured  bool                   `json:"is_featured"`
	Variants    []VariantCreateRequest `json:"variants"`
}

type InventoryUpdateRequest struct {
	Stock *int64 `json:"stock"`
}

type ProductCreatedResponse struct {
	OK      bool                  `json:"ok"`
	Product usecase.ProductOutput `json:"product"`
}

type SuccessResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// /admin のHTTP。Bearer トークンで保護する。
type AdminProductHandler struct {
	uc AdminProductService
}

// DI
func NewAdminProductHandler(uc AdminProductService) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// ADMIN_TOKEN が無ければ何も登録しない
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	if cfg.AdminToken == "" {
		return
	}
	admin := e.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminToken))

	admin.POST("/products", h.createProduct)
	admin.PUT("/variants/:id/stock", h.updateInventory)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Pedido inválido."))
	}

	in := usecase.AdminCreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       nullDecimalString(req.Price),
		ImageURL:    req.ImageURL,
		IsActive:    req.IsActive == nil || *req.IsActive,
		IsFeatured:  req.IsFeatured,
	}
	for _, v := range req.Variants {
		in.Variants = append(in.Variants, usecase.AdminVariantInput{
			Size:          v.Size,
			PriceOverride: nullDecimalString(v.PriceOverride),
			Stock:         v.Stock,
		})
	}

	out, err := h.uc.AdminCreateProduct(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ProductCreatedResponse{OK: true, Product: out})
}

func (h *AdminProductHandler) updateInventory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody("Produto não encontrado."))
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil || req.Stock == nil {
		return c.JSON(http.StatusBadRequest, errorBody("Pedido inválido."))
	}

	if err := h.uc.AdminUpdateInventory(c.Request().Context(), id, *req.Stock); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{OK: true, Message: "Estoque atualizado."})
}

func nullDecimalString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
