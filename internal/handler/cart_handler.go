package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/usecase"
	"storefront/internal/validator"

	"github.com/labstack/echo/v4"
)

// 非ajaxの POST のリダイレクト先（next が無いとき）
const DefaultRedirect = "/cart/modal-data/"

// CartService は CartHandler が使うカート操作（*usecase.CartUsecase が実装）。
type CartService interface {
	GetSnapshot(ctx context.Context, sessionKey string) (usecase.SnapshotOutput, error)
	AddToCart(ctx context.Context, sessionKey string, in usecase.AddToCartInput) (usecase.AddToCartOutput, error)
	SetQuantity(ctx context.Context, sessionKey string, itemID int64, qty int64) (usecase.SnapshotOutput, error)
	RemoveItem(ctx context.Context, sessionKey string, itemID int64) (usecase.SnapshotOutput, error)
	Clear(ctx context.Context, sessionKey string) (usecase.SnapshotOutput, error)
}

// /cart のHTTP
type CartHandler struct {
	uc CartService
}

// DI
func NewCartHandler(uc CartService) *CartHandler {
	return &CartHandler{uc: uc}
}

type AddToCartRequest struct {
	VariantID string `form:"variant_id"`
	Quantity  string `form:"quantity"`
	Next      string `form:"next"`
}

type SetQuantityRequest struct {
	Quantity string `form:"quantity"`
	Next     string `form:"next"`
}

type NextRequest struct {
	Next string `form:"next"`
}

// /cart 配下を登録。セッション cookie はこのグループだけで発行する。
func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/cart")
	g.Use(middleware.CartSession(cfg))

	g.GET("/modal-data/", h.snapshot)
	g.POST("/add/", h.add)
	g.POST("/item/:id/update/", h.update)
	g.POST("/item/:id/remove/", h.remove)
	g.POST("/clear/", h.clear)
}

func (h *CartHandler) snapshot(c echo.Context) error {
	out, err := h.uc.GetSnapshot(c.Request().Context(), middleware.SessionKey(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) add(c echo.Context) error {
	var req AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Pedido inválido."))
	}

	in, err := validator.ValidateAddToCart(req.VariantID, req.Quantity)
	switch {
	case errors.Is(err, validator.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, errorBody("Quantidade inválida."))
	case err != nil:
		return c.JSON(http.StatusNotFound, errorBody("Produto não encontrado."))
	}

	out, err := h.uc.AddToCart(c.Request().Context(), middleware.SessionKey(c), in)
	if err != nil {
		return writeError(c, err)
	}

	if !middleware.IsAjax(c) {
		return redirectNext(c, req.Next)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) update(c echo.Context) error {
	itemID, err := validator.ValidateItemID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody("Item não encontrado."))
	}

	var req SetQuantityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("Pedido inválido."))
	}

	qty, err := validator.ValidateSetQuantity(req.Quantity)
	switch {
	case errors.Is(err, validator.ErrMissingQuantity):
		return c.JSON(http.StatusBadRequest, errorBody("Quantidade não informada."))
	case err != nil:
		return c.JSON(http.StatusBadRequest, errorBody("Quantidade inválida."))
	}

	out, err := h.uc.SetQuantity(c.Request().Context(), middleware.SessionKey(c), itemID, qty)
	if err != nil {
		return writeError(c, err)
	}

	if !middleware.IsAjax(c) {
		return redirectNext(c, req.Next)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) remove(c echo.Context) error {
	itemID, err := validator.ValidateItemID(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody("Item não encontrado."))
	}

	var req NextRequest
	_ = c.Bind(&req)

	out, err := h.uc.RemoveItem(c.Request().Context(), middleware.SessionKey(c), itemID)
	if err != nil {
		return writeError(c, err)
	}

	if !middleware.IsAjax(c) {
		return redirectNext(c, req.Next)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) clear(c echo.Context) error {
	var req NextRequest
	_ = c.Bind(&req)

	out, err := h.uc.Clear(c.Request().Context(), middleware.SessionKey(c))
	if err != nil {
		return writeError(c, err)
	}

	if !middleware.IsAjax(c) {
		return redirectNext(c, req.Next)
	}
	return c.JSON(http.StatusOK, out)
}

// 同一オリジンの相対パスだけ next として受け付ける
func redirectNext(c echo.Context, next string) error {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		next = DefaultRedirect
	}
	return c.Redirect(http.StatusSeeOther, next)
}
