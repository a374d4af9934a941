package handler

import (
	"net/http"

	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 失敗時の共通レスポンス {ok:false, error}
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func errorBody(msg string) ErrorResponse {
	return ErrorResponse{OK: false, Error: msg}
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, errorBody(he.Message))
	}

	//500
	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, errorBody("Erro interno."))
}
