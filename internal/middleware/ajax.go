package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	HeaderRequestedWith = "X-Requested-With"
	AjaxMarker          = "XMLHttpRequest"
)

// IsAjax はスクリプトからの呼び出しか（X-Requested-With: XMLHttpRequest）。
func IsAjax(c echo.Context) bool {
	return strings.EqualFold(c.Request().Header.Get(HeaderRequestedWith), AjaxMarker)
}
