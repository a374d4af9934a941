package middleware

import (
	"errors"
	"net/http"
	"time"

	"storefront/internal/config"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	CtxSessionKey = "cart_session" // string (uuid)

	SessionCookieName = "cart_session"
	SessionTTL        = 14 * 24 * time.Hour
)

// 匿名カートのセッション。cookie の JWT(HS256) に uuid を入れて持ち回る。
// 無い/壊れている/期限切れなら新しいセッションを発行する。
func CartSession(cfg config.Config) echo.MiddlewareFunc {
	secret := []byte(cfg.SessionSecret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid := ""
			if ck, err := c.Cookie(SessionCookieName); err == nil {
				sid, _ = parseSession(ck.Value, secret)
			}

			if sid == "" {
				//新規発行
				now := time.Now()
				sid = uuid.NewString()
				signed, err := issueSession(sid, secret, now)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, errorJSON("Erro interno."))
				}
				c.SetCookie(&http.Cookie{
					Name:     SessionCookieName,
					Value:    signed,
					Path:     "/",
					Expires:  now.Add(SessionTTL),
					MaxAge:   int(SessionTTL.Seconds()),
					HttpOnly: true,
					Secure:   cfg.CookieSecure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(CtxSessionKey, sid)
			return next(c)
		}
	}
}

// SessionKey は CartSession が保存したセッションIDを返す（無ければ空）。
func SessionKey(c echo.Context) string {
	sid, _ := c.Get(CtxSessionKey).(string)
	return sid
}

func issueSession(sid string, secret []byte, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(SessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseSession(raw string, secret []byte) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid session")
	}

	//subはuuidのみ
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{OK: false, Error: msg}
}
