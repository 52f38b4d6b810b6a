package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v4"
)

const (
	PortalOrigin = "https://portal.gofoodmerchant.co.id"
	userAgent    = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

var (
	ErrNoCredentials  = errors.New("portal session has no access token or cookie")
	ErrSessionExpired = errors.New("portal session expired")
)

// Session - учетные данные портала, снятые внешним браузерным инструментом.
type Session struct {
	AccessToken string
	Cookie      string
}

// Validate проверяет, что с сессией вообще есть смысл идти в API.
// Срок действия проверяется только у токенов в формате JWT.
func (s Session) Validate(now time.Time) error {
	token := strings.TrimSpace(s.AccessToken)
	if token == "" && strings.TrimSpace(s.Cookie) == "" {
		return ErrNoCredentials
	}
	if token == "" {
		return nil
	}

	var claims jwt.RegisteredClaims
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		// непрозрачный токен
		return nil
	}
	if claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time) {
		return ErrSessionExpired
	}
	return nil
}

// Apply добавляет заголовки авторизации портала в запрос.
func (s Session) Apply(req *resty.Request) *resty.Request {
	if s.AccessToken != "" {
		req.SetAuthToken(strings.TrimSpace(s.AccessToken))
	}
	if s.Cookie != "" {
		req.SetHeader("Cookie", s.Cookie)
	}
	return req.SetHeaders(map[string]string{
		"Origin":     PortalOrigin,
		"Referer":    PortalOrigin + "/",
		"User-Agent": userAgent,
		"Accept":     "application/json",
	})
}
