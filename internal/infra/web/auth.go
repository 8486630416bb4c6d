package web

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthManager guards the destructive admin routes: a correct login secret
// mints a short-lived HMAC session token, accepted as a bearer header or a
// cookie.
type AuthManager struct {
	secret     string
	signingKey []byte
	cookieName string
	ttl        time.Duration
}

func NewAuthManager(secret, signingKey string, ttl time.Duration) *AuthManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &AuthManager{
		secret:     secret,
		signingKey: []byte(signingKey),
		cookieName: "admin_session",
		ttl:        ttl,
	}
}

// Configured reports whether admin auth is usable at all. Unconfigured auth
// means the protected routes always refuse.
func (a *AuthManager) Configured() bool {
	return a.secret != "" && len(a.signingKey) > 0
}

func (a *AuthManager) CheckSecret(candidate string) bool {
	if !a.Configured() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(a.secret)) == 1
}

type adminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Mint signs a session token and also sets it as an HttpOnly cookie.
func (a *AuthManager) Mint(w http.ResponseWriter) (string, error) {
	now := time.Now()
	claims := adminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   "admin",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.signingKey)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return signed, nil
}

func (a *AuthManager) parseFromRequest(r *http.Request) (*adminClaims, error) {
	// Authorization: Bearer <jwt>
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	// Cookie
	if c, err := r.Cookie(a.cookieName); err == nil {
		return a.parse(c.Value)
	}
	return nil, errors.New("missing token")
}

func (a *AuthManager) parse(tok string) (*adminClaims, error) {
	claims := &adminClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.signingKey, nil
	})
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Middleware rejects requests without a valid admin session token.
func (a *AuthManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.Configured() {
			writeJSON(w, http.StatusForbidden, errorResponse{Error: "admin auth not configured"})
			return
		}
		if _, err := a.parseFromRequest(r); err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
