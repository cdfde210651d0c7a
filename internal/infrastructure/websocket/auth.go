package websocket

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing authentication token")
	ErrInvalidToken = errors.New("invalid authentication token")
)

// AdminClaims is the token shape required to call a pause/resume admin
// endpoint; anyone may watch the dashboard's read-only event stream, but
// only a holder of a valid admin token may pause or resume the executive.
type AdminClaims struct {
	jwt.RegisteredClaims
}

// JWTAdminAuth validates bearer tokens against a shared HMAC secret.
type JWTAdminAuth struct {
	secret []byte
}

func NewJWTAdminAuth(secret string) *JWTAdminAuth {
	return &JWTAdminAuth{secret: []byte(secret)}
}

// Authenticate extracts and validates a bearer token from the
// Authorization header, the only place an admin call is expected to
// carry one.
func (a *JWTAdminAuth) Authenticate(r *http.Request) error {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ErrMissingToken
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &AdminClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// IssueAdminToken mints a bearer token valid for ttl, for operator
// tooling to hand out ahead of time; the executive itself never issues
// tokens at runtime.
func (a *JWTAdminAuth) IssueAdminToken(ttl time.Duration) (string, error) {
	claims := AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}
