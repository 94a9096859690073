package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"

	"pingchain/config"
	"pingchain/types"
)

type contextKey string

const userIDKey contextKey = "user_id"

var ErrUnauthorized = errors.New("unauthorized")

// Authenticator resolves the user id from a bearer token. With an empty secret tokens are
// parsed without verifying the signature.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) UserID(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("%w: missing bearer token", ErrUnauthorized)
	}
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if tokenString == "" {
		return "", fmt.Errorf("%w: empty bearer token", ErrUnauthorized)
	}

	claims := jwt.MapClaims{}
	if len(a.secret) == 0 {
		if _, _, err := new(jwt.Parser).ParseUnverified(tokenString, claims); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		// ParseUnverified skips claim validation
		if err := claims.Valid(); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	} else {
		_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return a.secret, nil
		})
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return sub, nil
}

// Middleware rejects requests without a valid token and stores the user id in the context.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.UserID(r)
		if err != nil {
			config.Logger.WithField("path", r.URL.Path).Debug("Rejected request: ", err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(types.APIResponse{Success: false, ErrorMessage: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// GenerateTestJWT signs a 24h HS256 token for userID.
func GenerateTestJWT(userID, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"aud":  "authenticated",
		"role": "authenticated",
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
