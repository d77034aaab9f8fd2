package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pnab-cultura/engine/internal/api/types"
	"github.com/pnab-cultura/engine/internal/models"
)

type userKeyType string

const (
	UserIDKey userKeyType = "user_id"
	RoleKey   userKeyType = "role"
)

// Auth validates a Bearer JWT using the provided HMAC secret and adds the
// user id and role to the context.
func Auth(hmacSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ah := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(ah), "bearer ") {
				deny(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}
			tokenStr := strings.TrimSpace(ah[len("Bearer "):])
			token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return hmacSecret, nil
			}, jwt.WithExpirationRequired())
			if err != nil || !token.Valid {
				deny(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				deny(w, http.StatusUnauthorized, "unauthorized", "invalid token")
				return
			}
			uid, _ := claims["sub"].(string)
			role, _ := claims["role"].(string)
			if uid == "" || !models.Role(role).IsValid() {
				deny(w, http.StatusUnauthorized, "unauthorized", "invalid token claims")
				return
			}
			ctx := context.WithValue(r.Context(), UserIDKey, uid)
			ctx = context.WithValue(ctx, RoleKey, models.Role(role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects callers whose token role is not one of roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role := GetRole(r.Context())
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			deny(w, http.StatusForbidden, "forbidden", "operation not allowed for role "+string(role))
		})
	}
}

func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func GetRole(ctx context.Context) models.Role {
	if v := ctx.Value(RoleKey); v != nil {
		if r, ok := v.(models.Role); ok {
			return r
		}
	}
	return ""
}

func deny(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.APIResponse{Success: false, Error: &types.APIError{Code: code, Message: msg}})
}
