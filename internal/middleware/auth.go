package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type contextKey string

// AccountIDKey carries the authenticated account id in the request
// context.
const AccountIDKey contextKey = "accountID"

var redisClient *redis.Client

// InitAuthMiddleware wires the optional redis client used for the
// logout blacklist.
func InitAuthMiddleware(client *redis.Client) {
	redisClient = client
}

// AuthMiddleware requires a valid bearer token and stores the account
// id in the request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return requireRole(next, "investor")
}

// AdminMiddleware requires a bearer token carrying the admin role.
func AdminMiddleware(next http.Handler) http.Handler {
	return requireRole(next, "admin")
}

func requireRole(next http.Handler, role string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		token := parts[1]
		if isBlacklisted(r.Context(), token) {
			http.Error(w, "Token revoked", http.StatusUnauthorized)
			return
		}

		subject, tokenRole, err := validateToken(token)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if tokenRole != role {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func isBlacklisted(ctx context.Context, token string) bool {
	if redisClient == nil {
		return false
	}
	key := fmt.Sprintf("token_blacklist:%s", token)
	exists, err := redisClient.Exists(ctx, key).Result()
	return err == nil && exists > 0
}

func validateToken(tokenString string) (string, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(viper.GetString("jwt.secret_key")), nil
	})

	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", fmt.Errorf("unexpected claims type")
	}

	return fmt.Sprintf("%v", claims["sub"]), fmt.Sprintf("%v", claims["role"]), nil
}
