package services

import (
	"context"
	cryptorand "crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/styloinvest/backend/internal/models"
	"github.com/styloinvest/backend/internal/store"
	"golang.org/x/crypto/argon2"
)

// Session roles carried in the JWT.
const (
	RoleInvestor = "investor"
	RoleAdmin    = "admin"
)

// AuthService issues and revokes sessions. Investors authenticate with
// the credentials captured at intake; the admin console uses the single
// configured admin password.
type AuthService struct {
	accounts store.AccountStore
	redis    *redis.Client
}

func NewAuthService(accounts store.AccountStore, redisClient *redis.Client) *AuthService {
	return &AuthService{accounts: accounts, redis: redisClient}
}

// Login authenticates an approved investor and returns a session token.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *models.Account, error) {
	account, err := s.accounts.AccountByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("%w: unknown username", models.ErrNotFound)
	}
	if !verifyPassword(password, account.PasswordHash) {
		return "", nil, fmt.Errorf("%w: incorrect password", models.ErrValidation)
	}
	if account.Status != models.StatusApproved {
		return "", nil, fmt.Errorf("%w: account is %s", models.ErrInvalidState, account.Status)
	}

	token, err := GenerateJWT(account.ID, RoleInvestor)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// AdminLogin checks the configured admin password and returns an
// admin-role token.
func (s *AuthService) AdminLogin(password string) (string, error) {
	expected := viper.GetString("admin.password")
	if expected == "" {
		return "", fmt.Errorf("%w: admin password not configured", models.ErrValidation)
	}
	if subtle.ConstantTimeCompare([]byte(password), []byte(expected)) != 1 {
		return "", fmt.Errorf("%w: incorrect password", models.ErrValidation)
	}
	return GenerateJWT("admin", RoleAdmin)
}

// Logout blacklists the token until it would have expired. Without
// redis the token simply ages out.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s.redis == nil || token == "" {
		return nil
	}

	key := fmt.Sprintf("token_blacklist:%s", token)
	expiry := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
	return s.redis.Set(ctx, key, "1", expiry).Err()
}

// GenerateJWT signs a session token for the given subject and role.
func GenerateJWT(subject, role string) (string, error) {
	viper.SetDefault("jwt.secret_key", "change-me-in-production")
	viper.SetDefault("jwt.expiry_hours", 24)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})

	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

type argon2Params struct {
	Time       uint32
	Memory     uint32
	Threads    uint8
	KeyLength  uint32
	SaltLength int
}

func loadArgon2Params() argon2Params {
	viper.SetDefault("argon2.time", 1)
	viper.SetDefault("argon2.memory", 64*1024)
	viper.SetDefault("argon2.threads", 4)
	viper.SetDefault("argon2.key_length", 32)
	viper.SetDefault("argon2.salt_length", 16)

	return argon2Params{
		Time:       uint32(viper.GetInt("argon2.time")),
		Memory:     uint32(viper.GetInt("argon2.memory")),
		Threads:    uint8(viper.GetInt("argon2.threads")),
		KeyLength:  uint32(viper.GetInt("argon2.key_length")),
		SaltLength: viper.GetInt("argon2.salt_length"),
	}
}

func hashPassword(password string) (string, error) {
	params := loadArgon2Params()
	salt := make([]byte, params.SaltLength)
	if _, err := cryptorand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLength)
	return fmt.Sprintf("%s$%s", base64.StdEncoding.EncodeToString(salt), base64.StdEncoding.EncodeToString(hash)), nil
}

func verifyPassword(password, hashedPassword string) bool {
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 2 {
		return false
	}

	salt, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}

	hash, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}

	params := loadArgon2Params()
	computedHash := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, params.KeyLength)
	return subtle.ConstantTimeCompare(hash, computedHash) == 1
}
