package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login attempt. The reason
// (unknown user vs wrong password) is deliberately not distinguished.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a token fails signature or claim checks.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the validated contents of an access token.
type Claims struct {
	Username  string
	SessionID string
	ExpiresAt time.Time
}

type clinicClaims struct {
	jwt.RegisteredClaims
}

// Token is the result of a successful login.
type Token struct {
	AccessToken string    `json:"access_token"`
	SessionID   string    `json:"-"`
	Username    string    `json:"username"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Manager verifies the configured practice credentials and issues HMAC
// signed access tokens. Each token carries a unique session ID in its jti
// claim so that idle sessions can be revoked independently of token expiry.
type Manager struct {
	secret       []byte
	tokenTTL     time.Duration
	username     string
	passwordHash string
}

func NewManager(secret string, tokenTTL time.Duration, username, passwordHash string) *Manager {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &Manager{
		secret:       []byte(secret),
		tokenTTL:     tokenTTL,
		username:     strings.ToLower(strings.TrimSpace(username)),
		passwordHash: passwordHash,
	}
}

// Login checks the credentials against the configured account and issues a
// fresh token with a new session ID.
func (m *Manager) Login(username, password string) (Token, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" || username != m.username {
		return Token{}, ErrInvalidCredentials
	}
	if !verifyPassword(m.passwordHash, password) {
		return Token{}, ErrInvalidCredentials
	}

	sessionID := uuid.New().String()
	expiresAt := time.Now().UTC().Add(m.tokenTTL)

	claims := clinicClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        sessionID,
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    "clinic",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Token{}, err
	}

	return Token{
		AccessToken: signed,
		SessionID:   sessionID,
		Username:    username,
		ExpiresAt:   expiresAt,
	}, nil
}

// ParseToken validates a signed token and returns its claims.
func (m *Manager) ParseToken(tokenStr string) (Claims, error) {
	claims := &clinicClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" {
		return Claims{}, ErrInvalidToken
	}

	out := Claims{Username: claims.Subject, SessionID: claims.ID}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// HashPassword produces a bcrypt hash suitable for the ADMIN_PASSWORD_HASH
// setting.
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func verifyPassword(stored, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
