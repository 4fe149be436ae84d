package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// Claims carried by every access token.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type tokenSettings struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

var (
	settingsMu sync.RWMutex
	settings   = tokenSettings{ttl: time.Hour, issuer: "simbi"}
)

// Configure sets the signing secret, access token lifetime and issuer.
// It must be called once at startup before tokens are issued.
func Configure(secret string, ttl time.Duration, issuer string) {
	settingsMu.Lock()
	defer settingsMu.Unlock()
	settings.secret = []byte(secret)
	if ttl > 0 {
		settings.ttl = ttl
	}
	if issuer != "" {
		settings.issuer = issuer
	}
}

// AccessTokenTTL is the configured access token lifetime.
func AccessTokenTTL() time.Duration {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	return settings.ttl
}

// GenerateToken signs an HS256 access token for userID.
func GenerateToken(userID, role string) (string, error) {
	settingsMu.RLock()
	s := settings
	settingsMu.RUnlock()

	if len(s.secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}

	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseToken validates signature, algorithm and expiry.
func ParseToken(tokenStr string) (*Claims, error) {
	settingsMu.RLock()
	secret := settings.secret
	settingsMu.RUnlock()

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRefreshToken returns an opaque random token.
func GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashToken is the lookup key stored for refresh tokens.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
