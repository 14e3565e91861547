package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"staffchat/internal/entity"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

type Claims struct {
	StaffId int64  `json:"staffId"`
	LoginId string `json:"loginId"`
	Name    string `json:"name"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secretKey            string
	accessTokenDuration  time.Duration
	refreshTokenDuration time.Duration
}

func NewJWTManager(secretKey string, accessTokenDuration, refreshTokenDuration time.Duration) *JWTManager {
	return &JWTManager{
		secretKey:            secretKey,
		accessTokenDuration:  accessTokenDuration,
		refreshTokenDuration: refreshTokenDuration,
	}
}

// GenerateAccessToken generates a short-lived access token
func (m *JWTManager) GenerateAccessToken(staff entity.Staff) (string, error) {
	claims := Claims{
		StaffId: staff.Id,
		LoginId: staff.LoginId,
		Name:    staff.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.accessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(m.secretKey))
}

// GenerateRefreshToken generates a long-lived refresh token (cryptographically secure random string)
func (m *JWTManager) GenerateRefreshToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GetRefreshTokenExpiration returns when the refresh token should expire
func (m *JWTManager) GetRefreshTokenExpiration() time.Time {
	return time.Now().Add(m.refreshTokenDuration)
}

// IsRefreshTokenExpired reports whether a stored refresh token is past its expiry
func (m *JWTManager) IsRefreshTokenExpired(expiresAt time.Time) bool {
	return time.Now().After(expiresAt)
}

// ValidateAccessToken validates and parses an access token
func (m *JWTManager) ValidateAccessToken(tokenString string) (*entity.TokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(m.secretKey), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return &entity.TokenClaims{
		StaffId: claims.StaffId,
		LoginId: claims.LoginId,
		Name:    claims.Name,
	}, nil
}
