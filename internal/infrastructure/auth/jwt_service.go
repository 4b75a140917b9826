package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/you/voicegate/domain"
)

// accessClaims is the wire form of an access token's payload.
type accessClaims struct {
	Email     string `json:"email,omitempty"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	secretKey []byte
	issuer    string
	accessTTL time.Duration
}

// NewJWTService creates a new JWT service. An absent signing secret is a
// configuration error and must abort startup.
func NewJWTService(secretKey, issuer string, accessTTL time.Duration) (domain.TokenService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("jwt signing secret is not configured")
	}
	return &JWTServiceImpl{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		accessTTL: accessTTL,
	}, nil
}

// SignAccessToken implements domain.TokenService
func (j *JWTServiceImpl) SignAccessToken(user *domain.User, sessionID string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		Email:     user.Email,
		Role:      user.Role,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secretKey)
}

// VerifyAccessToken implements domain.TokenService. Expiry and bad
// signatures are reported as distinct errors so callers can tell a client
// to refresh versus re-authenticate.
func (j *JWTServiceImpl) VerifyAccessToken(tokenString string) (*domain.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrTokenMalformed
		}
		return j.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrTokenInvalid
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 32)
	if err != nil {
		return nil, domain.ErrTokenMalformed
	}

	out := &domain.AccessClaims{
		UserID:    uint(userID),
		Email:     claims.Email,
		Role:      claims.Role,
		SessionID: claims.SessionID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Unix()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Unix()
	}
	return out, nil
}

// AccessTTLSeconds implements domain.TokenService
func (j *JWTServiceImpl) AccessTTLSeconds() int64 {
	return int64(j.accessTTL / time.Second)
}
