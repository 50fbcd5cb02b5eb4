// Package auth verifies edge-issued JWT tokens. User administration lives in
// the external back office; the engine only needs identity for audit trails
// and role gates on settlement endpoints.
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	appctx "milkbill/internal/core/context"
)

// Claims represents the JWT claims issued by the back office.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string   `json:"uid"`
	Email    string   `json:"email"`
	BranchID string   `json:"branchId,omitempty"`
	Roles    []string `json:"roles"`
}

// JWTService validates HMAC-signed access tokens.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a token validator for the shared secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{secret: []byte(secret)}
}

// ValidateToken validates a JWT and returns the user context.
func (s *JWTService) ValidateToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}

	return &appctx.UserContext{
		UserID:   userID,
		Email:    claims.Email,
		BranchID: claims.BranchID,
		Roles:    claims.Roles,
	}, nil
}
