package utils

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
)

// ExtractUserIDFromHeader parses an Authorization header (Bearer <token>) and
// returns the user_id claim.
func ExtractUserIDFromHeader(authHeader, secret string) (uuid.UUID, error) {
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return uuid.Nil, apperror.Auth("missing or invalid Authorization header")
	}
	return ExtractUserIDFromToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
}

// ExtractUserIDFromToken validates a raw HS256 token and returns its user_id claim.
func ExtractUserIDFromToken(tokenString, secret string) (uuid.UUID, error) {
	if secret == "" {
		return uuid.Nil, apperror.New(apperror.KindUnknown, "JWT secret not set")
	}
	if tokenString == "" {
		return uuid.Nil, apperror.Auth("missing token")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, apperror.Auth("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, apperror.Auth("invalid token claims")
	}

	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, apperror.Auth("invalid token payload")
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, apperror.Auth("invalid user id in token")
	}
	return userID, nil
}

// SignUserToken issues an HS256 token carrying user_id. Used by tests and tooling.
func SignUserToken(userID uuid.UUID, secret string, claims jwt.MapClaims) (string, error) {
	mc := jwt.MapClaims{"user_id": userID.String()}
	for k, v := range claims {
		mc[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte(secret))
}
