package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wasegment/go-whatsapp-group-sync-api/pkg/env"
)

// JWTSecretKey for signing user tokens
// REQUIRED: Application will panic if not set
var JWTSecretKey string

func init() {
	JWTSecretKey = env.MustGetEnvString("JWT_SECRET_KEY")
}

// UserTokenClaims represents the claims in a user JWT
type UserTokenClaims struct {
	UserID     string `json:"user_id"`
	JWTVersion int    `json:"version"` // For token invalidation
	jwt.RegisteredClaims
}

// GenerateUserToken creates a long-lived JWT for a user
// The token does not expire, but can be invalidated by incrementing jwt_version
func GenerateUserToken(userID string, jwtVersion int) (string, error) {
	if JWTSecretKey == "" {
		return "", errors.New("JWT_SECRET_KEY not configured")
	}

	claims := UserTokenClaims{
		UserID:     userID,
		JWTVersion: jwtVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(JWTSecretKey))
}

// ValidateUserToken validates a user JWT and returns the claims
func ValidateUserToken(tokenString string) (*UserTokenClaims, error) {
	if JWTSecretKey == "" {
		return nil, errors.New("JWT_SECRET_KEY not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &UserTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(JWTSecretKey), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserTokenClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token claims")
}
