package auth

import (
	"errors"
	"regexp"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"taskboard/internal/model"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims carried by every issued token. SessionID ties the token to its
// server-side session row; cryptographic validity alone never admits a request.
type Claims struct {
	Role      model.Role `json:"role"`
	SessionID string     `json:"session_id"`
	Username  string     `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the user with the given session
// identifier and lifetime, returning the token string and its claims.
func GenerateToken(user *model.User, sessionID string, secret []byte, lifetime time.Duration) (string, *Claims, error) {
	claims := &Claims{
		Role:      user.Role,
		SessionID: sessionID,
		Username:  user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// VerifyToken checks the signature and registered claims, pinning the
// algorithm to HS256. Expiry is reported as ErrTokenExpired, every other
// failure as ErrInvalidToken.
func VerifyToken(tokenString string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// bearerPattern accepts a case-insensitive bearer scheme followed by three
// dot-separated base64url segments.
var bearerPattern = regexp.MustCompile(`(?i)^bearer ([A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+\.[A-Za-z0-9_\-]+)$`)

// ParseBearer extracts the raw token from an Authorization header value.
// Returns false when the header doesn't match the bearer token shape.
func ParseBearer(authorization string) (string, bool) {
	m := bearerPattern.FindStringSubmatch(authorization)
	if m == nil {
		return "", false
	}
	return m[1], true
}
