package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken   = errors.New("auth: empty token")
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrInvalidRole  = errors.New("auth: invalid role")
)

// Claims are the JWT claims issued to console users. The subject is the
// operator name recorded on acknowledgements and handover logs.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ParseJWT validates an HS256 token and returns its claims.
func ParseJWT(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, errors.New("auth: missing subject")
	}
	if _, ok := NormalizeRole(claims.Role); !ok {
		return nil, ErrInvalidRole
	}
	return claims, nil
}
