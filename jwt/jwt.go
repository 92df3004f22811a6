package jwt

import (
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Claims identifies the acting user. Subject carries the user id.
type Claims struct {
	gojwt.RegisteredClaims
	Name string `json:"name,omitempty"`
}

// Create issues an HS256 token for subject valid for ttl. A zero ttl issues a
// token without expiration.
func Create(subject, issuer string, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:  subject,
			Issuer:   issuer,
			IssuedAt: gojwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = gojwt.NewNumericDate(now.Add(ttl))
	}

	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}
	return signed, nil
}

// Validate checks the signature and expiry of tokenString and returns its
// claims. When issuer is non-empty the iss claim must match.
func Validate(tokenString, issuer string, secret []byte) (*Claims, error) {
	opts := []gojwt.ParserOption{
		gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
		gojwt.WithLeeway(5 * time.Second),
	}
	if issuer != "" {
		opts = append(opts, gojwt.WithIssuer(issuer))
	}

	var claims Claims
	_, err := gojwt.ParseWithClaims(tokenString, &claims, func(*gojwt.Token) (any, error) {
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return &claims, nil
}
