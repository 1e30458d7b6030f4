package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSubject is returned for a well-signed token that names no actor.
var ErrMissingSubject = errors.New("token has no subject")

// ErrSubjectTooLong is returned when the subject does not fit an actor column.
var ErrSubjectTooLong = errors.New("token subject too long")

// MaxSubjectLength is the longest actor id that can be recorded.
const MaxSubjectLength = 255

var actorTokenMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// GenerateActorToken signs an HS256 token whose subject is the acting user. The identity
// provider issues these in production; the function serves local tooling and tests.
func GenerateActorToken(userID string, secret string, ttl time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseActorToken validates signature, expiry and (when issuer is not empty) the issuer, and
// returns the acting user.
func ParseActorToken(tokenString string, secret string, issuer string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods(actorTokenMethods)}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenSignatureInvalid
	}
	if claims.Subject == "" {
		return "", ErrMissingSubject
	}
	if len(claims.Subject) > MaxSubjectLength {
		return "", ErrSubjectTooLong
	}
	return claims.Subject, nil
}
