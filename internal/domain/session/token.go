package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the subset of JWT claims the client cares about. The payload
// is decoded without signature verification: expiry is only a hint for when to
// proactively log out, authorization decisions stay with the server.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// DecodeClaims extracts the expiry and subject from a bearer token without
// verifying its signature.
func DecodeClaims(token string) (Claims, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Claims{}, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return Claims{}, err
	}
	if exp == nil {
		return Claims{}, errors.New("token has no expiry claim")
	}

	subject, _ := claims.GetSubject()
	return Claims{
		Subject:   subject,
		ExpiresAt: exp.Time,
	}, nil
}
