package services

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

func newTestAuthService(accessTTL time.Duration) *authServiceImpl {
	return NewAuthService(zerolog.Nop(), nil, AuthOptions{
		JWTIssuer:          "studyboard-test",
		JWTSigningKey:      []byte("secret"),
		JWTAccessTokenTTL:  accessTTL,
		JWTRefreshTokenTTL: time.Hour,
		AuthCodeTTL:        time.Minute,
	}).(*authServiceImpl)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := newTestAuthService(time.Minute)

	token, expiresAt, err := s.generateAccessToken("session-1")
	if err != nil {
		t.Fatalf("generateAccessToken() error = %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Errorf("expiresAt %v is not in the future", expiresAt)
	}

	claims, err := s.ParseJWTToken(token)
	if err != nil {
		t.Fatalf("ParseJWTToken() error = %v", err)
	}
	if claims.Subject != "session-1" || claims.Issuer != "studyboard-test" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseJWTTokenExpired(t *testing.T) {
	s := newTestAuthService(-time.Minute)

	token, _, err := s.generateAccessToken("session-1")
	if err != nil {
		t.Fatalf("generateAccessToken() error = %v", err)
	}
	if _, err = s.ParseJWTToken(token); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("ParseJWTToken() error = %v, want jwt.ErrTokenExpired", err)
	}
}

func TestParseJWTTokenRejectsForeignKeys(t *testing.T) {
	s := newTestAuthService(time.Minute)
	token, _, err := s.generateAccessToken("session-1")
	if err != nil {
		t.Fatalf("generateAccessToken() error = %v", err)
	}

	other := newTestAuthService(time.Minute)
	other.jwtSigningKey = []byte("another secret")
	if _, err = other.ParseJWTToken(token); err == nil {
		t.Error("token signed with another key was accepted")
	}

	other = newTestAuthService(time.Minute)
	other.jwtIssuer = "someone-else"
	if _, err = other.ParseJWTToken(token); err == nil {
		t.Error("token of another issuer was accepted")
	}
}

func TestGenerateOpaqueToken(t *testing.T) {
	a, err := generateOpaqueToken()
	if err != nil {
		t.Fatalf("generateOpaqueToken() error = %v", err)
	}
	b, _ := generateOpaqueToken()
	if a == b {
		t.Error("tokens should differ")
	}
	if len(a) != 43 {
		t.Errorf("len = %d, want 43", len(a))
	}
}
