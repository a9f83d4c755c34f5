package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", "kid@camp.io", "Kid", time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if d := time.Until(tok.Exp); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("expiry should be one hour out, got %s", d)
	}

	claims, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.Email != "kid@camp.io" || claims.Name != "Kid" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	tok, _ := NewAccessToken("secret", "kid@camp.io", "", time.Hour)
	if _, err := ParseAccessToken("other", tok.Token); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	tok, _ := NewAccessToken("secret", "kid@camp.io", "", -time.Minute)
	_, err := ParseAccessToken("secret", tok.Token)
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseRejectsTampered(t *testing.T) {
	tok, _ := NewAccessToken("secret", "kid@camp.io", "", time.Hour)
	parts := strings.Split(tok.Token, ".")
	forged, _ := NewAccessToken("secret", "boss@camp.io", "", time.Hour)
	parts[1] = strings.Split(forged.Token, ".")[1]
	if _, err := ParseAccessToken("secret", strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected tampered payload to fail")
	}
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{Email: "kid@camp.io", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken("secret", raw); err == nil {
		t.Fatalf("HS512 token must be rejected")
	}
}

func TestParseRequiresExpiry(t *testing.T) {
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "kid@camp.io"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseAccessToken("secret", raw); err == nil {
		t.Fatalf("token without exp must be rejected")
	}
}

func TestNewAccessTokenRequiresEmail(t *testing.T) {
	if _, err := NewAccessToken("secret", "  ", "", time.Hour); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}
}
