package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v4"
)

func TestLoginIssuesOrganizerToken(t *testing.T) {
	const secret = "test-secret"
	svc, err := NewAuthService("puck-drop", secret)
	if err != nil {
		t.Fatal(err)
	}

	token, err := svc.Login(context.Background(), "puck-drop")
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if !parsed.Valid {
		t.Fatal("issued token is not valid")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatalf("unexpected claims type %T", parsed.Claims)
	}
	if claims["role"] != "organizer" {
		t.Errorf("role claim = %v, want organizer", claims["role"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Error("token must carry an expiry")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, err := NewAuthService("puck-drop", "test-secret")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Login(context.Background(), "zamboni"); !errors.Is(err, ErrAuthInvalidCredentials) {
		t.Fatalf("got %v, want ErrAuthInvalidCredentials", err)
	}
}
