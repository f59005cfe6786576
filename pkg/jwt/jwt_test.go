package jwt

import (
	"errors"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

func TestGenerateValidateRoundTrip(t *testing.T) {
	manager, err := NewManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	token, err := manager.Generate("user-1", "admin@club.example", "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims["sub"] != "user-1" {
		t.Errorf("Expected sub user-1, got %v", claims["sub"])
	}
	if claims["email"] != "admin@club.example" {
		t.Errorf("Expected email claim, got %v", claims["email"])
	}
	if claims["role"] != "admin" {
		t.Errorf("Expected role admin, got %v", claims["role"])
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	signer, _ := NewManager("secret-a", time.Hour)
	verifier, _ := NewManager("secret-b", time.Hour)

	token, err := signer.Generate("user-1", "admin@club.example", "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := verifier.Validate(token); err == nil {
		t.Fatal("Expected validation to fail for a foreign secret")
	}
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager, _ := NewManager("test-secret", -time.Minute)

	token, err := manager.Generate("user-1", "admin@club.example", "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = manager.Validate(token)
	if !errors.Is(err, jwtlib.ErrTokenExpired) {
		t.Fatalf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestNewManagerRejectsEmptySecret(t *testing.T) {
	if _, err := NewManager("", time.Hour); err == nil {
		t.Fatal("Expected empty secret to be rejected")
	}
}
