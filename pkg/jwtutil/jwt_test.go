package jwtutil

import (
	"testing"

	"userdir-service/internal/model"
	"userdir-service/pkg/config"
)

func TestGenerateAndValidate_Success(t *testing.T) {
	user := &model.User{
		ID:      7,
		Name:    "Alice",
		Email:   "alice@example.com",
		IsAdmin: true,
	}

	tok, err := GenerateToken(user)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ValidateToken(tok)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if claims.ID != user.ID || claims.Name != user.Name || claims.Email != user.Email || !claims.IsAdmin {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestValidateToken_NonAdminFlagPreserved(t *testing.T) {
	tok, err := GenerateToken(&model.User{ID: 2, Name: "Bob", Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ValidateToken(tok)
	if err != nil {
		t.Fatalf("ValidateToken error: %v", err)
	}
	if claims.IsAdmin {
		t.Fatalf("expected isAdmin=false, got true")
	}
}

func TestValidateToken_WrongKey(t *testing.T) {
	tok, err := GenerateToken(&model.User{ID: 1, Email: "a@b.com"})
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	Initialize(&config.JWTConfig{SigningKey: "a-different-key"})
	defer Initialize(&config.JWTConfig{SigningKey: "userdirsecretkey"})

	if _, err := ValidateToken(tok); err == nil {
		t.Fatalf("expected error for token signed with another key, got nil")
	}
}

func TestValidateToken_Malformed(t *testing.T) {
	if _, err := ValidateToken("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token, got nil")
	}
}
