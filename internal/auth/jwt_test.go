package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestGenerateAndParseJWT(t *testing.T) {
	secret := "test-secret"
	userID := uuid.New()

	token, err := GenerateJWT(secret, userID, "employer", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	claims, err := ParseJWT(secret, token)
	if err != nil {
		t.Fatalf("ParseJWT: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user id: got %s, want %s", claims.UserID, userID)
	}
	if claims.Role != "employer" {
		t.Errorf("role: got %q, want %q", claims.Role, "employer")
	}
}

func TestParseJWTWrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret-a", uuid.New(), "worker", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT("secret-b", token); err == nil {
		t.Error("expected error parsing token with wrong secret")
	}
}

func TestParseJWTExpired(t *testing.T) {
	token, err := GenerateJWT("secret", uuid.New(), "worker", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	if _, err := ParseJWT("secret", token); err == nil {
		t.Error("expected error parsing expired token")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2!pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2!pass" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter2!pass") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("wrong password accepted")
	}
}
