package auth

import (
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/model"
)

func TestGenerateAndValidateToken(t *testing.T) {
	issuer := NewIssuer("test-secret-key", time.Hour)

	token, err := issuer.GenerateToken("1", "admin@campus.edu", model.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	claims, err := issuer.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}

	if claims.UserID != "1" {
		t.Errorf("expected user_id 1, got %q", claims.UserID)
	}
	if claims.Email != "admin@campus.edu" {
		t.Errorf("expected email 'admin@campus.edu', got %q", claims.Email)
	}
	if claims.Role != model.RoleAdmin {
		t.Errorf("expected role 'admin', got %q", claims.Role)
	}
	if claims.ID == "" {
		t.Error("expected a JTI")
	}
}

func TestUniqueJTI(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	a, _ := issuer.GenerateToken("1", "a@campus.edu", model.RoleUser)
	b, _ := issuer.GenerateToken("1", "a@campus.edu", model.RoleUser)

	ca, _ := issuer.ValidateToken(a)
	cb, _ := issuer.ValidateToken(b)
	if ca.ID == cb.ID {
		t.Error("expected distinct JTIs for separate tokens")
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := NewIssuer("secret1", time.Hour).GenerateToken("1", "a@campus.edu", model.RoleAdmin)

	_, err := NewIssuer("secret2", time.Hour).ValidateToken(token)
	if err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestValidateTokenInvalid(t *testing.T) {
	_, err := NewIssuer("secret", time.Hour).ValidateToken("not-a-token")
	if err == nil {
		t.Error("expected error for invalid token")
	}
}

func TestValidateTokenExpired(t *testing.T) {
	issuer := NewIssuer("secret", -time.Hour)
	// Negative expiry falls back to the default, so build an expired issuer directly.
	issuer.expiry = -time.Minute

	token, err := issuer.GenerateToken("1", "a@campus.edu", model.RoleUser)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := issuer.ValidateToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestTokenExpiry(t *testing.T) {
	issuer := NewIssuer("test", 0)
	if issuer.Expiry() != DefaultExpiry {
		t.Fatalf("expected default expiry, got %v", issuer.Expiry())
	}

	token, _ := issuer.GenerateToken("1", "test@campus.edu", model.RoleUser)
	claims, _ := issuer.ValidateToken(token)

	expiresAt := claims.ExpiresAt.Time
	expectedExpiry := time.Now().Add(DefaultExpiry)

	// Should be within a few seconds.
	diff := expectedExpiry.Sub(expiresAt)
	if diff < -5*time.Second || diff > 5*time.Second {
		t.Errorf("token expiry too far from expected: diff=%v", diff)
	}
}
