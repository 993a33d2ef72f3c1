package store

import (
	"context"
	"testing"
	"time"
)

func TestRevokeAndCheckToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Token should not be revoked initially.
	revoked, err := s.IsTokenRevoked(ctx, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected token not to be revoked")
	}

	// Revoke the token.
	err = s.RevokeToken(ctx, "test-jti-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}

	// Now it should be revoked.
	revoked, err = s.IsTokenRevoked(ctx, "test-jti-1")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if !revoked {
		t.Error("expected token to be revoked")
	}

	// Different JTI should not be revoked.
	revoked, err = s.IsTokenRevoked(ctx, "test-jti-2")
	if err != nil {
		t.Fatalf("IsTokenRevoked: %v", err)
	}
	if revoked {
		t.Error("expected different token not to be revoked")
	}
}

func TestRevokeTokenIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Revoking the same token twice should not error (INSERT OR IGNORE).
	if err := s.RevokeToken(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("first RevokeToken: %v", err)
	}
	if err := s.RevokeToken(ctx, "test-jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("second RevokeToken: %v", err)
	}
}

func TestExpiredRevocationsCleanedUp(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.RevokeToken(ctx, "old", time.Now().Add(-time.Hour))
	s.RevokeToken(ctx, "new", time.Now().Add(time.Hour))

	revoked, _ := s.IsTokenRevoked(ctx, "old")
	if revoked {
		t.Error("expected expired revocation to be cleaned up")
	}
	revoked, _ = s.IsTokenRevoked(ctx, "new")
	if !revoked {
		t.Error("expected live revocation to remain")
	}
}
