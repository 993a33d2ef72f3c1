package store

import (
	"context"
	"testing"
)

func TestGetJWTSecretStable(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.GetJWTSecret(ctx)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if len(first) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(first))
	}

	second, err := s.GetJWTSecret(ctx)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	if first != second {
		t.Error("expected the persisted secret to be reused")
	}
}
