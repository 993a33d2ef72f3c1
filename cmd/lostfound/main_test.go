package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/db"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	st := store.NewSQLite(db.NewTestDB(t))

	password, err := ensureAdmin(ctx, st, "admin@campus.edu", "Administrator")
	if err != nil {
		t.Fatalf("ensureAdmin: %v", err)
	}
	if len(password) != 16 {
		t.Fatalf("expected 16 character password, got %q", password)
	}

	admin, err := st.GetUserByEmail(ctx, "admin@campus.edu")
	if err != nil || admin == nil {
		t.Fatalf("admin not created: %v", err)
	}
	if admin.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %q", admin.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		t.Error("stored hash does not match printed password")
	}

	// Second run is a no-op.
	password, err = ensureAdmin(ctx, st, "admin@campus.edu", "Administrator")
	if err != nil || password != "" {
		t.Errorf("expected no-op on second run, got %q %v", password, err)
	}
}

func TestEnsureAdminDisabled(t *testing.T) {
	st := store.NewSQLite(db.NewTestDB(t))

	password, err := ensureAdmin(context.Background(), st, "", "Administrator")
	if err != nil || password != "" {
		t.Fatalf("expected no admin without email, got %q %v", password, err)
	}
	users, _ := st.ListUsers(context.Background())
	if len(users) != 0 {
		t.Errorf("expected no users, got %d", len(users))
	}
}

func TestGeneratePasswordUnique(t *testing.T) {
	a, _ := generatePassword(16)
	b, _ := generatePassword(16)
	if a == b {
		t.Error("expected different passwords")
	}
}

func TestLevelRouter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLevelRouter(&stdout, &stderr, "json"))

	logger.Info("hello", "user", "ana")
	logger.Error("boom")
	logger.Debug("hidden")

	if !strings.Contains(stdout.String(), `"msg":"hello"`) || strings.Contains(stdout.String(), "boom") {
		t.Errorf("unexpected stdout %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), `"msg":"boom"`) {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
	if strings.Contains(stdout.String()+stderr.String(), "hidden") {
		t.Error("debug records should be dropped")
	}
}
