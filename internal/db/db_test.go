package db

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/erazemk/lostfound/internal/model"
)

func TestEnsureSchemaIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lostfound.sqlite3")
	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer database.Close()

	for i := 0; i < 2; i++ {
		if err := EnsureSchema(database); err != nil {
			t.Fatalf("EnsureSchema run %d: %v", i+1, err)
		}
	}
}

func TestItemCheckConstraints(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO users (name, email, password_hash) VALUES ('A', 'a@campus.edu', 'x')`)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}

	_, err = database.Exec(`INSERT INTO items (title, description, category, type, location, date, contact_email, user_id)
		VALUES ('Phone', 'Black', 'Gadgets', 'lost', 'Library', '2024-01-01', 'a@campus.edu', 1)`)
	if err == nil {
		t.Error("expected unknown category to be rejected")
	}

	_, err = database.Exec(`INSERT INTO items (title, description, category, type, location, date, contact_email, user_id)
		VALUES ('Phone', 'Black', 'Electronics', 'lost', 'Library', '2024-01-01', 'a@campus.edu', 99)`)
	if err == nil {
		t.Error("expected missing owner to be rejected by foreign key")
	}
}

func TestItemLengthLimits(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO users (name, email, password_hash) VALUES ('A', 'a@campus.edu', 'x')`)
	if err != nil {
		t.Fatalf("inserting user: %v", err)
	}

	insert := func(title string) error {
		_, err := database.Exec(`INSERT INTO items (title, description, category, type, location, date, contact_email, user_id)
			VALUES (?, 'Black', 'Electronics', 'lost', 'Library', '2024-01-01', 'a@campus.edu', 1)`, title)
		return err
	}

	if err := insert(strings.Repeat("x", model.MaxTitleLength)); err != nil {
		t.Errorf("title at the limit rejected: %v", err)
	}
	if err := insert(strings.Repeat("x", model.MaxTitleLength+1)); err == nil {
		t.Error("expected title over the limit to be rejected")
	}
}
