package mongostore

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// openTestStore connects to the server in LOSTFOUND_TEST_MONGO_URI using a
// throwaway database. Tests are skipped when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("LOSTFOUND_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LOSTFOUND_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	s, err := Open(ctx, uri, "lostfound_test_"+primitive.NewObjectID().Hex())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		_ = s.db.Drop(context.Background())
		s.Close()
	})
	return s
}

func TestMongoUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	u, err := s.CreateUser(ctx, &model.User{Name: "Ana", Email: "ana@campus.edu", PasswordHash: "hash"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Role != model.RoleUser {
		t.Errorf("expected default role, got %q", u.Role)
	}

	_, err = s.CreateUser(ctx, &model.User{Name: "Ana 2", Email: "ana@campus.edu", PasswordHash: "hash"})
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}

	got, err := s.GetUserByEmail(ctx, "ana@campus.edu")
	if err != nil || got == nil || got.ID != u.ID {
		t.Fatalf("GetUserByEmail: %+v, %v", got, err)
	}

	if err := s.UpdateUserRole(ctx, u.ID, model.RoleAdmin); err != nil {
		t.Fatalf("UpdateUserRole: %v", err)
	}
	got, _ = s.GetUser(ctx, u.ID)
	if got.Role != model.RoleAdmin {
		t.Errorf("expected admin role, got %q", got.Role)
	}

	missing, err := s.GetUser(ctx, "not-an-id")
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for malformed id, got %+v, %v", missing, err)
	}
}

func TestMongoItems(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	owner, _ := s.CreateUser(ctx, &model.User{Name: "Ana", Email: "ana@campus.edu", PasswordHash: "hash"})
	item, err := s.CreateItem(ctx, &model.Item{
		Title:        "Blue Bottle",
		Description:  "Steel bottle",
		Category:     "Other",
		Type:         model.ItemTypeFound,
		Location:     "Gym",
		Date:         time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		ContactEmail: owner.Email,
		UserID:       owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.User == nil || item.User.Email != owner.Email {
		t.Errorf("expected owner populated, got %+v", item.User)
	}

	items, total, err := s.ListItems(ctx, model.ItemFilter{Search: "BOTTLE", Status: model.ItemStatusActive})
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("expected 1 match, got %d (total %d)", len(items), total)
	}

	resolved := model.ItemStatusResolved
	updated, err := s.UpdateItem(ctx, item.ID, model.ItemUpdate{Status: &resolved})
	if err != nil || updated == nil || updated.Status != resolved {
		t.Fatalf("UpdateItem: %+v, %v", updated, err)
	}

	if err := s.DeleteItem(ctx, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	gone, _ := s.GetItem(ctx, item.ID)
	if gone != nil {
		t.Error("expected item to be deleted")
	}
}

func TestMongoTokensAndSecret(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken: %v", err)
	}
	if err := s.RevokeToken(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("RevokeToken again: %v", err)
	}
	revoked, err := s.IsTokenRevoked(ctx, "jti-1")
	if err != nil || !revoked {
		t.Errorf("expected jti-1 revoked, got %v, %v", revoked, err)
	}

	first, err := s.GetJWTSecret(ctx)
	if err != nil {
		t.Fatalf("GetJWTSecret: %v", err)
	}
	second, _ := s.GetJWTSecret(ctx)
	if first == "" || first != second {
		t.Errorf("expected stable secret, got %q and %q", first, second)
	}
}
