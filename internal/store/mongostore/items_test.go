package mongostore

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/erazemk/lostfound/internal/model"
)

func TestItemFilterEquality(t *testing.T) {
	owner := primitive.NewObjectID()
	filter, ok := itemFilter(model.ItemFilter{
		Type:     model.ItemTypeLost,
		Category: "Keys",
		Status:   model.ItemStatusActive,
		UserID:   owner.Hex(),
	})
	if !ok {
		t.Fatal("expected filter to be usable")
	}

	if filter["type"] != model.ItemTypeLost || filter["category"] != "Keys" || filter["status"] != model.ItemStatusActive {
		t.Errorf("unexpected equality fields: %v", filter)
	}
	if filter["user"] != owner {
		t.Errorf("expected user %v, got %v", owner, filter["user"])
	}
	if _, has := filter["$or"]; has {
		t.Error("expected no $or without search")
	}
}

func TestItemFilterEmpty(t *testing.T) {
	filter, ok := itemFilter(model.ItemFilter{Search: "   "})
	if !ok {
		t.Fatal("expected filter to be usable")
	}
	if len(filter) != 0 {
		t.Errorf("expected empty filter, got %v", filter)
	}
}

func TestItemFilterSearchEscapesRegex(t *testing.T) {
	filter, _ := itemFilter(model.ItemFilter{Search: "c++ (book)"})

	or, ok := filter["$or"].(bson.A)
	if !ok || len(or) != 3 {
		t.Fatalf("expected $or with 3 clauses, got %v", filter["$or"])
	}

	fields := []string{"title", "description", "location"}
	for i, clause := range or {
		m := clause.(bson.M)
		re, ok := m[fields[i]].(primitive.Regex)
		if !ok {
			t.Fatalf("clause %d: expected regex on %s, got %v", i, fields[i], m)
		}
		if re.Pattern != `c\+\+ \(book\)` {
			t.Errorf("clause %d: unescaped pattern %q", i, re.Pattern)
		}
		if re.Options != "i" {
			t.Errorf("clause %d: expected case-insensitive option, got %q", i, re.Options)
		}
	}
}

func TestItemFilterMalformedOwner(t *testing.T) {
	if _, ok := itemFilter(model.ItemFilter{UserID: "42"}); ok {
		t.Error("expected malformed owner id to make the filter unusable")
	}
}

func TestItemUpdateDoc(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	title := "Red Scarf"
	status := model.ItemStatusClosed

	doc := itemUpdateDoc(model.ItemUpdate{Title: &title, Status: &status}, now)
	set, ok := doc["$set"].(bson.M)
	if !ok {
		t.Fatalf("expected $set document, got %v", doc)
	}
	if len(set) != 3 {
		t.Errorf("expected 3 fields (title, status, updated_at), got %v", set)
	}
	if set["title"] != "Red Scarf" || set["status"] != model.ItemStatusClosed || set["updated_at"] != now {
		t.Errorf("unexpected $set: %v", set)
	}
}

func TestItemDocModel(t *testing.T) {
	owner := &userDoc{ID: primitive.NewObjectID(), Name: "Ana", Email: "ana@campus.edu", Phone: "123"}
	doc := itemDoc{ID: primitive.NewObjectID(), Title: "Bag", User: owner.ID}

	item := doc.model(owner)
	if item.ID != doc.ID.Hex() || item.UserID != owner.ID.Hex() {
		t.Errorf("unexpected ids: %+v", item)
	}
	if item.User == nil || item.User.Name != "Ana" || item.User.Phone != "123" {
		t.Errorf("expected populated owner, got %+v", item.User)
	}

	orphan := doc.model(nil)
	if orphan.User != nil {
		t.Error("expected no owner ref when owner is missing")
	}
}
