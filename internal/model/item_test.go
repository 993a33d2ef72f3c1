package model

import (
	"testing"
	"time"
)

func TestModifiableBy(t *testing.T) {
	item := &Item{ID: "1", UserID: "42"}

	tests := []struct {
		name   string
		userID string
		role   string
		want   bool
	}{
		{"owner", "42", RoleUser, true},
		{"other user", "7", RoleUser, false},
		{"admin", "7", RoleAdmin, true},
		{"anonymous", "", RoleUser, false},
	}

	for _, tt := range tests {
		if got := item.ModifiableBy(tt.userID, tt.role); got != tt.want {
			t.Errorf("%s: ModifiableBy(%q, %q) = %v, want %v", tt.name, tt.userID, tt.role, got, tt.want)
		}
	}
}

func TestOwnerlessItemNotModifiableByEmptyID(t *testing.T) {
	item := &Item{ID: "1"}
	if item.ModifiableBy("", RoleUser) {
		t.Error("empty user id must not match an item without owner")
	}
}

func TestEnums(t *testing.T) {
	for _, c := range Categories {
		if !IsCategory(c) {
			t.Errorf("expected %q to be a category", c)
		}
	}
	if IsCategory("electronics") {
		t.Error("categories are case-sensitive")
	}
	if !IsItemType(ItemTypeLost) || !IsItemType(ItemTypeFound) || IsItemType("stolen") {
		t.Error("unexpected item type check result")
	}
	if !IsItemStatus(ItemStatusClosed) || IsItemStatus("archived") {
		t.Error("unexpected item status check result")
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("ParseDate date-only: %v", err)
	}
	if !got.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date: %v", got)
	}

	got, err = ParseDate("2024-03-15T10:30:00+02:00")
	if err != nil {
		t.Fatalf("ParseDate RFC3339: %v", err)
	}
	if got.Hour() != 8 || got.Location() != time.UTC {
		t.Errorf("expected UTC 08:30, got %v", got)
	}

	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
