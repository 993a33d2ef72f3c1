package model

import (
	"fmt"
	"time"
)

// Item is a lost or found report posted by a user.
type Item struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Type         string    `json:"type"`
	Location     string    `json:"location"`
	Date         time.Time `json:"date"`
	Image        string    `json:"image"`
	ContactEmail string    `json:"contact_email"`
	ContactPhone string    `json:"contact_phone"`
	Status       string    `json:"status"`
	UserID       string    `json:"-"`
	User         *UserRef  `json:"user,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRef is the owner summary embedded in item responses.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Item types.
const (
	ItemTypeLost  = "lost"
	ItemTypeFound = "found"
)

// Item statuses.
const (
	ItemStatusActive   = "active"
	ItemStatusResolved = "resolved"
	ItemStatusClosed   = "closed"
)

// Field length limits.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 1000
	MaxLocationLength    = 200
)

// Categories lists the accepted item categories in display order.
var Categories = []string{
	"Electronics",
	"Books",
	"Clothing",
	"Accessories",
	"Documents",
	"Keys",
	"Wallet",
	"Bag",
	"Sports",
	"Other",
}

// IsCategory reports whether c is one of Categories.
func IsCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsItemType reports whether t is lost or found.
func IsItemType(t string) bool {
	return t == ItemTypeLost || t == ItemTypeFound
}

// IsItemStatus reports whether s is a known item status.
func IsItemStatus(s string) bool {
	return s == ItemStatusActive || s == ItemStatusResolved || s == ItemStatusClosed
}

// ModifiableBy reports whether the user may edit or delete the item:
// only its owner or an admin.
func (i *Item) ModifiableBy(userID, role string) bool {
	if role == RoleAdmin {
		return true
	}
	return userID != "" && i.UserID == userID
}

// ParseDate accepts either a calendar date (2006-01-02) or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD", s)
	}
	return t.UTC(), nil
}

// ItemFilter selects items for listing.
type ItemFilter struct {
	Type     string
	Category string
	Status   string // empty matches any status
	Search   string
	UserID   string
	Offset   int
	Limit    int // 0 means no limit
}

// ItemUpdate holds the fields to change on an item. Nil fields are left as is.
type ItemUpdate struct {
	Title        *string
	Description  *string
	Category     *string
	Type         *string
	Location     *string
	Date         *time.Time
	Image        *string
	ContactEmail *string
	ContactPhone *string
	Status       *string
}
