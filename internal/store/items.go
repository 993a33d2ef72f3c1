package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
)

const itemColumns = `i.id, i.title, i.description, i.category, i.type, i.location, i.date, i.image,
	i.contact_email, i.contact_phone, i.status, i.created_at, i.updated_at,
	u.id, u.name, u.email, u.phone`

const itemFrom = ` FROM items i JOIN users u ON u.id = i.user_id`

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{User: &model.UserRef{}}
	var id, userID int64
	err := row.Scan(&id, &item.Title, &item.Description, &item.Category, &item.Type, &item.Location,
		&item.Date, &item.Image, &item.ContactEmail, &item.ContactPhone, &item.Status,
		&item.CreatedAt, &item.UpdatedAt,
		&userID, &item.User.Name, &item.User.Email, &item.User.Phone)
	if err != nil {
		return nil, err
	}
	item.ID = formatID(id)
	item.UserID = formatID(userID)
	item.User.ID = item.UserID
	return item, nil
}

// CreateItem creates a new item report owned by item.UserID.
func (s *SQLite) CreateItem(ctx context.Context, item *model.Item) (*model.Item, error) {
	userID, ok := parseID(item.UserID)
	if !ok {
		return nil, fmt.Errorf("creating item: invalid owner id %q", item.UserID)
	}

	status := item.Status
	if status == "" {
		status = model.ItemStatusActive
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO items (title, description, category, type, location, date, image,
		                    contact_email, contact_phone, status, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Title, item.Description, item.Category, item.Type, item.Location, item.Date, item.Image,
		item.ContactEmail, item.ContactPhone, status, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return s.GetItem(ctx, formatID(id))
}

// GetItem returns an item by ID with its owner populated.
func (s *SQLite) GetItem(ctx context.Context, id string) (*model.Item, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	item, err := scanItem(s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+itemFrom+` WHERE i.id = ?`, n,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// likePattern escapes LIKE wildcards so the search term matches literally.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// itemWhere builds the WHERE clause for a filter. ok is false when the
// filter can never match (a malformed owner id).
func itemWhere(f model.ItemFilter) (clause string, args []any, ok bool) {
	var conds []string

	if f.Type != "" {
		conds = append(conds, "i.type = ?")
		args = append(args, f.Type)
	}
	if f.Category != "" {
		conds = append(conds, "i.category = ?")
		args = append(args, f.Category)
	}
	if f.Status != "" {
		conds = append(conds, "i.status = ?")
		args = append(args, f.Status)
	}
	if f.UserID != "" {
		n, valid := parseID(f.UserID)
		if !valid {
			return "", nil, false
		}
		conds = append(conds, "i.user_id = ?")
		args = append(args, n)
	}
	if term := strings.TrimSpace(f.Search); term != "" {
		p := likePattern(term)
		conds = append(conds, `(i.title LIKE ? ESCAPE '\' OR i.description LIKE ? ESCAPE '\' OR i.location LIKE ? ESCAPE '\')`)
		args = append(args, p, p, p)
	}

	if len(conds) == 0 {
		return "", args, true
	}
	return " WHERE " + strings.Join(conds, " AND "), args, true
}

// ListItems returns the page of items matching the filter, newest first,
// together with the total number of matches.
func (s *SQLite) ListItems(ctx context.Context, f model.ItemFilter) ([]model.Item, int, error) {
	where, args, ok := itemWhere(f)
	if !ok {
		return nil, 0, nil
	}

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items i`+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("counting items: %w", err)
	}

	limit := f.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := max(f.Offset, 0)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+itemFrom+where+` ORDER BY i.created_at DESC, i.id DESC LIMIT ? OFFSET ?`,
		append(args, limit, offset)...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("listing items: %w", err)
	}
	return items, total, nil
}

// UpdateItem applies the non-nil fields of update and returns the updated
// item, or nil if it does not exist.
func (s *SQLite) UpdateItem(ctx context.Context, id string, update model.ItemUpdate) (*model.Item, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		sets = append(sets, column+" = ?")
		args = append(args, value)
	}

	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Description != nil {
		set("description", *update.Description)
	}
	if update.Category != nil {
		set("category", *update.Category)
	}
	if update.Type != nil {
		set("type", *update.Type)
	}
	if update.Location != nil {
		set("location", *update.Location)
	}
	if update.Date != nil {
		set("date", *update.Date)
	}
	if update.Image != nil {
		set("image", *update.Image)
	}
	if update.ContactEmail != nil {
		set("contact_email", *update.ContactEmail)
	}
	if update.ContactPhone != nil {
		set("contact_phone", *update.ContactPhone)
	}
	if update.Status != nil {
		set("status", *update.Status)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, n)

	result, err := s.db.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating item: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, nil
	}

	return s.GetItem(ctx, id)
}

// DeleteItem removes an item.
func (s *SQLite) DeleteItem(ctx context.Context, id string) error {
	n, ok := parseID(id)
	if !ok {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, n)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
