package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
)

const userColumns = `id, name, email, password_hash, phone, role, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	u := &model.User{}
	var id int64
	if err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.ID = formatID(id)
	return u, nil
}

// CreateUser creates a new user.
func (s *SQLite) CreateUser(ctx context.Context, u *model.User) (*model.User, error) {
	role := u.Role
	if role == "" {
		role = model.RoleUser
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, email, password_hash, phone, role) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Phone, role,
	)
	if isUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return s.GetUser(ctx, formatID(id))
}

// GetUser returns a user by ID.
func (s *SQLite) GetUser(ctx context.Context, id string) (*model.User, error) {
	n, ok := parseID(id)
	if !ok {
		return nil, nil
	}

	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, n,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by email address.
func (s *SQLite) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users, newest first.
func (s *SQLite) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUserRole changes a user's role.
func (s *SQLite) UpdateUserRole(ctx context.Context, id, role string) error {
	n, ok := parseID(id)
	if !ok {
		return fmt.Errorf("updating user role: invalid id %q", id)
	}
	_, err := s.db.ExecContext(ctx, `UPDATE users SET role = ? WHERE id = ?`, role, n)
	if err != nil {
		return fmt.Errorf("updating user role: %w", err)
	}
	return nil
}

// UpdateUserPassword updates a user's password hash.
func (s *SQLite) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	n, ok := parseID(id)
	if !ok {
		return fmt.Errorf("updating user password: invalid id %q", id)
	}
	_, err := s.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, n)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}
