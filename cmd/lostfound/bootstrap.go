package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// ensureAdmin creates the configured admin account if it does not exist yet.
// The generated password is returned only when the account was created.
func ensureAdmin(ctx context.Context, st store.Store, email, name string) (string, error) {
	if email == "" {
		return "", nil
	}

	existing, err := st.GetUserByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("looking up admin: %w", err)
	}
	if existing != nil {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	_, err = st.CreateUser(ctx, &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		// Another instance got there first.
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	return password, nil
}

// printAdminCreated prints the one-time admin credentials.
func printAdminCreated(w io.Writer, email, password string) {
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Email:    %s\n", email)
	fmt.Fprintf(w, "  Password: %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
