package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// AuthHandler handles registration, login and the current user's account.
type AuthHandler struct {
	Store  store.Store
	Issuer *auth.Issuer
}

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone" validate:"max=30"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
}

// authResponse is returned by register and login.
type authResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Name == "" || req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, "Please provide name, email and password")
		return
	}
	if err := validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	existing, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		serverError(w, "Server error during registration", err)
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "User already exists with this email")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		serverError(w, "Server error during registration", err)
		return
	}

	user, err := h.Store.CreateUser(r.Context(), &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		Role:         model.RoleUser,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		jsonError(w, http.StatusConflict, "User already exists with this email")
		return
	}
	if err != nil {
		serverError(w, "Server error during registration", err)
		return
	}

	token, err := h.Issuer.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		serverError(w, "Server error during registration", err)
		return
	}

	slog.Info("user registered", "user", user.Email)
	jsonSuccess(w, http.StatusCreated, "User registered successfully", authResponse{User: user, Token: token})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, "Please provide email and password")
		return
	}

	user, err := h.Store.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		serverError(w, "Server error during login", err)
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		slog.Warn("login failed", "user", req.Email, "remote", r.RemoteAddr)
		jsonError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.Issuer.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		serverError(w, "Server error during login", err)
		return
	}

	slog.Info("user logged in", "user", user.Email, "role", user.Role)
	jsonSuccess(w, http.StatusOK, "Login successful", authResponse{User: user, Token: token})
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	jsonSuccess(w, http.StatusOK, "", CurrentUser(r.Context()))
}

// ChangePassword handles PUT /api/auth/password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r.Context())

	var req changePasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}
	if err := model.ValidatePassword(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, "New "+err.Error())
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		serverError(w, "Server error updating password", err)
		return
	}

	if err := h.Store.UpdateUserPassword(r.Context(), user.ID, string(hash)); err != nil {
		serverError(w, "Server error updating password", err)
		return
	}

	slog.Info("user changed own password", "user", user.Email)
	jsonSuccess(w, http.StatusOK, "Password updated successfully", nil)
}

// Logout handles POST /api/auth/logout by revoking the presented token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	if claims.ExpiresAt != nil {
		if err := h.Store.RevokeToken(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			serverError(w, "Server error during logout", err)
			return
		}
	}

	slog.Info("user logged out", "user", claims.Email)
	jsonSuccess(w, http.StatusOK, "Logged out successfully", nil)
}
