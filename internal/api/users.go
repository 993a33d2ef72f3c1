package api

import (
	"log/slog"
	"net/http"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
)

// UsersHandler handles user management endpoints (admin only).
type UsersHandler struct {
	Store store.Store
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type usersResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Data    []model.User `json:"data"`
}

// List handles GET /api/auth/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		serverError(w, "Server error fetching users", err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	jsonResponse(w, http.StatusOK, usersResponse{Success: true, Count: len(users), Data: users})
}

// UpdateRole handles PUT /api/auth/users/{id}/role.
func (h *UsersHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	current := CurrentUser(r.Context())
	id := r.PathValue("id")

	var req updateRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		jsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	target, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		serverError(w, "Server error updating role", err)
		return
	}
	if target == nil {
		jsonError(w, http.StatusNotFound, "User not found")
		return
	}

	// Prevent an admin from locking themselves out.
	if target.ID == current.ID && req.Role != model.RoleAdmin {
		jsonError(w, http.StatusBadRequest, "You cannot remove your own admin role")
		return
	}

	if err := h.Store.UpdateUserRole(r.Context(), target.ID, req.Role); err != nil {
		serverError(w, "Server error updating role", err)
		return
	}
	target.Role = req.Role

	slog.Info("user role changed", "user", current.Email, "target", target.Email, "role", req.Role)
	jsonSuccess(w, http.StatusOK, "User role updated successfully", target)
}
