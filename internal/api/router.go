package api

import (
	"net/http"
	"time"

	"github.com/erazemk/lostfound/internal/auth"
	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/store"
	"github.com/erazemk/lostfound/internal/uploads"
)

// Deps holds what the API handlers need.
type Deps struct {
	Store             store.Store
	Issuer            *auth.Issuer
	Uploads           *uploads.Store
	MaxUploadBytes    int64
	MaxImageDimension int
}

// NewRouter creates the API router with all endpoints registered.
// Uploaded images are served under /uploads/.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{Store: d.Store, Issuer: d.Issuer}
	usersHandler := &UsersHandler{Store: d.Store}
	itemsHandler := &ItemsHandler{
		Store:          d.Store,
		Uploads:        d.Uploads,
		MaxUploadBytes: d.MaxUploadBytes,
		MaxDimension:   d.MaxImageDimension,
	}

	authMW := AuthMiddleware(d.Issuer, d.Store)
	requireAdmin := RequireRole(model.RoleAdmin)

	mux.HandleFunc("GET /api/health", health)

	// Auth.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("GET /api/auth/profile", authMW(http.HandlerFunc(authHandler.Profile)))
	mux.Handle("PUT /api/auth/password", authMW(http.HandlerFunc(authHandler.ChangePassword)))
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Users (admin only).
	mux.Handle("GET /api/auth/users", authMW(requireAdmin(http.HandlerFunc(usersHandler.List))))
	mux.Handle("PUT /api/auth/users/{id}/role", authMW(requireAdmin(http.HandlerFunc(usersHandler.UpdateRole))))

	// Items: public reads, authenticated writes.
	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.Handle("GET /api/items/my-items", authMW(http.HandlerFunc(itemsHandler.Mine)))
	mux.Handle("GET /api/items/admin/all", authMW(requireAdmin(http.HandlerFunc(itemsHandler.All))))
	mux.HandleFunc("GET /api/items/{id}", itemsHandler.Get)
	mux.Handle("POST /api/items", authMW(http.HandlerFunc(itemsHandler.Create)))
	mux.Handle("PUT /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Update)))
	mux.Handle("DELETE /api/items/{id}", authMW(http.HandlerFunc(itemsHandler.Delete)))

	mux.HandleFunc("/api/", notFound)

	if d.Uploads != nil {
		mux.Handle("GET /uploads/", http.StripPrefix("/uploads", d.Uploads.Handler()))
	}

	return mux
}

// health handles GET /api/health.
func health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Campus Lost & Found API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func notFound(w http.ResponseWriter, r *http.Request) {
	jsonError(w, http.StatusNotFound, "Route not found")
}
