// Package web serves the single-page client.
package web

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

const indexFile = "index.html"

// NewRouter serves files from static. Paths that do not name a file and
// have no extension get index.html so client-side routes survive a reload.
func NewRouter(static fs.FS) (http.Handler, error) {
	if _, err := fs.Stat(static, indexFile); err != nil {
		return nil, fmt.Errorf("client bundle has no %s: %w", indexFile, err)
	}

	files := http.FileServerFS(static)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		setSecurityHeaders(w)

		name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
		if name == "" || name == indexFile {
			serveIndex(w, r, static)
			return
		}

		info, err := fs.Stat(static, name)
		switch {
		case err == nil && !info.IsDir():
			files.ServeHTTP(w, r)
		case errors.Is(err, fs.ErrNotExist) && path.Ext(name) == "":
			serveIndex(w, r, static)
		default:
			http.NotFound(w, r)
		}
	})

	return mux, nil
}

func serveIndex(w http.ResponseWriter, r *http.Request, static fs.FS) {
	w.Header().Set("Cache-Control", "no-cache")
	data, err := fs.ReadFile(static, indexFile)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(data)
}

func setSecurityHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("Referrer-Policy", "same-origin")
}
