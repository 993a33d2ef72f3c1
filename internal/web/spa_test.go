package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	webembed "github.com/erazemk/lostfound/web"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"index.html":    {Data: []byte("<html>app</html>")},
		"app.js":        {Data: []byte("console.log('hi')")},
		"css/style.css": {Data: []byte("body{}")},
	}
}

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))
	body, _ := io.ReadAll(rec.Body)
	return rec.Code, string(body)
}

func TestSPARouting(t *testing.T) {
	h, err := NewRouter(testFS())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	tests := []struct {
		path     string
		wantCode int
		wantBody string
	}{
		{"/", 200, "<html>app</html>"},
		{"/app.js", 200, "console.log('hi')"},
		{"/css/style.css", 200, "body{}"},
		{"/items/42", 200, "<html>app</html>"},
		{"/login", 200, "<html>app</html>"},
		{"/missing.js", 404, ""},
		{"/css", 404, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := get(t, h, tt.path)
			if code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, code)
			}
			if tt.wantBody != "" && body != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, body)
			}
		})
	}
}

func TestSPASecurityHeaders(t *testing.T) {
	h, _ := NewRouter(testFS())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing nosniff header")
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing frame options header")
	}
}

func TestNewRouterRequiresIndex(t *testing.T) {
	if _, err := NewRouter(fstest.MapFS{"app.js": {Data: []byte("x")}}); err == nil {
		t.Error("expected error without index.html")
	}
}

func TestEmbeddedClient(t *testing.T) {
	h, err := NewRouter(webembed.StaticFS())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	code, body := get(t, h, "/")
	if code != 200 || !strings.Contains(body, "Lost &amp; Found") {
		t.Errorf("unexpected embedded index: %d", code)
	}
}
