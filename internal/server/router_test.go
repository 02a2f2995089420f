package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joao-fontenele/storefront/internal/auth"
	"github.com/joao-fontenele/storefront/internal/cart"
	"github.com/joao-fontenele/storefront/internal/catalog"
	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/httpapi"
	"github.com/joao-fontenele/storefront/internal/orders"
)

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

// newTestRouter wires handlers without storage; the cases below never get
// past the auth layer or only touch routes that need no store.
func newTestRouter(t *testing.T, db Pinger) (http.Handler, *auth.TokenIssuer, string) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := auth.NewTokenIssuer("router-secret", time.Hour)
	imagesDir := t.TempDir()

	router := NewRouter(Deps{
		Auth:       auth.NewHandler(auth.NewService(nil, tokens, logger), logger),
		Catalog:    catalog.NewHandler(catalog.NewService(nil, nil, logger), 1<<20, logger),
		Cart:       cart.NewHandler(cart.NewService(nil, logger), logger),
		Orders:     orders.NewHandler(orders.NewService(nil, nil, nil, logger), logger),
		Middleware: auth.NewMiddleware(tokens, logger),
		ImagesDir:  imagesDir,
		DB:         db,
		Logger:     logger,
	})
	return router, tokens, imagesDir
}

func request(t *testing.T, h http.Handler, method, target, token string) (*httptest.ResponseRecorder, httpapi.Envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env httpapi.Envelope
	_ = json.Unmarshal(rec.Body.Bytes(), &env)
	return rec, env
}

func TestRouter_AccessControl(t *testing.T) {
	router, tokens, _ := newTestRouter(t, fakePinger{})

	customer, err := tokens.Issue(&domain.User{ID: 3, Email: "c@example.com", Role: domain.RoleCustomer})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	tests := []struct {
		name   string
		method string
		target string
		token  string
		want   int
	}{
		{"cart needs a token", http.MethodGet, "/api/Cart", "", http.StatusUnauthorized},
		{"orders need a token", http.MethodPost, "/api/Order/checkout", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/Order", "not-a-jwt", http.StatusUnauthorized},
		{"admin route without token", http.MethodPost, "/api/Category", "", http.StatusUnauthorized},
		{"customer on admin route", http.MethodDelete, "/api/Product/1", customer, http.StatusForbidden},
		{"customer adding stock", http.MethodPost, "/api/Product/add-stock", customer, http.StatusForbidden},
		{"unknown api route", http.MethodGet, "/api/Nope", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := request(t, router, tt.method, tt.target, tt.token)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if env.Success || env.Message == "" {
				t.Errorf("expected failure envelope, got %+v", env)
			}
		})
	}
}

func TestRouter_Healthz(t *testing.T) {
	router, _, _ := newTestRouter(t, fakePinger{})
	if rec, env := request(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusOK || !env.Success {
		t.Errorf("expected healthy, got %d %+v", rec.Code, env)
	}

	router, _, _ = newTestRouter(t, fakePinger{err: errors.New("down")})
	if rec, _ := request(t, router, http.MethodGet, "/healthz", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestRouter_ServesImages(t *testing.T) {
	router, _, dir := newTestRouter(t, nil)
	if err := os.WriteFile(filepath.Join(dir, "abc_cover.png"), []byte("png-bytes"), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/abc_cover.png", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Errorf("expected image content, got %d %q", rec.Code, rec.Body.String())
	}

	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	for _, target := range []string{"/images/", "/images/nested/"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", target, rec.Code)
		}
		if strings.Contains(rec.Body.String(), "abc_cover.png") {
			t.Errorf("%s: directory listing leaked file names", target)
		}
	}
}
