package httpx

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/splax/placefinder/internal/geocode"
	"github.com/splax/placefinder/internal/repository/memory"
	"github.com/splax/placefinder/internal/service/auth"
	"github.com/splax/placefinder/internal/service/search"
	"github.com/splax/placefinder/pkg/config"
	"github.com/splax/placefinder/pkg/crypto"
	jwtpkg "github.com/splax/placefinder/pkg/jwt"
)

type stubGeocoder struct {
	mu     sync.Mutex
	calls  int
	places []geocode.Place
}

func (s *stubGeocoder) Search(ctx context.Context, query string, limit int) ([]geocode.Place, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if limit == 1 {
		return nil, nil
	}
	return s.places, nil
}

func (s *stubGeocoder) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubWiki struct{}

func (stubWiki) EntityImage(ctx context.Context, entityID string) (string, error) { return "", nil }
func (stubWiki) PageThumbnail(ctx context.Context, lang, title string) (string, error) {
	return "", nil
}
func (stubWiki) SearchTitle(ctx context.Context, query string) (string, error) { return "", nil }

func newTestRouter(t *testing.T, geo *stubGeocoder) (*Router, config.APIConfig) {
	t.Helper()
	cfg := config.APIConfig{
		JWTSecret:         "router-test-secret",
		TokenTTL:          24 * time.Hour,
		SearchLimit:       10,
		EnrichConcurrency: 2,
	}
	hash, err := crypto.HashPassword("123")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := memory.NewStore("admin", "Admin", hash)
	authSvc := auth.New(users, log, cfg)
	searchSvc := search.New(geo, stubWiki{}, log, cfg)
	return NewRouter(log, authSvc, searchSvc), cfg
}

func doJSON(t *testing.T, router *Router, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return payload
}

func TestLoginMissingFields(t *testing.T) {
	router, _ := newTestRouter(t, &stubGeocoder{})

	for _, body := range []string{`{}`, `{"email":"admin"}`, `{"password":"123"}`} {
		rec := doJSON(t, router, http.MethodPost, "/auth/login", body, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
		if msg := decodeBody(t, rec)["message"]; msg != "Email and password are required" {
			t.Fatalf("unexpected message: %v", msg)
		}
	}
}

func TestLoginInvalidCredentialsAreUniform(t *testing.T) {
	router, _ := newTestRouter(t, &stubGeocoder{})

	wrongPassword := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"admin","password":"nope"}`, "")
	unknownEmail := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"nobody","password":"123"}`, "")

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("responses differ: %s vs %s", wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

func TestLoginSuccessIssuesValidToken(t *testing.T) {
	router, cfg := newTestRouter(t, &stubGeocoder{})

	rec := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"admin","password":"123"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["message"] != "Login successful" {
		t.Fatalf("unexpected message: %v", payload["message"])
	}
	token, _ := payload["token"].(string)
	claims, err := jwtpkg.Parse(token, cfg.JWTSecret)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != 1 || claims.Email != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	user, _ := payload["user"].(map[string]any)
	if user == nil || user["email"] != "admin" || user["name"] != "Admin" {
		t.Fatalf("unexpected user payload: %v", payload["user"])
	}
	if _, present := user["password"]; present {
		t.Fatal("password leaked in login response")
	}
}

func TestProfileRequiresToken(t *testing.T) {
	router, cfg := newTestRouter(t, &stubGeocoder{})

	if rec := doJSON(t, router, http.MethodGet, "/auth/profile", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: expected 401, got %d", rec.Code)
	}

	forged, err := jwtpkg.Generate(1, "admin", "some-other-secret", cfg.TokenTTL)
	if err != nil {
		t.Fatalf("generate forged token: %v", err)
	}
	if rec := doJSON(t, router, http.MethodGet, "/auth/profile", "", forged); rec.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: expected 401, got %d", rec.Code)
	}

	expired, err := jwtpkg.Generate(1, "admin", cfg.JWTSecret, -time.Minute)
	if err != nil {
		t.Fatalf("generate expired token: %v", err)
	}
	if rec := doJSON(t, router, http.MethodGet, "/auth/profile", "", expired); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired token: expected 401, got %d", rec.Code)
	}
}

func TestProfileOmitsPassword(t *testing.T) {
	router, _ := newTestRouter(t, &stubGeocoder{})

	login := doJSON(t, router, http.MethodPost, "/auth/login", `{"email":"admin","password":"123"}`, "")
	token, _ := decodeBody(t, login)["token"].(string)

	rec := doJSON(t, router, http.MethodGet, "/auth/profile", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	payload := decodeBody(t, rec)
	if payload["email"] != "admin" || payload["name"] != "Admin" {
		t.Fatalf("unexpected profile: %v", payload)
	}
	for _, key := range []string{"password", "password_hash", "PasswordHash"} {
		if _, present := payload[key]; present {
			t.Fatalf("profile leaked %s", key)
		}
	}
}

func TestSearchRejectsEmptyQueryWithoutGeocoderCall(t *testing.T) {
	geo := &stubGeocoder{}
	router, _ := newTestRouter(t, geo)

	for _, body := range []string{`{}`, `{"query":""}`, `{"query":"   "}`} {
		rec := doJSON(t, router, http.MethodPost, "/search/", body, "")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
		if msg := decodeBody(t, rec)["error"]; msg != "Enter text to search" {
			t.Fatalf("unexpected error message: %v", msg)
		}
	}
	if geo.callCount() != 0 {
		t.Fatalf("geocoder called %d times for empty queries", geo.callCount())
	}
}

func TestSearchReturnsNormalizedPlaces(t *testing.T) {
	geo := &stubGeocoder{places: []geocode.Place{
		{PlaceID: 7, DisplayName: "Eiffel Tower, Paris", Lat: "48.85", Lon: "2.29"},
		{PlaceID: 8, DisplayName: "Louvre, Paris", Lat: "48.86", Lon: "2.33"},
	}}
	router, _ := newTestRouter(t, geo)

	rec := doJSON(t, router, http.MethodPost, "/search/", `{"query":"paris"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var places []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &places); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(places) != 2 {
		t.Fatalf("expected 2 places, got %d", len(places))
	}
	if places[0]["name"] != "Eiffel Tower" || places[1]["name"] != "Louvre" {
		t.Fatalf("unexpected order or names: %v", places)
	}
	if places[0]["rating"] != nil {
		t.Fatalf("rating must be null, got %v", places[0]["rating"])
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t, &stubGeocoder{})

	rec := doJSON(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if decodeBody(t, rec)["status"] != "ok" {
		t.Fatalf("unexpected health payload: %s", rec.Body.String())
	}
}
