package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/minnehack2026-blugolds/backend/config"
	"github.com/minnehack2026-blugolds/backend/internal/testutil"
	"github.com/minnehack2026-blugolds/backend/router"
	"github.com/minnehack2026-blugolds/backend/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	t      *testing.T
	app    *fiber.App
	db     *gorm.DB
	tokens *utils.TokenManager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.OpenDB(t)
	cfg := &config.Config{
		AppEnv:           "test",
		CORSAllowOrigins: []string{"http://localhost:5173"},
		CORSAllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		CORSAllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		UploadDir:        t.TempDir(),
		JWTExpiration:    time.Hour,
	}
	tokens := utils.NewTokenManager("test-secret", cfg.JWTExpiration)
	app := router.New(router.Deps{Config: cfg, DB: db, Log: zap.NewNop(), Tokens: tokens})
	return &testServer{t: t, app: app, db: db, tokens: tokens}
}

type response struct {
	Status  int
	Body    []byte
	Cookies []*http.Cookie
}

func (r response) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("decode %s: %v", r.Body, err)
	}
}

func (r response) cookie(name string) *http.Cookie {
	for _, c := range r.Cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// request sends body as JSON, authenticated as userID unless it is 0.
func (s *testServer) request(method, path string, body interface{}, userID uint, headers ...string) response {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		token, err := s.tokens.Generate(userID)
		if err != nil {
			s.t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	return s.send(req)
}

func (s *testServer) send(req *http.Request) response {
	s.t.Helper()
	resp, err := s.app.Test(req, -1)
	if err != nil {
		s.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		s.t.Fatalf("read body: %v", err)
	}
	return response{Status: resp.StatusCode, Body: raw, Cookies: resp.Cookies()}
}

func expectStatus(t *testing.T, r response, want int) {
	t.Helper()
	if r.Status != want {
		t.Fatalf("status = %d, want %d (body %s)", r.Status, want, r.Body)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	expectStatus(t, s.request(http.MethodGet, "/health", nil, 0), http.StatusOK)

	r := s.request(http.MethodGet, "/nowhere", nil, 0)
	expectStatus(t, r, http.StatusNotFound)
	var envelope struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	r.decode(t, &envelope)
	if envelope.Success || envelope.Message != "Not Found" {
		t.Errorf("404 envelope = %+v", envelope)
	}
}
