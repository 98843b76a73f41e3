package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"skincare-backend/internal/shared/auth"
	"skincare-backend/internal/shared/config"
	"skincare-backend/internal/shared/server/middleware"
)

type analyzeStub struct{}

func (analyzeStub) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
	rg.GET("/analyses", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"success": true}) })
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	verifier, err := auth.NewVerifier(auth.Options{Env: "test", Secret: "router-secret"})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	r := NewRouter(RouterDeps{
		Config: config.Config{
			Env:             "test",
			CORSAllowOrigin: []string{"http://localhost:8081"},
			MaxBodyBytes:    1 << 20,
			AIRatePerMinute: 1,
			AIRateBurst:     1,
		},
		Verifier:        verifier,
		Health:          func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) },
		AnalysisHandler: analyzeStub{},
		RateLimiter:     middleware.NewRateLimiter(nil),
	})
	return r, verifier
}

func bearer(t *testing.T, v *auth.Verifier, sub, email string) string {
	t.Helper()
	token, err := v.Sign(auth.Claims{Email: email, RegisteredClaims: jwt.RegisteredClaims{Subject: sub}})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	return "Bearer " + token
}

func TestRouterPublicRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.Code)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), "analysis_saved_total") {
		t.Fatalf("unexpected /metrics response: %d %s", resp.Code, resp.Body.String())
	}
}

func TestRouterAPIRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/analyses", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestRouterMeEchoesIdentity(t *testing.T) {
	r, v := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", bearer(t, v, "user-7", "u7@example.com"))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["userId"] != "user-7" || body.Data["email"] != "u7@example.com" {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestRouterRateLimitsAIRoutesOnly(t *testing.T) {
	r, v := newTestRouter(t)
	token := bearer(t, v, "user-1", "")

	call := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader("{}"))
		req.Header.Set("Authorization", token)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp
	}

	if resp := call(http.MethodPost, "/api/analyze"); resp.Code != http.StatusOK {
		t.Fatalf("expected first analyze to pass, got %d", resp.Code)
	}
	resp := call(http.MethodPost, "/api/analyze")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	for i := 0; i < 3; i++ {
		if resp := call(http.MethodGet, "/api/analyses"); resp.Code != http.StatusOK {
			t.Fatalf("expected list to be unlimited, got %d", resp.Code)
		}
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
