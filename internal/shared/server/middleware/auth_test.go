package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"flash-backend/internal/shared/auth"
)

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth("dev"))
	router.OPTIONS("/api/v1/flash", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/flash", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthIdentities(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := auth.SignJWT(auth.Claims{Sub: "user-7", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	tests := []struct {
		name      string
		path      string
		header    string
		value     string
		wantCode  int
		wantUser  string
		wantGuest bool
	}{
		{name: "bearer", path: "/api/v1/flash/state", header: "Authorization", value: "Bearer " + token, wantCode: http.StatusOK, wantUser: "user-7"},
		{name: "guest", path: "/api/v1/flash/state", header: "X-Guest-Id", value: "g1", wantCode: http.StatusOK, wantUser: "guest:g1", wantGuest: true},
		{name: "guest with slash", path: "/api/v1/flash/state", header: "X-Guest-Id", value: "../g1", wantCode: http.StatusUnauthorized},
		{name: "bad bearer", path: "/api/v1/flash/state", header: "Authorization", value: "Bearer nope", wantCode: http.StatusUnauthorized},
		{name: "missing", path: "/api/v1/flash/state", wantCode: http.StatusUnauthorized},
		{name: "health is public", path: "/api/v1/health", wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Auth("dev"))
			var gotUser string
			var gotGuest bool
			handler := func(c *gin.Context) {
				gotUser = UserIDFromContext(c)
				gotGuest = IsGuest(c)
				c.Status(http.StatusOK)
			}
			router.GET("/api/v1/flash/state", handler)
			router.GET("/api/v1/health", handler)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.Code)
			}
			if gotUser != tt.wantUser {
				t.Fatalf("expected user %q, got %q", tt.wantUser, gotUser)
			}
			if gotGuest != tt.wantGuest {
				t.Fatalf("expected guest=%v, got %v", tt.wantGuest, gotGuest)
			}
		})
	}
}
