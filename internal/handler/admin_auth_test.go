package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/config"
	"github.com/strokedoutsasquatch-creator/kreaite-sub005/internal/model"
)

func adminRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/admin/token/invalidate", mw, func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAdminAuthMiddlewareWith(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		token   string
		headers map[string]string
		want    int
	}{
		{"required missing token", "required", "secret", nil, http.StatusUnauthorized},
		{"required invalid token", "required", "secret", map[string]string{"Authorization": "Bearer wrong"}, http.StatusUnauthorized},
		{"required bearer token", "required", "secret", map[string]string{"Authorization": "Bearer secret"}, http.StatusOK},
		{"required lowercase bearer", "required", "secret", map[string]string{"Authorization": "bearer secret"}, http.StatusOK},
		{"required header token", "required", "secret", map[string]string{"X-Admin-Token": "secret"}, http.StatusOK},
		{"required empty expected", "required", "", map[string]string{"X-Admin-Token": "x"}, http.StatusServiceUnavailable},
		{"optional without token", "optional", "secret", nil, http.StatusOK},
		{"optional with wrong token", "optional", "secret", map[string]string{"X-Admin-Token": "nope"}, http.StatusUnauthorized},
		{"disabled", "disabled", "", nil, http.StatusOK},
		{"mode is case-insensitive", " DISABLED ", "", nil, http.StatusOK},
		{"unknown mode acts as required", "sometimes", "secret", nil, http.StatusUnauthorized},
		{"empty mode acts as required", "", "secret", map[string]string{"X-Admin-Token": "secret"}, http.StatusOK},
		{"authorization without scheme", "required", "secret", map[string]string{"Authorization": "secret"}, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := adminRouter(AdminAuthMiddlewareWith(tt.mode, tt.token))

			req := httptest.NewRequest(http.MethodPost, "/admin/token/invalidate", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, w.Code)
			}
		})
	}
}

func TestAdminAuthMiddleware_UsesSettings(t *testing.T) {
	r := adminRouter(AdminAuthMiddleware(&config.Settings{AdminAuthMode: "required", AdminToken: "from-settings"}))

	req := httptest.NewRequest(http.MethodPost, "/admin/token/invalidate", nil)
	req.Header.Set("Authorization", "Bearer from-settings")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, w.Code)
	}
}

func TestParseAdminAuthMode(t *testing.T) {
	tests := []struct {
		in    string
		want  AdminAuthMode
		known bool
	}{
		{"required", AdminAuthRequired, true},
		{" Optional ", AdminAuthOptional, true},
		{"DISABLED", AdminAuthDisabled, true},
		{"", AdminAuthRequired, true},
		{"off", AdminAuthRequired, false},
	}
	for _, tt := range tests {
		got, known := ParseAdminAuthMode(tt.in)
		if got != tt.want || known != tt.known {
			t.Fatalf("ParseAdminAuthMode(%q) = %q, %v; want %q, %v", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestAdminAuthMiddleware_ErrorBody(t *testing.T) {
	r := adminRouter(AdminAuthMiddlewareWith("required", "secret"))

	req := httptest.NewRequest(http.MethodPost, "/admin/token/invalidate", nil)
	req.Header.Set("X-Admin-Token", "wrong")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body model.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != "invalid admin token" {
		t.Fatalf("unexpected error body %q", w.Body.String())
	}
}
