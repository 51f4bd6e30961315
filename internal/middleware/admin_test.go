package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAdminRouter(apiKey string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	admin := NewAdminMiddleware(apiKey)
	router.POST("/admin", admin.RequireAdminAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAdminMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		setRequest func(r *http.Request)
		wantStatus int
	}{
		{
			name:       "bearer token accepted",
			apiKey:     "secret",
			setRequest: func(r *http.Request) { r.Header.Set("Authorization", "Bearer secret") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "x-api-key header accepted",
			apiKey:     "secret",
			setRequest: func(r *http.Request) { r.Header.Set("X-API-Key", "secret") },
			wantStatus: http.StatusOK,
		},
		{
			name:       "query parameter accepted",
			apiKey:     "secret",
			setRequest: func(r *http.Request) { r.URL.RawQuery = "api_key=secret" },
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong key rejected",
			apiKey:     "secret",
			setRequest: func(r *http.Request) { r.Header.Set("X-API-Key", "guess") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no key rejected",
			apiKey:     "secret",
			setRequest: func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unconfigured key locks the surface",
			apiKey:     "",
			setRequest: func(r *http.Request) { r.Header.Set("X-API-Key", "") },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAdminRouter(tt.apiKey)
			req := httptest.NewRequest(http.MethodPost, "/admin", nil)
			tt.setRequest(req)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
