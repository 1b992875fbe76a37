package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]struct {
		origin     string
		originEnv  string
		wantStatus int
		wantAllow  string
	}{
		"default origin allowed": {
			origin:     "http://localhost:3000",
			wantStatus: http.StatusOK,
			wantAllow:  "http://localhost:3000",
		},
		"unknown origin rejected": {
			origin:     "http://evil.example",
			wantStatus: http.StatusForbidden,
		},
		"configured origin allowed": {
			origin:     "https://dashboard.example",
			originEnv:  "https://dashboard.example",
			wantStatus: http.StatusOK,
			wantAllow:  "https://dashboard.example",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if tc.originEnv != "" {
				t.Setenv("ORIGIN_URL", tc.originEnv)
			}

			router := gin.New()
			router.Use(CORSMiddleware())
			router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tc.origin)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantAllow != "" {
				assert.Equal(t, tc.wantAllow, w.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
