package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestIsAllowedOrigin(t *testing.T) {
	tests := []struct {
		name           string
		origin         string
		allowedOrigins []string
		want           bool
	}{
		{
			name:           "exact match",
			origin:         "https://compare.example.com",
			allowedOrigins: []string{"https://compare.example.com"},
			want:           true,
		},
		{
			name:           "wildcard port",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{"http://localhost:*"},
			want:           true,
		},
		{
			name:           "matches second entry",
			origin:         "https://compare.example.com",
			allowedOrigins: []string{"http://localhost:*", "https://compare.example.com"},
			want:           true,
		},
		{
			name:           "no match",
			origin:         "http://evil.com",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "scheme must match",
			origin:         "https://localhost:5173",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "empty origin",
			origin:         "",
			allowedOrigins: []string{"http://localhost:*"},
			want:           false,
		},
		{
			name:           "empty allowed list",
			origin:         "http://localhost:5173",
			allowedOrigins: []string{},
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isAllowedOrigin(tt.origin, tt.allowedOrigins)
			if got != tt.want {
				t.Errorf("isAllowedOrigin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		origin     string
		method     string
		wantStatus int
		wantCORS   bool
	}{
		{name: "allowed origin GET", origin: "http://localhost:3000", method: "GET", wantStatus: http.StatusOK, wantCORS: true},
		{name: "allowed origin preflight", origin: "http://localhost:3000", method: "OPTIONS", wantStatus: http.StatusNoContent, wantCORS: true},
		{name: "disallowed origin", origin: "http://evil.com", method: "GET", wantStatus: http.StatusOK, wantCORS: false},
		{name: "no origin header", origin: "", method: "GET", wantStatus: http.StatusOK, wantCORS: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(CORSMiddleware([]string{"http://localhost:*"}))
			router.GET("/test", func(c *gin.Context) {
				c.String(http.StatusOK, "OK")
			})

			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			corsHeader := w.Header().Get("Access-Control-Allow-Origin")
			if tt.wantCORS {
				if corsHeader != tt.origin {
					t.Errorf("Access-Control-Allow-Origin = %s, want %s", corsHeader, tt.origin)
				}
				if w.Header().Get("Access-Control-Allow-Methods") == "" {
					t.Errorf("Access-Control-Allow-Methods not set")
				}
			} else if corsHeader != "" {
				t.Errorf("Access-Control-Allow-Origin should not be set, got %s", corsHeader)
			}
		})
	}
}

func newLimitedRouter(perMinute int) *gin.Engine {
	router := gin.New()
	router.Use(RateLimitMiddleware(perMinute))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	return router
}

func doFrom(router *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest("GET", "/test", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("rejects requests over the burst", func(t *testing.T) {
		router := newLimitedRouter(3)

		for i := 0; i < 3; i++ {
			if code := doFrom(router, "10.0.0.1:1234"); code != http.StatusOK {
				t.Fatalf("request %d: Status = %d, want %d", i+1, code, http.StatusOK)
			}
		}
		req := httptest.NewRequest("GET", "/test", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusTooManyRequests {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusTooManyRequests)
		}
		var response map[string]interface{}
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		if response["error"] != "Rate limit exceeded" {
			t.Errorf("error = %v, want 'Rate limit exceeded'", response["error"])
		}
		if w.Body.String() == "OK" {
			t.Errorf("handler ran after rate limit")
		}
	})

	t.Run("limits each IP separately", func(t *testing.T) {
		router := newLimitedRouter(1)

		if code := doFrom(router, "10.0.0.1:1234"); code != http.StatusOK {
			t.Errorf("first IP: Status = %d, want %d", code, http.StatusOK)
		}
		if code := doFrom(router, "10.0.0.2:1234"); code != http.StatusOK {
			t.Errorf("second IP: Status = %d, want %d", code, http.StatusOK)
		}
		if code := doFrom(router, "10.0.0.1:1234"); code != http.StatusTooManyRequests {
			t.Errorf("first IP again: Status = %d, want %d", code, http.StatusTooManyRequests)
		}
	})

	t.Run("disabled when not positive", func(t *testing.T) {
		router := newLimitedRouter(0)

		for i := 0; i < 100; i++ {
			if code := doFrom(router, "10.0.0.1:1234"); code != http.StatusOK {
				t.Fatalf("request %d: Status = %d, want %d", i+1, code, http.StatusOK)
			}
		}
	})
}

func TestIPRateLimiter_RefillsAndSweeps(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := newIPRateLimiter(60)
	limiter.now = func() time.Time { return now }

	for i := 0; i < 60; i++ {
		if !limiter.allow("10.0.0.1") {
			t.Fatalf("request %d denied within burst", i+1)
		}
	}
	if limiter.allow("10.0.0.1") {
		t.Fatal("request over burst allowed")
	}

	now = now.Add(time.Second)
	if !limiter.allow("10.0.0.1") {
		t.Error("token not refilled after one second")
	}

	now = now.Add(visitorIdleTimeout + time.Minute)
	limiter.allow("10.0.0.2")
	if _, ok := limiter.visitors["10.0.0.1"]; ok {
		t.Error("idle visitor not swept")
	}
}
