package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMetricsAuthMiddleware_DisabledWhenUnconfigured(t *testing.T) {
	handler := NewMetricsAuthMiddleware("", "").Handler(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsAuthMiddleware_RequiresCredentials(t *testing.T) {
	handler := NewMetricsAuthMiddleware("metrics", "secret").Handler(okHandler())

	tests := []struct {
		name     string
		username string
		password string
		setAuth  bool
		want     int
	}{
		{"no credentials", "", "", false, http.StatusUnauthorized},
		{"wrong username", "wrong", "secret", true, http.StatusUnauthorized},
		{"wrong password", "metrics", "wrong", true, http.StatusUnauthorized},
		{"valid", "metrics", "secret", true, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/metrics", nil)
			if tt.setAuth {
				r.SetBasicAuth(tt.username, tt.password)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, r)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusUnauthorized {
				assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")
			}
		})
	}
}
