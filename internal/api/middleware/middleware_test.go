package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

func identityHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := GetUserID(r.Context())
		require.True(t, ok)
		handlers.RespondJSON(w, http.StatusOK, map[string]interface{}{"id": id, "admin": IsAdmin(r.Context())})
	})
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		userID     string
		role       string
		wantStatus int
		wantAdmin  bool
	}{
		{"user", "7", "", http.StatusOK, false},
		{"admin any case", "7", "admin", http.StatusOK, true},
		{"unknown role is user", "7", "root", http.StatusOK, false},
		{"missing id", "", "ADMIN", http.StatusUnauthorized, false},
		{"non numeric id", "abc", "", http.StatusUnauthorized, false},
		{"negative id", "-1", "", http.StatusUnauthorized, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.userID != "" {
				req.Header.Set(HeaderUserID, tt.userID)
			}
			if tt.role != "" {
				req.Header.Set(HeaderUserRole, tt.role)
			}
			rec := httptest.NewRecorder()

			Auth(identityHandler(t)).ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				var body handlers.ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tt.wantStatus, body.Code)
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantAdmin, body["admin"])
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	h := Auth(RequireAdmin(identityHandler(t)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderUserID, "7")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.Header.Set(HeaderUserRole, "ADMIN")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeHTTPMetrics struct{ got []recordedRequest }

func (m *fakeHTTPMetrics) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	m.got = append(m.got, recordedRequest{method, route, status})
}

func TestMetricsMiddleware_UsesRouteTemplate(t *testing.T) {
	m := &fakeHTTPMetrics{}
	r := mux.NewRouter()
	r.Use(MetricsMiddleware(m))
	r.HandleFunc("/appointments/{id}", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondNotFound(w, "нет")
	}).Methods(http.MethodGet)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/appointments/42", nil))

	require.Len(t, m.got, 1)
	assert.Equal(t, recordedRequest{http.MethodGet, "/appointments/{id}", http.StatusNotFound}, m.got[0])
}

type memCounter struct {
	counts map[string]int64
	err    error
}

func (c *memCounter) Incr(_ context.Context, key string, _ time.Duration) (int64, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	return c.counts[key], nil
}

type nopLogger struct{}

func (nopLogger) Warn(string, ...interface{}) {}

func TestRateLimit(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusCreated) })

	call := func(h http.Handler, userID string) int {
		req := httptest.NewRequest(http.MethodPost, "/appointments", nil)
		req.Header.Set(HeaderUserID, userID)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	t.Run("per user limit", func(t *testing.T) {
		h := Auth(RateLimit(&memCounter{}, "booking", 2, time.Minute, nopLogger{})(ok))

		assert.Equal(t, http.StatusCreated, call(h, "7"))
		assert.Equal(t, http.StatusCreated, call(h, "7"))
		assert.Equal(t, http.StatusTooManyRequests, call(h, "7"))
		assert.Equal(t, http.StatusCreated, call(h, "8"))
	})

	t.Run("counter failure lets requests through", func(t *testing.T) {
		h := Auth(RateLimit(&memCounter{err: errors.New("redis down")}, "booking", 1, time.Minute, nopLogger{})(ok))

		assert.Equal(t, http.StatusCreated, call(h, "7"))
		assert.Equal(t, http.StatusCreated, call(h, "7"))
	})
}
