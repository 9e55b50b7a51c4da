package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"booklease/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubValidator struct {
	claims *service.Claims
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(token string) (*service.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		validator  *stubValidator
		wantStatus int
	}{
		{"missing header", "", &stubValidator{}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", &stubValidator{}, http.StatusUnauthorized},
		{"too many parts", "Bearer a b", &stubValidator{}, http.StatusUnauthorized},
		{"invalid token", "Bearer bad", &stubValidator{err: service.ErrInvalidToken}, http.StatusUnauthorized},
		{"valid token", "Bearer good", &stubValidator{claims: &service.Claims{UserID: 9, Email: "u@example.com"}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/me", AuthMiddleware(tt.validator), func(c *gin.Context) {
				id, ok := UserID(c)
				assert.True(t, ok)
				c.JSON(http.StatusOK, gin.H{"user_id": id, "email": c.GetString(ContextEmail)})
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantStatus == http.StatusOK {
				assert.EqualValues(t, 9, body["user_id"])
				assert.Equal(t, "good", tt.validator.seen)
				return
			}
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, GetRequestID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(HeaderXRequestID)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderXRequestID, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderXRequestID))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger))
	r.GET("/boom", func(c *gin.Context) {
		c.Set(ContextUserID, int64(5))
		c.Status(http.StatusInternalServerError)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom?x=1", nil))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "ERROR", line["level"])
	assert.Equal(t, "http_request", line["msg"])
	assert.Equal(t, "/boom", line["path"])
	assert.Equal(t, "x=1", line["query"])
	assert.EqualValues(t, 500, line["status"])
	assert.EqualValues(t, 5, line["user_id"])
	assert.NotEmpty(t, line["req_id"])
}

func TestUserRateLimiter_PerUserBuckets(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewUserRateLimiter(1, 2)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "burst exhausted")
	assert.True(t, l.Allow(2), "other users have their own bucket")

	clock = clock.Add(time.Second)
	assert.True(t, l.Allow(1), "refilled")
}

func TestUserRateLimiter_EvictsIdle(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewUserRateLimiter(1, 1)
	l.now = func() time.Time { return clock }

	l.Allow(1)
	l.Allow(2)
	clock = clock.Add(11 * time.Minute)
	l.Allow(3)

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.Len(t, l.limiters, 1)
	assert.Contains(t, l.limiters, int64(3))
}

func TestUserRateLimiter_Middleware(t *testing.T) {
	l := NewUserRateLimiter(0.001, 1)

	r := gin.New()
	r.POST("/rentals", func(c *gin.Context) { c.Set(ContextUserID, int64(1)); c.Next() }, l.Middleware(),
		func(c *gin.Context) { c.Status(http.StatusCreated) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rentals", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/rentals", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, false, decode(t, w)["success"])
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:3000"}))
	r.GET("/books", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/books", nil)
	req.Header.Set("Origin", "http://evil.example")
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodOptions, "/books", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
