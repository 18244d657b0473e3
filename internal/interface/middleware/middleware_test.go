package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/pkg/apperror"
	"github.com/oksasatya/go-books-api/pkg/response"
)

func init() { gin.SetMode(gin.TestMode) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newEngine(dev bool) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), Recovery(quietLogger(), dev, nil), ErrorHandler(quietLogger(), dev))
	r.NoRoute(NotFound())
	return r
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

type authFunc func(ctx context.Context, header string) (*entity.User, error)

func (f authFunc) Authenticate(ctx context.Context, header string) (*entity.User, error) {
	return f(ctx, header)
}

func TestProtect(t *testing.T) {
	auth := authFunc(func(_ context.Context, header string) (*entity.User, error) {
		if header == "Bearer good" {
			return &entity.User{ID: "u1", Name: "Bulba"}, nil
		}
		return nil, apperror.Unauthenticated("You are not logged in! Please log in to get access.")
	})
	reached := false
	r := newEngine(false)
	r.GET("/p", Protect(auth), func(c *gin.Context) {
		reached = true
		c.String(http.StatusOK, CurrentUser(c).Name)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/p", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	assert.Equal(t, "fail", env.Status)
	assert.Equal(t, "You are not logged in! Please log in to get access.", env.Message)
	assert.False(t, reached)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bulba", w.Body.String())
}

func TestErrorHandler_OperationalWithViolations(t *testing.T) {
	r := newEngine(false)
	r.GET("/v", func(c *gin.Context) {
		_ = c.Error(apperror.Validation("Invalid input data. title is required",
			apperror.Violation{Field: "title", Message: "is required"}))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `[{"field":"title","message":"is required"}]`, string(mustField(t, w, "errors")))
	assert.Empty(t, decode(t, w).Error)
}

func mustField(t *testing.T, w *httptest.ResponseRecorder, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	v, ok := m[key]
	require.True(t, ok, "missing %q in %s", key, w.Body.String())
	return v
}

func TestErrorHandler_FaultHiddenOutsideDevelopment(t *testing.T) {
	for _, dev := range []bool{false, true} {
		r := newEngine(dev)
		r.GET("/f", func(c *gin.Context) { _ = c.Error(errors.New("pq: connection refused")) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/f", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decode(t, w)
		assert.Equal(t, "error", env.Status)
		if dev {
			assert.Equal(t, "pq: connection refused", env.Error)
		} else {
			assert.Equal(t, MsgInternal, env.Message)
			assert.NotContains(t, w.Body.String(), "connection refused")
		}
	}
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	newEngine(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Can't find /api/v1/nope on this server", decode(t, w).Message)
}

func TestRecovery(t *testing.T) {
	var got any
	r := gin.New()
	r.Use(Recovery(quietLogger(), false, func(rec any) { got = rec }))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, MsgInternal, decode(t, w).Message)
	assert.Equal(t, "boom", got)
}

func TestRecovery_DevelopmentIncludesStack(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(quietLogger(), true, nil))
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	env := decode(t, w)
	assert.Equal(t, "boom", env.Message)
	assert.NotEmpty(t, env.Stack)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(16))
	r.POST("/", func(c *gin.Context) {
		_, err := io.ReadAll(c.Request.Body)
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 17))))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 64)))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "0d7c3b1e-0000-4000-8000-000000000001")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "0d7c3b1e-0000-4000-8000-000000000001", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "<script>")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "<script>", w.Body.String())
}

func TestRealIP(t *testing.T) {
	for _, trust := range []bool{true, false} {
		r := gin.New()
		_ = r.SetTrustedProxies(nil)
		r.Use(RealIP(trust))
		r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.5:1234"
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if trust {
			assert.Equal(t, "203.0.113.7", w.Body.String())
		} else {
			assert.Equal(t, "10.0.0.5", w.Body.String())
		}
	}
}

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(nil, 1, 0, KeyByIP(), nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAllowPrivateIP(t *testing.T) {
	allow := AllowPrivateIP()
	for ip, want := range map[string]bool{"10.1.2.3": true, "127.0.0.1": true, "203.0.113.7": false} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set("real_ip", ip)
		assert.Equal(t, want, allow(c), ip)
	}
}

func TestAllowPreflight(t *testing.T) {
	allow := AllowPreflight()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	c.Request.Header.Set("Access-Control-Request-Method", "POST")
	assert.True(t, allow(c))

	c.Request = httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	assert.False(t, allow(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	assert.False(t, allow(c))
}

func TestAnyOf(t *testing.T) {
	yes := func(*gin.Context) bool { return true }
	no := func(*gin.Context) bool { return false }
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.True(t, AnyOf(no, nil, yes)(c))
	assert.False(t, AnyOf(no, nil)(c))
	assert.False(t, AnyOf()(c))
}

func TestParseHit(t *testing.T) {
	n, ttl := parseHit([]any{int64(3), int64(1500)})
	assert.Equal(t, 3, n)
	assert.Equal(t, 1500*time.Millisecond, ttl)

	n, ttl = parseHit("garbage")
	assert.Zero(t, n)
	assert.Zero(t, ttl)
}
