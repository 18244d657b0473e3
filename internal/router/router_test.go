package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-books-api/config"
	"github.com/oksasatya/go-books-api/internal/container"
	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/query"
	repo "github.com/oksasatya/go-books-api/internal/domain/repository"
	"github.com/oksasatya/go-books-api/pkg/helpers"
)

type oneUser struct{ u *entity.User }

func (s *oneUser) Create(_ context.Context, u *entity.User) error {
	u.ID = uuid.NewString()
	s.u = u
	return nil
}

func (s *oneUser) GetByID(_ context.Context, id string) (*entity.User, error) {
	if s.u != nil && s.u.ID == id {
		return s.u, nil
	}
	return nil, repo.ErrNotFound
}

func (s *oneUser) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	if s.u != nil && s.u.Email == email {
		return s.u, nil
	}
	return nil, repo.ErrNotFound
}

type bookMap map[string]entity.Book

func (m bookMap) Create(_ context.Context, b *entity.Book) error {
	b.ID = uuid.NewString()
	m[b.ID] = *b
	return nil
}

func (m bookMap) List(context.Context, query.Descriptor) ([]entity.Book, error) {
	out := []entity.Book{}
	for _, b := range m {
		out = append(out, b)
	}
	return out, nil
}

func (m bookMap) GetByID(_ context.Context, id string) (*entity.Book, error) {
	if b, ok := m[id]; ok {
		return &b, nil
	}
	return nil, repo.ErrNotFound
}

func (m bookMap) Update(_ context.Context, id string, _ repo.BookPatch) (*entity.Book, error) {
	return m.GetByID(context.Background(), id)
}

func (m bookMap) Delete(_ context.Context, id string) error {
	if _, ok := m[id]; !ok {
		return repo.ErrNotFound
	}
	delete(m, id)
	return nil
}

func setup(t *testing.T, onPanic func(any), opts ...func(*config.Config)) (*gin.Engine, *Registry, bookMap) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		AppName:          "books-test",
		Env:              "production",
		BcryptCost:       4,
		BodyLimitBytes:   10 << 10,
		UploadLimitBytes: 1 << 20,
		DocsURL:          "https://docs.example.com",
		RateLimitMax:     100,
		RateLimitWindow:  time.Hour,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetJWT(helpers.NewJWTManager("router-secret", time.Hour))
	container.SetRedis(nil)
	container.SetES(nil)
	container.SetGCS(nil)
	container.SetRabbitPub(nil)

	books := bookMap{}
	engine, reg := NewEngine(onPanic)
	InitModulesWith(reg, Stores{Users: &oneUser{}, Books: books})
	reg.RegisterAll()
	return engine, reg, books
}

func call(engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestRoutes_EndToEnd(t *testing.T) {
	engine, _, books := setup(t, nil)

	w := call(engine, http.MethodPost, "/api/v1/users/signup", "", map[string]any{
		"name": "Bulba", "email": "bulba@example.com", "password": "test1234", "passwordConfirm": "test1234",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var signup struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = call(engine, http.MethodPost, "/api/v1/books", signup.Token, map[string]any{
		"title": "Test Book One", "pageCount": 200, "shortDescription": "s", "longDescription": "l", "status": "PUBLISHED",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, books, 1)
	var id string
	for k := range books {
		id = k
	}

	w = call(engine, http.MethodDelete, "/api/v1/books/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Len(t, books, 1)

	w = call(engine, http.MethodGet, "/api/v1/books", signup.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":1`)

	w = call(engine, http.MethodDelete, "/api/v1/books/"+id, signup.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, books)

	w = call(engine, http.MethodGet, "/api/v1/books/search?q=go", signup.Token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRoutes_RootAndNotFound(t *testing.T) {
	engine, _, _ := setup(t, nil)

	w := call(engine, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://docs.example.com")

	w = call(engine, http.MethodGet, "/api/v1/authors", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Can't find /api/v1/authors on this server")

	w = call(engine, http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRoutes_DebugVarsWhenEnabled(t *testing.T) {
	engine, _, _ := setup(t, nil, func(c *config.Config) { c.DebugMetricsEnabled = true })

	w := call(engine, http.MethodGet, "/api/debug/vars", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"books_api"`)
}

func TestRoutes_PanicTriggersCallback(t *testing.T) {
	panicked := make(chan any, 1)
	engine, reg, _ := setup(t, func(rec any) { panicked <- rec })
	reg.API.GET("/boom", func(*gin.Context) { panic("kaboom") })

	w := call(engine, http.MethodGet, "/api/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something went very wrong!")
	select {
	case rec := <-panicked:
		assert.Equal(t, "kaboom", rec)
	default:
		t.Fatal("onPanic was not called")
	}
}
