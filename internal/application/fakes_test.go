package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/query"
	repo "github.com/oksasatya/go-books-api/internal/domain/repository"
	"github.com/oksasatya/go-books-api/pkg/helpers"
)

type fakeUsers struct {
	CreateFn     func(ctx context.Context, u *entity.User) error
	GetByIDFn    func(ctx context.Context, id string) (*entity.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*entity.User, error)
}

func (f *fakeUsers) Create(ctx context.Context, u *entity.User) error { return f.CreateFn(ctx, u) }
func (f *fakeUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return f.GetByEmailFn(ctx, email)
}

type fakeTokens struct {
	IssueFn  func(subject string) (string, time.Time, error)
	VerifyFn func(ctx context.Context, token string) (helpers.VerifiedToken, error)
}

func (f *fakeTokens) Issue(subject string) (string, time.Time, error) { return f.IssueFn(subject) }
func (f *fakeTokens) Verify(ctx context.Context, token string) (helpers.VerifiedToken, error) {
	return f.VerifyFn(ctx, token)
}

type fakePublisher struct {
	bodies []any
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.bodies = append(f.bodies, body)
	return f.err
}

type fakeBooks struct {
	CreateFn  func(ctx context.Context, b *entity.Book) error
	ListFn    func(ctx context.Context, d query.Descriptor) ([]entity.Book, error)
	GetByIDFn func(ctx context.Context, id string) (*entity.Book, error)
	UpdateFn  func(ctx context.Context, id string, p repo.BookPatch) (*entity.Book, error)
	DeleteFn  func(ctx context.Context, id string) error
}

func (f *fakeBooks) Create(ctx context.Context, b *entity.Book) error { return f.CreateFn(ctx, b) }
func (f *fakeBooks) List(ctx context.Context, d query.Descriptor) ([]entity.Book, error) {
	return f.ListFn(ctx, d)
}
func (f *fakeBooks) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	return f.GetByIDFn(ctx, id)
}
func (f *fakeBooks) Update(ctx context.Context, id string, p repo.BookPatch) (*entity.Book, error) {
	return f.UpdateFn(ctx, id, p)
}
func (f *fakeBooks) Delete(ctx context.Context, id string) error { return f.DeleteFn(ctx, id) }

type mapCache struct {
	m           map[string]entity.Book
	gens        map[string]int64
	invalidated []string
}

func newMapCache() *mapCache {
	return &mapCache{m: map[string]entity.Book{}, gens: map[string]int64{}}
}

func (c *mapCache) Get(_ context.Context, id string) (*entity.Book, bool, error) {
	b, ok := c.m[id]
	if !ok {
		return nil, false, nil
	}
	return &b, true, nil
}

func (c *mapCache) Generation(_ context.Context, id string) (int64, error) {
	return c.gens[id], nil
}

func (c *mapCache) Set(_ context.Context, b *entity.Book, gen int64) error {
	if c.gens[b.ID] == gen {
		c.m[b.ID] = *b
	}
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, id string) error {
	delete(c.m, id)
	c.gens[id]++
	c.invalidated = append(c.invalidated, id)
	return nil
}

type fakeIndex struct {
	indexed []string
	deleted []string
	results []entity.Book
	lastQ   string
}

func (x *fakeIndex) Index(_ context.Context, b *entity.Book) error {
	x.indexed = append(x.indexed, b.ID)
	return nil
}

func (x *fakeIndex) Delete(_ context.Context, id string) error {
	x.deleted = append(x.deleted, id)
	return nil
}

func (x *fakeIndex) Search(_ context.Context, q string, _ int) ([]entity.Book, error) {
	x.lastQ = q
	return x.results, nil
}

type fakeThumbs struct {
	url         string
	contentType string
	data        []byte
}

func (f *fakeThumbs) Upload(_ context.Context, _ string, contentType string, r io.Reader) (string, error) {
	f.contentType = contentType
	f.data, _ = io.ReadAll(r)
	return f.url, nil
}
