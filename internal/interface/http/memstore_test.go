package handlers

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/query"
	repo "github.com/oksasatya/go-books-api/internal/domain/repository"
	"github.com/oksasatya/go-books-api/pkg/apperror"
)

// memUsers and memBooks stand in for the Postgres stores. memBooks understands
// the title and pageCount attributes of a descriptor.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUsers() *memUsers { return &memUsers{users: map[string]*entity.User{}} }

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return apperror.Conflict(`Duplicate field value: "` + u.Email + `". Please use another value!`)
		}
	}
	u.ID = uuid.NewString()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

type memBooks struct {
	mu    sync.Mutex
	books []entity.Book
	clock time.Time
}

func newMemBooks() *memBooks {
	return &memBooks{clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memBooks) Create(_ context.Context, b *entity.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.books {
		if x.Title == b.Title {
			return apperror.Conflict(`Duplicate field value: "` + b.Title + `". Please use another value!`)
		}
	}
	m.clock = m.clock.Add(time.Second)
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = m.clock, m.clock
	m.books = append(m.books, *b)
	return nil
}

func (m *memBooks) List(_ context.Context, d query.Descriptor) ([]entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Book
	for _, b := range m.books {
		if matches(b, d.Conditions()) {
			out = append(out, b)
		}
	}
	keys := d.Sort()
	slices.SortStableFunc(out, func(a, b entity.Book) int {
		for _, k := range keys {
			c := compareField(a, b, k.Field)
			if k.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	start := min(d.Offset(), len(out))
	end := min(start+d.Limit(), len(out))
	return out[start:end], nil
}

func matches(b entity.Book, conds []query.Condition) bool {
	for _, c := range conds {
		switch c.Field {
		case "title":
			if c.Op == query.OpEq && b.Title != c.Value {
				return false
			}
		case "pageCount":
			n, _ := strconv.Atoi(c.Value)
			ok := map[query.Operator]bool{
				query.OpEq:  b.PageCount == n,
				query.OpGte: b.PageCount >= n,
				query.OpGt:  b.PageCount > n,
				query.OpLte: b.PageCount <= n,
				query.OpLt:  b.PageCount < n,
			}[c.Op]
			if !ok {
				return false
			}
		}
	}
	return true
}

func compareField(a, b entity.Book, field string) int {
	switch field {
	case "title":
		return strings.Compare(a.Title, b.Title)
	case "pageCount":
		return a.PageCount - b.PageCount
	}
	return 0
}

func (m *memBooks) GetByID(_ context.Context, id string) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.books {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memBooks) Update(_ context.Context, id string, p repo.BookPatch) (*entity.Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.books {
		b := &m.books[i]
		if b.ID != id {
			continue
		}
		if p.Title != nil {
			b.Title = *p.Title
		}
		if p.PageCount != nil {
			b.PageCount = *p.PageCount
		}
		if p.Status != nil {
			b.Status = *p.Status
		}
		if p.ThumbnailURL != nil {
			b.ThumbnailURL = *p.ThumbnailURL
		}
		cp := *b
		return &cp, nil
	}
	return nil, repo.ErrNotFound
}

func (m *memBooks) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, b := range m.books {
		if b.ID == id {
			m.books = slices.Delete(m.books, i, i+1)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (m *memBooks) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.books)
}
