package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/pkg/helpers"
)

// TokenService signs and checks bearer tokens. Verify returns
// helpers.ErrTokenExpired for expired tokens and helpers.ErrTokenInvalid for
// everything else.
type TokenService interface {
	Issue(subject string) (string, time.Time, error)
	Verify(ctx context.Context, token string) (helpers.VerifiedToken, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// JobPublisher queues background jobs (welcome emails).
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// BookCache is an optional read-through cache for single books. Readers take
// the Generation before loading from the store and pass it to Set; Set is a
// no-op once Invalidate has run in between.
type BookCache interface {
	Get(ctx context.Context, id string) (*entity.Book, bool, error)
	Generation(ctx context.Context, id string) (int64, error)
	Set(ctx context.Context, b *entity.Book, gen int64) error
	Invalidate(ctx context.Context, id string) error
}

// BookIndex is the optional full-text search index.
type BookIndex interface {
	Index(ctx context.Context, b *entity.Book) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, q string, size int) ([]entity.Book, error)
}

// ThumbnailStore uploads cover images and returns their public URL.
type ThumbnailStore interface {
	Upload(ctx context.Context, bookID, contentType string, r io.Reader) (string, error)
}
