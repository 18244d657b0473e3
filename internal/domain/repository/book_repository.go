package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/query"
)

// BookPatch lists the attributes a partial update may change; nil means
// unchanged.
type BookPatch struct {
	Title            *string
	PageCount        *int
	PublishedDate    *time.Time
	ThumbnailURL     *string
	ShortDescription *string
	LongDescription  *string
	Status           *entity.BookStatus
	Authors          *[]string
}

func (p BookPatch) Empty() bool {
	return p.Title == nil && p.PageCount == nil && p.PublishedDate == nil &&
		p.ThumbnailURL == nil && p.ShortDescription == nil && p.LongDescription == nil &&
		p.Status == nil && p.Authors == nil
}

// BookRepository defines the interface for resource store operations.
type BookRepository interface {
	Create(ctx context.Context, b *entity.Book) error
	List(ctx context.Context, d query.Descriptor) ([]entity.Book, error)
	GetByID(ctx context.Context, id string) (*entity.Book, error)
	Update(ctx context.Context, id string, p BookPatch) (*entity.Book, error)
	Delete(ctx context.Context, id string) error
}
