package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/query"
	"github.com/oksasatya/go-books-api/internal/domain/repository"
)

type BookRepository struct {
	db DBTX
}

func NewBookRepository(db DBTX) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(ctx context.Context, b *entity.Book) error {
	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}
	row := r.db.QueryRow(ctx, `
		INSERT INTO books (title, page_count, published_date, thumbnail_url,
		                   short_description, long_description, status, authors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id::text, created_at, updated_at
	`, strings.TrimSpace(b.Title), b.PageCount, b.PublishedDate, b.ThumbnailURL,
		b.ShortDescription, b.LongDescription, string(b.Status), authors)

	if err := row.Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("insert book: %w", mapError(err))
	}
	b.Title = strings.TrimSpace(b.Title)
	b.Authors = authors
	return nil
}

// List runs a descriptor. Only projected columns are read; the remaining
// fields of each returned book are zero.
func (r *BookRepository) List(ctx context.Context, d query.Descriptor) ([]entity.Book, error) {
	sql, args, fields := buildListQuery(d)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", mapError(err))
	}
	defer rows.Close()

	books := make([]entity.Book, 0)
	for rows.Next() {
		var b entity.Book
		if err := rows.Scan(scanTargets(&b, fields)...); err != nil {
			return nil, fmt.Errorf("scan book: %w", mapError(err))
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list books: %w", mapError(err))
	}
	return books, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id string) (*entity.Book, error) {
	b := &entity.Book{}
	row := r.db.QueryRow(ctx,
		"SELECT "+selectList(bookFieldOrder)+" FROM books WHERE id = CAST($1::text AS uuid)", id)
	if err := row.Scan(scanTargets(b, bookFieldOrder)...); err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *BookRepository) Update(ctx context.Context, id string, p repository.BookPatch) (*entity.Book, error) {
	sql, args, ok := buildUpdate(id, p)
	if !ok {
		return r.GetByID(ctx, id)
	}
	b := &entity.Book{}
	if err := r.db.QueryRow(ctx, sql, args...).Scan(scanTargets(b, bookFieldOrder)...); err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

func (r *BookRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, "DELETE FROM books WHERE id = CAST($1::text AS uuid)", id)
	if err != nil {
		return mapError(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.BookRepository = (*BookRepository)(nil)
