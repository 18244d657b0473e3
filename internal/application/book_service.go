package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/query"
	repo "github.com/oksasatya/go-books-api/internal/domain/repository"
	"github.com/oksasatya/go-books-api/pkg/apperror"
	"github.com/oksasatya/go-books-api/pkg/helpers"
	"github.com/oksasatya/go-books-api/pkg/validation"
)

const (
	MsgBookNotFound        = "No book found with that ID"
	MsgSearchUnavailable   = "Search is not configured on this server"
	MsgUploadUnavailable   = "Thumbnail upload is not configured on this server"
	MsgSearchQueryRequired = "Please provide a search query"
	MsgNotAnImage          = "Not an image! Please upload only images."
)

// BookService orchestrates the book store and its optional side stores.
// Cache, Index and Thumbnails may be nil.
type BookService struct {
	Books      repo.BookRepository
	Cache      BookCache
	Index      BookIndex
	Thumbnails ThumbnailStore
	Logger     *logrus.Logger
}

func NewBookService(books repo.BookRepository, cache BookCache, index BookIndex, thumbs ThumbnailStore, logger *logrus.Logger) *BookService {
	return &BookService{Books: books, Cache: cache, Index: index, Thumbnails: thumbs, Logger: logger}
}

type CreateBookInput struct {
	Title            string       `json:"title" binding:"required,min=1,max=50"`
	PageCount        *int         `json:"pageCount" binding:"required"`
	PublishedDate    *entity.Date `json:"publishedDate"`
	ThumbnailURL     string       `json:"thumbnailUrl" binding:"omitempty,url"`
	ShortDescription string       `json:"shortDescription" binding:"required,max=100"`
	LongDescription  string       `json:"longDescription" binding:"required"`
	Status           string       `json:"status" binding:"required,bookstatus"`
	Authors          []string     `json:"authors" binding:"omitempty,dive,required"`
}

// UpdateBookInput carries a partial update; nil fields stay unchanged.
type UpdateBookInput struct {
	Title            *string      `json:"title" binding:"omitempty,min=1,max=50"`
	PageCount        *int         `json:"pageCount"`
	PublishedDate    *entity.Date `json:"publishedDate"`
	ThumbnailURL     *string      `json:"thumbnailUrl" binding:"omitempty,url"`
	ShortDescription *string      `json:"shortDescription" binding:"omitempty,min=1,max=100"`
	LongDescription  *string      `json:"longDescription" binding:"omitempty,min=1"`
	Status           *string      `json:"status" binding:"omitempty,bookstatus"`
	Authors          *[]string    `json:"authors" binding:"omitempty,dive,required"`
}

func (in UpdateBookInput) patch() repo.BookPatch {
	p := repo.BookPatch{
		Title:            in.Title,
		PageCount:        in.PageCount,
		PublishedDate:    in.PublishedDate.Ptr(),
		ThumbnailURL:     in.ThumbnailURL,
		ShortDescription: in.ShortDescription,
		LongDescription:  in.LongDescription,
		Authors:          in.Authors,
	}
	if in.Status != nil {
		st := entity.BookStatus(*in.Status)
		p.Status = &st
	}
	return p
}

// ValidateID rejects ids that are not UUIDs before any store access.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperror.Validation(fmt.Sprintf("Invalid id: %s.", id))
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperror.NotFound(MsgBookNotFound)
	}
	return err
}

// List runs the descriptor against the store. A page past the end is an
// empty slice.
func (s *BookService) List(ctx context.Context, d query.Descriptor) ([]entity.Book, error) {
	books, err := s.Books.List(ctx, d)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []entity.Book{}
	}
	return books, nil
}

func (s *BookService) Get(ctx context.Context, id string) (*entity.Book, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	gen, cacheable := int64(0), false
	if s.Cache != nil {
		b, ok, err := s.Cache.Get(ctx, id)
		if err != nil {
			helpers.LogWarn(s.Logger, "book cache read failed", err, logrus.Fields{"book_id": id})
		}
		if ok {
			return b, nil
		}
		if gen, err = s.Cache.Generation(ctx, id); err == nil {
			cacheable = true
		}
	}
	b, err := s.Books.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if cacheable {
		s.cache(ctx, b, gen)
	}
	return b, nil
}

func (s *BookService) Create(ctx context.Context, in CreateBookInput) (*entity.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	b := &entity.Book{
		Title:            in.Title,
		PublishedDate:    in.PublishedDate.Ptr(),
		ThumbnailURL:     in.ThumbnailURL,
		ShortDescription: in.ShortDescription,
		LongDescription:  in.LongDescription,
		Status:           entity.BookStatus(in.Status),
		Authors:          in.Authors,
	}
	if in.PageCount != nil {
		b.PageCount = *in.PageCount
	}
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if err := s.Books.Create(ctx, b); err != nil {
		return nil, err
	}
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) Update(ctx context.Context, id string, in UpdateBookInput) (*entity.Book, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		in.Title = &t
	}
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	b, err := s.Books.Update(ctx, id, in.patch())
	if err != nil {
		return nil, notFound(err)
	}
	s.invalidate(ctx, id)
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if err := s.Books.Delete(ctx, id); err != nil {
		return notFound(err)
	}
	s.invalidate(ctx, id)
	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			helpers.LogWarn(s.Logger, "book unindex failed", err, logrus.Fields{"book_id": id})
		}
	}
	return nil
}

// Search queries the full-text index.
func (s *BookService) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	if s.Index == nil {
		return nil, apperror.Unavailable(MsgSearchUnavailable)
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, apperror.Validation(MsgSearchQueryRequired)
	}
	return s.Index.Search(ctx, q, size)
}

// UploadThumbnail stores an image for an existing book and points its
// thumbnailUrl at it.
func (s *BookService) UploadThumbnail(ctx context.Context, id, contentType string, r io.Reader) (*entity.Book, error) {
	if s.Thumbnails == nil {
		return nil, apperror.Unavailable(MsgUploadUnavailable)
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperror.Validation(MsgNotAnImage)
	}
	if _, err := s.Books.GetByID(ctx, id); err != nil {
		return nil, notFound(err)
	}
	url, err := s.Thumbnails.Upload(ctx, id, contentType, r)
	if err != nil {
		return nil, fmt.Errorf("upload thumbnail: %w", err)
	}
	b, err := s.Books.Update(ctx, id, repo.BookPatch{ThumbnailURL: &url})
	if err != nil {
		return nil, notFound(err)
	}
	s.invalidate(ctx, id)
	s.index(ctx, b)
	return b, nil
}

func (s *BookService) cache(ctx context.Context, b *entity.Book, gen int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Set(ctx, b, gen); err != nil {
		helpers.LogWarn(s.Logger, "book cache write failed", err, logrus.Fields{"book_id": b.ID})
	}
}

func (s *BookService) invalidate(ctx context.Context, id string) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx, id); err != nil {
		helpers.LogWarn(s.Logger, "book cache invalidate failed", err, logrus.Fields{"book_id": id})
	}
}

func (s *BookService) index(ctx context.Context, b *entity.Book) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, b); err != nil {
		helpers.LogWarn(s.Logger, "book index failed", err, logrus.Fields{"book_id": b.ID})
	}
}
