package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-books-api/internal/application"
	"github.com/oksasatya/go-books-api/internal/domain/query"
	"github.com/oksasatya/go-books-api/pkg/apperror"
	"github.com/oksasatya/go-books-api/pkg/response"
)

type BookHandler struct {
	Svc         *application.BookService
	UploadLimit int64
}

const (
	HeaderPage      = "X-Page"
	HeaderPageLimit = "X-Page-Limit"
)

func NewBookHandler(svc *application.BookService, uploadLimit int64) *BookHandler {
	return &BookHandler{Svc: svc, UploadLimit: uploadLimit}
}

// List GET /api/v1/books?title=..&pageCount[lte]=..&sort=..&fields=..&page=..&limit=..
func (h *BookHandler) List(c *gin.Context) {
	d := query.FromValues(c.Request.URL.Query())
	books, err := h.Svc.List(c.Request.Context(), d)
	if err != nil {
		fail(c, err)
		return
	}
	// The effective window; limit is capped at query.MaxLimit.
	c.Header(HeaderPage, strconv.Itoa(d.Page()))
	c.Header(HeaderPageLimit, strconv.Itoa(d.Limit()))
	if !d.Projected() {
		response.List(c, len(books), gin.H{"books": books})
		return
	}
	fields := d.Fields()
	out := make([]map[string]any, 0, len(books))
	for i := range books {
		out = append(out, books[i].Project(fields))
	}
	response.List(c, len(out), gin.H{"books": out})
}

// Get GET /api/v1/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": b})
}

// Create POST /api/v1/books
func (h *BookHandler) Create(c *gin.Context) {
	var in application.CreateBookInput
	if err := bindJSON(c, &in, false); err != nil {
		fail(c, err)
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	counters.Add("books_created", 1)
	response.Success(c, http.StatusCreated, gin.H{"book": b})
}

// Update PATCH /api/v1/books/:id
func (h *BookHandler) Update(c *gin.Context) {
	var in application.UpdateBookInput
	if err := bindJSON(c, &in, true); err != nil {
		fail(c, err)
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": b})
}

// Delete DELETE /api/v1/books/:id
func (h *BookHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	counters.Add("books_deleted", 1)
	response.NoContent(c)
}

// Search GET /api/v1/books/search?q=..&size=..
func (h *BookHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	books, err := h.Svc.Search(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		fail(c, err)
		return
	}
	response.List(c, len(books), gin.H{"books": books})
}

// UploadThumbnail POST /api/v1/books/:id/thumbnail (multipart field "file")
func (h *BookHandler) UploadThumbnail(c *gin.Context) {
	if h.UploadLimit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.UploadLimit)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			fail(c, apperror.New(apperror.KindTooLarge, "Image too large (limit "+strconv.FormatInt(mbe.Limit, 10)+" bytes)"))
			return
		}
		fail(c, apperror.Validation(`Please upload an image in the "file" field`))
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer func() { _ = f.Close() }()

	b, err := h.Svc.UploadThumbnail(c.Request.Context(), c.Param("id"), fh.Header.Get("Content-Type"), f)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"book": b})
}
