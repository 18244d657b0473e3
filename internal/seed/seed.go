// Package seed loads development book data into Postgres and clears it
// again. It works on database/sql so it can run with the pgx stdlib driver
// outside the server.
package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
)

// bookRecord is one entry of the JSON data file.
type bookRecord struct {
	Title            string       `json:"title"`
	PageCount        int          `json:"pageCount"`
	PublishedDate    *entity.Date `json:"publishedDate"`
	ThumbnailURL     string       `json:"thumbnailUrl"`
	ShortDescription string       `json:"shortDescription"`
	LongDescription  string       `json:"longDescription"`
	Status           string       `json:"status"`
	Authors          []string     `json:"authors"`
}

// Load decodes a JSON array of books. Records with an empty title or an
// unknown status are rejected with their index.
func Load(r io.Reader) ([]entity.Book, error) {
	var recs []bookRecord
	if err := json.NewDecoder(r).Decode(&recs); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	out := make([]entity.Book, 0, len(recs))
	for i, rec := range recs {
		b := entity.Book{
			Title:            strings.TrimSpace(rec.Title),
			PageCount:        rec.PageCount,
			PublishedDate:    rec.PublishedDate.Ptr(),
			ThumbnailURL:     rec.ThumbnailURL,
			ShortDescription: rec.ShortDescription,
			LongDescription:  rec.LongDescription,
			Status:           entity.BookStatus(rec.Status),
			Authors:          rec.Authors,
		}
		if b.Title == "" {
			return nil, fmt.Errorf("book %d: title is required", i)
		}
		if !b.Status.Valid() {
			return nil, fmt.Errorf("book %d (%s): invalid status %q", i, b.Title, rec.Status)
		}
		out = append(out, b)
	}
	return out, nil
}

const insertBook = `INSERT INTO books (title, page_count, published_date, thumbnail_url, short_description, long_description, status, authors)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8::text[])
ON CONFLICT (title) DO NOTHING`

// Import inserts books in one transaction and returns how many were new.
// Titles that already exist are skipped.
func Import(ctx context.Context, db *sql.DB, books []entity.Book) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertBook)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	var inserted int64
	for _, b := range books {
		var published any
		if b.PublishedDate != nil {
			published = *b.PublishedDate
		}
		res, err := stmt.ExecContext(ctx,
			b.Title, b.PageCount, published, b.ThumbnailURL,
			b.ShortDescription, b.LongDescription, string(b.Status), TextArray(b.Authors))
		if err != nil {
			return 0, fmt.Errorf("insert %q: %w", b.Title, err)
		}
		n, _ := res.RowsAffected()
		inserted += n
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// DeleteAll removes every book and returns the number deleted.
func DeleteAll(ctx context.Context, db *sql.DB) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM books`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TextArray renders ss as a Postgres array literal, e.g. {"a","b \"c\""}.
func TextArray(ss []string) string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, s := range ss {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('"')
		s = strings.ReplaceAll(s, `\`, `\\`)
		s = strings.ReplaceAll(s, `"`, `\"`)
		sb.WriteString(s)
		sb.WriteByte('"')
	}
	sb.WriteByte('}')
	return sb.String()
}

// UpsertUser creates a user or renames an existing one with the same email
// and returns its id. hash must already be a bcrypt hash.
func UpsertUser(ctx context.Context, db *sql.DB, name, email, hash string) (string, error) {
	var id string
	err := db.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = now()
		RETURNING id::text
	`, name, strings.ToLower(strings.TrimSpace(email)), hash).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert user %s: %w", email, err)
	}
	return id, nil
}
