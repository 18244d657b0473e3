package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type BookStatus string

const (
	StatusPublished    BookStatus = "PUBLISHED"
	StatusNotPublished BookStatus = "NOT PUBLISHED"
)

func (s BookStatus) Valid() bool {
	return s == StatusPublished || s == StatusNotPublished
}

// Book is a catalog record. Title is unique across all books.
type Book struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	PageCount        int        `json:"pageCount"`
	PublishedDate    *time.Time `json:"publishedDate,omitempty"`
	ThumbnailURL     string     `json:"thumbnailUrl,omitempty"`
	ShortDescription string     `json:"shortDescription"`
	LongDescription  string     `json:"longDescription"`
	Status           BookStatus `json:"status"`
	Authors          []string   `json:"authors"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Fields returns the book keyed by its JSON attribute names.
func (b *Book) Fields() map[string]any {
	authors := b.Authors
	if authors == nil {
		authors = []string{}
	}
	m := map[string]any{
		"id":               b.ID,
		"title":            b.Title,
		"pageCount":        b.PageCount,
		"thumbnailUrl":     b.ThumbnailURL,
		"shortDescription": b.ShortDescription,
		"longDescription":  b.LongDescription,
		"status":           b.Status,
		"authors":          authors,
		"createdAt":        b.CreatedAt,
		"updatedAt":        b.UpdatedAt,
	}
	if b.PublishedDate != nil {
		m["publishedDate"] = *b.PublishedDate
	}
	return m
}

// Project keeps only the named attributes plus the id. Unknown names are
// skipped.
func (b *Book) Project(fields []string) map[string]any {
	all := b.Fields()
	out := map[string]any{"id": b.ID}
	for _, f := range fields {
		if v, ok := all[f]; ok {
			out[f] = v
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02",
	"01.02.2006",
	"01/02/2006",
}

// Date is a JSON date accepting RFC 3339, ISO dates and month-first
// dotted/slashed dates.
type Date struct {
	time.Time
}

func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return Date{Time: t.UTC()}, nil
		}
	}
	return Date{}, fmt.Errorf("publishedDate %q is not a valid date", s)
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("publishedDate must be a date string")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format(time.RFC3339))
}

// Ptr returns the time or nil for a nil date.
func (d *Date) Ptr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}
