// Package search indexes books in Elasticsearch for full-text lookup.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
)

const (
	DefaultSize = 10
	MaxSize     = 50
	timeout     = 3 * time.Second
)

// searchFields are the analysed fields of the multi_match query; title hits
// weigh most.
var searchFields = []string{"title^3", "authors^2", "shortDescription", "longDescription"}

type BookIndex struct {
	es    *elasticsearch.Client
	index string
}

func NewBookIndex(es *elasticsearch.Client, index string) *BookIndex {
	if index == "" {
		index = "books"
	}
	return &BookIndex{es: es, index: index}
}

// mapping keeps title sortable through a keyword subfield and stores dates
// as dates rather than dynamic strings.
var mapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"title":            map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"authors":          map[string]any{"type": "text", "fields": map[string]any{"raw": map[string]any{"type": "keyword"}}},
			"shortDescription": map[string]any{"type": "text"},
			"longDescription":  map[string]any{"type": "text"},
			"status":           map[string]any{"type": "keyword"},
			"pageCount":        map[string]any{"type": "integer"},
			"publishedDate":    map[string]any{"type": "date"},
			"thumbnailUrl":     map[string]any{"type": "keyword", "index": false},
		},
	},
}

// EnsureIndex creates the index with its mapping. An index that already
// exists is left untouched.
func (x *BookIndex) EnsureIndex(ctx context.Context) error {
	body, err := json.Marshal(mapping)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	exists, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es exists %s: %w", x.index, err)
	}
	_ = exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}
	res, err := esapi.IndicesCreateRequest{Index: x.index, Body: bytes.NewReader(body)}.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es create %s: %w", x.index, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 400 {
		return fmt.Errorf("es create %s: %s", x.index, res.Status())
	}
	return nil
}

// Index upserts the book document under its id.
func (x *BookIndex) Index(ctx context.Context, b *entity.Book) error {
	body, err := json.Marshal(b)
	if err != nil {
		return err
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req := esapi.IndexRequest{Index: x.index, DocumentID: b.ID, Body: bytes.NewReader(body), Refresh: "false"}
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es index %s: %w", b.ID, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index %s: %s", b.ID, res.Status())
	}
	return nil
}

// Delete removes the document; a missing document is not an error.
func (x *BookIndex) Delete(ctx context.Context, id string) error {
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req := esapi.DeleteRequest{Index: x.index, DocumentID: id}
	res, err := req.Do(c, x.es)
	if err != nil {
		return fmt.Errorf("es delete %s: %w", id, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete %s: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match query and returns the stored documents in
// relevance order.
func (x *BookIndex) Search(ctx context.Context, q string, size int) ([]entity.Book, error) {
	body, err := searchBody(q, size)
	if err != nil {
		return nil, err
	}
	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		// A search before the first book was indexed has no index yet.
		if res.StatusCode == 404 {
			return []entity.Book{}, nil
		}
		return nil, fmt.Errorf("es search: %s", res.Status())
	}
	return decodeHits(res.Body)
}

func searchBody(q string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return json.Marshal(map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": searchFields,
			},
		},
		"size": size,
	})
}

func decodeHits(r io.Reader) ([]entity.Book, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string      `json:"_id"`
				Source entity.Book `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(r).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode es hits: %w", err)
	}
	out := make([]entity.Book, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		b := h.Source
		if b.ID == "" {
			b.ID = h.ID
		}
		out = append(out, b)
	}
	return out, nil
}
