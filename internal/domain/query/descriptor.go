// Package query turns list-endpoint query strings into an immutable
// description of filters, ordering, projection and paging. Nothing in this
// package talks to a store.
package query

import (
	"math"
	"slices"
)

type Operator string

const (
	OpEq  Operator = "eq"
	OpGte Operator = "gte"
	OpGt  Operator = "gt"
	OpLte Operator = "lte"
	OpLt  Operator = "lt"
)

const (
	DefaultPage  = 1
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Condition constrains one field. Value is kept as the raw query-string text;
// the store decides how to cast it.
type Condition struct {
	Field string
	Op    Operator
	Value string
}

type SortKey struct {
	Field string
	Desc  bool
}

// Descriptor is a value type: every builder method returns a modified copy
// and never touches the receiver's slices.
type Descriptor struct {
	conditions []Condition
	sort       []SortKey
	fields     []string
	page       int
	limit      int
}

// New returns an unfiltered, unsorted descriptor for page 1 of 100.
func New() Descriptor {
	return Descriptor{page: DefaultPage, limit: DefaultLimit}
}

// Where adds conditions; all conditions combine with AND.
func (d Descriptor) Where(conds ...Condition) Descriptor {
	d.conditions = append(slices.Clip(d.conditions), conds...)
	return d
}

// OrderBy replaces the sort keys. The first key has the highest priority.
func (d Descriptor) OrderBy(keys ...SortKey) Descriptor {
	d.sort = slices.Clone(keys)
	return d
}

// Select replaces the projection. An empty projection means all fields.
func (d Descriptor) Select(fields ...string) Descriptor {
	d.fields = slices.Clone(fields)
	return d
}

// Window sets paging; values below 1 fall back to the defaults and limit is
// capped at MaxLimit.
func (d Descriptor) Window(page, limit int) Descriptor {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	d.page, d.limit = page, limit
	return d
}

func (d Descriptor) Conditions() []Condition { return slices.Clone(d.conditions) }
func (d Descriptor) Sort() []SortKey         { return slices.Clone(d.sort) }
func (d Descriptor) Fields() []string        { return slices.Clone(d.fields) }
func (d Descriptor) Projected() bool         { return len(d.fields) > 0 }

func (d Descriptor) Page() int {
	if d.page < 1 {
		return DefaultPage
	}
	return d.page
}

func (d Descriptor) Limit() int {
	if d.limit < 1 {
		return DefaultLimit
	}
	return d.limit
}

// Offset is the number of records skipped before the window starts. It
// saturates at math.MaxInt instead of overflowing for huge pages.
func (d Descriptor) Offset() int {
	skip := d.Page() - 1
	if skip > math.MaxInt/d.Limit() {
		return math.MaxInt
	}
	return skip * d.Limit()
}
