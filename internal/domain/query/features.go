package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

var reserved = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

var operators = map[string]Operator{
	"gte": OpGte,
	"gt":  OpGt,
	"lte": OpLte,
	"lt":  OpLt,
}

// FromValues runs the full pipeline: filter, sort, field limiting, paging.
func FromValues(v url.Values) Descriptor {
	return New().Filter(v).SortBy(v).LimitFields(v).Paginate(v)
}

// Filter turns every non-reserved key into a condition. "field[op]" keys
// become comparisons, bare keys equality. Keys are visited in sorted order so
// the same query string always yields the same descriptor.
func (d Descriptor) Filter(v url.Values) Descriptor {
	keys := make([]string, 0, len(v))
	for k := range v {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	conds := make([]Condition, 0, len(keys))
	for _, k := range keys {
		field, op, ok := parseKey(k)
		if !ok {
			continue
		}
		conds = append(conds, Condition{Field: field, Op: op, Value: v.Get(k)})
	}
	return d.Where(conds...)
}

func parseKey(k string) (string, Operator, bool) {
	open := strings.IndexByte(k, '[')
	if open < 0 {
		if k == "" {
			return "", "", false
		}
		return k, OpEq, true
	}
	if open == 0 || !strings.HasSuffix(k, "]") {
		return "", "", false
	}
	op, ok := operators[k[open+1:len(k)-1]]
	if !ok {
		return "", "", false
	}
	return k[:open], op, true
}

// SortBy reads "sort=a,-b". Without a sort parameter the descriptor keeps
// whatever order it had, i.e. the store default.
func (d Descriptor) SortBy(v url.Values) Descriptor {
	raw := v.Get("sort")
	if raw == "" {
		return d
	}
	var keys []SortKey
	for _, part := range splitList(raw) {
		desc := strings.HasPrefix(part, "-")
		name := strings.TrimPrefix(part, "-")
		if name == "" {
			continue
		}
		keys = append(keys, SortKey{Field: name, Desc: desc})
	}
	if len(keys) == 0 {
		return d
	}
	return d.OrderBy(keys...)
}

// LimitFields reads "fields=a,b".
func (d Descriptor) LimitFields(v url.Values) Descriptor {
	raw := v.Get("fields")
	if raw == "" {
		return d
	}
	return d.Select(splitList(raw)...)
}

// Paginate reads page and limit; bad values fall back to defaults.
func (d Descriptor) Paginate(v url.Values) Descriptor {
	return d.Window(atoi(v.Get("page"), DefaultPage), atoi(v.Get("limit"), DefaultLimit))
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
