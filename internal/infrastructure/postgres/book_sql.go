package postgres

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
	"github.com/oksasatya/go-books-api/internal/domain/query"
	"github.com/oksasatya/go-books-api/internal/domain/repository"
)

type colKind int

const (
	kindText colKind = iota
	kindInt
	kindTime
	kindUUID
	kindTextArray
)

type column struct {
	name string
	kind colKind
}

// selectExpr is what goes into a SELECT list.
func (c column) selectExpr() string {
	if c.kind == kindUUID {
		return c.name + "::text"
	}
	return c.name
}

// bookColumns maps public attribute names onto the books table. The version
// column is deliberately absent: it is never filtered, sorted or returned.
var bookColumns = map[string]column{
	"id":               {"id", kindUUID},
	"title":            {"title", kindText},
	"pageCount":        {"page_count", kindInt},
	"publishedDate":    {"published_date", kindTime},
	"thumbnailUrl":     {"thumbnail_url", kindText},
	"shortDescription": {"short_description", kindText},
	"longDescription":  {"long_description", kindText},
	"status":           {"status", kindText},
	"authors":          {"authors", kindTextArray},
	"createdAt":        {"created_at", kindTime},
	"updatedAt":        {"updated_at", kindTime},
}

var bookFieldOrder = []string{
	"id", "title", "pageCount", "publishedDate", "thumbnailUrl",
	"shortDescription", "longDescription", "status", "authors",
	"createdAt", "updatedAt",
}

var sqlOps = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpGte: ">=",
	query.OpGt:  ">",
	query.OpLte: "<=",
	query.OpLt:  "<",
}

// argList accumulates positional parameters.
type argList []any

func (a *argList) add(v any) string {
	*a = append(*a, v)
	return fmt.Sprintf("$%d", len(*a))
}

// projectedFields resolves the descriptor's projection to known attributes in
// table order, always including id.
func projectedFields(d query.Descriptor) []string {
	if !d.Projected() {
		return bookFieldOrder
	}
	want := map[string]bool{"id": true}
	for _, f := range d.Fields() {
		want[f] = true
	}
	out := make([]string, 0, len(want))
	for _, f := range bookFieldOrder {
		if want[f] {
			out = append(out, f)
		}
	}
	return out
}

func selectList(fields []string) string {
	exprs := make([]string, len(fields))
	for i, f := range fields {
		exprs[i] = bookColumns[f].selectExpr()
	}
	return strings.Join(exprs, ", ")
}

// condition renders one filter. Values are always bound as text and cast
// server side, so a malformed number or date fails in Postgres with a data
// exception instead of being silently dropped.
func condition(c query.Condition, args *argList) (string, bool) {
	col, ok := bookColumns[c.Field]
	if !ok {
		return "", false
	}
	op, ok := sqlOps[c.Op]
	if !ok {
		return "", false
	}
	switch col.kind {
	case kindText:
		return fmt.Sprintf("%s %s %s::text", col.name, op, args.add(c.Value)), true
	case kindInt:
		return fmt.Sprintf("%s %s CAST(%s::text AS integer)", col.name, op, args.add(c.Value)), true
	case kindTime:
		return fmt.Sprintf("%s %s CAST(%s::text AS timestamptz)", col.name, op, args.add(c.Value)), true
	case kindUUID:
		if c.Op != query.OpEq {
			return "", false
		}
		return fmt.Sprintf("%s = CAST(%s::text AS uuid)", col.name, args.add(c.Value)), true
	case kindTextArray:
		if c.Op != query.OpEq {
			return "", false
		}
		return fmt.Sprintf("%s::text = ANY(%s)", args.add(c.Value), col.name), true
	}
	return "", false
}

// buildListQuery compiles a descriptor into a parameterised SELECT.
func buildListQuery(d query.Descriptor) (string, []any, []string) {
	fields := projectedFields(d)
	var args argList
	var sb strings.Builder

	sb.WriteString("SELECT ")
	sb.WriteString(selectList(fields))
	sb.WriteString(" FROM books")

	var where []string
	for _, c := range d.Conditions() {
		if frag, ok := condition(c, &args); ok {
			where = append(where, frag)
		}
	}
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}

	var order []string
	seen := map[string]bool{}
	for _, k := range d.Sort() {
		col, ok := bookColumns[k.Field]
		if !ok || seen[col.name] {
			continue
		}
		seen[col.name] = true
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		order = append(order, col.name+" "+dir)
	}
	if len(order) == 0 {
		order = append(order, "created_at ASC")
	}
	if !seen["id"] {
		order = append(order, "id ASC")
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(strings.Join(order, ", "))

	sb.WriteString(" LIMIT ")
	sb.WriteString(args.add(d.Limit()))
	sb.WriteString(" OFFSET ")
	sb.WriteString(args.add(d.Offset()))

	return sb.String(), args, fields
}

// buildUpdate compiles a patch into an UPDATE ... RETURNING statement.
// ok is false when the patch changes nothing.
func buildUpdate(id string, p repository.BookPatch) (string, []any, bool) {
	if p.Empty() {
		return "", nil, false
	}
	var args argList
	var sets []string
	set := func(col string, v any) {
		sets = append(sets, col+" = "+args.add(v))
	}
	if p.Title != nil {
		set("title", strings.TrimSpace(*p.Title))
	}
	if p.PageCount != nil {
		set("page_count", *p.PageCount)
	}
	if p.PublishedDate != nil {
		set("published_date", *p.PublishedDate)
	}
	if p.ThumbnailURL != nil {
		set("thumbnail_url", *p.ThumbnailURL)
	}
	if p.ShortDescription != nil {
		set("short_description", *p.ShortDescription)
	}
	if p.LongDescription != nil {
		set("long_description", *p.LongDescription)
	}
	if p.Status != nil {
		set("status", string(*p.Status))
	}
	if p.Authors != nil {
		authors := *p.Authors
		if authors == nil {
			authors = []string{}
		}
		set("authors", authors)
	}
	sets = append(sets, "version = version + 1", "updated_at = now()")

	sql := fmt.Sprintf("UPDATE books SET %s WHERE id = CAST(%s::text AS uuid) RETURNING %s",
		strings.Join(sets, ", "), args.add(id), selectList(bookFieldOrder))
	return sql, args, true
}

// scanTargets returns destinations for the given attributes, in order.
func scanTargets(b *entity.Book, fields []string) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		switch f {
		case "id":
			out = append(out, &b.ID)
		case "title":
			out = append(out, &b.Title)
		case "pageCount":
			out = append(out, &b.PageCount)
		case "publishedDate":
			out = append(out, &b.PublishedDate)
		case "thumbnailUrl":
			out = append(out, &b.ThumbnailURL)
		case "shortDescription":
			out = append(out, &b.ShortDescription)
		case "longDescription":
			out = append(out, &b.LongDescription)
		case "status":
			out = append(out, &b.Status)
		case "authors":
			out = append(out, &b.Authors)
		case "createdAt":
			out = append(out, &b.CreatedAt)
		case "updatedAt":
			out = append(out, &b.UpdatedAt)
		}
	}
	return out
}
