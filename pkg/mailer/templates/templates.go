// Package templates renders transactional emails from the embedded *.tmpl
// files. Each email is a triple: <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl.
package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"io"
	"reflect"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	Welcome = "welcome"
)

var ErrUnknownTemplate = errors.New("unknown email template")

// EmailData is the data every template can rely on.
type EmailData struct {
	Name    string `json:"Name"`
	Email   string `json:"Email"`
	AppName string `json:"AppName"`
	DocsURL string `json:"DocsURL,omitempty"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	if s, ok := value.(string); ok {
		if strings.TrimSpace(s) == "" {
			return fallback
		}
		return s
	}
	rv := reflect.ValueOf(value)
	if !rv.IsValid() || rv.IsZero() {
		return fallback
	}
	return value
}

var funcs = map[string]any{
	"year":    func() int { return time.Now().UTC().Year() },
	"upper":   strings.ToUpper,
	"default": defaultFn,
}

// Parsed once; a broken template fails at init rather than per message.
var (
	textSet = texttpl.Must(texttpl.New("text").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("html").Funcs(funcs).ParseFS(FS, "*.html.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, filename string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, filename, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", filename, err)
	}
	return buf.String(), nil
}

// Render renders the subject, text and html parts of the named email. The
// subject is trimmed to one line.
func Render(name string, data any) (subject string, text string, html string, err error) {
	if textSet.Lookup(name+".subject.tmpl") == nil || textSet.Lookup(name+".text.tmpl") == nil ||
		htmlSet.Lookup(name+".html.tmpl") == nil {
		return "", "", "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	if subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
