// Package views renders the embedded html templates.
package views

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"yatube/app/models"
)

//go:embed templates
var files embed.FS

// Context is the data handed to a page template.
type Context map[string]interface{}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages    map[string]*template.Template
	mediaURL string
}

// New parses every page under templates/ together with the layout and
// the includes. Pages are named by path without extension, e.g.
// "posts/index".
func New(mediaURL string) (*Renderer, error) {
	r := &Renderer{pages: map[string]*template.Template{}, mediaURL: mediaURL}

	funcs := template.FuncMap{
		"media":    r.MediaURL,
		"truncate": models.Truncate,
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"paragraphs": func(s string) []string {
			return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
		},
	}

	base, err := template.New("layout.html").Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/includes/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "parse layout")
	}

	err = fs.WalkDir(files, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		dir := path.Dir(p)
		if d.IsDir() || dir == "templates" || dir == "templates/includes" {
			return nil
		}
		page, err := base.Clone()
		if err != nil {
			return err
		}
		if _, err := page.ParseFS(files, p); err != nil {
			return errors.Wrapf(err, "parse %s", p)
		}
		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		r.pages[name] = page
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// MediaURL turns a stored upload name into its public URL.
func (r *Renderer) MediaURL(stored string) string {
	return r.mediaURL + strings.TrimPrefix(stored, "/")
}

// Has reports whether a page is known.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes page name into w with status. Nothing is written if the
// template fails.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data Context) error {
	page, ok := r.pages[name]
	if !ok {
		return errors.Errorf("no template %q", name)
	}
	var buf bytes.Buffer
	if err := page.ExecuteTemplate(&buf, "layout", data); err != nil {
		return errors.Wrapf(err, "render %s", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
