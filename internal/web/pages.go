package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"haikuadmin/internal/game"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages struct {
	byName map[string]*template.Template
}

var pageNames = []string{"register", "login", "browse", "new"}

func loadPages() (*pages, error) {
	funcs := template.FuncMap{
		"fmtTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Local().Format("2006-01-02 15:04:05")
		},
	}
	p := &pages{byName: map[string]*template.Template{}}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("web: parse template %s: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

// view is the data every page template receives.
type view struct {
	Title  string
	Admin  *game.Admin
	Errors game.FormErrors
	Form   map[string]string
	Data   any
}

// errRender marks failures that happen before anything reaches the client.
var errRender = errors.New("web: render")

func (p *pages) render(w http.ResponseWriter, status int, name string, v view) error {
	t, ok := p.byName[name]
	if !ok {
		return fmt.Errorf("%w: unknown page %q", errRender, name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		return fmt.Errorf("%w: %s: %w", errRender, name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
