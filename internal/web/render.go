package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/shopspring/decimal"
)

//go:embed templates
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// pageRender maps a page name such as "products/index" to its template set,
// each parsed together with the shared layout.
type pageRender map[string]*template.Template

func (p pageRender) Instance(name string, data any) render.Render {
	return render.HTML{
		Template: p[name],
		Name:     "layout",
		Data:     data,
	}
}

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string {
		return d.StringFixed(2)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("2006-01-02 15:04")
	},
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
}

func loadTemplates() (pageRender, error) {
	pages, err := fs.Glob(templatesFS, "templates/*/*.html")
	if err != nil {
		return nil, err
	}

	out := make(pageRender, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(strings.TrimPrefix(page, "templates/"), ".html")
		t, err := template.New(name).Funcs(funcs).ParseFS(templatesFS, layoutFile, page)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}
