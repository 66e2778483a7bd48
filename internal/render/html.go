package render

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/timeline.html.tmpl
var templateFS embed.FS

var pageTmpl = template.Must(template.New("timeline.html.tmpl").Funcs(template.FuncMap{
	"emptyText": func() string { return EmptyText },
	"deref":     func(p *int) int { return *p },
}).ParseFS(templateFS, "templates/timeline.html.tmpl"))

// HTML writes the full timeline page. The root section carries
// data-ready="true" so the headless capture knows rendering is done.
func HTML(w io.Writer, v View) error {
	return pageTmpl.Execute(w, v)
}
