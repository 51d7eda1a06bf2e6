package echoapi

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

type templateRenderer struct {
	templates *template.Template
}

var _ echo.Renderer = (*templateRenderer)(nil)

func newTemplateRenderer() *templateRenderer {
	return &templateRenderer{
		templates: template.Must(template.New("").ParseFS(templateFS, "templates/*.html")),
	}
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	return errors.Wrapf(r.templates.ExecuteTemplate(w, name, data), "rendering %s", name)
}
