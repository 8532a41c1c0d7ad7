// Package views renders the server-side HTML pages.
package views

import (
	"fmt"
	"io"

	"github.com/labstack/echo/v4"

	"github.com/commuteplanner/planner/internal/infrastructure/email"
)

// Renderer is an echo.Renderer over handlebars pages in a directory.
// Pages are compiled on first use and kept for the life of the process.
type Renderer struct {
	cache *email.TemplateCache
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{cache: email.NewTemplateCache(email.NewPageLoader(dir))}
}

// Render satisfies echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	tpl, err := r.cache.Get(name)
	if err != nil {
		return err
	}
	out, err := tpl.Exec(data)
	if err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	_, err = io.WriteString(w, out)
	return err
}
