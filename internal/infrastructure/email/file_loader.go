package email

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/aymerick/raymond"
	"github.com/vanng822/go-premailer/premailer"

	"github.com/commuteplanner/planner/internal/api/metrics"
	"github.com/commuteplanner/planner/internal/core/domain"
)

var templateName = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileLoader reads <dir>/<name>.html, inlines its CSS and compiles it.
type FileLoader struct {
	dir    string
	inline bool
}

// NewFileLoader loads email templates; their CSS is inlined.
func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir, inline: true}
}

// NewPageLoader loads page templates as written, without CSS inlining.
func NewPageLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

// Load satisfies Loader.
func (l *FileLoader) Load(name string) (*raymond.Template, error) {
	if !templateName.MatchString(name) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidTemplateName, name)
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, name+".html"))
	if err != nil {
		metrics.TemplateCompilationsTotal.WithLabelValues("load_error").Inc()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTemplateLoad, name, err)
	}

	source := string(raw)
	if l.inline {
		if source, err = inlineCSS(source); err != nil {
			metrics.TemplateCompilationsTotal.WithLabelValues("inline_error").Inc()
			return nil, fmt.Errorf("%w: %s: %w", domain.ErrTemplateInline, name, err)
		}
	}

	tpl, err := raymond.Parse(source)
	if err != nil {
		metrics.TemplateCompilationsTotal.WithLabelValues("compile_error").Inc()
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTemplateCompile, name, err)
	}

	metrics.TemplateCompilationsTotal.WithLabelValues("ok").Inc()
	return tpl, nil
}

func inlineCSS(html string) (string, error) {
	prem, err := premailer.NewPremailerFromString(html, premailer.NewOptions())
	if err != nil {
		return "", err
	}
	return prem.Transform()
}
