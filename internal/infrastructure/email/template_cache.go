package email

import (
	"sync"

	"github.com/aymerick/raymond"
	"golang.org/x/sync/singleflight"
)

// Loader produces a compiled template for a name.
type Loader interface {
	Load(name string) (*raymond.Template, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(name string) (*raymond.Template, error)

func (f LoaderFunc) Load(name string) (*raymond.Template, error) { return f(name) }

// TemplateCache holds compiled templates for the life of the process.
// Entries are never evicted: templates do not change within a deployment.
// Concurrent misses for one name share a single load, and a failed load
// leaves no entry behind so the next call tries again.
type TemplateCache struct {
	loader Loader

	mu        sync.RWMutex
	templates map[string]*raymond.Template
	inflight  singleflight.Group
}

func NewTemplateCache(loader Loader) *TemplateCache {
	return &TemplateCache{
		loader:    loader,
		templates: make(map[string]*raymond.Template),
	}
}

// Get returns the compiled template for name, loading it on first use.
func (c *TemplateCache) Get(name string) (*raymond.Template, error) {
	if tpl, ok := c.lookup(name); ok {
		return tpl, nil
	}

	v, err, _ := c.inflight.Do(name, func() (any, error) {
		if tpl, ok := c.lookup(name); ok {
			return tpl, nil
		}
		tpl, err := c.loader.Load(name)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.templates[name] = tpl
		c.mu.Unlock()
		return tpl, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*raymond.Template), nil
}

// Len reports the number of cached templates.
func (c *TemplateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.templates)
}

func (c *TemplateCache) lookup(name string) (*raymond.Template, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	tpl, ok := c.templates[name]
	return tpl, ok
}
