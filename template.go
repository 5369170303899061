package strata

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru"
)

// TemplateEngine renders a named template with context data. It is the
// collaborator a deferred-render Response uses for its single render step.
// Implementations must be safe for concurrent use: one engine instance is
// typically shared by every deferred response in flight.
type TemplateEngine interface {
	Render(ctx context.Context, templateName string, data any) ([]byte, error)
}

// GoTemplateEngine renders with a pre-parsed html/template set.
type GoTemplateEngine struct {
	T *template.Template
}

func (e *GoTemplateEngine) Render(_ context.Context, templateName string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.T.ExecuteTemplate(&buf, templateName, data); err != nil {
		return nil, fmt.Errorf("strata: executing template %q: %w", templateName, err)
	}
	return buf.Bytes(), nil
}

// FileEngine renders templates from a directory, parsing each file on first
// use and keeping the parsed form in an LRU cache so hot templates are not
// re-parsed per request.
type FileEngine struct {
	dir   string
	cache *lru.Cache
	mu    sync.Mutex // serializes parse-on-miss; cache itself is lock-free for Get
}

// NewFileEngine builds a FileEngine over dir holding at most cacheSize
// parsed templates.
func NewFileEngine(dir string, cacheSize int) (*FileEngine, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &FileEngine{dir: dir, cache: cache}, nil
}

func (e *FileEngine) Render(_ context.Context, templateName string, data any) ([]byte, error) {
	t, err := e.lookup(templateName)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("strata: executing template %q: %w", templateName, err)
	}
	return buf.Bytes(), nil
}

func (e *FileEngine) lookup(name string) (*template.Template, error) {
	if v, ok := e.cache.Get(name); ok {
		return v.(*template.Template), nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.cache.Get(name); ok {
		return v.(*template.Template), nil
	}
	t, err := template.ParseFiles(filepath.Join(e.dir, filepath.Clean(name)))
	if err != nil {
		return nil, fmt.Errorf("strata: parsing template %q: %w", name, err)
	}
	e.cache.Add(name, t)
	return t, nil
}
