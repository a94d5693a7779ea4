package page

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/permission"
)

//go:embed templates/*.html
var templateFS embed.FS

type Gate interface {
	Allowed(ctx context.Context, userID int64, capability permission.Capability) (bool, error)
	Capabilities(ctx context.Context, userID int64) (map[string]bool, error)
}

var ErrUnknownPage = internal.NewValidationError("page not found", internal.ErrCodePageNotFound)

// ViewData is what every fragment renders against.
type ViewData struct {
	Page         Page
	UserID       int64
	Capabilities map[string]bool
}

func (v ViewData) Can(capability string) bool {
	return v.Capabilities[capability]
}

// Loader renders page fragments from templates parsed once at startup.
type Loader struct {
	renderers map[Page]*template.Template
	gate      Gate
}

func NewLoader(gate Gate) (*Loader, error) {
	renderers := make(map[Page]*template.Template, len(pages))
	for p, def := range pages {
		tmpl, err := template.New(def.template).ParseFS(templateFS, "templates/"+def.template)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", p, err)
		}
		renderers[p] = tmpl
	}
	return &Loader{renderers: renderers, gate: gate}, nil
}

// Render checks name against the page set and the page's capability, then
// executes its template.
func (l *Loader) Render(ctx context.Context, userID int64, name string) ([]byte, error) {
	p, ok := Parse(name)
	if !ok {
		return nil, ErrUnknownPage
	}

	if capability, needed := p.Requires(); needed {
		allowed, err := l.gate.Allowed(ctx, userID, capability)
		if err != nil {
			return nil, internal.NewInternalError("failed to check permissions", err)
		}
		if !allowed {
			return nil, internal.ErrForbidden
		}
	}

	caps, err := l.gate.Capabilities(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permissions", err)
	}

	var buf bytes.Buffer
	data := ViewData{Page: p, UserID: userID, Capabilities: caps}
	if err := l.renderers[p].Execute(&buf, data); err != nil {
		return nil, internal.NewInternalError("failed to render page", err)
	}
	return buf.Bytes(), nil
}
