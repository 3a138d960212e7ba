package services

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/google/uuid"

	"project-analyzer-web/errors"
)

// DiagramRenderer is the narrow capability the adapter drives. The real
// implementation hands the text description to the external diagram engine;
// tests swap in a fake.
type DiagramRenderer interface {
	// Render produces the markup for one diagram inside the identified
	// render scope. Implementations may fail or panic on malformed input.
	Render(scopeID, source string) (template.HTML, error)
}

// MermaidRenderer prepares a mermaid diagram container. The layout engine
// itself runs client-side against this container and is treated as opaque.
type MermaidRenderer struct{}

// NewMermaidRenderer creates the default renderer.
func NewMermaidRenderer() *MermaidRenderer {
	return &MermaidRenderer{}
}

// Render wraps the raw diagram source in a scoped container. The source
// must carry a mermaid graph directive; anything else is rejected so the
// adapter can substitute its error text.
func (r *MermaidRenderer) Render(scopeID, source string) (template.HTML, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", errors.NewRenderError(errors.ErrCodeDiagramRenderFailed, "empty diagram source", nil)
	}

	first := strings.Fields(trimmed)[0]
	switch first {
	case "graph", "flowchart", "sequenceDiagram", "classDiagram", "erDiagram", "stateDiagram", "stateDiagram-v2":
	default:
		return "", errors.NewRenderError(errors.ErrCodeDiagramRenderFailed,
			fmt.Sprintf("unsupported diagram directive %q", first), nil)
	}

	var b strings.Builder
	b.WriteString(`<div class="diagram" id="` + template.HTMLEscapeString(scopeID) + `">`)
	b.WriteString(`<pre class="mermaid">`)
	b.WriteString(template.HTMLEscapeString(trimmed))
	b.WriteString(`</pre></div>`)
	return template.HTML(b.String()), nil
}

// DiagramAdapter renders diagram descriptions into HTML fragments. Each call
// gets a fresh render-scope identifier so rapid re-renders cannot collide,
// and any failure from the renderer is replaced with a plain-text error
// message instead of propagating.
type DiagramAdapter struct {
	renderer DiagramRenderer
	logger   Logger
}

// NewDiagramAdapter creates a diagram adapter around the given renderer.
func NewDiagramAdapter(renderer DiagramRenderer, logger Logger) *DiagramAdapter {
	if renderer == nil {
		renderer = NewMermaidRenderer()
	}
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &DiagramAdapter{renderer: renderer, logger: logger}
}

// RenderDiagram renders the full fragment for a diagram source. A renderer
// error or panic yields an inline error message, never an escaped failure.
func (a *DiagramAdapter) RenderDiagram(source string) (out template.HTML) {
	scopeID := "diagram-" + uuid.New().String()

	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("diagram renderer panicked", fmt.Errorf("%v", rec),
				String("scope_id", scopeID))
			out = renderErrorText(fmt.Sprintf("diagram rendering failed: %v", rec))
		}
	}()

	rendered, err := a.renderer.Render(scopeID, source)
	if err != nil {
		a.logger.Warn("diagram render failed",
			String("scope_id", scopeID),
			String("error", err.Error()))
		reason := "invalid diagram"
		if appErr, ok := errors.AsAppError(err); ok && appErr.Message != "" {
			reason = appErr.Message
		}
		return renderErrorText("diagram rendering failed: " + reason)
	}
	return rendered
}

// renderErrorText builds the plain-text replacement shown when rendering
// fails. The message is escaped; no markup from the failure leaks through.
func renderErrorText(msg string) template.HTML {
	return template.HTML(`<div class="diagram-error">` + template.HTMLEscapeString(msg) + `</div>`)
}
