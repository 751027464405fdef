// Package diagnostics collects non-fatal model diagnostics — the
// "<structName>: <fieldName>: <reason>" lines emitted when an offending
// attribute is cleared and processing continues — and forwards them to a
// structured logger, rather than writing directly to standard output.
package diagnostics

import (
	"fmt"
	"log/slog"
)

// Diagnostic is one non-fatal finding: an invalid or inconsistent attribute
// that was cleared so the model stays internally consistent.
type Diagnostic struct {
	Scope   string // enclosing structure/packet name
	Message string
}

// String renders the diagnostic in the historical "<scope>: <message>" form.
func (d Diagnostic) String() string {
	return d.Scope + ": " + d.Message
}

// Collector accumulates diagnostics during a single parse/validation pass.
// A collector passed by reference lets callers (the CLI) decide the sink,
// instead of the model writing to stdout directly.
type Collector interface {
	Addf(scope, format string, args ...any)
	All() []Diagnostic
}

// SlogCollector is the default Collector: it keeps every diagnostic in
// document order (so the CLI can print the exact historical lines) and also
// emits each one as a structured slog warning for ambient observability.
type SlogCollector struct {
	logger *slog.Logger
	items  []Diagnostic
}

// NewSlogCollector creates a collector backed by logger. A nil logger
// disables structured logging but still records diagnostics for All().
func NewSlogCollector(logger *slog.Logger) *SlogCollector {
	return &SlogCollector{logger: logger}
}

// Addf records a diagnostic scoped to scope, formatted like fmt.Sprintf.
func (c *SlogCollector) Addf(scope, format string, args ...any) {
	d := Diagnostic{Scope: scope, Message: fmt.Sprintf(format, args...)}
	c.items = append(c.items, d)

	if c.logger != nil {
		c.logger.Warn("protocol model diagnostic",
			slog.String("scope", d.Scope),
			slog.String("reason", d.Message),
		)
	}
}

// All returns every diagnostic recorded so far, in document order.
func (c *SlogCollector) All() []Diagnostic {
	return c.items
}
