package extract

import (
	"fmt"

	"DocumentTonality/internal/domain"
)

// Func converts raw document bytes into plain text.
type Func func(data []byte) (string, error)

// Registry keeps a mapping from document formats to their extraction functions.
type Registry struct {
	extractors map[domain.Format]Func
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: map[domain.Format]Func{}}
}

// Default returns a registry with every supported format registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register(domain.FormatText, Text)
	r.Register(domain.FormatDOCX, DOCX)
	r.Register(domain.FormatPDF, PDF)
	r.Register(domain.FormatHTML, HTML)
	return r
}

// Register adds or replaces the extractor for a format.
func (r *Registry) Register(format domain.Format, fn Func) {
	if r.extractors == nil {
		r.extractors = map[domain.Format]Func{}
	}
	r.extractors[format] = fn
}

// Supports reports whether an extractor is registered for format.
func (r *Registry) Supports(format domain.Format) bool {
	_, ok := r.extractors[format]
	return ok
}

// Extract returns the plain text of data. Failures are *domain.StageError
// values; library panics are recovered into extraction failures.
func (r *Registry) Extract(format domain.Format, data []byte) (text string, err error) {
	fn, ok := r.extractors[format]
	if !ok {
		return "", domain.NewStageError(domain.StageExtract, domain.MsgUnsupportedFormat,
			fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format))
	}

	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = domain.NewStageError(domain.StageExtract, domain.MsgExtractionFailed,
				fmt.Errorf("extract %s: panic: %v", format, rec))
		}
	}()

	text, err = fn(data)
	if err != nil {
		return "", domain.NewStageError(domain.StageExtract, domain.MsgExtractionFailed,
			fmt.Errorf("extract %s: %w", format, err))
	}
	return text, nil
}
