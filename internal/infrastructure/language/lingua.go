package language

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"

	"DocumentTonality/internal/ports"
)

// Lingua detects languages with an in-process n-gram model.
type Lingua struct {
	detector lingua.LanguageDetector
}

var _ ports.LanguageDetector = (*Lingua)(nil)

// NewLingua builds a detector restricted to the given ISO 639-1 codes. With no
// codes every supported language is loaded in low accuracy mode, which keeps
// memory bounded at the cost of weaker results on very short samples.
func NewLingua(codes ...string) (*Lingua, error) {
	builder := lingua.NewLanguageDetectorBuilder()
	if len(codes) == 0 {
		return &Lingua{detector: builder.FromAllLanguages().WithLowAccuracyMode().Build()}, nil
	}
	if len(codes) == 1 {
		return nil, errors.New("lingua needs at least two candidate languages")
	}

	languages, err := languagesFromCodes(codes)
	if err != nil {
		return nil, err
	}
	return &Lingua{detector: builder.FromLanguages(languages...).Build()}, nil
}

// Detect returns the lowercase ISO 639-1 code, or "" when no language is reliable.
func (l *Lingua) Detect(_ context.Context, text string) (string, error) {
	lang, ok := l.detector.DetectLanguageOf(text)
	if !ok {
		return "", nil
	}
	return isoCode(lang), nil
}

func languagesFromCodes(codes []string) ([]lingua.Language, error) {
	known := make(map[string]lingua.Language)
	for _, lang := range lingua.AllLanguages() {
		known[isoCode(lang)] = lang
	}

	languages := make([]lingua.Language, 0, len(codes))
	for _, code := range codes {
		lang, ok := known[strings.ToLower(strings.TrimSpace(code))]
		if !ok {
			return nil, fmt.Errorf("unknown language code %q", code)
		}
		languages = append(languages, lang)
	}
	return languages, nil
}

func isoCode(lang lingua.Language) string {
	return strings.ToLower(lang.IsoCode639_1().String())
}
