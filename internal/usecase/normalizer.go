package usecase

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/ports"
	"DocumentTonality/internal/workerpool"
)

const (
	defaultTargetLanguage = "en"
	defaultSampleSize     = 100
)

var lineBreakExpr = regexp.MustCompile(`\s*[\r\n\t\x08]\s*`)

// NormalizerConfig sets the target language and how much text is sampled for detection.
type NormalizerConfig struct {
	TargetLanguage string
	SampleSize     int
}

// Normalizer cleans text and translates it into the target language when the
// detected sample language differs.
type Normalizer struct {
	detector   ports.LanguageDetector
	translator ports.Translator
	pool       *workerpool.Pool
	target     string
	sampleSize int
	logger     *slog.Logger
}

// NewNormalizer wires detection and translation. A nil detector treats all text
// as already being in the target language.
func NewNormalizer(detector ports.LanguageDetector, translator ports.Translator, pool *workerpool.Pool, cfg NormalizerConfig, logger *slog.Logger) *Normalizer {
	if cfg.TargetLanguage == "" {
		cfg.TargetLanguage = defaultTargetLanguage
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = defaultSampleSize
	}
	return &Normalizer{
		detector:   detector,
		translator: translator,
		pool:       pool,
		target:     strings.ToLower(cfg.TargetLanguage),
		sampleSize: cfg.SampleSize,
		logger:     logger,
	}
}

// Normalize returns cleaned text in the target language.
func (n *Normalizer) Normalize(ctx context.Context, text string) (string, error) {
	cleaned := Clean(text)

	sample := Sample(cleaned, n.sampleSize)
	if n.detector == nil || strings.TrimSpace(sample) == "" {
		return cleaned, nil
	}

	lang, err := workerpool.Run(ctx, n.pool, func() (string, error) {
		return n.detector.Detect(ctx, sample)
	})
	if err != nil {
		return "", domain.NewStageError(domain.StageNormalize, domain.MsgDetectionFailed, err)
	}
	if strings.EqualFold(lang, n.target) {
		return cleaned, nil
	}

	if n.translator == nil {
		return "", domain.NewStageError(domain.StageNormalize, domain.MsgTranslationFailed,
			errors.New("no translator configured"))
	}

	n.debug(ctx, "translating text", "detected", lang, "target", n.target, "length", len(cleaned))
	translated, err := n.translator.Translate(ctx, cleaned, n.target)
	if err != nil {
		return "", domain.NewStageError(domain.StageNormalize, domain.MsgTranslationFailed, err)
	}
	return translated, nil
}

// Clean collapses whitespace around line breaks and tabs into a single space.
func Clean(text string) string {
	return lineBreakExpr.ReplaceAllString(text, " ")
}

// Sample returns at most the first n characters of text.
func Sample(text string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range text {
		if count == n {
			return text[:i]
		}
		count++
	}
	return text
}

func (n *Normalizer) debug(ctx context.Context, msg string, args ...interface{}) {
	if n.logger != nil {
		n.logger.DebugContext(ctx, msg, args...)
	}
}
