package sentiment

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/ports"
)

//go:embed lexicon.yaml
var defaultLexicon []byte

const (
	negationFactor = -0.5
	modifierWindow = 2
)

// Entry scores a single word.
type Entry struct {
	Polarity     float64 `yaml:"polarity"`
	Subjectivity float64 `yaml:"subjectivity"`
}

type lexiconFile struct {
	Words        map[string]Entry   `yaml:"words"`
	Negations    []string           `yaml:"negations"`
	Intensifiers map[string]float64 `yaml:"intensifiers"`
}

// LexiconModel averages per-word polarity and subjectivity over the words of
// a text that appear in its lexicon. Intensifiers scale the next sentiment
// word; negations flip and dampen it.
type LexiconModel struct {
	words        map[string]Entry
	negations    map[string]struct{}
	intensifiers map[string]float64
}

var _ ports.SentimentModel = (*LexiconModel)(nil)

// NewLexiconModel loads the embedded English lexicon.
func NewLexiconModel() (*LexiconModel, error) {
	return ParseLexicon(defaultLexicon)
}

// ParseLexicon builds a model from YAML lexicon data.
func ParseLexicon(raw []byte) (*LexiconModel, error) {
	var file lexiconFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	if len(file.Words) == 0 {
		return nil, fmt.Errorf("lexicon has no words")
	}

	m := &LexiconModel{
		words:        make(map[string]Entry, len(file.Words)),
		negations:    make(map[string]struct{}, len(file.Negations)),
		intensifiers: make(map[string]float64, len(file.Intensifiers)),
	}
	for word, entry := range file.Words {
		m.words[strings.ToLower(word)] = entry
	}
	for _, word := range file.Negations {
		m.negations[strings.ToLower(word)] = struct{}{}
	}
	for word, factor := range file.Intensifiers {
		m.intensifiers[strings.ToLower(word)] = factor
	}
	return m, nil
}

// Analyze scores text. Text without any lexicon word scores (0, 0).
func (m *LexiconModel) Analyze(_ context.Context, text string) (domain.Sentiment, error) {
	var (
		sumPolarity     float64
		sumSubjectivity float64
		assessed        int
		negated         bool
		intensity       = 1.0
		gap             int
	)

	for _, token := range tokenize(text) {
		if m.isNegation(token) {
			negated, gap = true, 0
			continue
		}
		if factor, ok := m.intensifiers[token]; ok {
			intensity, gap = intensity*factor, 0
			continue
		}

		entry, ok := m.words[token]
		if !ok {
			gap++
			if gap > modifierWindow {
				negated, intensity = false, 1.0
			}
			continue
		}

		polarity := entry.Polarity * intensity
		subjectivity := entry.Subjectivity * intensity
		if negated {
			polarity *= negationFactor
		}
		sumPolarity += clamp(polarity, -1, 1)
		sumSubjectivity += clamp(subjectivity, 0, 1)
		assessed++

		negated, intensity, gap = false, 1.0, 0
	}

	if assessed == 0 {
		return domain.Sentiment{}, nil
	}
	return domain.Sentiment{
		Polarity:     clamp(sumPolarity/float64(assessed), -1, 1),
		Subjectivity: clamp(sumSubjectivity/float64(assessed), 0, 1),
	}, nil
}

func (m *LexiconModel) isNegation(token string) bool {
	if _, ok := m.negations[token]; ok {
		return true
	}
	return strings.HasSuffix(token, "n't")
}

func tokenize(text string) []string {
	text = strings.ReplaceAll(strings.ToLower(text), "’", "'")
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
