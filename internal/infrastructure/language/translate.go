package language

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"

	"DocumentTonality/internal/ports"
)

// DefaultChunkBytes stays under the Amazon Translate request limit.
const DefaultChunkBytes = 9000

type translateAPI interface {
	TranslateText(ctx context.Context, in *translate.TranslateTextInput, opts ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// Translator translates text with Amazon Translate, letting the service
// detect the source language.
type Translator struct {
	client     translateAPI
	chunkBytes int
}

var _ ports.Translator = (*Translator)(nil)

// NewTranslator builds the adapter from an AWS config.
func NewTranslator(cfg aws.Config, endpoint string, chunkBytes int) *Translator {
	client := translate.NewFromConfig(cfg, func(o *translate.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return newTranslator(client, chunkBytes)
}

func newTranslator(client translateAPI, chunkBytes int) *Translator {
	if chunkBytes <= 0 {
		chunkBytes = DefaultChunkBytes
	}
	return &Translator{client: client, chunkBytes: chunkBytes}
}

// Translate sends text in request-sized chunks and joins the results.
func (t *Translator) Translate(ctx context.Context, text, target string) (string, error) {
	chunks := Chunk(text, t.chunkBytes)
	translated := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := t.client.TranslateText(ctx, &translate.TranslateTextInput{
			Text:               aws.String(chunk),
			SourceLanguageCode: aws.String("auto"),
			TargetLanguageCode: aws.String(target),
		})
		if err != nil {
			return "", fmt.Errorf("translate chunk %d/%d: %w", i+1, len(chunks), err)
		}
		translated = append(translated, aws.ToString(out.TranslatedText))
	}
	return strings.Join(translated, " "), nil
}

// Chunk splits text on whitespace into pieces of at most limit bytes. Words
// longer than limit are cut on rune boundaries.
func Chunk(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, word := range strings.FieldsFunc(text, unicode.IsSpace) {
		for len(word) > limit {
			flush()
			cut := limit
			for cut > 0 && !utf8.RuneStart(word[cut]) {
				cut--
			}
			if cut == 0 {
				_, cut = utf8.DecodeRuneInString(word)
			}
			chunks = append(chunks, word[:cut])
			word = word[cut:]
		}
		if current.Len() > 0 && current.Len()+1+len(word) > limit {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
	}
	flush()
	return chunks
}
