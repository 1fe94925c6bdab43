package language

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"

	"DocumentTonality/internal/ports"
)

type comprehendAPI interface {
	DetectDominantLanguage(ctx context.Context, in *comprehend.DetectDominantLanguageInput, opts ...func(*comprehend.Options)) (*comprehend.DetectDominantLanguageOutput, error)
}

// Comprehend detects languages with Amazon Comprehend.
type Comprehend struct {
	client comprehendAPI
}

var _ ports.LanguageDetector = (*Comprehend)(nil)

// NewComprehend builds the adapter from an AWS config.
func NewComprehend(cfg aws.Config, endpoint string) *Comprehend {
	client := comprehend.NewFromConfig(cfg, func(o *comprehend.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return &Comprehend{client: client}
}

// Detect returns the highest-scoring language code, or "" when none is reported.
func (c *Comprehend) Detect(ctx context.Context, text string) (string, error) {
	out, err := c.client.DetectDominantLanguage(ctx, &comprehend.DetectDominantLanguageInput{
		Text: aws.String(text),
	})
	if err != nil {
		return "", fmt.Errorf("detect dominant language: %w", err)
	}

	var (
		code string
		best float32 = -1
	)
	for _, lang := range out.Languages {
		score := aws.ToFloat32(lang.Score)
		if score > best {
			best = score
			code = aws.ToString(lang.LanguageCode)
		}
	}
	return strings.ToLower(code), nil
}
