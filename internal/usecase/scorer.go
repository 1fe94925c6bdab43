package usecase

import (
	"context"
	"errors"
	"math"

	"DocumentTonality/internal/domain"
	"DocumentTonality/internal/ports"
	"DocumentTonality/internal/workerpool"
)

// Scorer turns normalized text into a classified SentimentResult.
type Scorer struct {
	model ports.SentimentModel
	pool  *workerpool.Pool
}

// NewScorer wires the sentiment model; model calls go through pool.
func NewScorer(model ports.SentimentModel, pool *workerpool.Pool) *Scorer {
	return &Scorer{model: model, pool: pool}
}

// Score analyzes text and classifies the three metrics.
func (s *Scorer) Score(ctx context.Context, text string) (domain.SentimentResult, error) {
	if s.model == nil {
		return domain.SentimentResult{}, scoringError(errors.New("no sentiment model configured"))
	}

	sentiment, err := workerpool.Run(ctx, s.pool, func() (domain.Sentiment, error) {
		return s.model.Analyze(ctx, text)
	})
	if err != nil {
		return domain.SentimentResult{}, scoringError(err)
	}
	return Classify(sentiment)
}

// Classify derives the objective sentiment score and maps every metric to its band.
func Classify(sentiment domain.Sentiment) (domain.SentimentResult, error) {
	objective := ObjectiveSentiment(sentiment.Polarity, sentiment.Subjectivity)

	polarity, err := domain.ClassifyPolarity(sentiment.Polarity)
	if err != nil {
		return domain.SentimentResult{}, scoringError(err)
	}
	subjectivity, err := domain.ClassifySubjectivity(sentiment.Subjectivity)
	if err != nil {
		return domain.SentimentResult{}, scoringError(err)
	}
	objectiveBand, err := domain.ClassifyObjectiveSentiment(objective)
	if err != nil {
		return domain.SentimentResult{}, scoringError(err)
	}

	return domain.SentimentResult{
		Polarity:                      sentiment.Polarity,
		Subjectivity:                  sentiment.Subjectivity,
		ObjectiveSentimentScore:       objective,
		PolarityStatus:                polarity.Status,
		PolarityDescription:           polarity.Description,
		SubjectivityStatus:            subjectivity.Status,
		SubjectivityDescription:       subjectivity.Description,
		ObjectiveSentimentStatus:      objectiveBand.Status,
		ObjectiveSentimentDescription: objectiveBand.Description,
	}, nil
}

// ObjectiveSentiment is |polarity|^0.8 * (1 - subjectivity^2), and 0 for fully subjective text.
func ObjectiveSentiment(polarity, subjectivity float64) float64 {
	if subjectivity == 1.0 {
		return 0.0
	}
	return math.Pow(math.Abs(polarity), 0.8) * (1 - subjectivity*subjectivity)
}

func scoringError(err error) error {
	return domain.NewStageError(domain.StageScore, domain.MsgScoringFailed+": "+err.Error(), err)
}
