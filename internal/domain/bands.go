package domain

import "fmt"

// Band is a named, described classification range [Low, High).
type Band struct {
	Low         float64
	High        float64
	Status      string
	Description string
}

// Contains reports whether score lies in the half-open interval [Low, High).
func (b Band) Contains(score float64) bool {
	return b.Low <= score && score < b.High
}

var polarityBands = [...]Band{
	{-1.0, -0.75, "Extremely negative", "Extremely negative sentiment, harsh criticism."},
	{-0.75, -0.5, "Very negative", "Strongly negative tone."},
	{-0.5, -0.1, "Negative", "Negative sentiment, but not too strong."},
	{-0.1, 0.1, "Neutral", "No significant emotional tone."},
	{0.1, 0.5, "Positive", "Slightly positive tone."},
	{0.5, 0.75, "Very positive", "Clearly positive tone."},
	{0.75, 1.0, "Extremely positive", "Extremely positive sentiment, highly enthusiastic review."},
}

var subjectivityBands = [...]Band{
	{0.0, 0.1, "Completely objective", "Purely factual statements without subjective opinions."},
	{0.1, 0.3, "Rather objective", "Mostly factual statements with a slight hint of subjectivity."},
	{0.3, 0.6, "Mixed", "A mix of subjective and objective statements."},
	{0.6, 0.8, "Rather subjective", "Mostly subjective statements with some factual elements."},
	{0.8, 1.0, "Completely subjective", "Entirely opinion-based statements with no factual basis."},
}

var objectiveSentimentBands = [...]Band{
	{0.0, 0.1, "Completely subjective", "Purely opinion-based statement with weak factual support or overly neutral."},
	{0.1, 0.25, "Rather subjective opinion", "The sentiment is present but leans more toward subjectivity."},
	{0.25, 0.5, "Mixed", "A mix of subjective and objective elements, but lacks clear factual argumentation."},
	{0.5, 0.75, "Rather objective opinion", "The sentiment is noticeable and partly based on facts."},
	{0.75, 1.0, "Objective strong opinion", "The sentiment is clearly defined and based on facts."},
}

// PolarityBands returns a copy of the polarity band table in classification order.
func PolarityBands() []Band {
	bands := polarityBands
	return bands[:]
}

// SubjectivityBands returns a copy of the subjectivity band table.
func SubjectivityBands() []Band {
	bands := subjectivityBands
	return bands[:]
}

// ObjectiveSentimentBands returns a copy of the objective-sentiment band table.
func ObjectiveSentimentBands() []Band {
	bands := objectiveSentimentBands
	return bands[:]
}

// ClassifyPolarity maps a polarity score to its band.
func ClassifyPolarity(score float64) (Band, error) {
	return classify("polarity", polarityBands[:], score)
}

// ClassifySubjectivity maps a subjectivity score to its band.
func ClassifySubjectivity(score float64) (Band, error) {
	return classify("subjectivity", subjectivityBands[:], score)
}

// ClassifyObjectiveSentiment maps an objective sentiment score to its band.
func ClassifyObjectiveSentiment(score float64) (Band, error) {
	return classify("objective sentiment", objectiveSentimentBands[:], score)
}

// classify returns the first band containing score. A score of exactly 1.0
// lies outside every table and yields ErrUnclassified.
func classify(metric string, bands []Band, score float64) (Band, error) {
	for _, band := range bands {
		if band.Contains(score) {
			return band, nil
		}
	}
	return Band{}, fmt.Errorf("%s %v: %w", metric, score, ErrUnclassified)
}
