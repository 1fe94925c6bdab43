package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandTablesAreContiguous(t *testing.T) {
	t.Parallel()

	tables := map[string]struct {
		bands []Band
		low   float64
	}{
		"polarity":            {PolarityBands(), -1.0},
		"subjectivity":        {SubjectivityBands(), 0.0},
		"objective sentiment": {ObjectiveSentimentBands(), 0.0},
	}

	for name, table := range tables {
		require.NotEmpty(t, table.bands, name)
		assert.Equal(t, table.low, table.bands[0].Low, name)
		assert.Equal(t, 1.0, table.bands[len(table.bands)-1].High, name)
		for i := 1; i < len(table.bands); i++ {
			assert.Equal(t, table.bands[i-1].High, table.bands[i].Low, "%s band %d", name, i)
			assert.NotEmpty(t, table.bands[i].Description, "%s band %d", name, i)
		}
	}
}

func TestBandAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	bands := PolarityBands()
	bands[0].Status = "mutated"

	assert.Equal(t, "Extremely negative", PolarityBands()[0].Status)
}

func TestClassifyPolarity(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score float64
		want  string
	}{
		{-1.0, "Extremely negative"},
		{-0.75, "Very negative"},
		{-0.5, "Negative"},
		{-0.1, "Neutral"},
		{0.0, "Neutral"},
		{0.1, "Positive"},
		{0.4999, "Positive"},
		{0.5, "Very positive"},
		{0.75, "Extremely positive"},
		{0.9999, "Extremely positive"},
	}

	for _, tc := range cases {
		band, err := ClassifyPolarity(tc.score)
		require.NoError(t, err, "score %v", tc.score)
		assert.Equal(t, tc.want, band.Status, "score %v", tc.score)
	}
}

func TestClassifySubjectivity(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0.0:  "Completely objective",
		0.1:  "Rather objective",
		0.3:  "Mixed",
		0.6:  "Rather subjective",
		0.75: "Rather subjective",
		0.8:  "Completely subjective",
	}

	for score, want := range cases {
		band, err := ClassifySubjectivity(score)
		require.NoError(t, err, "score %v", score)
		assert.Equal(t, want, band.Status, "score %v", score)
	}
}

func TestClassifyObjectiveSentiment(t *testing.T) {
	t.Parallel()

	cases := map[float64]string{
		0.0:  "Completely subjective",
		0.1:  "Rather subjective opinion",
		0.25: "Mixed",
		0.5:  "Rather objective opinion",
		0.75: "Objective strong opinion",
	}

	for score, want := range cases {
		band, err := ClassifyObjectiveSentiment(score)
		require.NoError(t, err, "score %v", score)
		assert.Equal(t, want, band.Status, "score %v", score)
	}
}

// The closed upper bound of each domain is outside every half-open band.
func TestClassifyUpperBoundIsUnclassified(t *testing.T) {
	t.Parallel()

	classifiers := map[string]func(float64) (Band, error){
		"polarity":            ClassifyPolarity,
		"subjectivity":        ClassifySubjectivity,
		"objective sentiment": ClassifyObjectiveSentiment,
	}

	for name, fn := range classifiers {
		band, err := fn(1.0)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrUnclassified), name)
		assert.Empty(t, band.Status, name)
	}
}

func TestClassifyOutOfDomain(t *testing.T) {
	t.Parallel()

	for _, score := range []float64{-1.01, 1.5, math.NaN(), math.Inf(1)} {
		_, err := ClassifyPolarity(score)
		assert.ErrorIs(t, err, ErrUnclassified, "score %v", score)
	}
	_, err := ClassifySubjectivity(-0.01)
	assert.ErrorIs(t, err, ErrUnclassified)
}
