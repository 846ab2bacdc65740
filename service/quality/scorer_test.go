package quality

import (
	"testing"

	"ecommerce-pipeline/service/models"

	"github.com/stretchr/testify/assert"
)

func dimensionsWithScores(scores map[string]float64) map[string]models.DimensionResult {
	dims := make(map[string]models.DimensionResult, len(scores))
	for name, score := range scores {
		dims[name] = models.DimensionResult{Dimension: name, Score: score}
	}
	return dims
}

func TestPassRateScorer_EqualWeightMean(t *testing.T) {
	dims := dimensionsWithScores(map[string]float64{
		models.DimensionCompleteness: 100,
		models.DimensionValidity:     100,
		models.DimensionConsistency:  99,
		models.DimensionUniqueness:   100,
	})

	score := PassRateScorer{}.Score(dims)
	assert.InDelta(t, 99.75, score, 0.0001)
	assert.Equal(t, "A+ (Excellent)", Grade(score))
}

func TestPassRateScorer_EmptyDimensions(t *testing.T) {
	assert.Equal(t, 100.0, PassRateScorer{}.Score(nil))
}

func TestDeductionScorer(t *testing.T) {
	dims := map[string]models.DimensionResult{
		models.DimensionCompleteness: {
			Results: []models.CheckResult{
				{Status: models.StatusPassed, Severity: models.SeverityError},
				{Status: models.StatusFailed, Severity: models.SeverityError},
				{Status: models.StatusError, Severity: models.SeverityError},
			},
		},
		models.DimensionConsistency: {
			Results: []models.CheckResult{
				{Status: models.StatusFailed, Severity: models.SeverityWarning},
			},
		},
	}

	// ERROR级失败2项扣10分，WARNING级失败1项扣2分
	assert.Equal(t, 88.0, DeductionScorer{}.Score(dims))
}

func TestDeductionScorer_ClampedAtZero(t *testing.T) {
	var results []models.CheckResult
	for i := 0; i < 30; i++ {
		results = append(results, models.CheckResult{
			Status:   models.StatusFailed,
			Severity: models.SeverityError,
		})
	}
	dims := map[string]models.DimensionResult{
		models.DimensionValidity: {Results: results},
	}

	assert.Equal(t, 0.0, DeductionScorer{}.Score(dims))
}

func TestGrade_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		grade string
	}{
		{100, "A+ (Excellent)"},
		{99, "A+ (Excellent)"},
		{98.99, "A (Very Good)"},
		{95, "A (Very Good)"},
		{94.99, "B (Good)"},
		{90, "B (Good)"},
		{89.99, "C (Acceptable)"},
		{80, "C (Acceptable)"},
		{79.99, "F (Needs Attention)"},
		{0, "F (Needs Attention)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.grade, Grade(tt.score), "score=%v", tt.score)
	}
}
