package oracle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestVerdictFromCandidate(t *testing.T) {
	t.Parallel()

	t.Run("no ratings means allowed", func(t *testing.T) {
		t.Parallel()
		v := verdictFromCandidate(&genai.Candidate{})
		assert.True(t, v.Allowed)
		assert.Empty(t, v.HarmCategories)
	})

	t.Run("negligible ratings are allowed", func(t *testing.T) {
		t.Parallel()
		v := verdictFromCandidate(&genai.Candidate{
			SafetyRatings: []*genai.SafetyRating{
				{Category: genai.HarmCategoryHarassment, Severity: genai.HarmSeverityNegligible},
				{Category: genai.HarmCategoryHateSpeech, Severity: genai.HarmSeverityNegligible},
			},
		})
		assert.True(t, v.Allowed)
	})

	t.Run("any severity above negligible blocks", func(t *testing.T) {
		t.Parallel()
		v := verdictFromCandidate(&genai.Candidate{
			SafetyRatings: []*genai.SafetyRating{
				{Category: genai.HarmCategoryHarassment, Severity: genai.HarmSeverityNegligible},
				{Category: genai.HarmCategoryDangerousContent, Severity: genai.HarmSeverityMedium},
			},
		})
		assert.False(t, v.Allowed)
		assert.Equal(t, []string{string(genai.HarmCategoryDangerousContent)}, v.HarmCategories)
	})

	t.Run("blocked flag blocks even with unspecified severity", func(t *testing.T) {
		t.Parallel()
		v := verdictFromCandidate(&genai.Candidate{
			SafetyRatings: []*genai.SafetyRating{
				{Category: genai.HarmCategorySexuallyExplicit, Blocked: true},
			},
		})
		assert.False(t, v.Allowed)
	})

	t.Run("safety finish without ratings blocks", func(t *testing.T) {
		t.Parallel()
		v := verdictFromCandidate(&genai.Candidate{FinishReason: genai.FinishReasonSafety})
		assert.False(t, v.Allowed)
		assert.Equal(t, []string{"unspecified"}, v.HarmCategories)
	})
}
