package oracle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"starhaven/internal/observability"

	"google.golang.org/genai"
)

// Gemini implements Oracle on top of the Gemini API. A single generation
// request doubles as the moderation check: the response carries per-category
// safety ratings, and any severity above negligible blocks the content.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed oracle for the given API key and model.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

var _ Oracle = (*Gemini)(nil)

// safetySettings blocks low severity and above on every harm axis, rated by
// severity rather than probability.
func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryDangerousContent,
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
	}
	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, category := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  category,
			Method:    genai.HarmBlockMethodSeverity,
			Threshold: genai.HarmBlockThresholdBlockLowAndAbove,
		})
	}
	return settings
}

func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		MaxOutputTokens: 100,
		Temperature:     genai.Ptr[float32](0.4),
		TopP:            genai.Ptr[float32](1),
		TopK:            genai.Ptr[float32](32),
		SafetySettings:  safetySettings(),
	}
}

func buildContents(content, title string) []*genai.Content {
	parts := make([]*genai.Part, 0, 2)
	if title != "" {
		parts = append(parts, &genai.Part{Text: title})
	}
	parts = append(parts, &genai.Part{Text: content})
	return []*genai.Content{{Role: genai.RoleUser, Parts: parts}}
}

// Check implements Oracle.
func (g *Gemini) Check(ctx context.Context, content, title string) (Verdict, error) {
	start := time.Now()
	defer observability.ObserveOracleCall("check", start)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, buildContents(content, title), generationConfig())
	if err != nil {
		observability.ModerationVerdicts.WithLabelValues("error").Inc()
		return Verdict{}, fmt.Errorf("moderation check: %w", err)
	}
	if len(resp.Candidates) == 0 {
		observability.ModerationVerdicts.WithLabelValues("error").Inc()
		return Verdict{}, fmt.Errorf("moderation check: empty response")
	}

	verdict := verdictFromCandidate(resp.Candidates[0])
	if verdict.Allowed {
		observability.ModerationVerdicts.WithLabelValues("allowed").Inc()
	} else {
		observability.ModerationVerdicts.WithLabelValues("blocked").Inc()
	}
	return verdict, nil
}

// verdictFromCandidate fails toward rejection: any severity rating above
// negligible on any axis blocks, as does a safety finish. Absence of ratings
// means allowed.
func verdictFromCandidate(candidate *genai.Candidate) Verdict {
	var flagged []string
	for _, rating := range candidate.SafetyRatings {
		if rating == nil {
			continue
		}
		severe := rating.Severity != genai.HarmSeverityNegligible &&
			rating.Severity != genai.HarmSeverityUnspecified
		if severe || rating.Blocked {
			flagged = append(flagged, string(rating.Category))
		}
	}
	if candidate.FinishReason == genai.FinishReasonSafety && len(flagged) == 0 {
		flagged = append(flagged, "unspecified")
	}
	return Verdict{Allowed: len(flagged) == 0, HarmCategories: flagged}
}

// Generate implements Oracle.
func (g *Gemini) Generate(ctx context.Context, content, title string) (string, error) {
	start := time.Now()
	defer observability.ObserveOracleCall("generate", start)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, buildContents(content, title), generationConfig())
	if err != nil {
		return "", fmt.Errorf("generation call: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("generation call: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("generation call: no text in response")
	}
	return text, nil
}
