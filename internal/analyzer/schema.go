package analyzer

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

var errNotJSONObject = errors.New("model output is not a JSON object")

// parseAnalysis decodes untrusted model output into a BusinessAnalysis.
// The raw payload is treated as hostile: every field is coerced
// individually, non-array values for array fields become empty arrays, and
// every score is clamped into [0,100]. An error here means the whole payload
// was unusable and the caller should take the fallback path.
func parseAnalysis(raw string) (models.BusinessAnalysis, error) {
	var a models.BusinessAnalysis

	payload := extractJSONObject(raw)
	if payload == "" {
		return a, errNotJSONObject
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return a, errNotJSONObject
	}
	if len(fields) == 0 {
		return a, errNotJSONObject
	}

	a.BusinessType = asString(fields["businessType"])
	a.MainActivities = asStringSlice(fields["mainActivities"])
	a.TargetMarket = asString(fields["targetMarket"])
	a.BusinessDescription = asString(fields["businessDescription"])
	a.IndustryCategory = asString(fields["industryCategory"])
	a.KeyServices = asStringSlice(fields["keyServices"])
	a.Location = asString(fields["location"])
	a.ConfidenceScore = asScore(fields["confidenceScore"])
	a.Strengths = asStringSlice(fields["strengths"])
	a.Opportunities = asStringSlice(fields["opportunities"])
	a.Recommendations = asStringSlice(fields["recommendations"])

	if m := asObject(fields["digitalMaturity"]); m != nil {
		a.DigitalMaturity = models.DigitalMaturity{
			Level: asString(m["level"]),
			Score: asScore(m["score"]),
			Areas: asStringSlice(m["areas"]),
		}
	}
	if m := asObject(fields["marketingInsights"]); m != nil {
		a.MarketingInsights = models.MarketingInsights{
			Positioning:         asString(m["positioning"]),
			UniqueSellingPoints: asStringSlice(m["uniqueSellingPoints"]),
			ContentQuality:      asScore(m["contentQuality"]),
			SEOOptimization:     asScore(m["seoOptimization"]),
		}
	}
	if m := asObject(fields["competitorAnalysis"]); m != nil {
		a.CompetitorAnalysis = models.CompetitorAnalysis{
			SimilarBusinesses:     asStringSlice(m["similarBusinesses"]),
			CompetitiveAdvantages: asStringSlice(m["competitiveAdvantages"]),
			MarketGaps:            asStringSlice(m["marketGaps"]),
		}
	}

	return a, nil
}

// sanitize enforces the structural invariants on both the parsed and the
// fallback path: non-nil slices, a valid maturity level, and clamped scores.
func sanitize(a *models.BusinessAnalysis) {
	if a.BusinessType == "" {
		a.BusinessType = "general business"
	}
	a.MainActivities = nonNil(a.MainActivities)
	a.KeyServices = nonNil(a.KeyServices)
	a.Strengths = nonNil(a.Strengths)
	a.Opportunities = nonNil(a.Opportunities)
	a.Recommendations = nonNil(a.Recommendations)
	a.DigitalMaturity.Areas = nonNil(a.DigitalMaturity.Areas)
	a.MarketingInsights.UniqueSellingPoints = nonNil(a.MarketingInsights.UniqueSellingPoints)
	a.CompetitorAnalysis.SimilarBusinesses = nonNil(a.CompetitorAnalysis.SimilarBusinesses)
	a.CompetitorAnalysis.CompetitiveAdvantages = nonNil(a.CompetitorAnalysis.CompetitiveAdvantages)
	a.CompetitorAnalysis.MarketGaps = nonNil(a.CompetitorAnalysis.MarketGaps)

	switch a.DigitalMaturity.Level {
	case models.MaturityBasic, models.MaturityIntermediate, models.MaturityAdvanced:
	default:
		a.DigitalMaturity.Level = models.MaturityBasic
	}

	a.ConfidenceScore = clampScore(a.ConfidenceScore)
	a.DigitalMaturity.Score = clampScore(a.DigitalMaturity.Score)
	a.MarketingInsights.ContentQuality = clampScore(a.MarketingInsights.ContentQuality)
	a.MarketingInsights.SEOOptimization = clampScore(a.MarketingInsights.SEOOptimization)
}

// extractJSONObject strips markdown fences and surrounding prose, returning
// the outermost {...} span or "".
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func asString(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// asStringSlice returns string elements of an array value. Non-array values
// coerce to an empty slice, never to a wrapped singleton.
func asStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func asObject(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// asScore coerces numbers and numeric strings into a clamped [0,100]
// integer; anything else scores zero.
func asScore(v any) int {
	switch n := v.(type) {
	case float64:
		return clampScore(int(n))
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return clampScore(int(f))
		}
	}
	return 0
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
