package models

import "time"

// Digital maturity levels.
const (
	MaturityBasic        = "basic"
	MaturityIntermediate = "intermediate"
	MaturityAdvanced     = "advanced"
)

// DigitalMaturity describes how developed a business's online presence is.
type DigitalMaturity struct {
	Level string   `json:"level"`
	Score int      `json:"score"`
	Areas []string `json:"areas"`
}

// MarketingInsights holds qualitative marketing signals.
type MarketingInsights struct {
	Positioning         string   `json:"positioning"`
	UniqueSellingPoints []string `json:"uniqueSellingPoints"`
	ContentQuality      int      `json:"contentQuality"`
	SEOOptimization     int      `json:"seoOptimization"`
}

// CompetitorAnalysis holds competitive landscape signals.
type CompetitorAnalysis struct {
	SimilarBusinesses     []string `json:"similarBusinesses"`
	CompetitiveAdvantages []string `json:"competitiveAdvantages"`
	MarketGaps            []string `json:"marketGaps"`
}

// BusinessAnalysis is the validated business profile derived from a
// ScrapedContent record. Every numeric score is clamped into its declared
// range and every slice field is non-nil, regardless of what the model
// returned.
type BusinessAnalysis struct {
	URL                 string             `json:"url"`
	BusinessType        string             `json:"businessType"`
	MainActivities      []string           `json:"mainActivities"`
	TargetMarket        string             `json:"targetMarket"`
	BusinessDescription string             `json:"businessDescription"`
	IndustryCategory    string             `json:"industryCategory"`
	KeyServices         []string           `json:"keyServices"`
	Location            string             `json:"location"`
	ConfidenceScore     int                `json:"confidenceScore"`
	Strengths           []string           `json:"strengths"`
	Opportunities       []string           `json:"opportunities"`
	DigitalMaturity     DigitalMaturity    `json:"digitalMaturity"`
	MarketingInsights   MarketingInsights  `json:"marketingInsights"`
	Recommendations     []string           `json:"recommendations"`
	CompetitorAnalysis  CompetitorAnalysis `json:"competitorAnalysis"`
	Timestamp           time.Time          `json:"timestamp"`
	ProcessingTimeMs    int64              `json:"processingTimeMs"`
}

// AnalyzeOptions controls a single analysis run.
type AnalyzeOptions struct {
	Language                  string  `json:"language,omitempty"`
	IncludeRecommendations    bool    `json:"includeRecommendations,omitempty"`
	IncludeCompetitorAnalysis bool    `json:"includeCompetitorAnalysis,omitempty"`
	MaxTokens                 int     `json:"maxTokens,omitempty"`
	Temperature               float64 `json:"temperature,omitempty"`
}

// DefaultAnalyzeOptions returns the options used when a caller passes the
// zero value.
func DefaultAnalyzeOptions() AnalyzeOptions {
	return AnalyzeOptions{
		Language:                  "en",
		IncludeRecommendations:    true,
		IncludeCompetitorAnalysis: true,
		MaxTokens:                 2000,
		Temperature:               0.3,
	}
}

// WebsiteAnalysis is the composed result returned to callers: the raw
// extraction plus the derived business profile.
type WebsiteAnalysis struct {
	Scraped  ScrapedContent   `json:"scraped"`
	Analysis BusinessAnalysis `json:"analysis"`
	CachedAt time.Time        `json:"cachedAt,omitempty"`
}
