package analyzer

import (
	"strings"

	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

// fallbackConfidence is the fixed low score for heuristic-only profiles.
const fallbackConfidence = 30

// businessTypeKeywords maps profile categories to lowercase keywords matched
// against title, description, and body text. First category with a hit wins;
// order matters.
var businessTypeKeywords = []struct {
	category string
	keywords []string
}{
	{"webshop", []string{"webshop", "winkelwagen", "bestellen", "add to cart", "checkout", "gratis verzending", "kopen", "shop"}},
	{"restaurant", []string{"restaurant", "menukaart", "reserveren", "lunch", "diner", "menu", "eetcafe"}},
	{"consultancy", []string{"consultancy", "consulting", "advies", "adviseur", "coaching", "strategie", "interim"}},
	{"healthcare", []string{"huisarts", "tandarts", "fysiotherapie", "zorg", "kliniek", "praktijk", "clinic", "health"}},
	{"technology", []string{"software", "app ", "development", "automatisering", "ict", "saas", "digital agency", "hosting"}},
}

// knownCities is the fixed list used for location inference when no address
// was extracted.
var knownCities = []string{
	"Amsterdam", "Rotterdam", "Den Haag", "Utrecht", "Eindhoven",
	"Groningen", "Tilburg", "Almere", "Breda", "Nijmegen",
	"Arnhem", "Haarlem", "Amersfoort", "Apeldoorn", "Zwolle",
}

// FallbackAnalysis synthesizes a low-confidence profile from locally
// available heuristics only. It is used whenever the model call fails or
// returns unusable output; it never fails itself and always yields a
// structurally valid analysis.
func FallbackAnalysis(c models.ScrapedContent, opts models.AnalyzeOptions) models.BusinessAnalysis {
	text := strings.ToLower(strings.Join([]string{c.Title, c.Description, c.Content}, " "))

	businessType := inferBusinessType(text)

	a := models.BusinessAnalysis{
		URL:                 c.URL,
		BusinessType:        businessType,
		MainActivities:      []string{},
		TargetMarket:        "local customers",
		BusinessDescription: fallbackDescription(c, businessType),
		IndustryCategory:    businessType,
		KeyServices:         append([]string{}, c.Business.Services...),
		Location:            inferLocation(c),
		ConfidenceScore:     fallbackConfidence,
		Strengths:           fallbackStrengths(c),
		Opportunities:       fallbackOpportunities(c),
		DigitalMaturity:     fallbackMaturity(c),
		MarketingInsights: models.MarketingInsights{
			UniqueSellingPoints: []string{},
			ContentQuality:      contentQualityEstimate(c),
			SEOOptimization:     seoEstimate(c),
		},
		Recommendations: []string{},
		CompetitorAnalysis: models.CompetitorAnalysis{
			SimilarBusinesses:     []string{},
			CompetitiveAdvantages: []string{},
			MarketGaps:            []string{},
		},
	}

	if opts.IncludeRecommendations {
		a.Recommendations = fallbackRecommendations(c)
	}
	return a
}

func inferBusinessType(text string) string {
	for _, group := range businessTypeKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(text, kw) {
				return group.category
			}
		}
	}
	return "general business"
}

func inferLocation(c models.ScrapedContent) string {
	if len(c.ContactInfo.Addresses) > 0 {
		return c.ContactInfo.Addresses[0]
	}
	text := c.Title + " " + c.Description + " " + c.Content
	for _, city := range knownCities {
		if strings.Contains(text, city) {
			return city
		}
	}
	return ""
}

func fallbackDescription(c models.ScrapedContent, businessType string) string {
	if c.Description != "" {
		return c.Description
	}
	if c.Title != "" {
		return c.Title
	}
	return "A " + businessType + " website"
}

func fallbackStrengths(c models.ScrapedContent) []string {
	var s []string
	if c.Technical.HasSSL {
		s = append(s, "Secure (HTTPS) website")
	}
	if c.Technical.Responsive {
		s = append(s, "Mobile-friendly design")
	}
	if len(c.SocialMedia) > 0 {
		s = append(s, "Active social media presence")
	}
	if len(c.ContactInfo.Emails) > 0 || len(c.ContactInfo.Phones) > 0 {
		s = append(s, "Clear contact information")
	}
	if s == nil {
		s = []string{}
	}
	return s
}

func fallbackOpportunities(c models.ScrapedContent) []string {
	var o []string
	if !c.Technical.HasSSL {
		o = append(o, "Enable HTTPS")
	}
	if !c.Technical.Responsive {
		o = append(o, "Improve mobile experience")
	}
	if len(c.SocialMedia) == 0 {
		o = append(o, "Build a social media presence")
	}
	if c.Description == "" {
		o = append(o, "Add a meta description for search engines")
	}
	if o == nil {
		o = []string{}
	}
	return o
}

func fallbackRecommendations(c models.ScrapedContent) []string {
	recs := []string{"Verify business details during onboarding; profile was generated without AI assistance"}
	if len(c.ContactInfo.Addresses) == 0 {
		recs = append(recs, "Publish a physical address to build customer trust")
	}
	if c.Business.About == "" {
		recs = append(recs, "Add an about page describing the business")
	}
	return recs
}

func fallbackMaturity(c models.ScrapedContent) models.DigitalMaturity {
	score := 0
	var areas []string
	if c.Technical.HasSSL {
		score += 25
	} else {
		areas = append(areas, "security")
	}
	if c.Technical.Responsive {
		score += 25
	} else {
		areas = append(areas, "mobile")
	}
	if len(c.SocialMedia) > 0 {
		score += 25
	} else {
		areas = append(areas, "social media")
	}
	if c.Description != "" && c.Metadata.Keywords != "" {
		score += 25
	} else {
		areas = append(areas, "seo")
	}

	level := models.MaturityBasic
	switch {
	case score >= 75:
		level = models.MaturityAdvanced
	case score >= 50:
		level = models.MaturityIntermediate
	}
	if areas == nil {
		areas = []string{}
	}
	return models.DigitalMaturity{Level: level, Score: score, Areas: areas}
}

func contentQualityEstimate(c models.ScrapedContent) int {
	words := len(strings.Fields(c.Content))
	switch {
	case words >= 500:
		return 60
	case words >= 100:
		return 40
	case words > 0:
		return 20
	default:
		return 0
	}
}

func seoEstimate(c models.ScrapedContent) int {
	score := 0
	if c.Title != "" {
		score += 20
	}
	if c.Description != "" {
		score += 20
	}
	if len(c.Headings) > 0 {
		score += 20
	}
	if c.Metadata.Keywords != "" {
		score += 10
	}
	return score
}
