package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

// maxContentChars bounds how much body text goes into the prompt.
const maxContentChars = 3000

// systemPrompt returns the fixed instruction describing the required JSON
// schema and the additive confidence rubric. The rubric is also computed
// deterministically in code (see score.go); describing it here keeps the
// model's qualitative fields consistent with the evidence-based score.
func systemPrompt(opts models.AnalyzeOptions) string {
	var b strings.Builder
	b.WriteString("You are a business analyst. Analyze the provided website content and respond with a single JSON object, no prose, matching exactly this schema:\n\n")
	b.WriteString(`{
  "businessType": string,
  "mainActivities": [string],
  "targetMarket": string,
  "businessDescription": string,
  "industryCategory": string,
  "keyServices": [string],
  "location": string,
  "confidenceScore": integer 0-100,
  "strengths": [string],
  "opportunities": [string],
  "digitalMaturity": {"level": "basic"|"intermediate"|"advanced", "score": integer 0-100, "areas": [string]},
  "marketingInsights": {"positioning": string, "uniqueSellingPoints": [string], "contentQuality": integer 0-100, "seoOptimization": integer 0-100},
  "recommendations": [string],
  "competitorAnalysis": {"similarBusinesses": [string], "competitiveAdvantages": [string], "marketGaps": [string]}
}`)
	b.WriteString("\n\nScore confidenceScore additively from evidence, capped at 100: chamber-of-commerce registration number present +20, physical address present +15, phone number present +10, testimonials or reviews present +15, detailed about page +10, active social media links +10, HTTPS in use +10, no major spelling errors +5.\n")

	if !opts.IncludeRecommendations {
		b.WriteString("Leave recommendations as an empty array.\n")
	}
	if !opts.IncludeCompetitorAnalysis {
		b.WriteString("Leave all competitorAnalysis arrays empty.\n")
	}
	if opts.Language != "" && opts.Language != "en" {
		fmt.Fprintf(&b, "Write all free-text values in language %q.\n", opts.Language)
	}
	return b.String()
}

// userPrompt serializes the relevant subset of the scraped content into a
// bounded, human-readable prompt body. Every section renders a placeholder
// when empty; sections are never omitted.
func userPrompt(c models.ScrapedContent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Website: %s\n\n", c.URL)

	section(&b, "Title", c.Title)
	section(&b, "Description", c.Description)
	sectionList(&b, "Headings", c.Headings)
	section(&b, "Content", truncateRunes(c.Content, maxContentChars))

	var contact []string
	contact = append(contact, c.ContactInfo.Emails...)
	contact = append(contact, c.ContactInfo.Phones...)
	contact = append(contact, c.ContactInfo.Addresses...)
	sectionList(&b, "Contact information", contact)

	tech := fmt.Sprintf("HTTPS: %v, responsive: %v, status: %d, load time: %dms, redirects: %d",
		c.Technical.HasSSL, c.Technical.Responsive, c.Technical.StatusCode,
		c.Technical.LoadTimeMs, c.Technical.RedirectCount)
	section(&b, "Technical signals", tech)

	platforms := make([]string, 0, len(c.SocialMedia))
	for platform := range c.SocialMedia {
		platforms = append(platforms, platform)
	}
	sort.Strings(platforms)
	social := make([]string, 0, len(platforms))
	for _, platform := range platforms {
		social = append(social, platform+": "+c.SocialMedia[platform])
	}
	sectionList(&b, "Social media", social)

	return b.String()
}

func section(b *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		fmt.Fprintf(b, "%s: No %s available\n\n", name, strings.ToLower(name))
		return
	}
	fmt.Fprintf(b, "%s: %s\n\n", name, value)
}

func sectionList(b *strings.Builder, name string, values []string) {
	section(b, name, strings.Join(values, "; "))
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
