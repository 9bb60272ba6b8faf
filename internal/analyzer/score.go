package analyzer

import (
	"regexp"
	"strings"

	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

// Additive confidence rubric weights. The sum is capped at 100.
const (
	scoreRegistration = 20
	scoreAddress      = 15
	scorePhone        = 10
	scoreTestimonials = 15
	scoreAbout        = 10
	scoreSocial       = 10
	scoreSSL          = 10
	scoreSpelling     = 5

	// minAboutChars is the threshold for a "detailed" about page.
	minAboutChars = 200
	// minContentWords is the proxy threshold for the spelling criterion;
	// spelling cannot be verified locally, so substantial readable text
	// earns the small bonus instead.
	minContentWords = 50
)

var (
	registrationPattern = regexp.MustCompile(`(?i)\b(kvk|k\.v\.k\.|kamer van koophandel|chamber of commerce|btw[- ]?(?:nummer|nr|id)|vat (?:number|id))\b`)
	testimonialPattern  = regexp.MustCompile(`(?i)\b(testimonial|review|reviews|beoordeling|beoordelingen|klanten vertellen|wat klanten zeggen)\b`)
)

// ComputeConfidence applies the additive evidence rubric to the extracted
// content. It is deterministic: the same ScrapedContent always yields the
// same score, independent of what the model returned.
func ComputeConfidence(c models.ScrapedContent) int {
	if c.Failed() {
		return 0
	}

	text := strings.ToLower(c.Content + " " + c.Business.About)

	score := 0
	if registrationPattern.MatchString(text) {
		score += scoreRegistration
	}
	if len(c.ContactInfo.Addresses) > 0 {
		score += scoreAddress
	}
	if len(c.ContactInfo.Phones) > 0 {
		score += scorePhone
	}
	if testimonialPattern.MatchString(text) {
		score += scoreTestimonials
	}
	if len(c.Business.About) >= minAboutChars {
		score += scoreAbout
	}
	if len(c.SocialMedia) > 0 {
		score += scoreSocial
	}
	if c.Technical.HasSSL {
		score += scoreSSL
	}
	if len(strings.Fields(c.Content)) >= minContentWords {
		score += scoreSpelling
	}

	return clampScore(score)
}

func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
