// Package models defines the data records exchanged between the scraping and
// analysis stages of the pipeline.
package models

import "time"

// Social platform keys used in ScrapedContent.SocialMedia.
const (
	PlatformFacebook  = "facebook"
	PlatformTwitter   = "twitter"
	PlatformInstagram = "instagram"
	PlatformLinkedIn  = "linkedin"
	PlatformYouTube   = "youtube"
)

// Metadata holds page-level metadata tags.
type Metadata struct {
	Language string `json:"language,omitempty"`
	Viewport string `json:"viewport,omitempty"`
	Keywords string `json:"keywords,omitempty"`
}

// ContactInfo holds deduplicated contact details extracted from page text.
type ContactInfo struct {
	Emails    []string `json:"emails,omitempty"`
	Phones    []string `json:"phones,omitempty"`
	Addresses []string `json:"addresses,omitempty"`
}

// BusinessInfo holds optional business-specific fields found via heuristic
// selectors. All fields may be empty.
type BusinessInfo struct {
	OpeningHours []string `json:"openingHours,omitempty"`
	Services     []string `json:"services,omitempty"`
	Products     []string `json:"products,omitempty"`
	About        string   `json:"about,omitempty"`
}

// TechnicalInfo holds technical signals derived during the fetch.
type TechnicalInfo struct {
	LoadTimeMs    int64 `json:"loadTimeMs"`
	StatusCode    int   `json:"statusCode"`
	RedirectCount int   `json:"redirectCount"`
	HasSSL        bool  `json:"hasSsl"`
	Responsive    bool  `json:"responsive"`
}

// ScrapedContent is the normalized record produced by a single extraction.
// When Error is non-empty every other content field is at its zero value;
// a record is never both populated and errored.
type ScrapedContent struct {
	URL         string            `json:"url"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Headings    []string          `json:"headings,omitempty"`
	Content     string            `json:"content,omitempty"`
	Images      []string          `json:"images,omitempty"`
	Links       []string          `json:"links,omitempty"`
	Metadata    Metadata          `json:"metadata"`
	SocialMedia map[string]string `json:"socialMedia,omitempty"`
	ContactInfo ContactInfo       `json:"contactInfo"`
	Business    BusinessInfo      `json:"businessInfo"`
	Technical   TechnicalInfo     `json:"technicalInfo"`
	Error       string            `json:"error,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Failed reports whether the extraction ended in a terminal failure.
func (c ScrapedContent) Failed() bool {
	return c.Error != ""
}

// ScrapeOptions controls a single extraction run.
type ScrapeOptions struct {
	// Timeout bounds the whole navigation, including redirects.
	Timeout time.Duration `json:"timeout,omitempty"`
	// WaitForLoad waits for network idle plus a settle delay after navigation.
	WaitForLoad bool `json:"waitForLoad,omitempty"`
	// ExtractImages includes absolute image URLs in the result.
	ExtractImages bool `json:"extractImages,omitempty"`
	// ExtractLinks includes absolute link URLs in the result.
	ExtractLinks bool `json:"extractLinks,omitempty"`
	// MaxRetries caps the total number of navigation attempts.
	MaxRetries int `json:"maxRetries,omitempty"`
	// FollowRedirects is advisory; the browser engine always follows
	// redirects, and the redirect count is reported in TechnicalInfo.
	FollowRedirects bool `json:"followRedirects,omitempty"`
}

// DefaultScrapeOptions returns the options used when a caller passes the
// zero value.
func DefaultScrapeOptions() ScrapeOptions {
	return ScrapeOptions{
		Timeout:         30 * time.Second,
		WaitForLoad:     true,
		ExtractImages:   true,
		ExtractLinks:    true,
		MaxRetries:      2,
		FollowRedirects: true,
	}
}
