package scraper

import (
	"regexp"
	"strings"

	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\(?\d[\d\s().\-]{6,}\d`)

	// Dutch street-and-number style ("Hoofdstraat 12a") and anglophone
	// number-and-street style ("12 Main Street"), plus NL postcodes.
	dutchStreetPattern = regexp.MustCompile(`\b[A-Z][a-zA-Z]*(?:straat|laan|weg|plein|kade|singel|dijk|gracht|markt)\s+\d+[a-zA-Z]?\b`)
	streetPattern      = regexp.MustCompile(`\b\d+\s+[A-Z][a-z]+\s+(?:Street|St|Avenue|Ave|Road|Rd|Lane|Ln|Drive|Dr|Boulevard|Blvd)\b`)
	postcodePattern    = regexp.MustCompile(`\b\d{4}\s?[A-Z]{2}\b(?:\s+[A-Z][a-z]+)?`)
)

const (
	maxEmails    = 5
	maxPhones    = 5
	maxAddresses = 5
)

// extractContacts pulls deduplicated emails, phone numbers, and addresses
// from the cleaned body text, merged with explicit mailto:/tel: links.
func extractContacts(text string, mailtos, tels []string) models.ContactInfo {
	var info models.ContactInfo

	for _, m := range mailtos {
		if emailPattern.MatchString(m) {
			info.Emails = appendUnique(info.Emails, strings.ToLower(m), maxEmails)
		}
	}
	for _, m := range emailPattern.FindAllString(text, -1) {
		info.Emails = appendUnique(info.Emails, strings.ToLower(m), maxEmails)
	}

	for _, t := range tels {
		if p := normalizePhone(t); p != "" {
			info.Phones = appendUnique(info.Phones, p, maxPhones)
		}
	}
	for _, m := range phonePattern.FindAllString(text, -1) {
		if p := normalizePhone(m); p != "" {
			info.Phones = appendUnique(info.Phones, p, maxPhones)
		}
	}

	for _, re := range []*regexp.Regexp{dutchStreetPattern, streetPattern, postcodePattern} {
		for _, m := range re.FindAllString(text, -1) {
			info.Addresses = appendUnique(info.Addresses, normalizeSpace(m), maxAddresses)
		}
	}

	return info
}

// normalizePhone trims candidate matches and rejects strings without a
// plausible number of digits; bare years and prices match the loose pattern
// but never have eight or more digits.
func normalizePhone(s string) string {
	s = normalizeSpace(s)
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 8 || digits > 15 {
		return ""
	}
	return s
}
