package browser

import (
	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"
)

// NewStealthPage creates a page with bot-detection evasions applied. Many
// small-business sites sit behind CDNs that block obvious headless traffic;
// the stealth patches keep extraction usable against them.
func NewStealthPage(b *rod.Browser) (*rod.Page, error) {
	return stealth.Page(b)
}
