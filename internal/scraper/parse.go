package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wasgeurtjeNL/retail-sub002/internal/models"
)

// Elements removed before text extraction; they carry chrome, not content.
const nonContentSelector = "script, style, noscript, nav, header, footer, aside, iframe, svg, form"

// Containers tried in priority order for the main body text.
var contentSelectors = []string{
	"main",
	"article",
	"[role='main']",
	"#content",
	".content",
	"#main-content",
	".main-content",
	".page-content",
}

var socialHosts = map[string]string{
	"facebook.com":  models.PlatformFacebook,
	"twitter.com":   models.PlatformTwitter,
	"x.com":         models.PlatformTwitter,
	"instagram.com": models.PlatformInstagram,
	"linkedin.com":  models.PlatformLinkedIn,
	"youtube.com":   models.PlatformYouTube,
}

// parsePage turns rendered markup into a normalized content record. The
// caller fills in timing and transport fields afterwards.
func parsePage(rawURL, html string, opts models.ScrapeOptions) models.ScrapedContent {
	content := models.ScrapedContent{URL: rawURL}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		// Unparseable markup yields an empty-but-valid record; the fetch
		// itself succeeded so this is not a terminal extraction error.
		return content
	}

	base, _ := url.Parse(rawURL)
	content.Technical.HasSSL = base != nil && base.Scheme == "https"

	// Head metadata and responsiveness signals come before the strip pass.
	content.Title = normalizeSpace(doc.Find("title").First().Text())
	content.Description, _ = doc.Find(`meta[name="description"]`).Attr("content")
	content.Description = normalizeSpace(content.Description)
	content.Metadata = models.Metadata{
		Language: strings.TrimSpace(doc.Find("html").AttrOr("lang", "")),
		Viewport: strings.TrimSpace(doc.Find(`meta[name="viewport"]`).AttrOr("content", "")),
		Keywords: normalizeSpace(doc.Find(`meta[name="keywords"]`).AttrOr("content", "")),
	}
	content.Technical.Responsive = detectResponsive(doc, content.Metadata.Viewport)

	// Links, images, and social profiles are collected from the full
	// document; social links usually live in the stripped header/footer.
	links, social := collectLinks(doc, base)
	content.SocialMedia = social
	if opts.ExtractLinks {
		content.Links = links
	}
	if opts.ExtractImages {
		content.Images = collectImages(doc, base)
	}

	mailtos, tels := collectContactHrefs(doc)

	doc.Find(nonContentSelector).Remove()

	doc.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		if h := normalizeSpace(sel.Text()); h != "" {
			content.Headings = append(content.Headings, h)
		}
	})

	content.Content = extractBodyText(doc)

	content.ContactInfo = extractContacts(content.Content, mailtos, tels)
	content.Business = extractBusinessInfo(doc)

	return content
}

// detectResponsive reports whether the page declares a device-width viewport
// or any inline stylesheet carries a media query. Linked cross-origin
// stylesheets cannot be introspected from captured markup; an
// uninspectable sheet counts as "no", a known precision limitation.
func detectResponsive(doc *goquery.Document, viewport string) bool {
	if strings.Contains(strings.ToLower(viewport), "width=device-width") {
		return true
	}
	responsive := false
	doc.Find("style").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if strings.Contains(sel.Text(), "@media") {
			responsive = true
			return false
		}
		return true
	})
	return responsive
}

func extractBodyText(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		if text := normalizeSpace(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return normalizeSpace(doc.Find("body").Text())
}

func collectLinks(doc *goquery.Document, base *url.URL) ([]string, map[string]string) {
	var links []string
	seen := make(map[string]bool)
	social := make(map[string]string)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := resolveURL(base, href)
		if abs == "" {
			return
		}
		if u, err := url.Parse(abs); err == nil {
			host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
			for suffix, platform := range socialHosts {
				if (host == suffix || strings.HasSuffix(host, "."+suffix)) && social[platform] == "" {
					social[platform] = abs
				}
			}
		}
		if !seen[abs] {
			seen[abs] = true
			links = append(links, abs)
		}
	})
	if len(social) == 0 {
		social = nil
	}
	return links, social
}

func collectImages(doc *goquery.Document, base *url.URL) []string {
	var images []string
	seen := make(map[string]bool)
	doc.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		abs := resolveURL(base, src)
		if abs != "" && !seen[abs] {
			seen[abs] = true
			images = append(images, abs)
		}
	})
	return images
}

func collectContactHrefs(doc *goquery.Document) (mailtos, tels []string) {
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		switch {
		case strings.HasPrefix(href, "mailto:"):
			if addr := strings.TrimPrefix(href, "mailto:"); addr != "" {
				mailtos = append(mailtos, strings.SplitN(addr, "?", 2)[0])
			}
		case strings.HasPrefix(href, "tel:"):
			if num := strings.TrimPrefix(href, "tel:"); num != "" {
				tels = append(tels, num)
			}
		}
	})
	return mailtos, tels
}

var businessSelectors = struct {
	hours    string
	services string
	products string
	about    string
}{
	hours:    ".opening-hours, .openingstijden, #opening-hours, .hours, [class*='opening-time']",
	services: ".services li, #services li, .diensten li, [class*='service-list'] li",
	products: ".products li, #products li, .product-title, [class*='product-name']",
	about:    "#about, .about, #over-ons, .over-ons, section[class*='about'], [class*='about-us']",
}

func extractBusinessInfo(doc *goquery.Document) models.BusinessInfo {
	var info models.BusinessInfo

	doc.Find(businessSelectors.hours).Each(func(_ int, sel *goquery.Selection) {
		if len(info.OpeningHours) >= 7 {
			return
		}
		if t := normalizeSpace(sel.Text()); t != "" {
			info.OpeningHours = appendUnique(info.OpeningHours, t, 7)
		}
	})
	doc.Find(businessSelectors.services).Each(func(_ int, sel *goquery.Selection) {
		if t := normalizeSpace(sel.Text()); t != "" {
			info.Services = appendUnique(info.Services, t, 10)
		}
	})
	doc.Find(businessSelectors.products).Each(func(_ int, sel *goquery.Selection) {
		if t := normalizeSpace(sel.Text()); t != "" {
			info.Products = appendUnique(info.Products, t, 10)
		}
	})
	if about := normalizeSpace(doc.Find(businessSelectors.about).First().Text()); about != "" {
		info.About = truncate(about, 1500)
	}
	return info
}

func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	ref.Fragment = ""
	return ref.String()
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func appendUnique(list []string, v string, limit int) []string {
	if len(list) >= limit {
		return list
	}
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
