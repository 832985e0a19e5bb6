package browser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/chromedp/cdproto/cdp"
)

// minFrameHTMLChars is the floor below which a frame carries no posting
// content worth inlining.
const minFrameHTMLChars = 200

// frameInfo describes one child frame before filtering.
type frameInfo struct {
	URL  string
	Name string
	Seq  int
}

// frameContent is a frame that survived filtering, ready to inline.
type frameContent struct {
	URL  string
	HTML string
}

// skipFrameDomains hosts nothing but ads, trackers, and embedded video.
// Matched as suffixes so subdomains are covered.
var skipFrameDomains = []string{
	"doubleclick.net",
	"googlesyndication.com",
	"googletagmanager.com",
	"google-analytics.com",
	"googleadservices.com",
	"adsystem.com",
	"criteo.com",
	"facebook.com",
	"facebook.net",
	"kakao.com/ad",
	"adpnut.com",
	"youtube.com",
	"youtube-nocookie.com",
	"vimeo.com",
}

// Google ad relay frames come in numbered sequences; only the first ever
// carries a document, the rest are postMessage relays.
var googleAdsSeqPattern = regexp.MustCompile(`google_ads_iframe.*_(\d+)$`)

// isContentFrame reports whether a child frame may carry posting content.
// The top document itself, pseudo-URL frames, ad and tracking frames, and
// trailing ad relay frames are all skipped.
func isContentFrame(f frameInfo, topURL string) bool {
	if f.URL == topURL {
		return false
	}
	trimmed := strings.TrimSpace(f.URL)
	if trimmed == "" || strings.HasPrefix(trimmed, "about:") || strings.HasPrefix(trimmed, "javascript:") {
		return false
	}
	if host := hostOf(trimmed); host != "" {
		for _, domain := range skipFrameDomains {
			if host == domain || strings.HasSuffix(host, "."+domain) {
				return false
			}
		}
	}
	if match := googleAdsSeqPattern.FindStringSubmatch(f.Name); match != nil {
		if n, err := strconv.Atoi(match[1]); err == nil && n > 0 {
			return false
		}
	}
	return true
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// inlineFrames appends each frame's HTML to the document under a marker
// node so downstream extraction sees one combined document.
func inlineFrames(docHTML string, frames []frameContent) string {
	if len(frames) == 0 {
		return docHTML
	}
	var b strings.Builder
	b.WriteString(docHTML)
	for _, f := range frames {
		b.WriteString(fmt.Sprintf("\n<div data-inlined-frame=%q>\n", f.URL))
		b.WriteString(f.HTML)
		b.WriteString("\n</div>")
	}
	return b.String()
}

// nodeAttr returns the first present attribute among names.
func nodeAttr(n *cdp.Node, names ...string) string {
	for _, name := range names {
		for i := 0; i+1 < len(n.Attributes); i += 2 {
			if n.Attributes[i] == name {
				return n.Attributes[i+1]
			}
		}
	}
	return ""
}

// spaContentSelector returns the detail-panel selector for boards that
// render postings entirely client side.
func spaContentSelector(rawURL string) (string, bool) {
	host := hostOf(rawURL)
	if host == "www.wanted.co.kr" || host == "wanted.co.kr" {
		return `[class*="JobDescription"], [class*="JobContent"]`, true
	}
	return "", false
}
