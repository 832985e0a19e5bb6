package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// maxImageFrameTextChars is the text ceiling under which a frame is
// presumed to present its content as an image.
const maxImageFrameTextChars = 200

// wantsScreenshot reports whether the fetch should capture a full-page
// screenshot: exactly one content frame survived filtering, and that
// frame is image-heavy (almost no text but at least one <img>). Korean
// boards frequently publish the whole posting as a single JPEG inside an
// iframe; the screenshot is the only usable artifact in that case.
func wantsScreenshot(frames []frameContent) bool {
	if len(frames) != 1 {
		return false
	}
	return isImageHeavy(frames[0].HTML)
}

// isImageHeavy reports whether the markup renders images rather than text.
func isImageHeavy(html string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false
	}
	if doc.Find("img").Length() == 0 {
		return false
	}
	text := strings.Join(strings.Fields(doc.Text()), " ")
	return len([]rune(text)) < maxImageFrameTextChars
}
