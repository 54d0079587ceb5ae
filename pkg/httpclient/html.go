package httpclient

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// summarizeHTML extracts the title and first heading of an HTML error page.
// Gateways in front of the backend answer unauthenticated calls with an SSO
// login page, which is unreadable as a raw snippet.
func summarizeHTML(contentType string, body []byte) string {
	if len(body) == 0 || !strings.Contains(strings.ToLower(contentType), "html") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	title := collapseSpace(doc.Find("title").First().Text())
	heading := collapseSpace(doc.Find("h1").First().Text())

	switch {
	case title == "":
		return heading
	case heading == "" || heading == title:
		return title
	default:
		return title + ": " + heading
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
