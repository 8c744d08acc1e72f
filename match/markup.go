package match

import (
	stdhtml "html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var stripPolicy = bluemonday.StrictPolicy()

// FontSpan is one emphasis-markup run embedded in node text:
// <font size="NN">...</font>. The size attribute ranks name candidates
// on detail screens (bigger font, more likely the title).
type FontSpan struct {
	Text string `json:"text"`
	Size int    `json:"size"`
}

// FontSpans extracts every sized font span from markup embedded in
// node text. Spans without a parseable size attribute are skipped, as
// are spans whose content is empty after trimming.
func FontSpans(text string) []FontSpan {
	if !strings.Contains(text, "<font") {
		return nil
	}
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil
	}

	var spans []FontSpan
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "font" {
			size, err := strconv.Atoi(getAttr(n, "size"))
			if err == nil {
				if t := strings.TrimSpace(textContent(n)); t != "" {
					spans = append(spans, FontSpan{Text: t, Size: size})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return spans
}

// MarkupTitle returns the first sized font span in text, the single
// highest-trust name signal a listing card exposes.
func MarkupTitle(text string) (string, bool) {
	spans := FontSpans(text)
	if len(spans) == 0 {
		return "", false
	}
	return spans[0].Text, true
}

// StripMarkup removes any markup embedded in node text and resolves
// entities, leaving plain text.
func StripMarkup(text string) string {
	if !strings.ContainsRune(text, '<') && !strings.ContainsRune(text, '&') {
		return text
	}
	return stdhtml.UnescapeString(stripPolicy.Sanitize(text))
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
