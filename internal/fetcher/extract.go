package fetcher

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const blockElements = "p, div, li, tr, pre, table, h1, h2, h3, h4, h5, h6"

// ExtractText returns the visible text of the elements matching selector,
// keeping one line per <br> and block element so the parser can work line
// by line.
func ExtractText(html, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	doc.Find("script, style, noscript").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find(blockElements).Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})

	if selector == "" {
		selector = "body"
	}

	var parts []string
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		parts = append(parts, s.Text())
	})

	return strings.Join(parts, "\n"), nil
}
