package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLParser reduces HTML email bodies to plain text
type HTMLParser struct {
	spaceRegex     *regexp.Regexp
	newlineRegex   *regexp.Regexp
	invisibleRegex *regexp.Regexp
}

// NewHTMLParser creates a new HTML parser
func NewHTMLParser() *HTMLParser {
	return &HTMLParser{
		// Runs of whitespace other than newlines
		spaceRegex: regexp.MustCompile(`[^\S\n]+`),
		// Three or more consecutive newlines
		newlineRegex: regexp.MustCompile(`\n{3,}`),
		// Zero-width and other invisible Unicode characters, common in
		// marketing and phishing mail
		invisibleRegex: regexp.MustCompile(`[\x{200B}-\x{200D}\x{FEFF}\x{00AD}\x{034F}\x{061C}\x{180E}\x{2060}-\x{2064}\x{206A}-\x{206F}\x{FE00}-\x{FE0F}\x{FFF0}-\x{FFF8}]+`),
	}
}

// Text converts an HTML document to clean plain text
func (p *HTMLParser) Text(html string) (string, error) {
	if html == "" {
		return "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	// Markup that never carries readable content
	doc.Find("script, style, head, meta, link").Remove()

	// Block elements become line breaks
	doc.Find("p, div, br, h1, h2, h3, h4, h5, h6, li, tr").Each(func(i int, sel *goquery.Selection) {
		sel.PrependHtml("\n")
	})

	text := p.invisibleRegex.ReplaceAllString(doc.Text(), "")
	text = p.spaceRegex.ReplaceAllString(text, " ")

	// Drop blank lines, trim the rest
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	text = p.newlineRegex.ReplaceAllString(strings.Join(kept, "\n"), "\n\n")

	return strings.TrimSpace(text), nil
}
