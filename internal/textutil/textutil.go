// Package textutil holds small helpers for cleaning feed text.
package textutil

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML removes markup from raw feed text and collapses whitespace.
func StripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return collapse(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapse(stripTags(s))
	}
	return collapse(doc.Text())
}

// stripTags is the fallback for input the HTML parser rejects.
func stripTags(s string) string {
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
