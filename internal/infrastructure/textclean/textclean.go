package textclean

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Plain strips markup from user-authored text and collapses whitespace.
// Input that cannot be parsed as HTML is returned with whitespace collapsed only.
func Plain(raw string) string {
	if !strings.ContainsAny(raw, "<&") {
		return collapse(raw)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return collapse(raw)
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Text())
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
