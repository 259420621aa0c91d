package document

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Header/footer line shapes: bare page numbers, "第X页" / "page N" markers,
// "N / M" pagination, and repeated chapter-title lines that printers stamp on
// every page.
var headerFooterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`^第\s*\d+\s*页$`),
	regexp.MustCompile(`(?i)^page\s*\d+$`),
	regexp.MustCompile(`^\d+\s*/\s*\d+$`),
	regexp.MustCompile(`^第[一二三四五六七八九十\d]+章`),
}

var horizontalSpace = regexp.MustCompile(`[ \t\x{3000}]+`)

// minLineRunes drops lines too short to be content. Anything under 3 runes is
// almost always a stray page artifact.
const minLineRunes = 3

// TextCleaner normalizes extracted text before chunking: collapses whitespace
// runs and strips header/footer noise lines. It never reorders content.
type TextCleaner struct{}

func NewTextCleaner() *TextCleaner {
	return &TextCleaner{}
}

// Clean returns the text with whitespace runs collapsed to single spaces and
// header/footer lines removed, preserving line order.
func (c *TextCleaner) Clean(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(horizontalSpace.ReplaceAllString(line, " "))
		if line == "" {
			continue
		}
		if c.isHeaderFooter(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func (c *TextCleaner) isHeaderFooter(line string) bool {
	for _, p := range headerFooterPatterns {
		if p.MatchString(line) {
			return true
		}
	}
	return utf8.RuneCountInString(line) < minLineRunes
}
