package document

import (
	"regexp"
	"strings"
)

// Heading is a detected chapter or section title.
type Heading struct {
	Title   string
	Section string
}

// headingPattern pairs a regex with the number of capture groups it yields.
// Single-group patterns capture the title only; two-group patterns capture
// the outline number (section) and the title.
type headingPattern struct {
	re     *regexp.Regexp
	groups int
}

// Heading patterns in priority order. The first pattern that matches wins,
// regardless of which of the scanned lines it matched on.
var headingPatterns = []headingPattern{
	{regexp.MustCompile(`第[一二三四五六七八九十\d]+章\s*([^\n]+)`), 1},
	{regexp.MustCompile(`第[一二三四五六七八九十\d]+节\s*([^\n]+)`), 1},
	{regexp.MustCompile(`^\s*(\d+\.\d+\.\d*)\s+([^\n]+)`), 2},
	{regexp.MustCompile(`^\s*(\d+\.\d*)\s+([^\n]+)`), 2},
	{regexp.MustCompile(`^\s*(\d+)\s+([^\n]+)`), 2},
	{regexp.MustCompile(`^\s*([一二三四五六七八九十]+)\s+([^\n]+)`), 2},
}

// headingScanLines limits heading detection to the top of a span. Chapter
// titles in textbook layouts sit at the top of the page; scanning further
// produces false positives on numbered list items.
const headingScanLines = 5

// ChapterExtractor detects chapter/section headings and carries the last
// detected heading across spans. Detection is sparse: most pages and
// paragraphs contain no heading, so Current keeps returning the previous one
// until a new heading replaces it.
type ChapterExtractor struct {
	chapter string
	section string
}

func NewChapterExtractor() *ChapterExtractor {
	return &ChapterExtractor{}
}

// Scan checks the leading lines of text for a heading. On a match it updates
// the carried state and returns the heading with ok=true.
func (e *ChapterExtractor) Scan(text string) (Heading, bool) {
	lines := leadingLines(text, headingScanLines)

	for _, p := range headingPatterns {
		for _, line := range lines {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			var h Heading
			if p.groups == 1 {
				h = Heading{Title: strings.TrimSpace(m[1])}
			} else {
				h = Heading{Section: strings.TrimSpace(m[1]), Title: strings.TrimSpace(m[2])}
			}
			e.chapter = h.Title
			e.section = h.Section
			return h, true
		}
	}

	return Heading{}, false
}

// Current returns the heading carried over from the last successful Scan.
func (e *ChapterExtractor) Current() (chapter, section string) {
	return e.chapter, e.section
}

func leadingLines(text string, n int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, line)
		if len(out) == n {
			break
		}
	}
	return out
}
