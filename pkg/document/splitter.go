package document

import "strings"

var sentenceTerminators = map[rune]bool{
	'。': true,
	'！': true,
	'？': true,
}

// ChunkSplitter segments cleaned text into bounded, overlapping chunks at
// sentence boundaries. Sizes are counted in runes, not bytes, so CJK text is
// measured the same way the chunk budget was chosen.
type ChunkSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

func NewChunkSplitter(chunkSize, chunkOverlap int) *ChunkSplitter {
	return &ChunkSplitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}
}

// Split breaks text into chunks of at most ChunkSize runes. Each chunk after
// the first is seeded with an overlap suffix of its predecessor, trimmed
// forward to a sentence boundary. A single sentence longer than ChunkSize is
// hard-wrapped at the limit so no chunk ever exceeds ChunkSize+ChunkOverlap.
func (s *ChunkSplitter) Split(text string) []string {
	if runeLen(text) <= s.ChunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	cur := ""
	seed := "" // overlap carried at the start of cur; never emitted alone

	for _, sentence := range splitSentences(text) {
		if runeLen(sentence) > s.ChunkSize {
			if runeLen(cur) > runeLen(seed) {
				chunks = append(chunks, cur)
				seed = s.overlapTail(cur)
			}
			pieces := s.wrapWithOverlap(seed, sentence)
			chunks = append(chunks, pieces...)
			seed = s.overlapTail(pieces[len(pieces)-1])
			cur = seed
			continue
		}

		if cur != "" && runeLen(cur)+runeLen(sentence) > s.ChunkSize {
			chunks = append(chunks, cur)
			seed = s.overlapTail(cur)
			cur = seed + sentence
			continue
		}

		cur += sentence
	}

	if runeLen(cur) > runeLen(seed) {
		chunks = append(chunks, cur)
	}

	return chunks
}

// overlapTail returns the suffix seeded into the next chunk: the last
// ChunkOverlap runes of chunk, trimmed forward to the nearest sentence
// boundary so the seed starts with a complete sentence where possible.
func (s *ChunkSplitter) overlapTail(chunk string) string {
	runes := []rune(chunk)
	if len(runes) <= s.ChunkOverlap {
		return chunk
	}

	tail := runes[len(runes)-s.ChunkOverlap:]

	// Skip the final rune so a tail ending on a terminator keeps its whole
	// last sentence instead of degenerating to the bare terminator.
	last := -1
	for i := 0; i < len(tail)-1; i++ {
		if sentenceTerminators[tail[i]] {
			last = i
		}
	}
	if last >= 0 {
		return string(tail[last+1:])
	}
	return string(tail)
}

// TableContent renders table rows as chunk text: non-empty cells joined with
// " | " per row, rows joined with newlines. Tables are never split; the
// caller emits the result as a single table-type chunk.
func TableContent(rows [][]string) string {
	var lines []string
	for _, row := range rows {
		var cells []string
		for _, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell != "" {
				cells = append(cells, cell)
			}
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return strings.Join(lines, "\n")
}

// splitSentences cuts text after every sentence terminator. A trailing
// fragment without a terminator (typically the end of a span) is kept
// verbatim; chunk content never gains characters the source lacked.
func splitSentences(text string) []string {
	var sentences []string
	var cur []rune

	flush := func() {
		sentence := strings.TrimSpace(string(cur))
		cur = cur[:0]
		if sentence == "" {
			return
		}
		sentences = append(sentences, sentence)
	}

	for _, r := range text {
		if r == '\n' {
			r = ' '
		}
		cur = append(cur, r)
		if sentenceTerminators[r] {
			flush()
		}
	}
	flush()

	return sentences
}

// wrapWithOverlap hard-wraps an oversized sentence into ChunkSize-rune slices,
// prefixing the first with the carried overlap seed and each later piece with
// the overlap tail of its predecessor. Every piece stays within
// ChunkSize+ChunkOverlap and begins with a suffix of the chunk before it.
func (s *ChunkSplitter) wrapWithOverlap(seed, sentence string) []string {
	runes := []rune(sentence)
	var pieces []string
	for start := 0; start < len(runes); start += s.ChunkSize {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, seed+string(runes[start:end]))
		seed = s.overlapTail(pieces[len(pieces)-1])
	}
	return pieces
}

func runeLen(s string) int {
	return len([]rune(s))
}
