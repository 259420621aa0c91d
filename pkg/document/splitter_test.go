package document

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewChunkSplitter(100, 20)
	text := "队列研究是一种前瞻性研究方法。"

	chunks := s.Split(text)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}
	if chunks[0] != text {
		t.Errorf("chunk = %q, want input unchanged", chunks[0])
	}
}

func TestSplitBoundsAndOverlap(t *testing.T) {
	const chunkSize, overlap = 60, 15
	s := NewChunkSplitter(chunkSize, overlap)

	var sb strings.Builder
	for i := 0; i < 20; i++ {
		sb.WriteString("队列研究选定暴露与非暴露人群并随访比较发病率差异。")
	}
	text := sb.String()

	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}

	for i, c := range chunks {
		if n := runeLen(c); n > chunkSize+overlap {
			t.Errorf("chunk %d has %d runes, exceeds limit %d", i, n, chunkSize+overlap)
		}
		if c == "" {
			t.Errorf("chunk %d is empty", i)
		}
	}

	assertOverlapChain(t, chunks)
}

// assertOverlapChain checks that every chunk after the first begins with a
// non-empty suffix of its predecessor.
func assertOverlapChain(t *testing.T, chunks []string) {
	t.Helper()
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		found := false
		for tail := 1; tail <= runeLen(prev); tail++ {
			suffix := string([]rune(prev)[runeLen(prev)-tail:])
			if strings.HasPrefix(cur, suffix) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("chunk %d does not start with a suffix of chunk %d:\nprev=%q\ncur=%q", i, i-1, prev, cur)
		}
	}
}

func TestSplitOverlapStartsAtSentenceBoundary(t *testing.T) {
	s := NewChunkSplitter(30, 14)

	text := "暴露测量要求统一标准。随访时间必须足够长。结局判定需要盲法。失访偏倚应当控制。样本量要预先估算。"
	chunks := s.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want at least 2", len(chunks))
	}

	// The overlap seed was trimmed to a sentence boundary, so later chunks
	// must not begin mid-sentence when the overlap window spans one.
	for i := 1; i < len(chunks); i++ {
		first := []rune(chunks[i])[0]
		if sentenceTerminators[first] {
			t.Errorf("chunk %d starts with a bare terminator: %q", i, chunks[i])
		}
	}
}

func TestSplitHardWrapsOversizedSentence(t *testing.T) {
	s := NewChunkSplitter(20, 5)
	text := strings.Repeat("长", 55) + "。另有一句。"

	chunks := s.Split(text)
	for i, c := range chunks {
		if n := runeLen(c); n > 25 {
			t.Errorf("chunk %d has %d runes, exceeds limit", i, n)
		}
	}
	assertOverlapChain(t, chunks)
}

func TestSplitOversizedSentenceMidStreamKeepsOverlap(t *testing.T) {
	s := NewChunkSplitter(20, 5)
	text := "短句一。短句二。" + strings.Repeat("长", 55) + "。结尾句。"

	chunks := s.Split(text)
	if len(chunks) < 3 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if n := runeLen(c); n > 25 {
			t.Errorf("chunk %d has %d runes, exceeds limit", i, n)
		}
	}
	// The wrapped pieces must chain back to the chunk emitted before the
	// oversized sentence, and to each other.
	assertOverlapChain(t, chunks)
}

func TestSplitKeepsUnterminatedTailVerbatim(t *testing.T) {
	s := NewChunkSplitter(10, 3)
	text := "前一句的内容足够长了。结尾无标点"

	chunks := s.Split(text)
	if len(chunks) == 0 {
		t.Fatal("got no chunks")
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(last, "结尾无标点") {
		t.Errorf("last chunk = %q, want it to end with the source's final fragment", last)
	}
	if strings.Contains(last, "结尾无标点。") {
		t.Errorf("last chunk = %q, terminator was invented", last)
	}
}

func TestTableContent(t *testing.T) {
	rows := [][]string{
		{"研究类型", "优点", "缺点"},
		{"队列研究", "因果推断强", " 费用高 "},
		{"", ""},
	}

	got := TableContent(rows)
	want := "研究类型 | 优点 | 缺点\n队列研究 | 因果推断强 | 费用高"
	if got != want {
		t.Errorf("TableContent = %q, want %q", got, want)
	}
}
