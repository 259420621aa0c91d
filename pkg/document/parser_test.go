package document

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>第一章 绪论</w:t></w:r></w:p>
    <w:p><w:r><w:t>流行病学是研究人群中疾病与健康状态的分布及其决定因素的科学。</w:t></w:r></w:p>
    <w:tbl>
      <w:tr>
        <w:tc><w:p><w:r><w:t>研究类型</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>特点</w:t></w:r></w:p></w:tc>
      </w:tr>
      <w:tr>
        <w:tc><w:p><w:r><w:t>队列研究</w:t></w:r></w:p></w:tc>
        <w:tc><w:p><w:r><w:t>前瞻性</w:t></w:r></w:p></w:tc>
      </w:tr>
    </w:tbl>
    <w:p><w:r><w:t>第二章 疾病分布</w:t></w:r></w:p>
    <w:p><w:r><w:t>疾病的分布可以从时间、地区和人群三个维度描述。</w:t></w:r></w:p>
  </w:body>
</w:document>`

func writeTestDocx(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "test.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(testDocumentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	return path
}

func TestExtractDocxBlocks(t *testing.T) {
	path := writeTestDocx(t, t.TempDir())

	blocks, err := extractDocxBlocks(path)
	require.NoError(t, err)
	require.Len(t, blocks, 5)

	require.False(t, blocks[0].table)
	require.Equal(t, "第一章 绪论", blocks[0].text)

	require.True(t, blocks[2].table)
	require.Equal(t, [][]string{
		{"研究类型", "特点"},
		{"队列研究", "前瞻性"},
	}, blocks[2].rows)
}

func TestParseDocx(t *testing.T) {
	path := writeTestDocx(t, t.TempDir())

	parser := NewParser(500, 100)
	chunks, err := parser.Parse(context.Background(), path, "docx")
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	// Exactly one table chunk, never split.
	var tables []Chunk
	for _, c := range chunks {
		require.NotEmpty(t, c.Content)
		if c.Metadata.ChunkType == ChunkTypeTable {
			tables = append(tables, c)
		}
	}
	require.Len(t, tables, 1)
	require.Equal(t, "研究类型 | 特点\n队列研究 | 前瞻性", tables[0].Content)
	require.Equal(t, "绪论", tables[0].Metadata.Chapter, "table inherits the carried chapter")

	// The chapter carried forward flips at the second heading.
	last := chunks[len(chunks)-1]
	require.Equal(t, "疾病分布", last.Metadata.Chapter)
	require.Positive(t, last.Metadata.Paragraph)
	require.Equal(t, ChunkTypeText, last.Metadata.ChunkType)
}

// stubOCR returns a canned result for one page and nothing for the rest.
type stubOCR struct {
	page int
	text string
}

func (s stubOCR) RecognizePage(_ context.Context, _ string, page int) (string, error) {
	if page == s.page {
		return s.text, nil
	}
	return "", nil
}

func TestParsePDFRecoversBlankPageViaOCR(t *testing.T) {
	parser := NewParser(500, 100, WithOCR(stubOCR{
		page: 1,
		text: "第一章 绪论 流行病学研究疾病在人群中的分布规律及其影响因素。",
	}))
	parser.pdfPages = func(string) ([]string, error) {
		return []string{
			"", // scanned page, no extractable text
			"第二章 疾病分布 疾病的分布可以从时间、地区和人群三个维度描述。",
		}, nil
	}

	chunks, err := parser.Parse(context.Background(), "scanned.pdf", "pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	require.Equal(t, 1, chunks[0].Metadata.Page)
	require.Contains(t, chunks[0].Content, "流行病学研究疾病")
	require.Equal(t, 2, chunks[1].Metadata.Page)
}

func TestParsePDFSkipsPageWhenOCRYieldsNothing(t *testing.T) {
	parser := NewParser(500, 100, WithOCR(stubOCR{}))
	parser.pdfPages = func(string) ([]string, error) {
		return []string{
			"",
			"第二章 疾病分布 疾病的分布可以从时间、地区和人群三个维度描述。",
		}, nil
	}

	chunks, err := parser.Parse(context.Background(), "scanned.pdf", "pdf")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	require.Equal(t, 2, chunks[0].Metadata.Page, "unrecoverable page is skipped, not fatal")
}

func TestParseUnsupportedType(t *testing.T) {
	parser := NewParser(500, 100)
	_, err := parser.Parse(context.Background(), "whatever.epub", "epub")
	require.Error(t, err)
}
