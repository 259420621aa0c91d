package document

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/DianaLeoTang/DT-Study-Companion/pkg/ocr"
)

// Parser turns a source document into ordered, metadata-tagged chunks. It
// drives chapter extraction, cleaning and splitting over PDF pages or DOCX
// paragraphs, with OCR as a best-effort fallback for pages that yield no
// extractable text.
type Parser struct {
	splitter *ChunkSplitter
	cleaner  *TextCleaner
	ocr      ocr.Engine
	logger   *log.Logger

	// pdfPages is the page text source, replaceable in tests.
	pdfPages func(path string) ([]string, error)
}

type ParserOption func(*Parser)

// WithOCR enables the OCR fallback for empty pages.
func WithOCR(engine ocr.Engine) ParserOption {
	return func(p *Parser) { p.ocr = engine }
}

func WithLogger(l *log.Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

func NewParser(chunkSize, chunkOverlap int, opts ...ParserOption) *Parser {
	p := &Parser{
		splitter: NewChunkSplitter(chunkSize, chunkOverlap),
		cleaner:  NewTextCleaner(),
		logger:   log.Default(),
		pdfPages: extractPDFPages,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse reads the document at path and returns its chunks in document order.
// Book-level metadata (book_id, version, ...) is left for the caller to stamp.
func (p *Parser) Parse(ctx context.Context, path, fileType string) ([]Chunk, error) {
	switch strings.ToLower(fileType) {
	case "pdf":
		return p.parsePDF(ctx, path)
	case "docx":
		return p.parseDocx(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", fileType)
	}
}

func (p *Parser) parsePDF(ctx context.Context, path string) ([]Chunk, error) {
	pages, err := p.pdfPages(path)
	if err != nil {
		return nil, err
	}

	extractor := NewChapterExtractor()
	var chunks []Chunk

	for i, text := range pages {
		pageNum := i + 1

		if strings.TrimSpace(text) == "" {
			text = p.recoverPage(ctx, path, pageNum)
			if strings.TrimSpace(text) == "" {
				p.logger.Printf("[WARN] %s page %d yielded no text, skipping", path, pageNum)
				continue
			}
		}

		extractor.Scan(text)
		chapter, section := extractor.Current()

		cleaned := p.cleaner.Clean(text)
		if cleaned == "" {
			continue
		}

		for _, piece := range p.splitter.Split(cleaned) {
			chunks = append(chunks, Chunk{
				Content: strings.TrimSpace(piece),
				Metadata: Metadata{
					Chapter:   chapterOr(chapter, fmt.Sprintf("第%d页", pageNum)),
					Section:   section,
					Page:      pageNum,
					ChunkType: ChunkTypeText,
				},
			})
		}
	}

	return chunks, nil
}

func (p *Parser) parseDocx(path string) ([]Chunk, error) {
	blocks, err := extractDocxBlocks(path)
	if err != nil {
		return nil, err
	}

	extractor := NewChapterExtractor()
	var chunks []Chunk
	ordinal := 0

	for _, block := range blocks {
		ordinal++

		if block.table {
			content := TableContent(block.rows)
			if content == "" {
				continue
			}
			chapter, section := extractor.Current()
			chunks = append(chunks, Chunk{
				Content: content,
				Metadata: Metadata{
					Chapter:   chapterOr(chapter, fmt.Sprintf("第%d段", ordinal)),
					Section:   section,
					Paragraph: ordinal,
					ChunkType: ChunkTypeTable,
				},
			})
			continue
		}

		extractor.Scan(block.text)
		chapter, section := extractor.Current()

		cleaned := p.cleaner.Clean(block.text)
		if cleaned == "" {
			continue
		}

		for _, piece := range p.splitter.Split(cleaned) {
			chunks = append(chunks, Chunk{
				Content: strings.TrimSpace(piece),
				Metadata: Metadata{
					Chapter:   chapterOr(chapter, fmt.Sprintf("第%d段", ordinal)),
					Section:   section,
					Paragraph: ordinal,
					ChunkType: ChunkTypeText,
				},
			})
		}
	}

	return chunks, nil
}

// recoverPage runs the OCR fallback. Failures are non-fatal: the caller skips
// the page on an empty result.
func (p *Parser) recoverPage(ctx context.Context, path string, page int) string {
	if p.ocr == nil {
		return ""
	}
	text, err := p.ocr.RecognizePage(ctx, path, page)
	if err != nil {
		p.logger.Printf("[WARN] OCR fallback failed for %s page %d: %v", path, page, err)
		return ""
	}
	return text
}

func chapterOr(chapter, fallback string) string {
	if chapter != "" {
		return chapter
	}
	return fallback
}
