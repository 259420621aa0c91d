package document

// ChunkType distinguishes prose chunks from whole-table chunks.
type ChunkType string

const (
	ChunkTypeText  ChunkType = "text"
	ChunkTypeTable ChunkType = "table"
)

// Metadata carries the provenance of a chunk: where it came from inside the
// document and which book edition it belongs to. Book fields are stamped by
// the ingestion service, not by the parser itself.
type Metadata struct {
	Chapter   string    `json:"chapter"`
	Section   string    `json:"section,omitempty"`
	Page      int       `json:"page,omitempty"`      // PDF source
	Paragraph int       `json:"paragraph,omitempty"` // DOCX source
	ChunkType ChunkType `json:"chunk_type"`
	BookId    string    `json:"book_id,omitempty"`
	BookName  string    `json:"book_name,omitempty"`
	Version   string    `json:"version,omitempty"`
	Filename  string    `json:"filename,omitempty"`
	FileType  string    `json:"file_type,omitempty"`
}

// Ordinal returns the page number for PDF chunks, falling back to the
// paragraph number for DOCX chunks. Citations key off this value.
func (m Metadata) Ordinal() int {
	if m.Page > 0 {
		return m.Page
	}
	return m.Paragraph
}

// Chunk is the unit of retrieval: a bounded span of document text plus its
// metadata.
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}
