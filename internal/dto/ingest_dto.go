package dto

// IngestBookMessage is the event payload asking the background consumer to
// (re)index one edition.
type IngestBookMessage struct {
	BookName string `json:"book_name"`
	Version  string `json:"version"`
	Force    bool   `json:"force"`
}

type IngestRequest struct {
	BookName string `json:"book_name" validate:"required"`
	Version  string `json:"version" validate:"required"`
	Force    bool   `json:"force"`
}

// IngestReport summarizes one (book, version) indexing run.
type IngestReport struct {
	Collection string `json:"collection"`
	BookName   string `json:"book_name"`
	Version    string `json:"version"`
	ChunkCount int    `json:"chunk_count"`
	Skipped    bool   `json:"skipped"`
	Error      string `json:"error,omitempty"`
}
