package dto

type BookVersionItem struct {
	Version     string `json:"version"`
	Filename    string `json:"filename"`
	ISBN        string `json:"isbn,omitempty"`
	Publisher   string `json:"publisher,omitempty"`
	PublishYear string `json:"publish_year,omitempty"`
	ChunkCount  int64  `json:"chunk_count"`
	Indexed     bool   `json:"indexed"`
}

type BookItem struct {
	Id       string            `json:"id"`
	Name     string            `json:"name"`
	Versions []BookVersionItem `json:"versions"`
}

type BooksResponse struct {
	Books []BookItem `json:"books"`
}
