// Package ocr provides the fallback text-recognition capability used when a
// document region yields no extractable text. Implementations are best
// effort: an empty result means "nothing recognized" and is never an error
// the caller should fail on.
package ocr

import "context"

// Engine recognizes text from a single page of a document. The parser only
// invokes it when direct extraction produced nothing.
type Engine interface {
	RecognizePage(ctx context.Context, documentPath string, page int) (string, error)
}
