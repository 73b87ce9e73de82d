package port

import "context"

// TextSource extracts raw text from a document on disk. Extraction is best
// effort: implementations return an empty string with a nil error when the
// document yields no text, and an error only for failures worth logging.
type TextSource interface {
	ExtractText(ctx context.Context, path string) (string, error)
}
