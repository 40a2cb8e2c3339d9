package driven

import "context"

// Normaliser reads one file format into ordered plain-text pages.
// Page and section breaks of the format start a new page.
type Normaliser interface {
	// Name identifies the format for logging.
	Name() string

	// SupportedExtensions returns lower-case extensions including the dot (".docx").
	SupportedExtensions() []string

	// Normalise converts file content to page texts, in document order.
	Normalise(ctx context.Context, filename string, content []byte) ([]string, error)
}
