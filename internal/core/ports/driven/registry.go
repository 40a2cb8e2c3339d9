package driven

// NormaliserRegistry selects the normaliser for a file by its extension.
type NormaliserRegistry interface {
	// Register adds a normaliser, replacing any with the same extensions.
	Register(normaliser Normaliser)

	// Lookup returns the normaliser for filename, matching its extension
	// case-insensitively.
	Lookup(filename string) (Normaliser, bool)

	// SupportedExtensions returns every registered extension, sorted.
	SupportedExtensions() []string
}
