package driven

// Normaliser turns a raw uploaded blob into plain text for chunking.
// Each implementation handles one family of formats.
type Normaliser interface {
	// Normalise extracts plain text from raw content.
	// Returns an error when no text can be extracted.
	Normalise(content []byte, mimeType string) (string, error)

	// SupportedTypes returns MIME types this normaliser handles.
	// Can include wildcards like "text/*" or specific types like "application/pdf".
	SupportedTypes() []string

	// Priority returns the normaliser priority (higher = more specific).
	// Priority ranges:
	//   50-89:  Format-specific (PDF, Markdown)
	//   10-49:  Generic (basic text processing)
	//   1-9:    Fallback (raw text extraction)
	Priority() int
}

// NormaliserRegistry manages content normalisers.
// When multiple normalisers match a MIME type, the highest priority one is used.
type NormaliserRegistry interface {
	// Get retrieves the best-matching normaliser for a MIME type.
	// Returns nil if no normaliser is registered for the type.
	Get(mimeType string) Normaliser

	// GetAll retrieves all normalisers that match a MIME type, sorted by priority (highest first)
	GetAll(mimeType string) []Normaliser

	// Register registers a normaliser
	Register(normaliser Normaliser)

	// List returns all registered MIME types
	List() []string
}
