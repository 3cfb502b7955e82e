package driven

// Chunk is a span of normalised document text produced by the
// post-processing pipeline, before embedding.
type Chunk struct {
	// Content is the chunk text
	Content string

	// Position is the chunk's index within the document
	Position int

	// StartOffset is the rune offset in the source content
	StartOffset int

	// EndOffset is the rune offset where the chunk ends
	EndOffset int

	// Metadata carries optional processor annotations
	Metadata map[string]string
}

// PostProcessor transforms chunks after normalisation.
// Processors are chained in Order() sequence by the pipeline.
type PostProcessor interface {
	// Process transforms the chunks
	Process(chunks []Chunk) []Chunk

	// Name returns a human-readable processor name
	Name() string

	// Order returns the processing order (lower runs first)
	Order() int
}

// PostProcessorPipeline turns normalised document text into
// chunks ready for embedding.
type PostProcessorPipeline interface {
	// Process runs the content through all processors in order
	Process(content string) []Chunk

	// Add registers a processor with the pipeline
	Add(processor PostProcessor)

	// List returns processor names in order
	List() []string
}
