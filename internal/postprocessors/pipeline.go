package postprocessors

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/parley-labs/parley-core/internal/core/domain"
	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.PostProcessorPipeline = (*Pipeline)(nil)

// Pipeline implements PostProcessorPipeline.
// Normalised document text goes in, embedding-ready chunks come out.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.PostProcessor
}

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Add registers a processor. The chain is kept sorted by Order().
func (p *Pipeline) Add(processor driven.PostProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.processors = append(p.processors, processor)
	sort.SliceStable(p.processors, func(i, j int) bool {
		return p.processors[i].Order() < p.processors[j].Order()
	})
}

// Process runs the content through every processor in order.
func (p *Pipeline) Process(content string) []driven.Chunk {
	p.mu.RLock()
	processors := make([]driven.PostProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.RUnlock()

	chunks := []driven.Chunk{{
		Content:   content,
		EndOffset: len([]rune(content)),
	}}
	for _, proc := range processors {
		chunks = proc.Process(chunks)
	}
	return chunks
}

// List returns processor names in chain order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// DefaultPipeline chains the chunker, whitespace normalizer and
// deduplicator with the default windowing.
func DefaultPipeline() *Pipeline {
	return PipelineFor(domain.DefaultRetrievalSettings())
}

// PipelineFor builds the default chain with the chunker sized from
// the given retrieval settings.
func PipelineFor(settings domain.RetrievalSettings) *Pipeline {
	config := DefaultChunkConfig()
	if settings.ChunkWindow > 0 {
		config.Window = settings.ChunkWindow
	}
	if settings.ChunkOverlap >= 0 {
		config.Overlap = settings.ChunkOverlap
	}
	p := NewPipeline()
	p.Add(NewChunker(config))
	p.Add(NewWhitespaceNormalizer())
	p.Add(NewDeduplicator(DefaultDeduplicatorConfig()))
	return p
}

// ChunkConfig sizes the chunker. Window and Overlap are counted in
// runes so multi-byte text windows the same as ASCII.
type ChunkConfig struct {
	// Window is the maximum chunk size
	Window int

	// Overlap is carried from the tail of one window into the next
	Overlap int

	// SoftBreaks prefers paragraph, sentence and word boundaries
	// near the window edge over hard cuts
	SoftBreaks bool
}

// DefaultChunkConfig returns the windowing used for FAQ and policy
// documents when no retrieval settings override it.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		Window:     800,
		Overlap:    160,
		SoftBreaks: true,
	}
}

// Chunker splits document text into overlapping windows.
// First in the chain (Order 0).
type Chunker struct {
	config ChunkConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Chunker)(nil)

// NewChunker creates a chunker with the given windowing.
func NewChunker(config ChunkConfig) *Chunker {
	return &Chunker{config: config}
}

func (c *Chunker) Name() string { return "chunker" }

func (c *Chunker) Order() int { return 0 }

// Process windows each incoming chunk. Positions are assigned
// sequentially across the whole document.
func (c *Chunker) Process(chunks []driven.Chunk) []driven.Chunk {
	var result []driven.Chunk
	position := 0
	for _, chunk := range chunks {
		for _, piece := range c.window([]rune(chunk.Content), chunk.StartOffset) {
			piece.Position = position
			position++
			result = append(result, piece)
		}
	}
	return result
}

func (c *Chunker) window(runes []rune, base int) []driven.Chunk {
	if len(runes) <= c.config.Window {
		return []driven.Chunk{{
			Content:     string(runes),
			StartOffset: base,
			EndOffset:   base + len(runes),
		}}
	}

	var chunks []driven.Chunk
	start := 0
	for start < len(runes) {
		end := start + c.config.Window
		if end >= len(runes) {
			end = len(runes)
		} else if c.config.SoftBreaks {
			if bp := breakPoint(runes, start, end); bp > start {
				end = bp
			}
		}

		chunks = append(chunks, driven.Chunk{
			Content:     string(runes[start:end]),
			StartOffset: base + start,
			EndOffset:   base + end,
		})

		if end >= len(runes) {
			break
		}
		next := end - c.config.Overlap
		if next <= start {
			// Overlap would stall the window; skip it
			next = end
		}
		start = next
	}
	return chunks
}

// breakPoint searches the last stretch of a window for the best cut:
// a paragraph break, then a sentence end, then any word boundary.
// Returns end when the stretch has no boundary at all.
func breakPoint(runes []rune, start, end int) int {
	floor := end - 120
	if floor < start {
		floor = start
	}

	for i := end - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	for i := end - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) && isSentenceEnd(runes[i-1]) {
			return i + 1
		}
	}
	for i := end - 1; i > floor; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return end
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// WhitespaceNormalizer cleans each chunk: unified line endings,
// collapsed runs of spaces, at most one blank line, trimmed edges.
// Chunks that end up empty are dropped.
type WhitespaceNormalizer struct{}

// Verify interface compliance
var _ driven.PostProcessor = (*WhitespaceNormalizer)(nil)

// NewWhitespaceNormalizer creates a whitespace normalizer.
func NewWhitespaceNormalizer() *WhitespaceNormalizer {
	return &WhitespaceNormalizer{}
}

func (w *WhitespaceNormalizer) Name() string { return "whitespace-normalizer" }

func (w *WhitespaceNormalizer) Order() int { return 5 }

func (w *WhitespaceNormalizer) Process(chunks []driven.Chunk) []driven.Chunk {
	result := make([]driven.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		cleaned := cleanWhitespace(chunk.Content)
		if cleaned == "" {
			continue
		}
		chunk.Content = cleaned
		result = append(result, chunk)
	}
	return result
}

func cleanWhitespace(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	content = strings.Join(lines, "\n")

	for strings.Contains(content, "\n\n\n") {
		content = strings.ReplaceAll(content, "\n\n\n", "\n\n")
	}
	return strings.TrimSpace(content)
}

// DeduplicatorConfig tunes duplicate removal.
type DeduplicatorConfig struct {
	// MinLength is the shortest chunk considered for deduplication;
	// shorter chunks (headings, list fragments) always pass through
	MinLength int
}

// DefaultDeduplicatorConfig returns the default threshold.
func DefaultDeduplicatorConfig() DeduplicatorConfig {
	return DeduplicatorConfig{MinLength: 50}
}

// Deduplicator drops chunks whose normalised text was already seen.
// Boilerplate repeated across pages (footers, disclaimers) would
// otherwise crowd the retrieval results.
type Deduplicator struct {
	config DeduplicatorConfig
}

// Verify interface compliance
var _ driven.PostProcessor = (*Deduplicator)(nil)

// NewDeduplicator creates a deduplicator with the given config.
func NewDeduplicator(config DeduplicatorConfig) *Deduplicator {
	return &Deduplicator{config: config}
}

func (d *Deduplicator) Name() string { return "deduplicator" }

func (d *Deduplicator) Order() int { return 10 }

func (d *Deduplicator) Process(chunks []driven.Chunk) []driven.Chunk {
	if len(chunks) <= 1 {
		return chunks
	}

	seen := make(map[string]bool, len(chunks))
	result := make([]driven.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Content) >= d.config.MinLength {
			key := strings.ToLower(strings.TrimSpace(chunk.Content))
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		result = append(result, chunk)
	}
	return result
}
