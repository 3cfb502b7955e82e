package normalisers

import (
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/parley-labs/parley-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry routes uploaded documents to a text normaliser by MIME type.
// The slice is kept ordered by descending priority, so lookups take the
// first match and a format-specific normaliser always beats the plain
// text fallback for the same type.
type Registry struct {
	mu      sync.RWMutex
	ordered []driven.Normaliser
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a normaliser, keeping the priority order. Registration
// order breaks ties.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ordered = append(r.ordered, n)
	sort.SliceStable(r.ordered, func(i, j int) bool {
		return r.ordered[i].Priority() > r.ordered[j].Priority()
	})
}

// Get returns the highest-priority normaliser claiming the MIME type,
// or nil when the upload format is unsupported.
func (r *Registry) Get(mimeType string) driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := canonicalType(mimeType)
	for _, n := range r.ordered {
		if claims(n, want) {
			return n
		}
	}
	return nil
}

// GetAll returns every normaliser claiming the MIME type, best first.
func (r *Registry) GetAll(mimeType string) []driven.Normaliser {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := canonicalType(mimeType)
	var matches []driven.Normaliser
	for _, n := range r.ordered {
		if claims(n, want) {
			matches = append(matches, n)
		}
	}
	return matches
}

// List returns the distinct MIME types the registry can handle, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, n := range r.ordered {
		for _, t := range n.SupportedTypes() {
			seen[t] = struct{}{}
		}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// canonicalType lowercases a MIME type and drops parameters, so
// "text/plain; charset=utf-8" routes the same as "text/plain".
func canonicalType(mimeType string) string {
	parsed, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(mimeType))
	}
	return parsed
}

// claims reports whether the normaliser handles the canonical MIME
// type, honouring "*/*" and subtype wildcards like "text/*".
func claims(n driven.Normaliser, want string) bool {
	for _, supported := range n.SupportedTypes() {
		supported = strings.ToLower(strings.TrimSpace(supported))
		switch {
		case supported == want || supported == "*/*":
			return true
		case strings.HasSuffix(supported, "/*"):
			if strings.HasPrefix(want, strings.TrimSuffix(supported, "*")) {
				return true
			}
		}
	}
	return false
}

// DefaultRegistry wires the built-in normalisers: plain text fallback,
// Markdown, and PDF.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&PlaintextNormaliser{})
	r.Register(&MarkdownNormaliser{})
	r.Register(&PDFNormaliser{})
	return r
}
