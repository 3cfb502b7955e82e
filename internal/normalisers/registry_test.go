package normalisers

import (
	"errors"
	"testing"
)

// mockNormaliser is a configurable test normaliser
type mockNormaliser struct {
	types    []string
	priority int
	output   string
}

func (m *mockNormaliser) Normalise(content []byte, mimeType string) (string, error) {
	if m.output != "" {
		return m.output, nil
	}
	return string(content), nil
}

func (m *mockNormaliser) SupportedTypes() []string {
	return m.types
}

func (m *mockNormaliser) Priority() int {
	return m.priority
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()

	if n := r.Get("text/plain"); n != nil {
		t.Error("expected nil for empty registry")
	}

	low := &mockNormaliser{types: []string{"text/*"}, priority: 10, output: "low"}
	high := &mockNormaliser{types: []string{"text/plain"}, priority: 50, output: "high"}
	r.Register(low)
	r.Register(high)

	got := r.Get("text/plain")
	if got == nil {
		t.Fatal("expected a normaliser")
	}
	out, _ := got.Normalise(nil, "text/plain")
	if out != "high" {
		t.Errorf("expected highest-priority normaliser, got %q", out)
	}

	// Wildcard still matches other text types
	got = r.Get("text/csv")
	out, _ = got.Normalise(nil, "text/csv")
	if out != "low" {
		t.Errorf("expected wildcard normaliser, got %q", out)
	}
}

func TestRegistry_GetAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{types: []string{"text/*"}, priority: 10})
	r.Register(&mockNormaliser{types: []string{"text/plain"}, priority: 50})
	r.Register(&mockNormaliser{types: []string{"application/pdf"}, priority: 60})

	matches := r.GetAll("text/plain")
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Priority() != 50 {
		t.Errorf("expected highest priority first, got %d", matches[0].Priority())
	}
}

func TestRegistry_MIMEParameters(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockNormaliser{types: []string{"text/plain"}, priority: 10})

	if r.Get("text/plain; charset=utf-8") == nil {
		t.Error("expected charset parameter to be stripped before matching")
	}
	if r.Get("TEXT/PLAIN") == nil {
		t.Error("expected MIME matching to be case-insensitive")
	}
}

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	if r.Get("text/plain") == nil {
		t.Error("expected a plain text normaliser")
	}
	if r.Get("text/markdown") == nil {
		t.Error("expected a markdown normaliser")
	}
	if r.Get("application/pdf") == nil {
		t.Error("expected a PDF normaliser")
	}
	// Fallback covers unknown types
	if r.Get("application/octet-stream") == nil {
		t.Error("expected the fallback normaliser to match any type")
	}
}

func TestPlaintextNormaliser(t *testing.T) {
	n := &PlaintextNormaliser{}

	out, err := n.Normalise([]byte("hello\r\nworld\r\n"), "text/plain")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "hello\nworld" {
		t.Errorf("expected normalised line endings, got %q", out)
	}

	_, err = n.Normalise([]byte("   \n  "), "text/plain")
	if !errors.Is(err, ErrNoText) {
		t.Errorf("expected ErrNoText for whitespace-only input, got %v", err)
	}

	_, err = n.Normalise([]byte{0xff, 0xfe, 0x00}, "text/plain")
	if err == nil {
		t.Error("expected error for non-UTF-8 input")
	}
}

func TestMarkdownNormaliser(t *testing.T) {
	n := &MarkdownNormaliser{}

	input := "# Heading\n\nSome **bold** text with a [link](https://example.com).\n\n```\ncode block\n```\n"
	out, err := n.Normalise([]byte(input), "text/markdown")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Heading\n\nSome bold text with a link." {
		t.Errorf("unexpected markdown output: %q", out)
	}
}

func TestPDFNormaliser_BadInput(t *testing.T) {
	n := &PDFNormaliser{}
	if _, err := n.Normalise([]byte("not a pdf"), "application/pdf"); err == nil {
		t.Error("expected error for invalid PDF bytes")
	}
}
