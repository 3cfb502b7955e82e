package domain

import "time"

// AIProvider identifies the AI/embedding provider
type AIProvider string

const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// RequiresAPIKey returns true if the provider needs an API key
func (p AIProvider) RequiresAPIKey() bool {
	return p != AIProviderOllama
}

// AISettings holds AI service configuration (embedding and LLM).
// This can be updated at runtime.
type AISettings struct {
	Embedding EmbeddingSettings `json:"embedding"`
	LLM       LLMSettings       `json:"llm"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// EmbeddingSettings configures the embedding service.
// The same settings must be used at ingestion and query time - query and
// chunk embeddings have to come from the same model version.
type EmbeddingSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if embedding settings are properly configured
func (e *EmbeddingSettings) IsConfigured() bool {
	if e.Provider == "" {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings configures the LLM service
type LLMSettings struct {
	Provider AIProvider `json:"provider"`
	Model    string     `json:"model"`
	APIKey   string     `json:"-"` // Never serialize to JSON
	BaseURL  string     `json:"base_url,omitempty"`
}

// IsConfigured returns true if LLM settings are properly configured
func (l *LLMSettings) IsConfigured() bool {
	if l.Provider == "" {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds the tunable retrieval policy knobs.
// Window and overlap sizes are policy choices, not fixed constants.
type RetrievalSettings struct {
	// ChunkWindow is the chunk window size in runes
	ChunkWindow int `json:"chunk_window"`

	// ChunkOverlap is how many runes consecutive windows share, so a fact
	// spanning a window boundary is still retrievable from one chunk
	ChunkOverlap int `json:"chunk_overlap"`

	// TopK is how many chunks a question prompt is grounded on
	TopK int `json:"top_k"`
}

// DefaultRetrievalSettings returns the documented defaults
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		ChunkWindow:  800,
		ChunkOverlap: 160,
		TopK:         4,
	}
}
