// Package file loads the application configuration from a TOML file into
// a typed struct, validated once at startup and passed down into each
// component's constructor.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Provider names recognised in the configuration.
const (
	ProviderOpenAI   = "openai"
	ProviderOllama   = "ollama"
	ProviderPinecone = "pinecone"
	ProviderRedis    = "redis"
	ProviderMemory   = "memory"
)

// Config is the full application configuration.
type Config struct {
	Verbose   bool            `toml:"verbose"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Chat      ChatConfig      `toml:"chat"`
	Embedding ProviderConfig  `toml:"embedding"`
	LLM       ProviderConfig  `toml:"llm"`
	Index     IndexConfig     `toml:"index"`
	Cache     CacheConfig     `toml:"cache"`
	Storage   StorageConfig   `toml:"storage"`
}

// RetrievalConfig holds retrieval defaults.
type RetrievalConfig struct {
	TopK           int     `toml:"top_k"`
	MinScore       float64 `toml:"min_score"`
	ElbowThreshold float64 `toml:"elbow_threshold"`
}

// ChatConfig holds chat defaults.
type ChatConfig struct {
	AnswerTTLSeconds int `toml:"answer_ttl_seconds"`
	MaxTokens        int `toml:"max_tokens"`
}

// ProviderConfig selects and configures a model provider.
type ProviderConfig struct {
	Provider   string `toml:"provider"`
	BaseURL    string `toml:"base_url"`
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// IndexConfig selects and configures the vector index.
type IndexConfig struct {
	Provider  string `toml:"provider"`
	Host      string `toml:"host"`
	APIKey    string `toml:"api_key"`
	Namespace string `toml:"namespace"`
}

// CacheConfig selects and configures the answer cache.
type CacheConfig struct {
	Provider string `toml:"provider"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// StorageConfig configures the blob store.
type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

// Default returns the configuration defaults applied before the file is
// read.
func Default() Config {
	return Config{
		Retrieval: RetrievalConfig{
			TopK:           10,
			MinScore:       0.0,
			ElbowThreshold: 0.05,
		},
		Chat: ChatConfig{
			AnswerTTLSeconds: 15,
			MaxTokens:        500,
		},
		Embedding: ProviderConfig{Provider: ProviderOllama},
		LLM:       ProviderConfig{Provider: ProviderOllama},
		Index:     IndexConfig{Provider: ProviderMemory},
		Cache:     CacheConfig{Provider: ProviderMemory},
	}
}

// DefaultPath returns the default configuration file location,
// ~/.ragstack/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".ragstack", "config.toml"), nil
}

// Load reads the configuration file at path, applies defaults for unset
// fields and validates the result. A missing file yields the validated
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies. It is called
// once at startup; components can then trust their slice of the config.
func (c Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.ElbowThreshold < 0 {
		return fmt.Errorf("retrieval.elbow_threshold must not be negative, got %g", c.Retrieval.ElbowThreshold)
	}
	if c.Chat.AnswerTTLSeconds <= 0 {
		return fmt.Errorf("chat.answer_ttl_seconds must be positive, got %d", c.Chat.AnswerTTLSeconds)
	}

	switch c.Embedding.Provider {
	case ProviderOpenAI:
		if c.Embedding.APIKey == "" {
			return fmt.Errorf("embedding.api_key is required for provider %q", ProviderOpenAI)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}

	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider %q", ProviderOpenAI)
		}
	case ProviderOllama:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	switch c.Index.Provider {
	case ProviderPinecone:
		if c.Index.Host == "" {
			return fmt.Errorf("index.host is required for provider %q", ProviderPinecone)
		}
		if c.Index.APIKey == "" {
			return fmt.Errorf("index.api_key is required for provider %q", ProviderPinecone)
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("unknown index provider %q", c.Index.Provider)
	}

	switch c.Cache.Provider {
	case ProviderRedis:
		if c.Cache.Addr == "" {
			return fmt.Errorf("cache.addr is required for provider %q", ProviderRedis)
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("unknown cache provider %q", c.Cache.Provider)
	}

	return nil
}
