package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ChunkerConfig configures how normalized text is split into windows.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// RetrievalConfig bounds what a single query may pull into the prompt.
type RetrievalConfig struct {
	TopK      int `yaml:"top_k"`
	MaxChars  int `yaml:"max_chars"`
	MaxChunks int `yaml:"max_chunks"`
}

// OllamaConfig configures the local Ollama embeddings endpoint.
type OllamaConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// GeminiEmbedderConfig configures embedding via the Gemini API.
type GeminiEmbedderConfig struct {
	Model string `yaml:"model"`
}

// EmbedderConfig selects and configures the embedding client implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	Ollama *OllamaConfig         `yaml:"ollama,omitempty"`
	Gemini *GeminiEmbedderConfig `yaml:"gemini,omitempty"`
}

// CompletionConfig configures the chat completion client.
type CompletionConfig struct {
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// WatcherConfig configures the optional docs-directory ingestion source.
type WatcherConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// AppConfig is the root application configuration.
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Completion CompletionConfig `yaml:"completion"`
	Watcher    WatcherConfig    `yaml:"watcher"`
}

// Load reads a config from path. A missing file yields defaults, not an error.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 1200
		if cfg.Chunker.Overlap == 0 {
			cfg.Chunker.Overlap = 200
		}
	}
	if cfg.Chunker.Overlap < 0 {
		cfg.Chunker.Overlap = 0
	}
	if cfg.Chunker.Overlap >= cfg.Chunker.Size {
		cfg.Chunker.Overlap = cfg.Chunker.Size - 1
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 8
	}
	if cfg.Retrieval.MaxChars == 0 {
		cfg.Retrieval.MaxChars = 12000
	}
	if cfg.Retrieval.MaxChunks == 0 {
		cfg.Retrieval.MaxChunks = 50
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "ollama"
	}
	if cfg.Embedder.Type == "ollama" {
		if cfg.Embedder.Ollama == nil {
			cfg.Embedder.Ollama = &OllamaConfig{}
		}
		if cfg.Embedder.Ollama.BaseURL == "" {
			cfg.Embedder.Ollama.BaseURL = "http://localhost:11434"
		}
		if cfg.Embedder.Ollama.Model == "" {
			cfg.Embedder.Ollama.Model = "nomic-embed-text:v1.5"
		}
		if cfg.Embedder.Ollama.TimeoutSecs == 0 {
			cfg.Embedder.Ollama.TimeoutSecs = 30
		}
	}
	if cfg.Embedder.Type == "gemini" {
		if cfg.Embedder.Gemini == nil {
			cfg.Embedder.Gemini = &GeminiEmbedderConfig{}
		}
		if cfg.Embedder.Gemini.Model == "" {
			cfg.Embedder.Gemini.Model = "text-embedding-004"
		}
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "gemini-2.5-flash"
	}
	if cfg.Completion.TimeoutSecs == 0 {
		cfg.Completion.TimeoutSecs = 60
	}
	if cfg.Watcher.Enabled && cfg.Watcher.Dir == "" {
		cfg.Watcher.Dir = "docs"
	}
}
