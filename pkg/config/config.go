package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Gateway struct {
		BaseURL     string  `yaml:"base_url"`
		APIKey      string  `yaml:"api_key"`
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float64 `yaml:"temperature"`
	} `yaml:"gateway"`

	Embedder struct {
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"embedder"`

	Database struct {
		URL               string `yaml:"url"`
		KnowledgeTable    string `yaml:"knowledge_table"`
		InteractionsTable string `yaml:"interactions_table"`
		VectorDim         int    `yaml:"vector_dim"`
	} `yaml:"database"`

	Engine struct {
		RankLimit    int    `yaml:"rank_limit"`
		HistoryLimit int    `yaml:"history_limit"`
		BasePrompt   string `yaml:"base_prompt"`
	} `yaml:"engine"`

	Scraper struct {
		MaxDepth          int      `yaml:"max_depth"`
		RateLimit         float64  `yaml:"rate_limit"`
		IgnorePatterns    []string `yaml:"ignore_patterns"`
		AllowedExtensions []string `yaml:"allowed_extensions"`
	} `yaml:"scraper"`

	Processor struct {
		MaxKeywords   int    `yaml:"max_keywords"`
		MinContentLen int    `yaml:"min_content_len"`
		Category      string `yaml:"category"`
	} `yaml:"processor"`

	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
}

func LoadConfig(path string) (*Config, error) {
	// If no path provided, try default locations
	if path == "" {
		locations := []string{
			"config.yaml",
			"config.yml",
			filepath.Join(os.Getenv("HOME"), ".config/agri-shokti/config.yaml"),
			"/etc/agri-shokti/config.yaml",
		}

		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	if path == "" {
		return getDefaultConfig()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %v", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %v", err)
	}

	mergeWithEnv(&config)
	applyDefaults(&config)

	return &config, nil
}

func getDefaultConfig() (*Config, error) {
	config := &Config{}
	mergeWithEnv(config)
	applyDefaults(config)
	return config, nil
}

func applyDefaults(config *Config) {
	if config.Gateway.Model == "" {
		config.Gateway.Model = "gpt-3.5-turbo"
	}
	if config.Gateway.MaxTokens == 0 {
		config.Gateway.MaxTokens = 1000
	}
	if config.Gateway.Temperature == 0 {
		config.Gateway.Temperature = 0.7
	}

	if config.Embedder.Model == "" {
		config.Embedder.Model = "nomic-embed-text:latest"
	}
	if config.Embedder.BaseURL == "" {
		config.Embedder.BaseURL = "http://localhost:11434"
	}

	if config.Database.KnowledgeTable == "" {
		config.Database.KnowledgeTable = "knowledge_documents"
	}
	if config.Database.InteractionsTable == "" {
		config.Database.InteractionsTable = "interactions"
	}
	if config.Database.VectorDim == 0 {
		config.Database.VectorDim = 768
	}

	if config.Engine.RankLimit == 0 {
		config.Engine.RankLimit = 5
	}
	if config.Engine.HistoryLimit == 0 {
		config.Engine.HistoryLimit = 20
	}

	if config.Scraper.MaxDepth == 0 {
		config.Scraper.MaxDepth = 3
	}
	if config.Scraper.RateLimit == 0 {
		config.Scraper.RateLimit = 2.0
	}
	if len(config.Scraper.AllowedExtensions) == 0 {
		config.Scraper.AllowedExtensions = []string{".html", ".htm", "/", ""}
	}

	if config.Processor.MaxKeywords == 0 {
		config.Processor.MaxKeywords = 8
	}
	if config.Processor.MinContentLen == 0 {
		config.Processor.MinContentLen = 80
	}

	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
}

func mergeWithEnv(config *Config) {
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.Gateway.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		config.Gateway.BaseURL = baseURL
	}
	if ollamaURL := os.Getenv("OLLAMA_BASE_URL"); ollamaURL != "" {
		config.Embedder.BaseURL = ollamaURL
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		config.Database.URL = dbURL
	}
}
