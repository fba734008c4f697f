package config

import (
	"fmt"
	"net/url"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.Gateway.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "gateway.api_key",
			Message: "gateway API key is required",
		})
	}

	if c.Gateway.MaxTokens < 1 || c.Gateway.MaxTokens > 4096 {
		errors = append(errors, ValidationError{
			Field:   "gateway.max_tokens",
			Message: "max_tokens must be between 1 and 4096",
		})
	}

	if c.Gateway.Temperature < 0 || c.Gateway.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "gateway.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	if c.Gateway.BaseURL != "" {
		if _, err := url.Parse(c.Gateway.BaseURL); err != nil {
			errors = append(errors, ValidationError{
				Field:   "gateway.base_url",
				Message: "invalid gateway base URL",
			})
		}
	}

	if c.Database.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "database URL is required",
		})
	} else if _, err := url.Parse(c.Database.URL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "invalid database URL",
		})
	}

	if c.Database.VectorDim < 1 {
		errors = append(errors, ValidationError{
			Field:   "database.vector_dim",
			Message: "vector_dim must be positive",
		})
	}

	if c.Engine.RankLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "engine.rank_limit",
			Message: "rank_limit must be positive",
		})
	}

	if c.Engine.HistoryLimit < 1 || c.Engine.HistoryLimit > 50 {
		errors = append(errors, ValidationError{
			Field:   "engine.history_limit",
			Message: "history_limit must be between 1 and 50",
		})
	}

	if c.Scraper.MaxDepth < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.max_depth",
			Message: "max_depth must be positive",
		})
	}

	if c.Scraper.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Processor.MaxKeywords < 1 {
		errors = append(errors, ValidationError{
			Field:   "processor.max_keywords",
			Message: "max_keywords must be positive",
		})
	}

	return errors
}
