package scraper

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScraperConfig(t *testing.T) {
	config := ScraperConfig{
		BaseURL:        "https://ais.gov.bd",
		MaxDepth:       5,
		RateLimit:      1.0,
		IgnorePatterns: []string{"/ignore/", "private"},
		Timeout:        10 * time.Second,
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)
	assert.Equal(t, config.BaseURL, s.config.BaseURL)
	assert.Equal(t, config.MaxDepth, s.config.MaxDepth)
}

func TestShouldProcessURL(t *testing.T) {
	config := ScraperConfig{
		BaseURL:           "https://ais.gov.bd",
		IgnorePatterns:    []string{"/ignore/", "private"},
		AllowedExtensions: []string{".html", "/"},
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)

	tests := []struct {
		url      string
		expected bool
	}{
		{"https://ais.gov.bd/crops/", true},
		{"https://ais.gov.bd/page.html", true},
		{"https://ais.gov.bd/ignore/page.html", false},
		{"https://other-domain.com/page.html", false},
		{"https://ais.gov.bd/file.pdf", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			result := s.shouldProcessURL(tt.url)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestScrapeWithMockServer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`
			<html>
				<head><title>ধানের রোগবালাই</title></head>
				<body>
					<main>
						<h1>ধানের ব্লাস্ট রোগ</h1>
						<p>আক্রান্ত ক্ষেতে ট্রাইসাইক্লাজল স্প্রে করুন।</p>
						<a href="/page2.html">আরও পড়ুন</a>
					</main>
				</body>
			</html>
		`))
	}))
	defer server.Close()

	config := ScraperConfig{
		BaseURL:   server.URL,
		MaxDepth:  1,
		RateLimit: 10,
	}

	s, err := NewWithConfig(config)
	require.NoError(t, err)

	pages, err := s.Scrape(server.URL)
	require.NoError(t, err)
	require.NotEmpty(t, pages)

	page := pages[0]
	assert.Equal(t, server.URL, page.URL)
	assert.Equal(t, "ধানের রোগবালাই", page.Title)
	assert.Contains(t, page.Content, "ব্লাস্ট রোগ")
	assert.Contains(t, page.Content, "ট্রাইসাইক্লাজল")
}

func TestScrape_DoesNotRevisit(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><head><title>loop</title></head><body><main><a href="/">self link</a></main></body></html>`))
	}))
	defer server.Close()

	s, err := NewWithConfig(ScraperConfig{BaseURL: server.URL, MaxDepth: 3, RateLimit: 50})
	require.NoError(t, err)

	pages, err := s.Scrape(server.URL + "/")
	require.NoError(t, err)
	assert.Len(t, pages, 1)
	assert.Equal(t, 1, hits)
}
