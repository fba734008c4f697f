package processor

import (
	"crypto/sha1"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
)

type ProcessorConfig struct {
	MaxKeywords     int    // keywords extracted per document
	MinContentLen   int    // pages shorter than this are dropped as navigation stubs
	Category        string // category stamped on every produced document
	CustomStopwords []string
}

// Processor turns raw scraped pages into knowledge documents: cleaned
// content, a deterministic id, and frequency-ranked keywords that feed the
// ranker's keyword bonus.
type Processor struct {
	config    ProcessorConfig
	stopwords map[string]bool
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.MaxKeywords == 0 {
		config.MaxKeywords = 8
	}
	if config.MinContentLen == 0 {
		config.MinContentLen = 80
	}

	stopwords := make(map[string]bool)
	for _, w := range defaultStopwords() {
		stopwords[w] = true
	}
	for _, w := range config.CustomStopwords {
		stopwords[strings.ToLower(w)] = true
	}

	return Processor{
		config:    config,
		stopwords: stopwords,
	}
}

// Process converts pages into documents, dropping pages with no usable
// content.
func (p *Processor) Process(pages []models.Page) ([]models.KnowledgeDocument, error) {
	var docs []models.KnowledgeDocument

	for _, page := range pages {
		content := p.cleanText(page.Content)
		if len(content) < p.config.MinContentLen {
			continue
		}

		title := strings.TrimSpace(page.Title)
		if title == "" {
			title = page.URL
		}

		docs = append(docs, models.KnowledgeDocument{
			ID:       documentID(page.URL),
			Title:    title,
			Content:  content,
			Keywords: p.ExtractKeywords(title + " " + content),
			Category: p.config.Category,
			Source:   sourceLabel(page.URL),
			IsActive: true,
		})
	}

	return docs, nil
}

// ExtractKeywords returns the most frequent non-stopword terms, most
// frequent first. Ties keep first-seen order so extraction is
// deterministic.
func (p *Processor) ExtractKeywords(text string) []string {
	counts := make(map[string]int)
	var order []string

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:!?\"'()[]{}।॥|—-")
		if utf8.RuneCountInString(word) < 3 || p.stopwords[word] {
			continue
		}
		if counts[word] == 0 {
			order = append(order, word)
		}
		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > p.config.MaxKeywords {
		order = order[:p.config.MaxKeywords]
	}
	return order
}

func (p *Processor) cleanText(text string) string {
	return strings.TrimSpace(strings.Join(strings.Fields(text), " "))
}

func documentID(pageURL string) string {
	return fmt.Sprintf("%x", sha1.Sum([]byte(pageURL)))
}

func sourceLabel(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return pageURL
	}
	return parsed.Host
}

// Common filler words in the two languages the knowledge base carries.
func defaultStopwords() []string {
	return []string{
		// English
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with",
		// Bengali
		"এবং", "একটি", "এই", "করা", "করে", "কিছু", "কিন্তু", "থেকে",
		"তার", "তাদের", "দিয়ে", "না", "যা", "যায়", "হয়", "হবে",
		"হতে", "জন্য", "সাথে", "অথবা", "আরও", "পরে", "মধ্যে",
	}
}
