package ranker

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
)

// DefaultLimit is the number of documents injected as context when the
// caller does not ask for a specific count.
const DefaultLimit = 5

// minTokenRunes filters out particles and other very short tokens. Measured
// in runes: Bengali characters are multi-byte and a byte count would pass
// everything through.
const minTokenRunes = 3

// Rank scores every active document against the question and returns the
// top documents by descending score. Scoring is lexical and deterministic:
// +1 for each question token found anywhere in the document's searchable
// text, +2 more when a keyword entry contains the token. Documents that
// match nothing are dropped. Ties keep input order.
func Rank(question string, docs []models.KnowledgeDocument, limit int) []models.RankedDocument {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tokens := Tokenize(question)
	if len(tokens) == 0 {
		return nil
	}

	var ranked []models.RankedDocument
	for _, doc := range docs {
		if !doc.IsActive {
			continue
		}

		searchable := strings.ToLower(doc.Title + " " + doc.Content + " " + strings.Join(doc.Keywords, " "))

		score := 0
		for _, token := range tokens {
			if strings.Contains(searchable, token) {
				score++
			}
			for _, kw := range doc.Keywords {
				if strings.Contains(strings.ToLower(kw), token) {
					score += 2
					break
				}
			}
		}

		if score > 0 {
			ranked = append(ranked, models.RankedDocument{KnowledgeDocument: doc, Score: score})
		}
	}

	// Stable: equal scores keep retrieval order.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// Tokenize lowercases and splits the question on whitespace, dropping
// tokens shorter than three runes.
func Tokenize(question string) []string {
	var tokens []string
	for _, field := range strings.Fields(strings.ToLower(question)) {
		if utf8.RuneCountInString(field) >= minTokenRunes {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
