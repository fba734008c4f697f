package prompt

import (
	"fmt"
	"strings"

	"github.com/yasar-sys/agri-shokti-bangla-sub001/internal/models"
)

// DefaultSourceLabel is used when a document carries no attribution.
const DefaultSourceLabel = "কৃষি জ্ঞানভান্ডার"

// docSeparator keeps individual documents visually distinct inside the
// context block.
const docSeparator = "\n\n---\n\n"

// DefaultSystemPrompt instructs the model to answer as a Bengali farm
// advisor grounded in the supplied context.
const DefaultSystemPrompt = "তুমি একজন অভিজ্ঞ কৃষি পরামর্শদাতা। কৃষকের প্রশ্নের সহজ বাংলায়, ধাপে ধাপে উত্তর দাও।"

// AssembleContext joins ranked documents into the context block injected
// into the system prompt, in ranked order. ok is false when there is
// nothing to ground the answer on; callers then answer from general
// knowledge and flag the result as ungrounded.
func AssembleContext(ranked []models.RankedDocument) (block string, ok bool) {
	if len(ranked) == 0 {
		return "", false
	}

	parts := make([]string, 0, len(ranked))
	for _, doc := range ranked {
		source := doc.Source
		if source == "" {
			source = DefaultSourceLabel
		}
		parts = append(parts, fmt.Sprintf("%s (%s)\n%s", doc.Title, source, doc.Content))
	}

	return strings.Join(parts, docSeparator), true
}

// BuildSystem composes the per-question system prompt from the base prompt
// and the assembled context block. The prompt is rebuilt on every call so
// each question sees its own fresh ranking.
func BuildSystem(basePrompt, contextBlock string) string {
	if basePrompt == "" {
		basePrompt = DefaultSystemPrompt
	}
	if contextBlock == "" {
		return basePrompt + "\n\nজ্ঞানভান্ডারে প্রাসঙ্গিক তথ্য পাওয়া যায়নি। সাধারণ জ্ঞান থেকে উত্তর দাও এবং উল্লেখ করো যে উত্তরটি জ্ঞানভান্ডার থেকে নয়।"
	}

	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString("\n\nপ্রাসঙ্গিক তথ্য:\n\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nউপরের তথ্যের ভিত্তিতে উত্তর দাও।")
	return b.String()
}

// Sources renders the unique attribution line recorded with an answer.
// Returns nil when the answer was ungrounded.
func Sources(ranked []models.RankedDocument) *string {
	if len(ranked) == 0 {
		return nil
	}

	var sources []string
	seen := make(map[string]bool)
	for _, doc := range ranked {
		label := doc.Source
		if label == "" {
			label = doc.Title
		}
		if !seen[label] {
			sources = append(sources, label)
			seen[label] = true
		}
	}

	joined := strings.Join(sources, ", ")
	return &joined
}
