// Package search defines the web search collaborator and the helpers that
// turn its results into prompt context and citation cards.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Yash3561/Nexus/pkg/utils"
)

// ErrNotConfigured is returned when no search API key is set.
var ErrNotConfigured = errors.New("search: no API key configured")

const (
	contextResults    = 5
	contextContentLen = 300
	sourceCards       = 4
	sourceTitleLen    = 80
)

// Searcher queries the web.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (*Result, error)
}

// Hit is one search result.
type Hit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// Result is the answer to one query.
type Result struct {
	Query   string `json:"query"`
	Answer  string `json:"answer,omitempty"`
	Results []Hit  `json:"results"`
}

// Source is a citation card shown next to a reply.
type Source struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

var questionStarters = []string{
	"who", "what", "when", "where", "why", "how",
	"is", "are", "was", "were", "will", "can", "could",
	"do", "does", "did", "tell me", "give me", "show me",
}

// IsQuestion reports whether text looks like a question worth a search: it
// ends with '?' or starts with a question word or request phrase.
func IsQuestion(text string) bool {
	trimmed := strings.TrimSpace(text)
	if strings.HasSuffix(trimmed, "?") {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, q := range questionStarters {
		if strings.HasPrefix(lower, q) {
			return true
		}
	}
	return false
}

// FormatForContext renders the top results as a sources block for the
// prompt. It returns "" for a nil or empty result. The provider's summary
// answer is left out in favor of the source text.
func FormatForContext(r *Result) string {
	if r == nil || len(r.Results) == 0 {
		return ""
	}

	lines := []string{
		"=== VERIFIED WEB SEARCH RESULTS ===",
		"Use the following SOURCE information to answer. Trust the sources, not summaries.",
		"",
	}
	for i, hit := range r.Results[:min(len(r.Results), contextResults)] {
		hitURL := hit.URL
		if hitURL == "" {
			hitURL = "N/A"
		}
		lines = append(lines,
			fmt.Sprintf("SOURCE %d: %s", i+1, hit.Title),
			"Content: "+utils.Clip(hit.Content, contextContentLen),
			"URL: "+hitURL,
			"",
		)
	}
	lines = append(lines,
		"=== END SEARCH RESULTS ===",
		"IMPORTANT: Base your answer ONLY on the actual source content above.",
	)
	return strings.Join(lines, "\n")
}

// Sources returns up to four citation cards for r.
func Sources(r *Result) []Source {
	out := []Source{}
	if r == nil {
		return out
	}

	for _, hit := range r.Results[:min(len(r.Results), sourceCards)] {
		out = append(out, Source{
			Title:  utils.Clip(hit.Title, sourceTitleLen),
			URL:    hit.URL,
			Domain: Domain(hit.URL),
		})
	}
	return out
}

// Domain returns the host of rawURL without a "www." prefix. Unparseable
// input falls back to its first 30 characters.
func Domain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return utils.Clip(rawURL, 30)
	}
	return strings.ReplaceAll(u.Host, "www.", "")
}
