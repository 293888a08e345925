package memory

import (
	"context"
	"log/slog"
	"strings"
	"unicode"

	"github.com/Yash3561/Nexus/pkg/utils"
)

// Extractor distills facts about the user from a message into their
// profile. Implementations must not fail the caller; errors are theirs to
// log.
type Extractor interface {
	Extract(ctx context.Context, userMessage string, profile *Profile)
}

const interestFactLen = 100

var (
	nameTriggers     = []string{"my name is", "i'm called"}
	nameAnchors      = []string{"is", "called", "i'm"}
	interestTriggers = []string{"i love", "i like", "i enjoy"}
)

// HeuristicExtractor finds names and interests by substring matching. False
// positives and misses are expected.
type HeuristicExtractor struct {
	logger *slog.Logger
}

// NewHeuristicExtractor returns a HeuristicExtractor.
func NewHeuristicExtractor(logger *slog.Logger) *HeuristicExtractor {
	return &HeuristicExtractor{logger: logger}
}

// Extract sets the profile name when the message introduces the user and
// records the first 100 characters of the message as a fact when it states
// an interest.
func (e *HeuristicExtractor) Extract(ctx context.Context, userMessage string, profile *Profile) {
	if profile == nil {
		return
	}

	lower := strings.ToLower(userMessage)

	if containsAny(lower, nameTriggers) {
		if name, ok := findName(userMessage); ok {
			if err := profile.SetName(ctx, name); err != nil {
				e.logger.Warn("could not store extracted name", "user_id", profile.UserID(), "error", err)
			}
		}
	}

	if containsAny(lower, interestTriggers) {
		if err := profile.AddFact(ctx, utils.Clip(userMessage, interestFactLen)); err != nil {
			e.logger.Warn("could not store extracted fact", "user_id", profile.UserID(), "error", err)
		}
	}
}

// findName returns the first token after an anchor word that, stripped of
// trailing punctuation, is alphabetic and longer than one character.
func findName(msg string) (string, bool) {
	words := strings.Fields(msg)
	for i, w := range words {
		if !isAnchor(w) || i+1 >= len(words) {
			continue
		}
		candidate := strings.TrimRight(words[i+1], ".,!?")
		if isAlpha(candidate) && len([]rune(candidate)) > 1 {
			return candidate, true
		}
	}
	return "", false
}

func isAnchor(word string) bool {
	lw := strings.ToLower(word)
	for _, a := range nameAnchors {
		if lw == a {
			return true
		}
	}
	return false
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
