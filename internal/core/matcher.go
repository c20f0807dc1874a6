package core

import (
	"sort"

	"go.uber.org/zap"
)

// Matcher ranks FAQ entries against a normalized email using textual
// similarity. It is stateless and never mutates the knowledge base.
type Matcher struct {
	floor  float64
	topK   int
	logger *zap.Logger
}

// NewMatcher creates a new matcher. Entries scoring below floor are excluded
// entirely; at most topK candidates are returned per match call.
func NewMatcher(floor float64, topK int, logger *zap.Logger) *Matcher {
	return &Matcher{
		floor:  floor,
		topK:   topK,
		logger: logger,
	}
}

// Match scores every FAQ entry against the email's subject and body and
// returns up to topK candidates sorted descending by score. Ties break by
// higher frequency, then by lower ID.
func (m *Matcher) Match(email *NormalizedEmail, entries []FAQEntry) []MatchCandidate {
	query := email.Subject + " " + email.Body

	candidates := make([]MatchCandidate, 0, len(entries))
	for _, entry := range entries {
		score := Similarity(query, entry.Question)
		if score < m.floor {
			continue
		}
		candidates = append(candidates, MatchCandidate{Entry: entry, Score: score})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		if candidates[i].Entry.Frequency != candidates[j].Entry.Frequency {
			return candidates[i].Entry.Frequency > candidates[j].Entry.Frequency
		}
		return candidates[i].Entry.ID < candidates[j].Entry.ID
	})

	if m.topK > 0 && len(candidates) > m.topK {
		candidates = candidates[:m.topK]
	}

	m.logger.Debug("Matched email against knowledge base",
		zap.String("email_id", email.ID),
		zap.Int("kb_size", len(entries)),
		zap.Int("candidates", len(candidates)))

	return candidates
}
