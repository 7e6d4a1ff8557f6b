package similarity

import (
	"sort"

	"github.com/MikeSquared-Agency/cadence/internal/rules"
)

// Thresholds holds the minimum score per category for two rules to count as
// similar. Expertise statements share domain vocabulary while teaching
// different facts, so their bar is higher.
type Thresholds struct {
	Voice     float64
	Expertise float64
}

// DefaultThresholds returns the tuned production thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Voice: 0.38, Expertise: 0.58}
}

// For returns the threshold for category. Unknown categories use the voice bar.
func (t Thresholds) For(category rules.Category) float64 {
	if category.Normalize() == rules.CategoryExpertise {
		return t.Expertise
	}
	return t.Voice
}

// Match is an existing rule that scored at or above its category threshold.
type Match struct {
	Rule  rules.Rule `json:"rule"`
	Score float64    `json:"score"`
}

// Matcher finds existing rules similar to a candidate.
type Matcher struct {
	thresholds Thresholds
}

// NewMatcher creates a matcher with the given thresholds.
func NewMatcher(thresholds Thresholds) *Matcher {
	return &Matcher{thresholds: thresholds}
}

// Thresholds returns the matcher's configured thresholds.
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

// FindSimilar returns the rules in category whose content scores at least the
// category threshold against candidate, best first. Equal scores keep their
// input order. A nil result means the candidate can be inserted directly.
func (m *Matcher) FindSimilar(candidate string, existing []rules.Rule, category rules.Category) []Match {
	category = category.Normalize()
	threshold := m.thresholds.For(category)

	var matches []Match
	for _, r := range existing {
		if r.Category.Normalize() != category {
			continue
		}
		score := Jaccard(candidate, r.Content)
		if score >= threshold {
			matches = append(matches, Match{Rule: r, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// TopRelevant caps rs at limit entries, keeping the rules that overlap most
// with topic. The survivors keep their original relative order. When rs is
// within the limit, or limit <= 0, rs is returned unchanged.
func (m *Matcher) TopRelevant(topic string, rs []rules.Rule, limit int) []rules.Rule {
	if limit <= 0 || len(rs) <= limit {
		return rs
	}

	type scored struct {
		idx   int
		score float64
	}
	ranked := make([]scored, len(rs))
	for i, r := range rs {
		ranked[i] = scored{idx: i, score: Jaccard(topic, r.Content)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	keep := make([]int, 0, limit)
	for _, s := range ranked[:limit] {
		keep = append(keep, s.idx)
	}
	sort.Ints(keep)

	out := make([]rules.Rule, 0, limit)
	for _, idx := range keep {
		out = append(out, rs[idx])
	}
	return out
}
