package consolidate

import (
	"context"
	"fmt"
	"strings"

	"github.com/MikeSquared-Agency/cadence/internal/llm"
	"github.com/MikeSquared-Agency/cadence/internal/rules"
)

const (
	mergedPrefix = "MERGED:"
	keptBoth     = "KEPT_BOTH"

	decisionMaxTokens = 512
)

const mergePrompt = `Two %s may overlap:

Rule A (existing): "%s"
Rule B (new): "%s"

Should they be MERGED into one improved rule, or are they distinct enough to KEEP_BOTH?
Reply with exactly one of:
MERGED: <single combined rule text>
KEPT_BOTH`

// Decision is the outcome of a merge-or-keep adjudication.
type Decision struct {
	Merge   bool
	Content string
}

// ParseDecision reads a provider reply. Only "MERGED: <text>" with non-empty
// text is a merge; everything else, KEPT_BOTH included, keeps both rules.
func ParseDecision(reply string) Decision {
	reply = strings.TrimSpace(reply)
	if !strings.HasPrefix(reply, mergedPrefix) {
		return Decision{}
	}
	merged := strings.TrimSpace(strings.TrimPrefix(reply, mergedPrefix))
	if merged == "" {
		return Decision{}
	}
	return Decision{Merge: true, Content: merged}
}

// Decider settles whether a candidate should be folded into an existing rule.
type Decider interface {
	Decide(ctx context.Context, existing, candidate string, category rules.Category) (Decision, error)
}

// LLMDecider delegates the decision to a text-generation provider.
type LLMDecider struct {
	llm llm.Provider
}

func NewLLMDecider(provider llm.Provider) *LLMDecider {
	return &LLMDecider{llm: provider}
}

func (d *LLMDecider) Decide(ctx context.Context, existing, candidate string, category rules.Category) (Decision, error) {
	subject := "communication style rules"
	if category.Normalize() == rules.CategoryExpertise {
		subject = "subject matter expertise statements"
	}
	prompt := fmt.Sprintf(mergePrompt, subject, existing, candidate)

	reply, err := d.llm.Complete(ctx, "", llm.UserPrompt(prompt), decisionMaxTokens)
	if err != nil {
		return Decision{}, fmt.Errorf("merge decision: %w", err)
	}
	return ParseDecision(reply), nil
}
