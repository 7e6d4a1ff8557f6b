// Package consolidate folds newly extracted rule candidates into a user's
// rule set, merging near-duplicates instead of inserting them again.
package consolidate

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/cadence/internal/rules"
	"github.com/MikeSquared-Agency/cadence/internal/similarity"
)

// RuleWriter persists consolidation outcomes.
type RuleWriter interface {
	InsertRule(ctx context.Context, r rules.NewRule) (rules.Rule, error)
	UpdateRuleContent(ctx context.Context, userID, ruleID uuid.UUID, content string) (rules.Rule, error)
}

// Batch is one consolidation pass: the candidates extracted from a single
// feedback submission or transcript, checked against the user's rules.
type Batch struct {
	UserID     uuid.UUID
	Category   rules.Category
	Existing   []rules.Rule
	Candidates []string
}

// Result summarises a pass. Rules is the working copy after the last
// candidate and is not part of the API response.
type Result struct {
	RulesAdded        int          `json:"rulesAdded"`
	RulesConsolidated int          `json:"rulesConsolidated"`
	Rules             []rules.Rule `json:"-"`
}

// Consolidator runs batches. It holds no per-user state; every batch starts
// from the rules it is given.
type Consolidator struct {
	matcher *similarity.Matcher
	decider Decider
	store   RuleWriter
	logger  *slog.Logger
}

func New(matcher *similarity.Matcher, decider Decider, store RuleWriter, logger *slog.Logger) *Consolidator {
	return &Consolidator{
		matcher: matcher,
		decider: decider,
		store:   store,
		logger:  logger,
	}
}

// state is the accumulator threaded through a batch.
type state struct {
	rules        []rules.Rule
	added        int
	consolidated int
}

// Consolidate processes candidates strictly in order. Each candidate sees
// the inserts and merges made by the ones before it. A candidate whose
// write fails is skipped without touching the counters; the batch goes on.
//
// Only the best match is ever considered as a merge target, so a candidate
// overlapping several existing rules collapses into at most one of them.
func (c *Consolidator) Consolidate(ctx context.Context, b Batch) (Result, error) {
	if b.UserID == uuid.Nil {
		return Result{}, fmt.Errorf("consolidate: missing user id")
	}
	if !b.Category.Valid() {
		return Result{}, fmt.Errorf("consolidate: unknown category %q", b.Category)
	}
	b.Category = b.Category.Normalize()

	st := state{rules: slices.Clone(b.Existing)}
	for _, candidate := range b.Candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		st = c.step(ctx, b, st, candidate)
	}

	c.logger.Info("consolidation complete",
		"user_id", b.UserID,
		"category", b.Category,
		"candidates", len(b.Candidates),
		"added", st.added,
		"consolidated", st.consolidated,
	)

	return Result{
		RulesAdded:        st.added,
		RulesConsolidated: st.consolidated,
		Rules:             st.rules,
	}, nil
}

func (c *Consolidator) step(ctx context.Context, b Batch, st state, candidate string) state {
	matches := c.matcher.FindSimilar(candidate, st.rules, b.Category)
	if len(matches) == 0 {
		return c.insert(ctx, b, st, candidate)
	}

	target := matches[0]
	c.logger.Debug("candidate overlaps existing rule",
		"rule_id", target.Rule.ID,
		"score", target.Score,
		"matches", len(matches),
	)

	decision, err := c.decider.Decide(ctx, target.Rule.Content, candidate, b.Category)
	if err != nil {
		c.logger.Warn("merge decision failed, keeping both", "rule_id", target.Rule.ID, "error", err)
		return c.insert(ctx, b, st, candidate)
	}
	if !decision.Merge {
		return c.insert(ctx, b, st, candidate)
	}
	return c.merge(ctx, b, st, target.Rule, decision.Content)
}

func (c *Consolidator) insert(ctx context.Context, b Batch, st state, content string) state {
	created, err := c.store.InsertRule(ctx, rules.NewRule{
		UserID:   b.UserID,
		Content:  content,
		RuleType: rules.TypeGeneral,
		Category: b.Category,
		Source:   rules.SourceFeedback,
	})
	if err != nil {
		c.logger.Error("failed to insert rule", "user_id", b.UserID, "error", err)
		return st
	}

	next := slices.Clone(st.rules)
	next = append(next, created)
	return state{rules: next, added: st.added + 1, consolidated: st.consolidated}
}

func (c *Consolidator) merge(ctx context.Context, b Batch, st state, target rules.Rule, content string) state {
	updated, err := c.store.UpdateRuleContent(ctx, b.UserID, target.ID, content)
	if err != nil {
		c.logger.Error("failed to merge rule", "rule_id", target.ID, "error", err)
		return st
	}

	next := slices.Clone(st.rules)
	for i := range next {
		if next[i].ID == target.ID {
			next[i] = updated
			break
		}
	}
	return state{rules: next, added: st.added, consolidated: st.consolidated + 1}
}
