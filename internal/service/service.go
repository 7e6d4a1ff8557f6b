// Package service wires extraction, consolidation and prompt assembly into
// the operations the HTTP API and the event bus expose.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/cadence/internal/consolidate"
	"github.com/MikeSquared-Agency/cadence/internal/extractor"
	"github.com/MikeSquared-Agency/cadence/internal/hermes"
	"github.com/MikeSquared-Agency/cadence/internal/llm"
	"github.com/MikeSquared-Agency/cadence/internal/prompt"
	"github.com/MikeSquared-Agency/cadence/internal/rules"
	"github.com/MikeSquared-Agency/cadence/internal/similarity"
	"github.com/MikeSquared-Agency/cadence/internal/store"
)

var (
	// ErrNotConfigured is returned when an operation needs a collaborator
	// that was not set up, such as the generation provider.
	ErrNotConfigured = errors.New("not configured")

	// ErrProvider wraps failures of the text-generation provider on paths
	// where the failure must reach the caller.
	ErrProvider = errors.New("text generation failed")
)

// ValidationError reports bad caller input. Message is safe to show to the
// end user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

// Store is the persistence the service needs.
type Store interface {
	consolidate.RuleWriter
	ListRules(ctx context.Context, userID uuid.UUID, category *rules.Category) ([]rules.Rule, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*prompt.Profile, error)
	WriteFeedback(ctx context.Context, f store.Feedback) (uuid.UUID, error)
}

// Publisher emits domain events. *hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Deps are the collaborators of a Service. Events may be nil.
type Deps struct {
	Store        Store
	Extractor    *extractor.Extractor
	Consolidator *consolidate.Consolidator
	Matcher      *similarity.Matcher
	Builder      *prompt.Builder
	Generator    llm.Provider
	Events       Publisher

	// ExpertiseLimit caps how many expertise rules go into a prompt.
	ExpertiseLimit int
}

// Service holds no per-user state; every call works from what it loads.
type Service struct {
	store          Store
	extractor      *extractor.Extractor
	consolidator   *consolidate.Consolidator
	matcher        *similarity.Matcher
	builder        *prompt.Builder
	generator      llm.Provider
	events         Publisher
	expertiseLimit int
	logger         *slog.Logger
}

func New(d Deps, logger *slog.Logger) *Service {
	return &Service{
		store:          d.Store,
		extractor:      d.Extractor,
		consolidator:   d.Consolidator,
		matcher:        d.Matcher,
		builder:        d.Builder,
		generator:      d.Generator,
		events:         d.Events,
		expertiseLimit: d.ExpertiseLimit,
		logger:         logger,
	}
}

// consolidate loads the user's current rules and folds candidates into them.
func (s *Service) consolidate(ctx context.Context, userID uuid.UUID, category rules.Category, origin string, candidates []string) (consolidate.Result, error) {
	if len(candidates) == 0 {
		return consolidate.Result{}, nil
	}

	existing, err := s.store.ListRules(ctx, userID, &category)
	if err != nil {
		return consolidate.Result{}, fmt.Errorf("list rules: %w", err)
	}

	res, err := s.consolidator.Consolidate(ctx, consolidate.Batch{
		UserID:     userID,
		Category:   category,
		Existing:   existing,
		Candidates: candidates,
	})
	if err != nil {
		return consolidate.Result{}, err
	}

	s.publishConsolidated(userID, category, origin, res)
	return res, nil
}

func (s *Service) publishConsolidated(userID uuid.UUID, category rules.Category, origin string, res consolidate.Result) {
	if s.events == nil || res.RulesAdded+res.RulesConsolidated == 0 {
		return
	}
	err := s.events.Publish(hermes.SubjectRulesConsolidated, hermes.RulesConsolidated{
		UserID:            userID.String(),
		Category:          string(category),
		Origin:            origin,
		RulesAdded:        res.RulesAdded,
		RulesConsolidated: res.RulesConsolidated,
	})
	if err != nil {
		s.logger.Warn("failed to publish consolidation event", "user_id", userID, "error", err)
	}
}
