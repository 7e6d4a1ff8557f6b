package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/cadence/internal/llm"
	"github.com/MikeSquared-Agency/cadence/internal/prompt"
	"github.com/MikeSquared-Agency/cadence/internal/rules"
)

// ContentRequest asks for a script on Prompt. Duration is in seconds; zero
// means the default length.
type ContentRequest struct {
	Prompt   string `json:"prompt" validate:"required"`
	Duration int    `json:"duration" validate:"gte=0,lte=3600"`
	Platform string `json:"platform" validate:"max=64"`
}

// CreateContent generates a script in the user's voice.
func (s *Service) CreateContent(ctx context.Context, userID uuid.UUID, req ContentRequest) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("generation provider: %w", ErrNotConfigured)
	}

	system, topic, err := s.assemble(ctx, userID, req)
	if err != nil {
		return "", err
	}

	text, err := s.generator.Complete(ctx, system, llm.UserPrompt(topic), 0)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}

	s.logger.Info("content generated", "user_id", userID, "prompt_len", len(system), "reply_len", len(text))
	return prompt.StripEmDashes(text), nil
}

// PreviewPrompt returns the system prompt CreateContent would send, without
// calling the provider.
func (s *Service) PreviewPrompt(ctx context.Context, userID uuid.UUID, req ContentRequest) (string, error) {
	system, _, err := s.assemble(ctx, userID, req)
	return system, err
}

func (s *Service) assemble(ctx context.Context, userID uuid.UUID, req ContentRequest) (string, string, error) {
	topic := strings.TrimSpace(req.Prompt)
	if topic == "" {
		return "", "", invalid("Prompt is required")
	}

	var (
		profile *prompt.Profile
		all     []rules.Rule
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.store.GetProfile(gctx, userID)
		if err != nil {
			return fmt.Errorf("get profile: %w", err)
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		rs, err := s.store.ListRules(gctx, userID, nil)
		if err != nil {
			return fmt.Errorf("list rules: %w", err)
		}
		all = rs
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", "", err
	}

	selected := s.selectRules(topic, all)
	system := s.builder.Build(profile, selected, prompt.Task{
		Topic:           topic,
		DurationSeconds: req.Duration,
		Platform:        req.Platform,
	})
	return system, topic, nil
}

// selectRules keeps every voice rule and the expertise rules most relevant
// to topic, up to the configured limit.
func (s *Service) selectRules(topic string, all []rules.Rule) []rules.Rule {
	voice := rules.FilterCategory(all, rules.CategoryVoice)
	expertise := s.matcher.TopRelevant(topic, rules.FilterCategory(all, rules.CategoryExpertise), s.expertiseLimit)
	return append(voice, expertise...)
}
