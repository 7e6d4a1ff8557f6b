package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/cadence/internal/consolidate"
	"github.com/MikeSquared-Agency/cadence/internal/extractor"
	"github.com/MikeSquared-Agency/cadence/internal/hermes"
	"github.com/MikeSquared-Agency/cadence/internal/rules"
)

const (
	minTranscriptChars = 100
	excerptChars       = 2000

	transcriptTimeout = 3 * time.Minute
)

// ExpertiseResult is what a transcript yielded, plus an excerpt so the user
// can check the right video was read.
type ExpertiseResult struct {
	Transcript          string   `json:"transcript"`
	TranscriptLength    int      `json:"transcriptLength"`
	Knowledge           []string `json:"knowledge"`
	Perspectives        []string `json:"perspectives"`
	CommunicationStyles []string `json:"communicationStyles"`
}

// ExtractExpertise analyses a transcript without storing anything.
func (s *Service) ExtractExpertise(ctx context.Context, transcript string) (*ExpertiseResult, error) {
	transcript = strings.Join(strings.Fields(transcript), " ")
	length := utf8.RuneCountInString(transcript)
	if length < minTranscriptChars {
		return nil, invalid("Transcript is empty or too short to analyze")
	}

	exp, err := s.extractor.ExtractExpertise(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	return &ExpertiseResult{
		Transcript:          extractor.Truncate(transcript, excerptChars),
		TranscriptLength:    length,
		Knowledge:           orEmpty(exp.Knowledge),
		Perspectives:        orEmpty(exp.Perspectives),
		CommunicationStyles: orEmpty(exp.CommunicationStyles),
	}, nil
}

// AddExpertise stores the chosen items as expertise rules, merging any that
// restate something the user already has.
func (s *Service) AddExpertise(ctx context.Context, userID uuid.UUID, items []string) (consolidate.Result, error) {
	var candidates []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			candidates = append(candidates, item)
		}
	}
	if len(candidates) == 0 {
		return consolidate.Result{}, invalid("At least one expertise item is required")
	}
	return s.consolidate(ctx, userID, rules.CategoryExpertise, "expertise", candidates)
}

// HandleTranscriptStored is the NATS handler for cadence.transcript.stored.
// Knowledge and perspectives become expertise rules; communication styles
// are only surfaced through ExtractExpertise.
func (s *Service) HandleTranscriptStored(subject string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), transcriptTimeout)
	defer cancel()

	var evt hermes.TranscriptStored
	if err := json.Unmarshal(data, &evt); err != nil {
		s.logger.Error("failed to parse transcript event", "subject", subject, "error", err)
		return
	}

	userID, err := uuid.Parse(evt.UserID)
	if err != nil {
		s.logger.Error("invalid user id", "user_id", evt.UserID, "error", err)
		return
	}

	s.logger.Info("processing transcript", "user_id", userID, "source_ref", evt.SourceRef)

	exp, err := s.ExtractExpertise(ctx, evt.Transcript)
	if err != nil {
		s.logger.Error("expertise extraction failed", "source_ref", evt.SourceRef, "error", err)
		return
	}

	candidates := append(append([]string{}, exp.Knowledge...), exp.Perspectives...)
	if len(candidates) == 0 {
		s.logger.Info("transcript yielded no expertise", "source_ref", evt.SourceRef)
		return
	}

	res, err := s.consolidate(ctx, userID, rules.CategoryExpertise, "transcript", candidates)
	if err != nil {
		s.logger.Error("expertise consolidation failed", "source_ref", evt.SourceRef, "error", err)
		return
	}

	s.logger.Info("transcript processed",
		"user_id", userID,
		"source_ref", evt.SourceRef,
		"added", res.RulesAdded,
		"consolidated", res.RulesConsolidated,
	)
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
