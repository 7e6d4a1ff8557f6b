package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/cadence/internal/consolidate"
	"github.com/MikeSquared-Agency/cadence/internal/extractor"
	"github.com/MikeSquared-Agency/cadence/internal/rules"
	"github.com/MikeSquared-Agency/cadence/internal/store"
)

const maxSnapshotChars = 5000

// FeedbackRequest is a user's reaction to a generated script.
type FeedbackRequest struct {
	FeedbackText  string     `json:"feedbackText" validate:"required,max=4000"`
	ScriptContent string     `json:"scriptContent" validate:"required"`
	ScriptID      *uuid.UUID `json:"scriptId,omitempty"`
}

// SubmitFeedback records the feedback, turns it into voice rules and folds
// them into the user's rule set. Extraction failures yield zero counts, not
// an error.
func (s *Service) SubmitFeedback(ctx context.Context, userID uuid.UUID, req FeedbackRequest) (consolidate.Result, error) {
	feedback := strings.TrimSpace(req.FeedbackText)
	if feedback == "" {
		return consolidate.Result{}, invalid("Feedback text is required")
	}
	if req.ScriptContent == "" {
		return consolidate.Result{}, invalid("Script content is required")
	}

	_, err := s.store.WriteFeedback(ctx, store.Feedback{
		UserID:         userID,
		ScriptID:       req.ScriptID,
		ScriptSnapshot: extractor.Truncate(req.ScriptContent, maxSnapshotChars),
		FeedbackText:   feedback,
	})
	if err != nil {
		s.logger.Warn("failed to store feedback snapshot", "user_id", userID, "error", err)
	}

	candidates := s.extractor.ExtractFeedbackRules(ctx, req.ScriptContent, feedback)

	res, err := s.consolidate(ctx, userID, rules.CategoryVoice, "feedback", candidates)
	if err != nil {
		return consolidate.Result{}, err
	}

	s.logger.Info("feedback processed",
		"user_id", userID,
		"candidates", len(candidates),
		"added", res.RulesAdded,
		"consolidated", res.RulesConsolidated,
	)
	return res, nil
}
