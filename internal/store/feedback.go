package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Feedback is a snapshot of the script a user reacted to and what they said.
type Feedback struct {
	UserID         uuid.UUID
	ScriptID       *uuid.UUID
	ScriptSnapshot string
	FeedbackText   string
}

// WriteFeedback stores a feedback snapshot. Callers truncate the snapshot.
func (s *Store) WriteFeedback(ctx context.Context, f Feedback) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO script_feedback (id, user_id, script_id, script_snapshot, feedback_text, created_at)
		VALUES ($1, $2, $3, $4, $5, now())`,
		id, f.UserID, f.ScriptID, f.ScriptSnapshot, f.FeedbackText,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert feedback: %w", err)
	}
	return id, nil
}
