package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/cadence/internal/prompt"
)

// GetProfile fetches the creator profile for userID. A user who has not
// finished onboarding has no row, which is reported as nil, nil.
func (s *Store) GetProfile(ctx context.Context, userID uuid.UUID) (*prompt.Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT COALESCE(first_name, ''), COALESCE(last_name, ''),
		       COALESCE(target_audience, ''), COALESCE(audience_knowledge_level, ''),
		       COALESCE(content_goal, ''), COALESCE(desired_feeling, ''),
		       COALESCE(experience_background, ''), COALESCE(tone_style, ''),
		       speaking_speed_wpm, COALESCE(content_platforms, '{}')
		FROM profiles WHERE id = $1`, userID)

	var p prompt.Profile
	var wpm *int32
	err := row.Scan(
		&p.FirstName, &p.LastName,
		&p.TargetAudience, &p.AudienceKnowledge,
		&p.ContentGoal, &p.DesiredFeeling,
		&p.ExperienceBackground, &p.ToneStyle,
		&wpm, &p.Platforms,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if wpm != nil {
		v := int(*wpm)
		p.SpeakingRateWPM = &v
	}
	return &p, nil
}
