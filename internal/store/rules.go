package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/cadence/internal/rules"
)

const ruleColumns = `id, user_id, content, COALESCE(rule_type, 'general'), COALESCE(category, 'voice'), COALESCE(source, 'manual'), created_at, updated_at`

func scanRule(row pgx.Row) (rules.Rule, error) {
	var r rules.Rule
	var ruleType, category, source string
	err := row.Scan(&r.ID, &r.UserID, &r.Content, &ruleType, &category, &source, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return rules.Rule{}, err
	}
	r.RuleType = rules.RuleType(ruleType)
	r.Category = rules.Category(category)
	r.Source = rules.Source(source)
	return r, nil
}

// ListRules returns a user's rules, newest first. A nil category returns
// every category; rows without a category count as voice.
func (s *Store) ListRules(ctx context.Context, userID uuid.UUID, category *rules.Category) ([]rules.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM voice_rules WHERE user_id = $1`
	args := []any{userID}
	if category != nil {
		query += ` AND COALESCE(category, 'voice') = $2`
		args = append(args, string(category.Normalize()))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer rows.Close()

	var out []rules.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rule: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rules: %w", err)
	}
	return out, nil
}

// InsertRule stores a new rule and returns it with its generated ID and
// timestamps.
func (s *Store) InsertRule(ctx context.Context, r rules.NewRule) (rules.Rule, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO voice_rules (id, user_id, content, rule_type, category, source, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+ruleColumns,
		uuid.New(), r.UserID, r.Content,
		string(r.RuleType.Normalize()), string(r.Category.Normalize()), string(r.Source),
	)
	created, err := scanRule(row)
	if err != nil {
		return rules.Rule{}, fmt.Errorf("insert rule: %w", err)
	}
	return created, nil
}

// UpdateRuleContent replaces the content of one of the user's rules and
// bumps updated_at. A rule owned by another user is reported as ErrNotFound.
func (s *Store) UpdateRuleContent(ctx context.Context, userID, ruleID uuid.UUID, content string) (rules.Rule, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE voice_rules SET content = $1, updated_at = now()
		WHERE id = $2 AND user_id = $3
		RETURNING `+ruleColumns,
		content, ruleID, userID,
	)
	updated, err := scanRule(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return rules.Rule{}, fmt.Errorf("update rule %s: %w", ruleID, ErrNotFound)
	}
	if err != nil {
		return rules.Rule{}, fmt.Errorf("update rule %s: %w", ruleID, err)
	}
	return updated, nil
}
