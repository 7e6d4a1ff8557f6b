package rules

import (
	"time"

	"github.com/google/uuid"
)

// Category partitions the rule space. Similarity and consolidation never
// compare rules across categories.
type Category string

const (
	CategoryVoice     Category = "voice"
	CategoryExpertise Category = "expertise"
)

// Normalize maps the empty category to voice, which is what rows written
// before categories existed are treated as.
func (c Category) Normalize() Category {
	if c == "" {
		return CategoryVoice
	}
	return c
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c.Normalize() {
	case CategoryVoice, CategoryExpertise:
		return true
	}
	return false
}

// RuleType only affects how a rule is presented in the system prompt.
type RuleType string

const (
	TypeAvoid          RuleType = "avoid"
	TypePrefer         RuleType = "prefer"
	TypeNever          RuleType = "never"
	TypeTone           RuleType = "tone"
	TypeStyle          RuleType = "style"
	TypeDelivery       RuleType = "delivery"
	TypePhrasing       RuleType = "phrasing"
	TypeSpeechPatterns RuleType = "speech_patterns"
	TypeNonNegotiables RuleType = "non_negotiables"
	TypeGeneral        RuleType = "general"
)

// Normalize maps empty and unknown rule types to general.
func (t RuleType) Normalize() RuleType {
	switch t {
	case TypeAvoid, TypePrefer, TypeNever, TypeTone, TypeStyle, TypeDelivery,
		TypePhrasing, TypeSpeechPatterns, TypeNonNegotiables, TypeGeneral:
		return t
	}
	return TypeGeneral
}

// Source records where a rule came from.
type Source string

const (
	SourceManual   Source = "manual"
	SourceFeedback Source = "feedback"
)

// Rule is a persisted communication rule or expertise statement for one user.
type Rule struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	RuleType  RuleType  `json:"rule_type"`
	Category  Category  `json:"category"`
	Source    Source    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRule is the insert payload for a rule that has no ID yet.
type NewRule struct {
	UserID   uuid.UUID
	Content  string
	RuleType RuleType
	Category Category
	Source   Source
}

// FilterCategory returns the rules belonging to category, preserving order.
func FilterCategory(rs []Rule, category Category) []Rule {
	category = category.Normalize()
	var out []Rule
	for _, r := range rs {
		if r.Category.Normalize() == category {
			out = append(out, r)
		}
	}
	return out
}
