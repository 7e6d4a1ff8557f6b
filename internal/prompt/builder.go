// Package prompt renders the system prompt used for script generation from
// a creator profile, the creator's rules and the requested task.
package prompt

import (
	"fmt"
	"math"
	"strings"

	"github.com/MikeSquared-Agency/cadence/internal/rules"
)

const (
	formatDirective = "Format the script with line breaks between paragraphs or sections. Use short paragraphs (2-4 sentences each). Do not output a single wall of text."

	expertiseIntro = "The creator has these areas of expertise and perspective. Use this to add depth, credibility, and accurate nuance to the script content:"

	directiveHuman   = "- Sound human and natural. Avoid anything that reads as AI-generated (e.g. overly polished, generic, or formulaic)."
	directiveEmDash  = "- NEVER use em-dashes (—). Use commas, periods, or parentheses instead. This is mandatory."
	directiveEmojis  = "- Use zero emojis unless the user explicitly asks for them."
	closingDirective = "Write the script in this creator's voice. Follow all rules above. Do not violate any Avoid or Never rules."
)

// Profile is the subset of a creator profile that shapes the prompt. Every
// field is optional.
type Profile struct {
	FirstName            string   `json:"first_name"`
	LastName             string   `json:"last_name"`
	TargetAudience       string   `json:"target_audience"`
	AudienceKnowledge    string   `json:"audience_knowledge_level"`
	ContentGoal          string   `json:"content_goal"`
	DesiredFeeling       string   `json:"desired_feeling"`
	ExperienceBackground string   `json:"experience_background"`
	ToneStyle            string   `json:"tone_style"`
	SpeakingRateWPM      *int     `json:"speaking_speed_wpm"`
	Platforms            []string `json:"content_platforms"`
}

// Task is the script the caller is asking for.
type Task struct {
	Topic           string `json:"topic"`
	DurationSeconds int    `json:"duration"`
	Platform        string `json:"platform"`
}

// MaxWords is the word budget for a script read at wpm for durationSeconds,
// rounded to the nearest ten.
func MaxWords(wpm, durationSeconds int) int {
	return int(math.Round(float64(wpm)/60*float64(durationSeconds)/10)) * 10
}

// StripEmDashes replaces every em-dash in generated text with a comma.
func StripEmDashes(text string) string {
	return strings.ReplaceAll(text, "—", ", ")
}

type Builder struct {
	tables Tables
}

func NewBuilder(t Tables) *Builder {
	return &Builder{tables: t}
}

// resolved is a profile and task with every default already applied, so
// rendering is a straight walk over non-empty fields.
type resolved struct {
	nameLine             string
	tone                 string
	goal                 string
	knowledge            string
	audience             string
	desiredFeeling       string
	experienceBackground string
	platforms            string
	platform             string
	topic                string
	maxWords             int
}

func (b *Builder) resolve(p *Profile, task Task) resolved {
	t := b.tables

	r := resolved{
		tone:     t.DefaultTone,
		platform: strings.TrimSpace(task.Platform),
		topic:    strings.TrimSpace(task.Topic),
	}
	if r.platform == "" {
		r.platform = t.DefaultPlatform
	}

	duration := task.DurationSeconds
	if duration <= 0 {
		duration = t.DefaultDuration
	}
	wpm := t.DefaultWPM
	if p != nil && p.SpeakingRateWPM != nil && *p.SpeakingRateWPM > 0 {
		wpm = *p.SpeakingRateWPM
	}
	r.maxWords = MaxWords(wpm, duration)

	if p == nil {
		r.nameLine = t.MissingProfile
		return r
	}

	name := strings.TrimSpace(strings.Join(nonEmpty(p.FirstName, p.LastName), " "))
	if name == "" {
		name = t.DefaultName
	}
	r.nameLine = fmt.Sprintf("The creator is %s.", name)

	if s, ok := t.Tone[p.ToneStyle]; ok {
		r.tone = s
	}
	r.goal = t.Goal[p.ContentGoal]
	r.knowledge = t.Knowledge[p.AudienceKnowledge]
	r.audience = strings.TrimSpace(p.TargetAudience)
	r.desiredFeeling = strings.TrimSpace(p.DesiredFeeling)
	r.experienceBackground = strings.TrimSpace(p.ExperienceBackground)
	r.platforms = strings.Join(nonEmpty(p.Platforms...), ", ")
	return r
}

// Build renders the system prompt. Expertise rules are listed in the order
// given, so callers that want only the most relevant ones must trim rs first.
// The output depends only on the arguments.
func (b *Builder) Build(profile *Profile, rs []rules.Rule, task Task) string {
	r := b.resolve(profile, task)

	var parts []string
	add := func(lines ...string) { parts = append(parts, lines...) }
	addIf := func(line, format string) {
		if line != "" {
			add(fmt.Sprintf(format, line))
		}
	}

	add(
		fmt.Sprintf("Generate a script about the following topic for %s content. Maximum length: %d words.\n", r.platform, r.maxWords),
		fmt.Sprintf("Topic: %s\n", r.topic),
		formatDirective+"\n",
	)

	add("## Creator Profile", r.nameLine)
	addIf(r.goal, "%s")
	addIf(r.desiredFeeling, "They want the audience to feel: %s.")
	addIf(r.knowledge, "%s")
	addIf(r.audience, "Target audience: %s.")
	addIf(r.experienceBackground, "Creator background: %s.")
	addIf(r.platforms, "Platforms: %s.")
	add("")

	if expertise := b.expertiseLines(rs); len(expertise) > 0 {
		add("## Subject Matter Context", expertiseIntro)
		add(expertise...)
		add("")
	}

	add(
		"## Style and Voice Rules",
		"When writing the script, use the style and tone of: "+r.tone,
		"",
		"Always apply these rules:",
		directiveHuman,
		directiveEmDash,
		directiveEmojis,
	)
	if voice := b.voiceLines(rs); len(voice) > 0 {
		add("", "Make sure you follow these rules:")
		add(voice...)
	}
	add("", closingDirective)

	return strings.Join(parts, "\n")
}

func (b *Builder) expertiseLines(rs []rules.Rule) []string {
	var lines []string
	for _, r := range rules.FilterCategory(rs, rules.CategoryExpertise) {
		if c := strings.TrimSpace(r.Content); c != "" {
			lines = append(lines, "- "+c)
		}
	}
	return lines
}

func (b *Builder) voiceLines(rs []rules.Rule) []string {
	byType := make(map[rules.RuleType][]string)
	for _, r := range rules.FilterCategory(rs, rules.CategoryVoice) {
		c := strings.TrimSpace(r.Content)
		if c == "" {
			continue
		}
		t := r.RuleType.Normalize()
		byType[t] = append(byType[t], c)
	}

	var lines []string
	for _, t := range b.tables.RuleOrder {
		label := b.tables.RuleLabels[t]
		for _, c := range byType[t] {
			lines = append(lines, label+": "+c)
		}
	}
	return lines
}

func nonEmpty(values ...string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
