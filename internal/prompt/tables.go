package prompt

import "github.com/MikeSquared-Agency/cadence/internal/rules"

// Tables holds the fixed enum-to-sentence lookups used while rendering.
// A Tables value must not be modified once handed to NewBuilder.
type Tables struct {
	Tone            map[string]string
	Goal            map[string]string
	Knowledge       map[string]string
	RuleLabels      map[rules.RuleType]string
	RuleOrder       []rules.RuleType
	DefaultTone     string
	MissingProfile  string
	DefaultName     string
	DefaultPlatform string
	DefaultWPM      int
	DefaultDuration int
}

// DefaultTables returns the lookups matching the onboarding answers the
// profile form offers.
func DefaultTables() Tables {
	return Tables{
		Tone: map[string]string{
			"Like a teacher":               "The creator's tone should sound like a teacher teaching students: clear, educational, patient, and structured.",
			"Like a friendly conversation": "The creator's tone should feel like a friendly conversation: warm, casual, approachable.",
			"Like a coach pushing you":     "The creator's tone should feel like a coach pushing the audience: motivating, direct, energizing.",
			"Like a performer/storyteller": "The creator's tone should feel like a performer or storyteller: engaging, narrative, captivating.",
			"Neutral / informative":        "The creator's tone should be neutral and informative: factual, balanced, objective.",
		},
		Goal: map[string]string{
			"Teach them something":      "The primary goal is to teach the audience something new.",
			"Solve a problem":           "The primary goal is to help the audience solve a problem.",
			"Entertain them":            "The primary goal is to entertain the audience.",
			"Inspire or motivate":       "The primary goal is to inspire or motivate the audience.",
			"Make them feel understood": "The primary goal is to make the audience feel understood and validated.",
			"Share news or information": "The primary goal is to share news or information.",
		},
		Knowledge: map[string]string{
			"Nothing":         "The audience has no prior knowledge. Explain from basics, avoid jargon.",
			"A little":        "The audience has some prior knowledge. Don't oversimplify; explain clearly.",
			"A lot":           "The audience is knowledgeable. You can go deeper and use more technical language.",
			"They're experts": "The audience are experts. Use technical language; skip basics.",
		},
		RuleLabels: map[rules.RuleType]string{
			rules.TypeAvoid:          "Avoid",
			rules.TypePrefer:         "Prefer",
			rules.TypeNever:          "Never",
			rules.TypeTone:           "Tone",
			rules.TypeStyle:          "Style",
			rules.TypeDelivery:       "Delivery",
			rules.TypePhrasing:       "Phrasing",
			rules.TypeSpeechPatterns: "Speech Patterns",
			rules.TypeNonNegotiables: "Non-Negotiables",
			rules.TypeGeneral:        "General",
		},
		RuleOrder: []rules.RuleType{
			rules.TypeNever,
			rules.TypeAvoid,
			rules.TypePrefer,
			rules.TypeNonNegotiables,
			rules.TypeTone,
			rules.TypeStyle,
			rules.TypeDelivery,
			rules.TypePhrasing,
			rules.TypeSpeechPatterns,
			rules.TypeGeneral,
		},
		DefaultTone:     "Use a warm, authentic, engaging tone.",
		MissingProfile:  "The creator has not yet completed profile setup.",
		DefaultName:     "The creator",
		DefaultPlatform: "general content",
		DefaultWPM:      145,
		DefaultDuration: 60,
	}
}
