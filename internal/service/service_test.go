package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/cadence/internal/consolidate"
	"github.com/MikeSquared-Agency/cadence/internal/extractor"
	"github.com/MikeSquared-Agency/cadence/internal/hermes"
	"github.com/MikeSquared-Agency/cadence/internal/llm"
	"github.com/MikeSquared-Agency/cadence/internal/prompt"
	"github.com/MikeSquared-Agency/cadence/internal/rules"
	"github.com/MikeSquared-Agency/cadence/internal/similarity"
	"github.com/MikeSquared-Agency/cadence/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore keeps everything in memory. Reads may run concurrently.
type fakeStore struct {
	mu        sync.Mutex
	rules     []rules.Rule
	profile   *prompt.Profile
	feedback  []store.Feedback
	listErr   error
	profErr   error
	feedErr   error
	listCalls int
}

func (f *fakeStore) ListRules(_ context.Context, userID uuid.UUID, category *rules.Category) ([]rules.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []rules.Rule
	for _, r := range f.rules {
		if r.UserID != userID {
			continue
		}
		if category != nil && r.Category.Normalize() != category.Normalize() {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) InsertRule(_ context.Context, nr rules.NewRule) (rules.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := rules.Rule{
		ID:        uuid.New(),
		UserID:    nr.UserID,
		Content:   nr.Content,
		RuleType:  nr.RuleType,
		Category:  nr.Category,
		Source:    nr.Source,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.rules = append(f.rules, r)
	return r, nil
}

func (f *fakeStore) UpdateRuleContent(_ context.Context, userID, ruleID uuid.UUID, content string) (rules.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rules {
		if f.rules[i].ID == ruleID && f.rules[i].UserID == userID {
			f.rules[i].Content = content
			f.rules[i].UpdatedAt = time.Now()
			return f.rules[i], nil
		}
	}
	return rules.Rule{}, store.ErrNotFound
}

func (f *fakeStore) GetProfile(context.Context, uuid.UUID) (*prompt.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, f.profErr
}

func (f *fakeStore) WriteFeedback(_ context.Context, fb store.Feedback) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.feedErr != nil {
		return uuid.Nil, f.feedErr
	}
	f.feedback = append(f.feedback, fb)
	return uuid.New(), nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []hermes.RulesConsolidated
}

func (p *fakePublisher) Publish(subject string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if subject == hermes.SubjectRulesConsolidated {
		p.events = append(p.events, data.(hermes.RulesConsolidated))
	}
	return nil
}

// scriptedLLM answers each kind of extraction prompt with a fixed reply.
type scriptedLLM struct {
	feedback  string
	expertise string
	merge     string
	err       error
}

func (s scriptedLLM) provider() llm.Provider {
	return llm.ProviderFunc(func(_ context.Context, _ string, msgs []llm.Message, _ int) (string, error) {
		if s.err != nil {
			return "", s.err
		}
		p := msgs[len(msgs)-1].Content
		switch {
		case strings.Contains(p, "The user gave this feedback"):
			return s.feedback, nil
		case strings.Contains(p, "TRANSCRIPT (excerpt"):
			return s.expertise, nil
		case strings.Contains(p, "Rule A (existing)"):
			return s.merge, nil
		}
		return "", errors.New("unexpected prompt")
	})
}

type generator struct {
	reply  string
	err    error
	system string
	user   string
}

func (g *generator) Complete(_ context.Context, system string, msgs []llm.Message, _ int) (string, error) {
	g.system = system
	g.user = msgs[0].Content
	return g.reply, g.err
}

type fixture struct {
	svc    *Service
	store  *fakeStore
	events *fakePublisher
	gen    *generator
	user   uuid.UUID
}

func newFixture(t *testing.T, script scriptedLLM) *fixture {
	t.Helper()
	logger := discardLogger()
	st := &fakeStore{}
	pub := &fakePublisher{}
	gen := &generator{}
	matcher := similarity.NewMatcher(similarity.DefaultThresholds())
	provider := script.provider()

	svc := New(Deps{
		Store:          st,
		Extractor:      extractor.New(provider, logger),
		Consolidator:   consolidate.New(matcher, consolidate.NewLLMDecider(provider), st, logger),
		Matcher:        matcher,
		Builder:        prompt.NewBuilder(prompt.DefaultTables()),
		Generator:      gen,
		Events:         pub,
		ExpertiseLimit: 2,
	}, logger)

	return &fixture{svc: svc, store: st, events: pub, gen: gen, user: uuid.New()}
}

func (f *fixture) seed(category rules.Category, rt rules.RuleType, content string) rules.Rule {
	r, _ := f.store.InsertRule(context.Background(), rules.NewRule{
		UserID: f.user, Content: content, RuleType: rt, Category: category, Source: rules.SourceManual,
	})
	return r
}

func TestSubmitFeedback_Validation(t *testing.T) {
	f := newFixture(t, scriptedLLM{})

	_, err := f.svc.SubmitFeedback(context.Background(), f.user, FeedbackRequest{FeedbackText: "   ", ScriptContent: "script"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Feedback text is required", verr.Message)

	_, err = f.svc.SubmitFeedback(context.Background(), f.user, FeedbackRequest{FeedbackText: "too long"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Script content is required", verr.Message)

	assert.Empty(t, f.store.feedback)
}

func TestSubmitFeedback_AddsAndMerges(t *testing.T) {
	f := newFixture(t, scriptedLLM{
		feedback: "##1. Avoid filler words and hedging\n##2: Open with a bold claim",
		merge:    "MERGED: Avoid filler words and hedging",
	})
	existing := f.seed(rules.CategoryVoice, rules.TypeNever, "Never use filler words")

	res, err := f.svc.SubmitFeedback(context.Background(), f.user, FeedbackRequest{
		FeedbackText:  "  stop the ums and uhs, and start stronger ",
		ScriptContent: strings.Repeat("s", 6000),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, res.RulesAdded)
	assert.Equal(t, 1, res.RulesConsolidated)

	require.Len(t, f.store.feedback, 1)
	assert.Len(t, f.store.feedback[0].ScriptSnapshot, maxSnapshotChars)
	assert.Equal(t, "stop the ums and uhs, and start stronger", f.store.feedback[0].FeedbackText)

	require.Len(t, f.store.rules, 2)
	assert.Equal(t, existing.ID, f.store.rules[0].ID)
	assert.Equal(t, "Avoid filler words and hedging", f.store.rules[0].Content)
	assert.Equal(t, "Open with a bold claim", f.store.rules[1].Content)
	assert.Equal(t, rules.SourceFeedback, f.store.rules[1].Source)
	assert.Equal(t, rules.CategoryVoice, f.store.rules[1].Category)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, hermes.RulesConsolidated{
		UserID:            f.user.String(),
		Category:          "voice",
		Origin:            "feedback",
		RulesAdded:        1,
		RulesConsolidated: 1,
	}, f.events.events[0])
}

func TestSubmitFeedback_ExtractionFailureIsNotAnError(t *testing.T) {
	f := newFixture(t, scriptedLLM{err: errors.New("provider down")})

	res, err := f.svc.SubmitFeedback(context.Background(), f.user, FeedbackRequest{FeedbackText: "shorter", ScriptContent: "script"})
	require.NoError(t, err)
	assert.Equal(t, consolidate.Result{}, res)
	assert.Len(t, f.store.feedback, 1)
	assert.Empty(t, f.events.events)
}

func TestSubmitFeedback_SnapshotFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, scriptedLLM{feedback: "##1. Keep it under a minute"})
	f.store.feedErr = errors.New("disk full")

	res, err := f.svc.SubmitFeedback(context.Background(), f.user, FeedbackRequest{FeedbackText: "shorter", ScriptContent: "script"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RulesAdded)
}

func TestSubmitFeedback_ListFailure(t *testing.T) {
	f := newFixture(t, scriptedLLM{feedback: "##1. Keep it under a minute"})
	f.store.listErr = errors.New("connection reset")

	_, err := f.svc.SubmitFeedback(context.Background(), f.user, FeedbackRequest{FeedbackText: "shorter", ScriptContent: "script"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

const expertiseJSON = `{
  "knowledge": ["CO2 above 1000ppm measurably impairs focus", "Opening a window for ten minutes resets indoor CO2"],
  "perspectives": ["Fresh air beats expensive gadgets"],
  "communicationStyles": ["Opens with a surprising statistic"]
}`

func longTranscript() string {
	return strings.Repeat("Indoor air quality matters more than people think.   \n", 5)
}

func TestExtractExpertise(t *testing.T) {
	f := newFixture(t, scriptedLLM{expertise: expertiseJSON})

	got, err := f.svc.ExtractExpertise(context.Background(), longTranscript())
	require.NoError(t, err)

	assert.Len(t, got.Knowledge, 2)
	assert.Equal(t, []string{"Fresh air beats expensive gadgets"}, got.Perspectives)
	assert.Equal(t, []string{"Opens with a surprising statistic"}, got.CommunicationStyles)
	assert.NotContains(t, got.Transcript, "\n")
	assert.NotContains(t, got.Transcript, "  ")
	assert.Equal(t, len(got.Transcript), got.TranscriptLength)
}

func TestExtractExpertise_TooShort(t *testing.T) {
	f := newFixture(t, scriptedLLM{expertise: expertiseJSON})

	// Whitespace does not count towards the minimum.
	_, err := f.svc.ExtractExpertise(context.Background(), "short"+strings.Repeat(" ", 200))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestExtractExpertise_ProviderFailure(t *testing.T) {
	f := newFixture(t, scriptedLLM{err: errors.New("rate limited")})

	_, err := f.svc.ExtractExpertise(context.Background(), longTranscript())
	assert.ErrorIs(t, err, ErrProvider)
}

func TestExtractExpertise_EmptyListsAreNotNull(t *testing.T) {
	f := newFixture(t, scriptedLLM{expertise: "no json here"})

	got, err := f.svc.ExtractExpertise(context.Background(), longTranscript())
	require.NoError(t, err)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"knowledge":[]`)
}

func TestAddExpertise(t *testing.T) {
	f := newFixture(t, scriptedLLM{merge: "KEPT_BOTH"})
	f.seed(rules.CategoryVoice, rules.TypeGeneral, "CO2 above 1000ppm impairs focus")

	res, err := f.svc.AddExpertise(context.Background(), f.user, []string{" CO2 above 1000ppm impairs focus ", ""})
	require.NoError(t, err)

	// A voice rule with the same words is not a duplicate of an expertise rule.
	assert.Equal(t, 1, res.RulesAdded)
	assert.Equal(t, rules.CategoryExpertise, f.store.rules[1].Category)

	_, err = f.svc.AddExpertise(context.Background(), f.user, []string{"  "})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestHandleTranscriptStored(t *testing.T) {
	f := newFixture(t, scriptedLLM{expertise: expertiseJSON, merge: "KEPT_BOTH"})

	data, _ := json.Marshal(hermes.TranscriptStored{
		UserID:     f.user.String(),
		Transcript: longTranscript(),
		SourceRef:  "yt:abc",
	})
	f.svc.HandleTranscriptStored(hermes.SubjectTranscriptStored, data)

	var contents []string
	for _, r := range f.store.rules {
		assert.Equal(t, rules.CategoryExpertise, r.Category)
		contents = append(contents, r.Content)
	}
	assert.ElementsMatch(t, []string{
		"CO2 above 1000ppm measurably impairs focus",
		"Opening a window for ten minutes resets indoor CO2",
		"Fresh air beats expensive gadgets",
	}, contents)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "transcript", f.events.events[0].Origin)
}

func TestHandleTranscriptStored_BadPayloads(t *testing.T) {
	f := newFixture(t, scriptedLLM{expertise: expertiseJSON})

	f.svc.HandleTranscriptStored(hermes.SubjectTranscriptStored, []byte("{not json"))
	f.svc.HandleTranscriptStored(hermes.SubjectTranscriptStored, []byte(`{"user_id":"nope","transcript":"x"}`))
	f.svc.HandleTranscriptStored(hermes.SubjectTranscriptStored, []byte(`{"user_id":"`+f.user.String()+`","transcript":"too short"}`))

	assert.Empty(t, f.store.rules)
	assert.Equal(t, 0, f.store.listCalls)
}

func TestCreateContent(t *testing.T) {
	f := newFixture(t, scriptedLLM{})
	f.gen.reply = "Fresh air—it changes everything."
	wpm := 150
	f.store.profile = &prompt.Profile{FirstName: "Dana", SpeakingRateWPM: &wpm}
	f.seed(rules.CategoryVoice, rules.TypeAvoid, "Avoid jargon")
	f.seed(rules.CategoryExpertise, rules.TypeGeneral, "Ventilation lowers indoor CO2 quickly")
	f.seed(rules.CategoryExpertise, rules.TypeGeneral, "Sourdough needs a mature starter")
	f.seed(rules.CategoryExpertise, rules.TypeGeneral, "Indoor CO2 above 1000ppm impairs focus")

	out, err := f.svc.CreateContent(context.Background(), f.user, ContentRequest{Prompt: "  indoor CO2 and focus ", Duration: 60, Platform: "TikTok"})
	require.NoError(t, err)

	assert.Equal(t, "Fresh air, it changes everything.", out)
	assert.Equal(t, "indoor CO2 and focus", f.gen.user)
	assert.Contains(t, f.gen.system, "for TikTok content. Maximum length: 150 words.")
	assert.Contains(t, f.gen.system, "The creator is Dana.")
	assert.Contains(t, f.gen.system, "Avoid: Avoid jargon")
	assert.Contains(t, f.gen.system, "- Ventilation lowers indoor CO2 quickly")
	assert.Contains(t, f.gen.system, "- Indoor CO2 above 1000ppm impairs focus")
	assert.NotContains(t, f.gen.system, "Sourdough")
}

func TestCreateContent_Errors(t *testing.T) {
	f := newFixture(t, scriptedLLM{})

	_, err := f.svc.CreateContent(context.Background(), f.user, ContentRequest{Prompt: "   "})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Prompt is required", verr.Message)

	f.gen.err = errors.New("upstream 503")
	_, err = f.svc.CreateContent(context.Background(), f.user, ContentRequest{Prompt: "sleep"})
	assert.ErrorIs(t, err, ErrProvider)

	f.gen.err = nil
	f.store.profErr = errors.New("db gone")
	_, err = f.svc.CreateContent(context.Background(), f.user, ContentRequest{Prompt: "sleep"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrProvider)
}

func TestCreateContent_NoGenerator(t *testing.T) {
	f := newFixture(t, scriptedLLM{})
	f.svc.generator = nil

	_, err := f.svc.CreateContent(context.Background(), f.user, ContentRequest{Prompt: "sleep"})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPreviewPrompt_MissingProfile(t *testing.T) {
	f := newFixture(t, scriptedLLM{})

	out, err := f.svc.PreviewPrompt(context.Background(), f.user, ContentRequest{Prompt: "sleep"})
	require.NoError(t, err)
	assert.Contains(t, out, "The creator has not yet completed profile setup.")
	assert.Contains(t, out, "general content")
	assert.Empty(t, f.gen.system, "preview must not call the provider")
}
