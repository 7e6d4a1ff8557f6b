package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/MikeSquared-Agency/cadence/internal/llm"
)

const (
	maxScriptChars     = 4000
	maxTranscriptChars = 12000

	feedbackMaxTokens  = 1024
	expertiseMaxTokens = 4096
)

// Expertise is what the model pulled out of a transcript.
type Expertise struct {
	Knowledge           []string `json:"knowledge"`
	Perspectives        []string `json:"perspectives"`
	CommunicationStyles []string `json:"communicationStyles"`
}

type Extractor struct {
	llm    llm.Provider
	logger *slog.Logger
}

func New(provider llm.Provider, logger *slog.Logger) *Extractor {
	return &Extractor{llm: provider, logger: logger}
}

// ExtractFeedbackRules asks the model for at most three style rules implied
// by feedbackText. Provider failures are logged and reported as "no rules".
func (e *Extractor) ExtractFeedbackRules(ctx context.Context, scriptContent, feedbackText string) []string {
	prompt := fmt.Sprintf(feedbackPrompt, Truncate(scriptContent, maxScriptChars), strings.TrimSpace(feedbackText))

	raw, err := e.llm.Complete(ctx, "", llm.UserPrompt(prompt), feedbackMaxTokens)
	if err != nil {
		e.logger.Warn("feedback rule extraction failed", "error", err)
		return nil
	}

	candidates := ParseNumberedRules(raw)
	e.logger.Info("feedback rules extracted", "candidates", len(candidates))
	return candidates
}

// ExtractExpertise pulls knowledge, perspectives and communication styles
// from a transcript. A reply that is not valid JSON yields empty lists.
func (e *Extractor) ExtractExpertise(ctx context.Context, transcript string) (*Expertise, error) {
	prompt := fmt.Sprintf(expertisePrompt, Truncate(transcript, maxTranscriptChars))

	e.logger.Info("extracting expertise", "transcript_len", len(transcript))

	raw, err := e.llm.Complete(ctx, "", llm.UserPrompt(prompt), expertiseMaxTokens)
	if err != nil {
		return nil, fmt.Errorf("llm expertise extraction: %w", err)
	}

	exp := parseExpertise(raw)
	if len(exp.Knowledge)+len(exp.Perspectives)+len(exp.CommunicationStyles) == 0 {
		e.logger.Warn("expertise reply had no usable items", "raw_len", len(raw))
	}

	e.logger.Info("expertise extraction complete",
		"knowledge", len(exp.Knowledge),
		"perspectives", len(exp.Perspectives),
		"styles", len(exp.CommunicationStyles),
	)
	return &exp, nil
}
