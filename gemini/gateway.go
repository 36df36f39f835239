// Package gemini is the generation gateway: five narrow operations over one
// generative model. Each operation performs a single call, validates the
// returned payload shape, and converts every problem into a *Failure. Raw
// client errors and raw "+N" effect strings never cross this boundary.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"

	"splynt/game"
	"splynt/prompts"
	"splynt/sanitize"
)

// Failure is a typed gateway failure. Op names the operation that failed.
type Failure struct {
	Op  string
	Err error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("gemini: %s: %v", f.Op, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Gateway wraps a generative model behind the game.Generator contract.
type Gateway struct {
	model *genai.GenerativeModel
}

var _ game.Generator = (*Gateway)(nil)

// New returns a gateway backed by the given model.
func New(model *genai.GenerativeModel) *Gateway {
	return &Gateway{model: model}
}

// StoryStep fetches the next interview beat.
func (g *Gateway) StoryStep(ctx context.Context, snapshot game.Snapshot, settings game.Settings) (*game.Step, error) {
	const op = "story step"
	prompt := fmt.Sprintf(prompts.StoryStep,
		snapshot.Hireability,
		progressJSON(snapshot),
		settings.Difficulty.ExtraPrompt,
		settings.Language,
		settings.Difficulty.MaxLosingPoints,
		settings.Difficulty.MaxGainPoints,
		allowedTagsJSON(),
	)

	raw, err := g.generate(ctx, op, prompt)
	if err != nil {
		return nil, err
	}
	step, err := decodeStep(raw)
	if err != nil {
		return nil, &Failure{Op: op, Err: err}
	}
	return step, nil
}

// Interpret scores a free-text player reply.
func (g *Gateway) Interpret(ctx context.Context, input, stepStory string, snapshot game.Snapshot, settings game.Settings) (*game.Interpretation, error) {
	const op = "interpretation"
	prompt := fmt.Sprintf(prompts.Interpret,
		snapshot.Hireability,
		progressJSON(snapshot),
		input,
		stepStory,
		settings.Difficulty.MaxLosingPoints,
		settings.Difficulty.MaxGainPoints,
	)

	raw, err := g.generate(ctx, op, prompt)
	if err != nil {
		return nil, err
	}
	in, err := decodeInterpretation(raw)
	if err != nil {
		return nil, &Failure{Op: op, Err: err}
	}
	return in, nil
}

// Conclusion fetches the closing narration for a finished game.
func (g *Gateway) Conclusion(ctx context.Context, snapshot game.Snapshot, settings game.Settings) (string, error) {
	const op = "conclusion"
	threshold := settings.Difficulty.HiringThreshold
	prompt := fmt.Sprintf(prompts.Conclusion,
		snapshot.Hireability,
		progressJSON(snapshot),
		threshold,
		threshold,
		settings.Language,
	)

	raw, err := g.generate(ctx, op, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &Failure{Op: op, Err: errors.New("empty conclusion")}
	}
	return text, nil
}

// ExitConfirmation fetches the dialog shown on an exit attempt.
func (g *Gateway) ExitConfirmation(ctx context.Context, snapshot game.Snapshot, settings game.Settings) (game.ExitConfirmation, error) {
	const op = "exit confirmation"
	prompt := fmt.Sprintf(prompts.ExitConfirmation,
		snapshot.Hireability,
		progressJSON(snapshot),
		settings.Language,
	)

	raw, err := g.generate(ctx, op, prompt)
	if err != nil {
		return game.ExitConfirmation{}, err
	}
	confirm, err := decodeExit(raw)
	if err != nil {
		return game.ExitConfirmation{}, &Failure{Op: op, Err: err}
	}
	return confirm, nil
}

// Opener fetches the receptionist scene shown before the first step.
func (g *Gateway) Opener(ctx context.Context, settings game.Settings) (string, error) {
	const op = "opener"
	prompt := fmt.Sprintf(prompts.Opener, settings.Language, allowedTagsJSON())

	raw, err := g.generate(ctx, op, prompt)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", &Failure{Op: op, Err: errors.New("empty opener")}
	}
	return text, nil
}

// generate performs one model call and extracts the text of the first
// candidate. No retries here; retry and fallback policy belongs to the
// controller.
func (g *Gateway) generate(ctx context.Context, op, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &Failure{Op: op, Err: err}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &Failure{Op: op, Err: errors.New("no content returned")}
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", &Failure{Op: op, Err: errors.New("unexpected response part type")}
	}
	return string(text), nil
}

func progressJSON(snapshot game.Snapshot) string {
	b, err := json.Marshal(snapshot.Progress)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func allowedTagsJSON() string {
	b, _ := json.Marshal(sanitize.AllowedTags)
	return string(b)
}
