package gemini

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"splynt/game"
)

// decodeStep validates and converts a raw story-step payload. The payload
// must carry a non-empty story and exactly three choices with parseable
// effects; anything else is a malformed payload, never garbage state.
func decodeStep(raw string) (*game.Step, error) {
	var payload struct {
		Story     string `json:"story"`
		Character string `json:"character"`
		Choices   []struct {
			Text   string `json:"text"`
			Effect string `json:"effect"`
		} `json:"choices"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if strings.TrimSpace(payload.Story) == "" {
		return nil, errors.New("empty story")
	}
	if len(payload.Choices) != 3 {
		return nil, fmt.Errorf("expected 3 choices, got %d", len(payload.Choices))
	}

	step := &game.Step{Story: payload.Story, Character: payload.Character}
	for i, c := range payload.Choices {
		effect, err := parseEffect(c.Effect)
		if err != nil {
			return nil, fmt.Errorf("choice %d: %w", i+1, err)
		}
		if strings.TrimSpace(c.Text) == "" {
			return nil, fmt.Errorf("choice %d: empty text", i+1)
		}
		step.Choices = append(step.Choices, game.Choice{Text: c.Text, Effect: effect})
	}
	return step, nil
}

// decodeInterpretation validates and converts a raw interpretation payload.
func decodeInterpretation(raw string) (*game.Interpretation, error) {
	var payload struct {
		Reply     string `json:"reply"`
		Effect    string `json:"effect"`
		Reasoning string `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	effect, err := parseEffect(payload.Effect)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(payload.Reply) == "" {
		return nil, errors.New("empty reply")
	}
	return &game.Interpretation{Reply: payload.Reply, Effect: effect, Reasoning: payload.Reasoning}, nil
}

// decodeExit validates and converts a raw exit-confirmation payload.
func decodeExit(raw string) (game.ExitConfirmation, error) {
	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		return game.ExitConfirmation{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Body) == "" {
		return game.ExitConfirmation{}, errors.New("incomplete dialog")
	}
	return game.ExitConfirmation{Title: payload.Title, Body: payload.Body}, nil
}

// stripFences removes the markdown fence the model sometimes wraps JSON in.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseEffect parses the "+N"/"-N" effect string into a signed int. A
// leading plus is fine; anything unparseable is a validation failure, never
// a silent zero.
func parseEffect(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("effect %q is not a signed integer", s)
	}
	return n, nil
}
