package game

import (
	"fmt"
	"time"

	"splynt/sanitize"
)

// Outcome is the final verdict of a finished interview.
type Outcome string

const (
	OutcomeHired    Outcome = "Hired"
	OutcomeRejected Outcome = "Rejected"
)

// Choice is one of the three options offered by a story step. Effect is
// already parsed; the raw "+N"/"-N" string never leaves the gateway.
type Choice struct {
	Text   string
	Effect int
}

// Step is the transient current story step. At most one exists at a time;
// it is cleared the moment the player commits a response to it.
type Step struct {
	Story     string
	Character string
	Choices   []Choice
}

// Interpretation is the interpreter's verdict on free-text input.
type Interpretation struct {
	Reply     string
	Effect    int
	Reasoning string
}

// Turn is one resolved exchange: what the narrator said and what the player
// answered.
type Turn struct {
	Narrator string `json:"narrator"`
	Player   string `json:"player"`
}

// LogEntry is one line of the diagnostic game log.
type LogEntry struct {
	Type      string
	Text      string
	Timestamp time.Time
}

// Log entry types.
const (
	LogUser           = "user"
	LogModel          = "model"
	LogStory          = "story"
	LogInterpretation = "interpretation"
	LogEffect         = "effect"
)

// Message is one entry of the player-facing backlog.
type Message struct {
	Type string
	Text string
}

const initialHireability = 50

// State is the single authoritative game state for one running game. It is
// mutated only through the named operations below; every operation either
// commits a whole turn or changes nothing. State does no locking of its
// own, the Controller serializes access.
type State struct {
	hireability int
	progress    []Turn
	outcome     Outcome
	gameOver    bool

	step *Step

	gameLog []LogEntry
	backlog []Message

	clock func() time.Time
}

// NewState returns a fresh state with hireability at its starting value.
func NewState() *State {
	return &State{hireability: initialHireability, clock: time.Now}
}

func (s *State) Hireability() int { return s.hireability }
func (s *State) Outcome() Outcome { return s.outcome }
func (s *State) Over() bool       { return s.gameOver }

// Steps reports the number of committed turns.
func (s *State) Steps() int { return len(s.progress) }

// Progress returns a copy of all committed turns.
func (s *State) Progress() []Turn {
	out := make([]Turn, len(s.progress))
	copy(out, s.progress)
	return out
}

// CurrentStep returns the live step, or nil when the player has nothing to
// respond to.
func (s *State) CurrentStep() *Step { return s.step }

// SetCurrentStep installs a freshly generated step and records its story in
// the game log.
func (s *State) SetCurrentStep(step *Step) {
	s.step = step
	if step != nil {
		s.appendLog(LogStory, step.Story)
	}
}

// Log returns a copy of the diagnostic log.
func (s *State) Log() []LogEntry {
	out := make([]LogEntry, len(s.gameLog))
	copy(out, s.gameLog)
	return out
}

// Backlog returns a copy of the display backlog.
func (s *State) Backlog() []Message {
	out := make([]Message, len(s.backlog))
	copy(out, s.backlog)
	return out
}

// AppendOpening commits the synthetic opening turn: the opener narration
// paired with the player's door action. Used once, by the open-door
// transition.
func (s *State) AppendOpening(narrator, player string) {
	s.progress = append(s.progress, Turn{Narrator: narrator, Player: player})
	s.backlog = append(s.backlog, Message{Type: LogModel, Text: narrator})
	s.backlog = append(s.backlog, Message{Type: LogUser, Text: player})
	s.appendLog(LogModel, narrator)
	s.appendLog(LogUser, player)
}

// ApplyChoice commits the player's selection of choice n (1-based) against
// the current step. All validation happens before the first mutation, so a
// bad index leaves the state untouched.
func (s *State) ApplyChoice(n int) (Choice, error) {
	if s.step == nil {
		return Choice{}, fmt.Errorf("%w: no current step", ErrInvalidChoice)
	}
	if n < 1 || n > len(s.step.Choices) {
		return Choice{}, fmt.Errorf("%w: index %d out of range", ErrInvalidChoice, n)
	}
	chosen := s.step.Choices[n-1]

	s.progress = append(s.progress, Turn{Narrator: s.step.Story, Player: chosen.Text})
	s.addEffect(chosen.Effect)
	s.backlog = append(s.backlog, Message{Type: LogModel, Text: s.step.Story})
	s.backlog = append(s.backlog, Message{Type: LogUser, Text: chosen.Text})
	s.appendLog(LogUser, "Chose: "+chosen.Text)
	s.appendLog(LogEffect, fmt.Sprintf("Hireability changed by: %d", chosen.Effect))
	s.step = nil
	return chosen, nil
}

// ApplyFreeText commits a free-text turn using the interpreter's verdict. A
// nil interpretation means the interpreter failed; nothing is mutated and
// the caller surfaces the error to the player, who may retry.
func (s *State) ApplyFreeText(text string, in *Interpretation) error {
	if in == nil {
		return ErrNoInterpretation
	}
	narrator := ""
	if s.step != nil {
		narrator = s.step.Story
		s.backlog = append(s.backlog, Message{Type: LogModel, Text: s.step.Story})
	}
	s.progress = append(s.progress, Turn{Narrator: narrator, Player: text})
	s.addEffect(in.Effect)
	s.backlog = append(s.backlog, Message{Type: LogUser, Text: text})
	s.appendLog(LogUser, "Typed: "+text)
	s.appendLog(LogInterpretation, "Interpretation: "+in.Reply)
	s.appendLog(LogEffect, fmt.Sprintf("Hireability changed by: %d", in.Effect))
	s.step = nil
	return nil
}

// MarkGameOver records the outcome. It may succeed exactly once per game; a
// second call returns ErrAlreadyOver and changes nothing.
func (s *State) MarkGameOver(o Outcome) error {
	if s.gameOver {
		return ErrAlreadyOver
	}
	s.outcome = o
	s.gameOver = true
	return nil
}

// Reset restores every owned field to its initial value in one step. No
// partial carryover between games.
func (s *State) Reset() {
	clock := s.clock
	*s = State{hireability: initialHireability, clock: clock}
}

// addEffect applies a score delta, clamped to the displayable 0-100 range.
func (s *State) addEffect(effect int) {
	s.hireability += effect
	if s.hireability > 100 {
		s.hireability = 100
	}
	if s.hireability < 0 {
		s.hireability = 0
	}
}

// appendLog records a diagnostic entry. Log text is stripped to plain text;
// narrative HTML belongs to the backlog, never the log.
func (s *State) appendLog(entryType, text string) {
	s.gameLog = append(s.gameLog, LogEntry{
		Type:      entryType,
		Text:      sanitize.PlainText(text),
		Timestamp: s.clock(),
	})
}
