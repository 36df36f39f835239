package game

import (
	"context"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
)

// Generator is the contract the controller needs from the generation
// gateway. Implementations perform exactly one network call per method and
// never retry; retry and fallback policy lives here.
type Generator interface {
	Opener(ctx context.Context, settings Settings) (string, error)
	StoryStep(ctx context.Context, snapshot Snapshot, settings Settings) (*Step, error)
	Interpret(ctx context.Context, input, stepStory string, snapshot Snapshot, settings Settings) (*Interpretation, error)
	Conclusion(ctx context.Context, snapshot Snapshot, settings Settings) (string, error)
	ExitConfirmation(ctx context.Context, snapshot Snapshot, settings Settings) (ExitConfirmation, error)
}

// Snapshot is the read-only slice of game state handed to the generators.
type Snapshot struct {
	Hireability int
	Progress    []Turn
}

// ExitConfirmation is the advisory dialog content for an exit attempt.
type ExitConfirmation struct {
	Title string
	Body  string
}

// Phase is the controller's position in the game lifecycle.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhasePlaying
	PhaseConcluding
	PhaseOver
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not started"
	case PhasePlaying:
		return "playing"
	case PhaseConcluding:
		return "concluding"
	case PhaseOver:
		return "over"
	default:
		return "unknown"
	}
}

// Fixed texts used when a non-fatal generation call fails. A broken
// conclusion or dialog should never block the player.
const (
	fallbackOpener = `Donna smirks as you approach. "Let me guess... here for Harvey?" <br />` +
		`You nod. "Mike Ross. Interview." <br />` +
		`She tilts her head. "Think you've got what it takes?" <br />` +
		`She gestures to the door.`
	fallbackConclusion = "The interview concludes abruptly."
	fallbackExitTitle  = "Exit Interview?"
	fallbackExitBody   = "Harvey looks up as you stand to leave. Are you sure you want to go?"

	doorPlayerLine = "You open the door and step inside."

	errStepFetch = "Failed to fetch the next story step."
	errInterpret = "Failed to interpret your input."
)

// Controller drives the game from opening the door to the final verdict.
// Each player intent maps to one named transition; every transition commits
// its turn before issuing the next generation call, so the terminal check
// always reads post-commit state. The loading flag doubles as the
// mutual-exclusion gate: a second commit while a call is in flight is
// refused with ErrBusy, and a restart bumps the epoch so late results from
// the previous game are discarded rather than applied.
type Controller struct {
	mu sync.Mutex

	gen      Generator
	settings Settings
	state    *State

	phase      Phase
	loading    bool
	lastError  string
	conclusion string
	epoch      int

	shuffle func([]Choice)
}

// NewController builds a controller for a single configured game.
func NewController(gen Generator, settings Settings) *Controller {
	return &Controller{
		gen:      gen,
		settings: settings,
		state:    NewState(),
		shuffle: func(cs []Choice) {
			rand.Shuffle(len(cs), func(i, j int) { cs[i], cs[j] = cs[j], cs[i] })
		},
	}
}

// View is an immutable rendering snapshot for the presentation layer.
type View struct {
	Phase       Phase
	Loading     bool
	Error       string
	Hireability int
	Steps       int
	Step        *Step
	Backlog     []Message
	Conclusion  string
	Outcome     Outcome
	Settings    Settings
}

// View returns everything the presentation layer needs to render.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Phase:       c.phase,
		Loading:     c.loading,
		Error:       c.lastError,
		Hireability: c.state.Hireability(),
		Steps:       c.state.Steps(),
		Step:        c.state.CurrentStep(),
		Backlog:     c.state.Backlog(),
		Conclusion:  c.conclusion,
		Outcome:     c.state.Outcome(),
		Settings:    c.settings,
	}
}

// Log returns the diagnostic log of the current run.
func (c *Controller) Log() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Log()
}

// Progress returns the committed turns of the current run.
func (c *Controller) Progress() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Progress()
}

// Settings returns the immutable configuration of this game.
func (c *Controller) Settings() Settings {
	return c.settings
}

// OpenDoor starts the game: fetches the opener narration, commits the
// synthetic opening turn, then fetches the first real step. A failed opener
// falls back to a fixed scene; a failed first step ends the game like any
// other step failure.
func (c *Controller) OpenDoor(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseNotStarted {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	epoch := c.epoch
	settings := c.settings
	c.loading = true
	c.mu.Unlock()

	opener, err := c.gen.Opener(ctx, settings)
	if err != nil {
		log.Printf("opener generation failed, using fallback: %v", err)
		opener = fallbackOpener
	}

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return ErrStale
	}
	c.state.AppendOpening(opener, doorPlayerLine)
	c.phase = PhasePlaying
	c.loading = false
	// The opening counts as a committed turn; in a degenerate
	// configuration the terminal check already fires here.
	return c.advanceLocked(ctx)
}

// Choose commits choice n (1-based) against the current step, then either
// ends the game or fetches the next step.
func (c *Controller) Choose(ctx context.Context, n int) error {
	c.mu.Lock()
	if c.phase != PhasePlaying {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	if _, err := c.state.ApplyChoice(n); err != nil {
		c.mu.Unlock()
		return err
	}
	c.lastError = ""
	return c.advanceLocked(ctx)
}

// Respond commits a free-text turn. The input is interpreted first; if the
// interpreter fails nothing is mutated and the player may resubmit.
func (c *Controller) Respond(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrNoInterpretation
	}

	c.mu.Lock()
	if c.phase != PhasePlaying {
		c.mu.Unlock()
		return ErrWrongPhase
	}
	if c.loading {
		c.mu.Unlock()
		return ErrBusy
	}
	epoch := c.epoch
	settings := c.settings
	snap := c.snapshotLocked()
	stepStory := ""
	if step := c.state.CurrentStep(); step != nil {
		stepStory = step.Story
	}
	c.loading = true
	c.mu.Unlock()

	in, err := c.gen.Interpret(ctx, text, stepStory, snap, settings)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return ErrStale
	}
	if err != nil {
		c.loading = false
		c.lastError = errInterpret
		c.mu.Unlock()
		return err
	}
	if err := c.state.ApplyFreeText(text, in); err != nil {
		c.loading = false
		c.lastError = errInterpret
		c.mu.Unlock()
		return err
	}
	c.lastError = ""
	c.loading = false
	return c.advanceLocked(ctx)
}

// ExitAttempt asks the generator for a confirmation dialog. Purely
// advisory: it never mutates game state, and any failure degrades to the
// fixed dialog. When a generation call is already in flight the fixed
// dialog is returned without issuing a second call.
func (c *Controller) ExitAttempt(ctx context.Context) ExitConfirmation {
	fallback := ExitConfirmation{Title: fallbackExitTitle, Body: fallbackExitBody}

	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return fallback
	}
	epoch := c.epoch
	settings := c.settings
	snap := c.snapshotLocked()
	c.loading = true
	c.mu.Unlock()

	confirm, err := c.gen.ExitConfirmation(ctx, snap, settings)

	c.mu.Lock()
	if epoch == c.epoch {
		c.loading = false
	}
	c.mu.Unlock()

	if err != nil {
		log.Printf("exit confirmation generation failed, using fallback: %v", err)
		return fallback
	}
	return confirm
}

// Restart abandons the current run and returns to a fresh NotStarted game.
// The epoch bump makes any generation call still in flight resolve as
// stale.
func (c *Controller) Restart() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.state.Reset()
	c.phase = PhaseNotStarted
	c.loading = false
	c.lastError = ""
	c.conclusion = ""
}

// advanceLocked runs after a committed turn, with the lock held. It
// evaluates the terminal condition against post-commit state, then either
// performs the single Concluding transition or fetches the next step. The
// lock is released for the duration of the generation call and the result
// is dropped if the epoch moved.
func (c *Controller) advanceLocked(ctx context.Context) error {
	epoch := c.epoch
	settings := c.settings

	if c.state.Steps()+1 >= settings.Difficulty.MaxSteps {
		outcome := OutcomeRejected
		if c.state.Hireability() > settings.Difficulty.HiringThreshold {
			outcome = OutcomeHired
		}
		if err := c.state.MarkGameOver(outcome); err != nil {
			c.mu.Unlock()
			return err
		}
		c.phase = PhaseConcluding
		c.loading = true
		snap := c.snapshotLocked()
		c.mu.Unlock()

		text, err := c.gen.Conclusion(ctx, snap, settings)
		if err != nil {
			log.Printf("conclusion generation failed, using fallback: %v", err)
			text = fallbackConclusion
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if epoch != c.epoch {
			return ErrStale
		}
		c.conclusion = text
		c.phase = PhaseOver
		c.loading = false
		return nil
	}

	return c.fetchStepLocked(ctx, epoch)
}

// fetchStepLocked fetches the next story step. Called with the lock held;
// the lock is released around the network call. A step failure is fatal to
// the run: a half-broken narrative is worse than ending the session.
func (c *Controller) fetchStepLocked(ctx context.Context, epoch int) error {
	settings := c.settings
	snap := c.snapshotLocked()
	c.loading = true
	c.mu.Unlock()

	step, err := c.gen.StoryStep(ctx, snap, settings)

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch {
		return ErrStale
	}
	c.loading = false
	if err != nil {
		c.lastError = errStepFetch
		c.phase = PhaseOver
		return err
	}
	c.shuffle(step.Choices)
	c.state.SetCurrentStep(step)
	return nil
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Hireability: c.state.Hireability(),
		Progress:    c.state.Progress(),
	}
}
