package game

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeGen is a scriptable Generator. Step payloads are copied per call so
// the controller's in-place shuffle cannot leak between turns.
type fakeGen struct {
	mu sync.Mutex

	opener    string
	openerErr error

	stepStory   string
	stepChoices []Choice
	stepErr     error
	stepCalls   int
	stepStarted chan struct{}
	stepRelease chan struct{}

	interp    *Interpretation
	interpErr error

	conclusion      string
	conclusionErr   error
	conclusionCalls int

	exit    ExitConfirmation
	exitErr error
}

func newFakeGen() *fakeGen {
	return &fakeGen{
		opener:      "Donna waves you in.",
		stepStory:   "Harvey looks up.",
		stepChoices: []Choice{{Text: "A", Effect: 1}, {Text: "B", Effect: 2}, {Text: "C", Effect: 3}},
		interp:      &Interpretation{Reply: "Noted.", Effect: 4},
		conclusion:  "Welcome to Pearson Hardman.",
		exit:        ExitConfirmation{Title: "Leaving?", Body: "Harvey raises an eyebrow."},
	}
}

func (f *fakeGen) Opener(ctx context.Context, settings Settings) (string, error) {
	return f.opener, f.openerErr
}

func (f *fakeGen) StoryStep(ctx context.Context, snapshot Snapshot, settings Settings) (*Step, error) {
	f.mu.Lock()
	f.stepCalls++
	started, release := f.stepStarted, f.stepRelease
	err := f.stepErr
	story := f.stepStory
	choices := make([]Choice, len(f.stepChoices))
	copy(choices, f.stepChoices)
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if release != nil {
		<-release
	}
	if err != nil {
		return nil, err
	}
	return &Step{Story: story, Choices: choices}, nil
}

func (f *fakeGen) Interpret(ctx context.Context, input, stepStory string, snapshot Snapshot, settings Settings) (*Interpretation, error) {
	if f.interpErr != nil {
		return nil, f.interpErr
	}
	in := *f.interp
	return &in, nil
}

func (f *fakeGen) Conclusion(ctx context.Context, snapshot Snapshot, settings Settings) (string, error) {
	f.mu.Lock()
	f.conclusionCalls++
	f.mu.Unlock()
	return f.conclusion, f.conclusionErr
}

func (f *fakeGen) ExitConfirmation(ctx context.Context, snapshot Snapshot, settings Settings) (ExitConfirmation, error) {
	return f.exit, f.exitErr
}

func testSettings(maxSteps, threshold int) Settings {
	return Settings{
		Language: "english",
		Difficulty: Difficulty{
			Key: "test", MaxSteps: maxSteps,
			MaxGainPoints: 10, MaxLosingPoints: 10,
			HiringThreshold: threshold,
		},
	}
}

// newTestController disables shuffling so choice indexes are predictable.
func newTestController(gen Generator, settings Settings) *Controller {
	c := NewController(gen, settings)
	c.shuffle = func([]Choice) {}
	return c
}

func TestOpenDoorStartsGame(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(10, 70))

	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}

	v := c.View()
	if v.Phase != PhasePlaying {
		t.Errorf("expected playing phase, got %s", v.Phase)
	}
	if v.Steps != 1 {
		t.Errorf("the opening turn should be committed, got %d turns", v.Steps)
	}
	if v.Step == nil {
		t.Fatal("expected a live step after opening")
	}
	if v.Loading {
		t.Error("loading must be cleared once the step resolved")
	}
	if len(v.Backlog) == 0 || v.Backlog[0].Text != "Donna waves you in." {
		t.Errorf("backlog should start with the opener, got %+v", v.Backlog)
	}
}

func TestOpenDoorTwice(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(10, 70))
	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	if err := c.OpenDoor(context.Background()); !errors.Is(err, ErrWrongPhase) {
		t.Fatalf("expected ErrWrongPhase, got %v", err)
	}
}

func TestOpenerFailureFallsBack(t *testing.T) {
	gen := newFakeGen()
	gen.openerErr = errors.New("blocked")
	c := newTestController(gen, testSettings(10, 70))

	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	v := c.View()
	if v.Phase != PhasePlaying {
		t.Errorf("a failed opener must not block the game, phase %s", v.Phase)
	}
	if len(v.Backlog) == 0 || v.Backlog[0].Text != fallbackOpener {
		t.Error("expected the fixed opener scene in the backlog")
	}
}

func TestTerminalConditionExact(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(5, 70))

	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}

	// Opening is turn 1; two more choices stay below the terminal count.
	for i := 0; i < 2; i++ {
		if err := c.Choose(context.Background(), 1); err != nil {
			t.Fatalf("Choose %d: %v", i, err)
		}
		if v := c.View(); v.Phase != PhasePlaying {
			t.Fatalf("game ended early at %d turns", v.Steps)
		}
	}

	fetchesBefore := gen.stepCalls
	// Fourth committed turn: 4 + 1 >= 5, the game must end with no
	// further step fetch.
	if err := c.Choose(context.Background(), 1); err != nil {
		t.Fatalf("final Choose: %v", err)
	}

	v := c.View()
	if v.Phase != PhaseOver {
		t.Fatalf("expected over, got %s", v.Phase)
	}
	if v.Steps != 4 {
		t.Errorf("expected 4 committed turns, got %d", v.Steps)
	}
	if gen.stepCalls != fetchesBefore {
		t.Error("no story-step fetch may follow the terminal turn")
	}
	if gen.conclusionCalls != 1 {
		t.Errorf("conclusion must be fetched exactly once, got %d", gen.conclusionCalls)
	}
	if v.Conclusion != "Welcome to Pearson Hardman." {
		t.Errorf("unexpected conclusion %q", v.Conclusion)
	}
}

func TestThresholdIsStrict(t *testing.T) {
	gen := newFakeGen()
	gen.stepChoices = []Choice{{Text: "A", Effect: 20}, {Text: "B", Effect: 0}, {Text: "C", Effect: 0}}
	// Opening (1) plus one choice (2) reaches maxSteps 3.
	c := newTestController(gen, testSettings(3, 70))

	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	if err := c.Choose(context.Background(), 1); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	v := c.View()
	if v.Hireability != 70 {
		t.Fatalf("expected hireability 70, got %d", v.Hireability)
	}
	if v.Outcome != OutcomeRejected {
		t.Errorf("70 vs threshold 70 must be Rejected, got %s", v.Outcome)
	}
}

func TestHiredAboveThreshold(t *testing.T) {
	gen := newFakeGen()
	gen.stepChoices = []Choice{{Text: "A", Effect: 21}, {Text: "B", Effect: 0}, {Text: "C", Effect: 0}}
	c := newTestController(gen, testSettings(3, 70))

	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	if err := c.Choose(context.Background(), 1); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	if v := c.View(); v.Outcome != OutcomeHired {
		t.Errorf("71 vs threshold 70 must be Hired, got %s", v.Outcome)
	}
}

func TestStepFailureIsFatal(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(10, 70))
	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}

	gen.stepErr = errors.New("network down")
	if err := c.Choose(context.Background(), 1); err == nil {
		t.Fatal("expected the step failure to surface")
	}

	v := c.View()
	if v.Phase != PhaseOver {
		t.Errorf("a failed step fetch must force over, got %s", v.Phase)
	}
	if v.Error == "" {
		t.Error("expected a visible error message")
	}
	if v.Outcome != "" {
		t.Errorf("a failure-forced end has no verdict, got %s", v.Outcome)
	}
}

func TestInterpretFailureIsRecoverable(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(10, 70))
	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}

	gen.interpErr = errors.New("parse error")
	if err := c.Respond(context.Background(), "I want this job."); err == nil {
		t.Fatal("expected the interpretation failure to surface")
	}

	v := c.View()
	if v.Phase != PhasePlaying {
		t.Errorf("interpretation failure must leave the player in play, got %s", v.Phase)
	}
	if v.Steps != 1 || v.Hireability != 50 {
		t.Error("interpretation failure must not mutate score or progress")
	}
	if v.Step == nil {
		t.Error("the current step must survive for a retry")
	}
	if v.Error == "" {
		t.Error("expected a visible error message")
	}

	// The player may resubmit once the interpreter works again.
	gen.interpErr = nil
	if err := c.Respond(context.Background(), "I want this job."); err != nil {
		t.Fatalf("retry Respond: %v", err)
	}
	if v := c.View(); v.Steps != 2 || v.Hireability != 54 {
		t.Errorf("retry should commit the turn, got steps=%d score=%d", v.Steps, v.Hireability)
	}
}

func TestRespondEmptyInput(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(10, 70))
	c.OpenDoor(context.Background())

	if err := c.Respond(context.Background(), "   "); !errors.Is(err, ErrNoInterpretation) {
		t.Fatalf("expected ErrNoInterpretation, got %v", err)
	}
	if v := c.View(); v.Steps != 1 {
		t.Error("empty input must not commit a turn")
	}
}

func TestLoadingGateRejectsSecondCommit(t *testing.T) {
	gen := newFakeGen()
	gen.stepStarted = make(chan struct{})
	gen.stepRelease = make(chan struct{})
	c := newTestController(gen, testSettings(10, 70))

	done := make(chan error, 1)
	go func() { done <- c.OpenDoor(context.Background()) }()
	<-gen.stepStarted // the first step fetch is now in flight

	if err := c.Choose(context.Background(), 1); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while loading, got %v", err)
	}
	if err := c.Respond(context.Background(), "hello"); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy while loading, got %v", err)
	}

	close(gen.stepRelease)
	if err := <-done; err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	if v := c.View(); v.Steps != 1 {
		t.Errorf("the blocked commits must not have advanced the game, got %d turns", v.Steps)
	}
}

func TestRestartDiscardsInFlightResult(t *testing.T) {
	gen := newFakeGen()
	gen.stepStarted = make(chan struct{})
	gen.stepRelease = make(chan struct{})
	c := newTestController(gen, testSettings(10, 70))

	done := make(chan error, 1)
	go func() { done <- c.OpenDoor(context.Background()) }()
	<-gen.stepStarted

	c.Restart()
	close(gen.stepRelease)

	if err := <-done; !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale, got %v", err)
	}

	v := c.View()
	if v.Phase != PhaseNotStarted || v.Steps != 0 || v.Step != nil {
		t.Error("a stale result must never touch the fresh game")
	}
}

func TestRestartThenReopenReproducesOpening(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(3, 70))

	// Play a full game.
	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	if err := c.Choose(context.Background(), 1); err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if v := c.View(); v.Phase != PhaseOver {
		t.Fatalf("expected over, got %s", v.Phase)
	}

	c.Restart()
	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("reopen: %v", err)
	}

	v := c.View()
	if v.Hireability != 50 || v.Steps != 1 || v.Conclusion != "" || v.Outcome != "" {
		t.Error("restart must not leak the previous run")
	}
	if len(v.Backlog) != 2 || v.Backlog[0].Text != "Donna waves you in." {
		t.Errorf("reopened game should reproduce the opening turn, got %+v", v.Backlog)
	}
}

func TestNoActionsAfterOver(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(3, 70))
	c.OpenDoor(context.Background())
	c.Choose(context.Background(), 1)

	outcome := c.View().Outcome
	if err := c.Choose(context.Background(), 1); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("expected ErrWrongPhase after over, got %v", err)
	}
	if err := c.Respond(context.Background(), "wait"); !errors.Is(err, ErrWrongPhase) {
		t.Errorf("expected ErrWrongPhase after over, got %v", err)
	}
	if c.View().Outcome != outcome {
		t.Error("outcome must never change once set")
	}
}

func TestShuffledChoicesResolveAgainstDisplayedOrder(t *testing.T) {
	gen := newFakeGen()
	c := NewController(gen, testSettings(10, 70))
	c.shuffle = func(cs []Choice) {
		cs[0], cs[2] = cs[2], cs[0]
	}

	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}

	v := c.View()
	if v.Step.Choices[0].Text != "C" {
		t.Fatalf("expected shuffled first choice C, got %q", v.Step.Choices[0].Text)
	}
	if err := c.Choose(context.Background(), 1); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	// Picking slot 1 must apply the choice the player saw there.
	progress := c.Progress()
	last := progress[len(progress)-1]
	if last.Player != "C" {
		t.Errorf("selection must resolve against the displayed order, got %q", last.Player)
	}
	if got := c.View().Hireability; got != 53 {
		t.Errorf("expected effect of displayed choice (+3), score %d", got)
	}
}

func TestExitAttemptIsAdvisory(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(10, 70))
	c.OpenDoor(context.Background())
	before := c.View()

	confirm := c.ExitAttempt(context.Background())
	if confirm.Title != "Leaving?" {
		t.Errorf("unexpected dialog %+v", confirm)
	}

	after := c.View()
	if after.Steps != before.Steps || after.Hireability != before.Hireability || after.Phase != before.Phase {
		t.Error("exit attempt must not mutate game state")
	}
}

func TestExitAttemptFallsBack(t *testing.T) {
	gen := newFakeGen()
	gen.exitErr = errors.New("blocked")
	c := newTestController(gen, testSettings(10, 70))
	c.OpenDoor(context.Background())

	confirm := c.ExitAttempt(context.Background())
	if confirm.Title != fallbackExitTitle || confirm.Body != fallbackExitBody {
		t.Errorf("expected the fixed dialog, got %+v", confirm)
	}
}

func TestConclusionFailureFallsBack(t *testing.T) {
	gen := newFakeGen()
	gen.conclusionErr = errors.New("blocked")
	c := newTestController(gen, testSettings(3, 70))
	c.OpenDoor(context.Background())
	if err := c.Choose(context.Background(), 1); err != nil {
		t.Fatalf("Choose: %v", err)
	}

	v := c.View()
	if v.Phase != PhaseOver {
		t.Fatalf("expected over, got %s", v.Phase)
	}
	if v.Conclusion != fallbackConclusion {
		t.Errorf("expected fallback conclusion, got %q", v.Conclusion)
	}
}

func TestDegenerateMaxStepsEndsAtOpening(t *testing.T) {
	gen := newFakeGen()
	c := newTestController(gen, testSettings(2, 70))

	if err := c.OpenDoor(context.Background()); err != nil {
		t.Fatalf("OpenDoor: %v", err)
	}
	v := c.View()
	if v.Phase != PhaseOver {
		t.Errorf("maxSteps 2 ends at the opening turn, got %s", v.Phase)
	}
	if gen.stepCalls != 0 {
		t.Errorf("no step fetch may happen in the degenerate configuration, got %d", gen.stepCalls)
	}
}
