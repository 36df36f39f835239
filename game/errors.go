package game

import "errors"

var (
	// ErrInvalidChoice is returned when a choice is committed with no live
	// step or an out-of-range index. Nothing is mutated.
	ErrInvalidChoice = errors.New("game: invalid choice")

	// ErrAlreadyOver is returned by MarkGameOver after the first terminal
	// transition. The second call is an error, not a no-op, so a double
	// firing shows up in logs instead of passing silently.
	ErrAlreadyOver = errors.New("game: already over")

	// ErrBusy is returned when a commit arrives while a generation call is
	// already in flight. One call at a time.
	ErrBusy = errors.New("game: generation in flight")

	// ErrStale marks a generation result that resolved after a restart. The
	// result is discarded without touching state.
	ErrStale = errors.New("game: stale generation result")

	// ErrConfiguration is returned by ResolveSettings for unusable input.
	ErrConfiguration = errors.New("game: configuration error")

	// ErrNoInterpretation is returned by ApplyFreeText when the interpreter
	// produced nothing to apply.
	ErrNoInterpretation = errors.New("game: no interpretation")

	// ErrWrongPhase is returned when an action does not apply to the current
	// phase, such as opening the door twice.
	ErrWrongPhase = errors.New("game: action not valid in current phase")
)
