package shootoffservice

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
)

// Domain errors for the shoot-off service. These are business failures the
// control surface should present as distinct, named conditions, never as a
// generic failure. A failed operation leaves the shoot-off in its prior
// valid state.
var (
	// ErrShootOffNotFound indicates the shoot-off does not exist.
	ErrShootOffNotFound = errors.New("shoot-off not found")

	// ErrRoundNotFound indicates the round does not exist or does not
	// belong to the shoot-off.
	ErrRoundNotFound = errors.New("round not found")

	// ErrInvalidState indicates the operation is not allowed from the
	// shoot-off's current status.
	ErrInvalidState = errors.New("operation not allowed in current shoot-off state")

	// ErrPreviousRoundIncomplete indicates a round is still open; its
	// scores must be recorded before another round can be opened.
	ErrPreviousRoundIncomplete = errors.New("previous round has not been completed")

	// ErrInsufficientActiveParticipants indicates fewer than two
	// participants remain active, so no further round can be opened.
	ErrInsufficientActiveParticipants = errors.New("fewer than two active participants remain")

	// ErrNotSoleSurvivor indicates a winner was declared while two or more
	// participants remain active. Ties are broken by rounds, not by
	// operator fiat.
	ErrNotSoleSurvivor = errors.New("candidate is not the sole remaining participant")

	// ErrAlreadyDecided indicates the shoot-off already has a winner.
	ErrAlreadyDecided = errors.New("shoot-off winner already decided")

	// ErrRoundAlreadyCompleted indicates scores were already recorded for
	// the round, typically because a concurrent submission finished first.
	ErrRoundAlreadyCompleted = errors.New("round has already been completed")

	// ErrConflict indicates a concurrent operation won the race on this
	// shoot-off. Retryable: re-fetch current state and retry or inform the
	// operator.
	ErrConflict = errors.New("concurrent modification of shoot-off")
)

// InvalidTieError is returned when the claimed tied score does not match the
// authoritative regulation totals at creation time. Nothing is persisted;
// the mismatch is reported rather than silently corrected.
type InvalidTieError struct {
	CompetitorID uuid.UUID
	ClaimedScore int
	// ActualScore is nil when the competitor has no recorded regulation
	// total at all.
	ActualScore *int
}

func (e *InvalidTieError) Error() string {
	if e.ActualScore == nil {
		return fmt.Sprintf("competitor %s has no regulation score recorded (claimed tie at %d)",
			e.CompetitorID, e.ClaimedScore)
	}
	return fmt.Sprintf("competitor %s scored %d, not the claimed tied score %d",
		e.CompetitorID, *e.ActualScore, e.ClaimedScore)
}

// ValidationError is returned for structurally invalid input. It names the
// offending field so the operator can correct it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvalidStateError wraps ErrInvalidState with the operation attempted and
// the status that blocked it.
type InvalidStateError struct {
	Operation string
	Status    shootoffdomain.Status
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s a %s shoot-off", e.Operation, e.Status)
}

// Unwrap lets errors.Is(err, ErrInvalidState) classify the condition.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
