// Package shootoffdomain holds the pure rules of a shoot-off: the lifecycle
// state machine, the format variants with their elimination policies, and
// the final placement ordering. Nothing in this package touches storage.
package shootoffdomain

import "fmt"

// Format is the tie-break format of a shoot-off. Fixed at creation,
// immutable thereafter.
type Format string

const (
	FormatSuddenDeath Format = "sudden_death"
	FormatFixedRounds Format = "fixed_rounds"
	FormatProgressive Format = "progressive"
)

// ParseFormat validates a caller-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatSuddenDeath, FormatFixedRounds, FormatProgressive:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unknown shoot-off format %q", s)
	}
}

// Status is the lifecycle state of a shoot-off.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsTerminal reports whether no transition may leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine permits moving from s to
// next. Permitted moves: pending → in_progress, in_progress → completed,
// and pending|in_progress → cancelled.
func (s Status) CanTransitionTo(next Status) bool {
	switch next {
	case StatusInProgress:
		return s == StatusPending
	case StatusCompleted:
		return s == StatusInProgress
	case StatusCancelled:
		return !s.IsTerminal()
	default:
		return false
	}
}

// MinParticipants is the smallest field a shoot-off may be created with.
const MinParticipants = 2
