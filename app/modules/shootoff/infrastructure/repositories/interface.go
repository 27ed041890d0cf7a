package shootoffdb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
)

// Repository defines the contract for shoot-off persistence. Every method
// accepts a bun.IDB so a service-level transaction can span calls; passing
// nil falls back to the pool.
type Repository interface {
	// CreateShootOff inserts the aggregate root and its participants.
	CreateShootOff(ctx context.Context, db bun.IDB, shootOff *ShootOff, participants []*Participant) error

	// GetShootOff loads a shoot-off with participants, rounds, and scores.
	GetShootOff(ctx context.Context, db bun.IDB, id uuid.UUID) (*ShootOff, error)

	// GetShootOffForUpdate loads a shoot-off like GetShootOff but takes a
	// row-level lock on the aggregate root, serializing concurrent mutating
	// operations on the same shoot-off. Must be called inside a transaction.
	GetShootOffForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*ShootOff, error)

	// ListShootOffsByTournament lists shoot-offs for a tournament, newest
	// first, optionally filtered by status.
	ListShootOffsByTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, status *shootoffdomain.Status) ([]*ShootOff, error)

	// UpdateStatus moves a shoot-off from one status to another, guarded on
	// the expected current status. Returns ErrNoRowsAffected when the row
	// was not in the expected status.
	UpdateStatus(ctx context.Context, db bun.IDB, id uuid.UUID, from, to shootoffdomain.Status, startedAt, completedAt *time.Time) error

	// CompleteShootOff atomically sets winner, completed status, and
	// completion timestamp, guarded on in_progress.
	CompleteShootOff(ctx context.Context, db bun.IDB, id uuid.UUID, winnerID uuid.UUID, completedAt time.Time) error

	// CreateRound inserts a new round.
	CreateRound(ctx context.Context, db bun.IDB, round *Round) error

	// CompleteRound stamps a round's completion time and recording actor,
	// guarded on the round still being open.
	CompleteRound(ctx context.Context, db bun.IDB, roundID uuid.UUID, completedAt time.Time, recordedBy uuid.UUID) error

	// InsertRoundScores inserts one score row per active participant.
	InsertRoundScores(ctx context.Context, db bun.IDB, scores []*RoundScore) error

	// EliminateParticipants flips the eliminated flag for the given
	// participants. The flag is monotonic; rows already eliminated are
	// never touched.
	EliminateParticipants(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, participantIDs []uuid.UUID) error

	// SetFinalPlaces writes each participant's final place.
	SetFinalPlaces(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, places map[uuid.UUID]int) error
}
