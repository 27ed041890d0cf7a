package shootoffservice

import (
	"context"

	"github.com/google/uuid"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
)

// Service is the shoot-off engine's operation contract. Every mutating
// operation takes the acting operator for audit and runs as one short-lived
// transaction; failures leave the aggregate unchanged.
type Service interface {
	// CreateShootOff validates the tie against the score ledger and
	// persists a pending shoot-off with its participants. A claimed tie the
	// ledger does not confirm is rejected with *InvalidTieError.
	CreateShootOff(ctx context.Context, actor ActorContext, input CreateShootOffInput) (*ShootOffView, error)

	// StartShootOff moves a pending shoot-off to in_progress.
	StartShootOff(ctx context.Context, actor ActorContext, shootOffID uuid.UUID) (*ShootOffView, error)

	// CancelShootOff terminally cancels a pending or in_progress shoot-off.
	// Round history is retained for audit; no placements are assigned.
	CancelShootOff(ctx context.Context, actor ActorContext, shootOffID uuid.UUID) (*ShootOffView, error)

	// OpenRound opens the next round while the shoot-off is in_progress,
	// the previous round is complete, and at least two participants remain
	// active.
	OpenRound(ctx context.Context, actor ActorContext, shootOffID uuid.UUID) (*RoundView, error)

	// RecordRoundScores writes one score per active participant for the
	// open round, completes the round, and applies the format's elimination
	// policy, all as a single atomic unit.
	RecordRoundScores(ctx context.Context, actor ActorContext, shootOffID, roundID uuid.UUID, scores []RoundScoreInput) (*RoundResult, error)

	// DeclareWinner confirms the sole surviving participant as winner,
	// assigns final places to every participant, and completes the
	// shoot-off atomically.
	DeclareWinner(ctx context.Context, actor ActorContext, shootOffID, competitorID uuid.UUID) (*ShootOffView, error)

	// GetShootOff returns the full aggregate.
	GetShootOff(ctx context.Context, shootOffID uuid.UUID) (*ShootOffView, error)

	// ListShootOffs returns a tournament's shoot-offs, optionally filtered
	// by status.
	ListShootOffs(ctx context.Context, tournamentID uuid.UUID, status *shootoffdomain.Status) ([]*ShootOffView, error)
}
