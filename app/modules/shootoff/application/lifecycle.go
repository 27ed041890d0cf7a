package shootoffservice

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	shootoffevents "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/events"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/internal/results"
)

// StartShootOff transitions pending → in_progress and stamps startedAt.
func (s *ShootOffService) StartShootOff(ctx context.Context, actor ActorContext, shootOffID uuid.UUID) (*ShootOffView, error) {
	startTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ShootOffView, error], error) {
		return s.transitionLogic(ctx, db, shootOffID, "start", shootoffdomain.StatusInProgress)
	}

	result, err := withTelemetry(s, ctx, "StartShootOff", shootOffID.String(), func(ctx context.Context) (results.OperationResult[*ShootOffView, error], error) {
		return runInTx(s, ctx, startTx)
	})

	view, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, shootoffevents.ShootOffStarted, shootoffevents.ShootOffStatusPayload{
		ShootOffID:   view.ID,
		TournamentID: view.TournamentID,
		Status:       string(view.Status),
		ActorID:      actor.ID,
		OccurredAt:   time.Now().UTC(),
	})

	return view, nil
}

// CancelShootOff transitions pending|in_progress → cancelled. Terminal; no
// placements are ever assigned and round history stays queryable for audit.
func (s *ShootOffService) CancelShootOff(ctx context.Context, actor ActorContext, shootOffID uuid.UUID) (*ShootOffView, error) {
	cancelTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ShootOffView, error], error) {
		return s.transitionLogic(ctx, db, shootOffID, "cancel", shootoffdomain.StatusCancelled)
	}

	result, err := withTelemetry(s, ctx, "CancelShootOff", shootOffID.String(), func(ctx context.Context) (results.OperationResult[*ShootOffView, error], error) {
		return runInTx(s, ctx, cancelTx)
	})

	view, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, shootoffevents.ShootOffCancelled, shootoffevents.ShootOffStatusPayload{
		ShootOffID:   view.ID,
		TournamentID: view.TournamentID,
		Status:       string(view.Status),
		ActorID:      actor.ID,
		OccurredAt:   time.Now().UTC(),
	})

	return view, nil
}

// transitionLogic performs a bare status transition under the aggregate row
// lock.
func (s *ShootOffService) transitionLogic(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, operation string, to shootoffdomain.Status) (results.OperationResult[*ShootOffView, error], error) {
	shootOff, err := s.repo.GetShootOffForUpdate(ctx, db, shootOffID)
	if err != nil {
		if errors.Is(err, shootoffdb.ErrNotFound) {
			return results.FailureResult[*ShootOffView, error](ErrShootOffNotFound), nil
		}
		return results.OperationResult[*ShootOffView, error]{}, err
	}

	if !shootOff.Status.CanTransitionTo(to) {
		return results.FailureResult[*ShootOffView, error](
			&InvalidStateError{Operation: operation, Status: shootOff.Status},
		), nil
	}

	now := time.Now().UTC()
	var startedAt, completedAt *time.Time
	switch to {
	case shootoffdomain.StatusInProgress:
		startedAt = &now
	case shootoffdomain.StatusCancelled:
		completedAt = &now
	}

	if err := s.repo.UpdateStatus(ctx, db, shootOffID, shootOff.Status, to, startedAt, completedAt); err != nil {
		if errors.Is(err, shootoffdb.ErrNoRowsAffected) {
			return results.FailureResult[*ShootOffView, error](ErrConflict), nil
		}
		return results.OperationResult[*ShootOffView, error]{}, err
	}

	shootOff.Status = to
	if startedAt != nil {
		shootOff.StartedAt = startedAt
	}
	if completedAt != nil {
		shootOff.CompletedAt = completedAt
	}

	return results.SuccessResult[*ShootOffView, error](toView(shootOff)), nil
}
