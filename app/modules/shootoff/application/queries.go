package shootoffservice

import (
	"context"
	"errors"

	"github.com/google/uuid"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/internal/results"
)

// GetShootOff returns the full aggregate. Pure read, no locking.
func (s *ShootOffService) GetShootOff(ctx context.Context, shootOffID uuid.UUID) (*ShootOffView, error) {
	result, err := withTelemetry(s, ctx, "GetShootOff", shootOffID.String(), func(ctx context.Context) (results.OperationResult[*ShootOffView, error], error) {
		shootOff, err := s.repo.GetShootOff(ctx, nil, shootOffID)
		if err != nil {
			if errors.Is(err, shootoffdb.ErrNotFound) {
				return results.FailureResult[*ShootOffView, error](ErrShootOffNotFound), nil
			}
			return results.OperationResult[*ShootOffView, error]{}, err
		}
		return results.SuccessResult[*ShootOffView, error](toView(shootOff)), nil
	})

	return unwrap(result, err)
}

// ListShootOffs returns a tournament's shoot-offs, newest first.
func (s *ShootOffService) ListShootOffs(ctx context.Context, tournamentID uuid.UUID, status *shootoffdomain.Status) ([]*ShootOffView, error) {
	result, err := withTelemetry(s, ctx, "ListShootOffs", tournamentID.String(), func(ctx context.Context) (results.OperationResult[[]*ShootOffView, error], error) {
		shootOffs, err := s.repo.ListShootOffsByTournament(ctx, nil, tournamentID, status)
		if err != nil {
			return results.OperationResult[[]*ShootOffView, error]{}, err
		}

		views := make([]*ShootOffView, 0, len(shootOffs))
		for _, so := range shootOffs {
			views = append(views, toView(so))
		}
		return results.SuccessResult[[]*ShootOffView, error](views), nil
	})

	return unwrap(result, err)
}
