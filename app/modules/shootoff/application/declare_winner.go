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

// Sole-survivor confirmation errors.
var (
	// ErrWinnerNotParticipant indicates the candidate is not a participant
	// of the shoot-off.
	ErrWinnerNotParticipant = errors.New("candidate is not a participant of this shoot-off")

	// ErrWinnerEliminated indicates the candidate was already eliminated.
	ErrWinnerEliminated = errors.New("candidate has been eliminated")
)

// DeclareWinner confirms the sole surviving participant as winner, assigns
// every participant's final place, and completes the shoot-off. Winner
// declaration is an explicit operator step: the engine never auto-completes
// a contest, even once a sole survivor exists.
func (s *ShootOffService) DeclareWinner(ctx context.Context, actor ActorContext, shootOffID, competitorID uuid.UUID) (*ShootOffView, error) {
	declareTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ShootOffView, error], error) {
		return s.declareWinnerLogic(ctx, db, shootOffID, competitorID)
	}

	result, err := withTelemetry(s, ctx, "DeclareWinner", shootOffID.String(), func(ctx context.Context) (results.OperationResult[*ShootOffView, error], error) {
		return runInTx(s, ctx, declareTx)
	})

	view, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	placements := make([]shootoffevents.Placement, 0, len(view.Participants))
	for _, p := range view.Participants {
		if p.FinalPlace != nil {
			placements = append(placements, shootoffevents.Placement{
				CompetitorID: p.CompetitorID,
				FinalPlace:   *p.FinalPlace,
			})
		}
	}

	s.publish(ctx, shootoffevents.ShootOffCompleted, shootoffevents.ShootOffCompletedPayload{
		ShootOffID:   view.ID,
		TournamentID: view.TournamentID,
		WinnerID:     competitorID,
		Placements:   placements,
		OccurredAt:   time.Now().UTC(),
	})

	return view, nil
}

func (s *ShootOffService) declareWinnerLogic(ctx context.Context, db bun.IDB, shootOffID, competitorID uuid.UUID) (results.OperationResult[*ShootOffView, error], error) {
	fail := func(f error) (results.OperationResult[*ShootOffView, error], error) {
		return results.FailureResult[*ShootOffView, error](f), nil
	}

	shootOff, err := s.repo.GetShootOffForUpdate(ctx, db, shootOffID)
	if err != nil {
		if errors.Is(err, shootoffdb.ErrNotFound) {
			return fail(ErrShootOffNotFound)
		}
		return results.OperationResult[*ShootOffView, error]{}, err
	}

	if shootOff.Status != shootoffdomain.StatusInProgress {
		return fail(&InvalidStateError{Operation: "declare a winner on", Status: shootOff.Status})
	}
	if shootOff.WinnerID != nil {
		return fail(ErrAlreadyDecided)
	}

	var candidate *shootoffdb.Participant
	for _, p := range shootOff.Participants {
		if p.CompetitorID == competitorID {
			candidate = p
			break
		}
	}
	if candidate == nil {
		return fail(ErrWinnerNotParticipant)
	}
	if candidate.Eliminated {
		return fail(ErrWinnerEliminated)
	}

	// Ties are broken by rounds, not by operator fiat: the candidate must
	// be the only participant left standing.
	if len(shootOff.ActiveParticipants()) != 1 {
		return fail(ErrNotSoleSurvivor)
	}

	// Final ordering over all participants: survivor first, then eliminated
	// by descending cumulative round total.
	totals := make(map[uuid.UUID]int, len(shootOff.Participants))
	for _, r := range shootOff.Rounds {
		if r.CompletedAt == nil {
			continue
		}
		for _, sc := range r.Scores {
			totals[sc.ParticipantID] += sc.TargetsHit
		}
	}

	participantResults := make([]shootoffdomain.ParticipantResult, 0, len(shootOff.Participants))
	for _, p := range shootOff.Participants {
		participantResults = append(participantResults, shootoffdomain.ParticipantResult{
			ParticipantID: p.ID,
			Eliminated:    p.Eliminated,
			TotalHits:     totals[p.ID],
		})
	}

	ranked := shootoffdomain.RankParticipants(participantResults)
	places := make(map[uuid.UUID]int, len(ranked))
	for i, pr := range ranked {
		places[pr.ParticipantID] = i + 1
	}

	// Placements and completion commit together; partial placement is never
	// an observable state.
	if err := s.repo.SetFinalPlaces(ctx, db, shootOff.ID, places); err != nil {
		return results.OperationResult[*ShootOffView, error]{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.CompleteShootOff(ctx, db, shootOff.ID, competitorID, now); err != nil {
		if errors.Is(err, shootoffdb.ErrNoRowsAffected) {
			return fail(ErrConflict)
		}
		return results.OperationResult[*ShootOffView, error]{}, err
	}

	shootOff.Status = shootoffdomain.StatusCompleted
	shootOff.WinnerID = &competitorID
	shootOff.CompletedAt = &now
	for _, p := range shootOff.Participants {
		place := places[p.ID]
		p.FinalPlace = &place
	}

	return results.SuccessResult[*ShootOffView, error](toView(shootOff)), nil
}
