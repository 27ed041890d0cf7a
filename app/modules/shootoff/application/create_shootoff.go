package shootoffservice

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	shootoffevents "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/events"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/internal/results"
)

// CreateShootOff validates the tie server-side and persists a pending
// shoot-off with its participants. Participants are created atomically with
// the aggregate and never added afterward.
func (s *ShootOffService) CreateShootOff(ctx context.Context, actor ActorContext, input CreateShootOffInput) (*ShootOffView, error) {
	createTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*ShootOffView, error], error) {
		return s.createShootOffLogic(ctx, db, actor, input)
	}

	result, err := withTelemetry(s, ctx, "CreateShootOff", input.TournamentID.String(), func(ctx context.Context) (results.OperationResult[*ShootOffView, error], error) {
		return runInTx(s, ctx, createTx)
	})

	view, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, shootoffevents.ShootOffCreated, shootoffevents.ShootOffCreatedPayload{
		ShootOffID:    view.ID,
		TournamentID:  view.TournamentID,
		DisciplineID:  view.DisciplineID,
		Position:      view.Position,
		Format:        string(view.Format),
		TiedScore:     view.TiedScore,
		CompetitorIDs: input.CompetitorIDs,
		CreatedBy:     actor.ID,
		CreatedAt:     view.CreatedAt,
	})

	return view, nil
}

func (s *ShootOffService) createShootOffLogic(ctx context.Context, db bun.IDB, actor ActorContext, input CreateShootOffInput) (results.OperationResult[*ShootOffView, error], error) {
	fail := func(f error) (results.OperationResult[*ShootOffView, error], error) {
		return results.FailureResult[*ShootOffView, error](f), nil
	}

	if input.Position < 1 {
		return fail(&ValidationError{Field: "position", Message: "must be 1 or greater"})
	}
	if _, err := shootoffdomain.ParseFormat(string(input.Format)); err != nil {
		return fail(&ValidationError{Field: "format", Message: err.Error()})
	}
	if len(input.CompetitorIDs) < shootoffdomain.MinParticipants {
		return fail(&ValidationError{Field: "competitorIds", Message: "a shoot-off needs at least two competitors"})
	}
	seen := make(map[uuid.UUID]struct{}, len(input.CompetitorIDs))
	for _, id := range input.CompetitorIDs {
		if id == uuid.Nil {
			return fail(&ValidationError{Field: "competitorIds", Message: "competitor id must not be empty"})
		}
		if _, dup := seen[id]; dup {
			return fail(&ValidationError{Field: "competitorIds", Message: "duplicate competitor " + id.String()})
		}
		seen[id] = struct{}{}
	}

	// Re-verify the claimed tie against the authoritative ledger. Stale
	// client state must not produce a nonsensical contest.
	totals, err := s.ledger.GetTotalsForCompetitors(ctx, db, input.TournamentID, input.DisciplineID, input.CompetitorIDs)
	if err != nil {
		return results.OperationResult[*ShootOffView, error]{}, err
	}
	for _, competitorID := range input.CompetitorIDs {
		actual, ok := totals[competitorID]
		if !ok {
			return fail(&InvalidTieError{CompetitorID: competitorID, ClaimedScore: input.ClaimedTiedScore})
		}
		if actual != input.ClaimedTiedScore {
			actualCopy := actual
			return fail(&InvalidTieError{
				CompetitorID: competitorID,
				ClaimedScore: input.ClaimedTiedScore,
				ActualScore:  &actualCopy,
			})
		}
	}

	now := time.Now().UTC()
	shootOff := &shootoffdb.ShootOff{
		ID:           uuid.New(),
		TournamentID: input.TournamentID,
		DisciplineID: input.DisciplineID,
		Position:     input.Position,
		Format:       input.Format,
		Status:       shootoffdomain.StatusPending,
		TiedScore:    input.ClaimedTiedScore,
		CreatedBy:    actor.ID,
		CreatedAt:    now,
	}

	participants := make([]*shootoffdb.Participant, 0, len(input.CompetitorIDs))
	for _, competitorID := range input.CompetitorIDs {
		participants = append(participants, &shootoffdb.Participant{
			ID:           uuid.New(),
			ShootOffID:   shootOff.ID,
			CompetitorID: competitorID,
			TiedScore:    input.ClaimedTiedScore,
		})
	}

	if err := s.repo.CreateShootOff(ctx, db, shootOff, participants); err != nil {
		return results.OperationResult[*ShootOffView, error]{}, err
	}

	shootOff.Participants = participants
	return results.SuccessResult[*ShootOffView, error](toView(shootOff)), nil
}
