package shootoffservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	shootoffevents "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/events"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/internal/results"
)

// OpenRound opens the next round of an in_progress shoot-off. The target
// count comes from tournament configuration, never from the caller.
func (s *ShootOffService) OpenRound(ctx context.Context, actor ActorContext, shootOffID uuid.UUID) (*RoundView, error) {
	openTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundView, error], error) {
		return s.openRoundLogic(ctx, db, shootOffID)
	}

	result, err := withTelemetry(s, ctx, "OpenRound", shootOffID.String(), func(ctx context.Context) (results.OperationResult[*RoundView, error], error) {
		return runInTx(s, ctx, openTx)
	})

	return unwrap(result, err)
}

func (s *ShootOffService) openRoundLogic(ctx context.Context, db bun.IDB, shootOffID uuid.UUID) (results.OperationResult[*RoundView, error], error) {
	fail := func(f error) (results.OperationResult[*RoundView, error], error) {
		return results.FailureResult[*RoundView, error](f), nil
	}

	shootOff, err := s.repo.GetShootOffForUpdate(ctx, db, shootOffID)
	if err != nil {
		if errors.Is(err, shootoffdb.ErrNotFound) {
			return fail(ErrShootOffNotFound)
		}
		return results.OperationResult[*RoundView, error]{}, err
	}

	if shootOff.Status != shootoffdomain.StatusInProgress {
		return fail(&InvalidStateError{Operation: "open a round on", Status: shootOff.Status})
	}
	if shootOff.OpenRound() != nil {
		return fail(ErrPreviousRoundIncomplete)
	}
	if len(shootOff.ActiveParticipants()) < shootoffdomain.MinParticipants {
		return fail(ErrInsufficientActiveParticipants)
	}

	round := &shootoffdb.Round{
		ID:         uuid.New(),
		ShootOffID: shootOff.ID,
		Sequence:   shootOff.MaxSequence() + 1,
		Targets:    s.tournament.ShootOffTargetsPerRound,
	}

	if err := s.repo.CreateRound(ctx, db, round); err != nil {
		return results.OperationResult[*RoundView, error]{}, err
	}

	view := toRoundView(round)
	return results.SuccessResult[*RoundView, error](&view), nil
}

// RecordRoundScores writes one score per active participant for the open
// round, completes the round, and applies the format's elimination policy as
// one atomic unit. The aggregate row lock serializes concurrent submissions:
// the loser of the race observes the completed round and is rejected, so
// elimination can never be applied twice nor mix two submissions.
func (s *ShootOffService) RecordRoundScores(ctx context.Context, actor ActorContext, shootOffID, roundID uuid.UUID, scores []RoundScoreInput) (*RoundResult, error) {
	recordTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*RoundResult, error], error) {
		return s.recordRoundScoresLogic(ctx, db, actor, shootOffID, roundID, scores)
	}

	result, err := withTelemetry(s, ctx, "RecordRoundScores", shootOffID.String(), func(ctx context.Context) (results.OperationResult[*RoundResult, error], error) {
		return runInTx(s, ctx, recordTx)
	})

	roundResult, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, shootoffevents.RoundCompleted, shootoffevents.RoundCompletedPayload{
		ShootOffID:      shootOffID,
		RoundID:         roundResult.RoundID,
		Sequence:        roundResult.Sequence,
		Eliminated:      roundResult.Eliminated,
		RemainingActive: roundResult.RemainingActive,
		OccurredAt:      time.Now().UTC(),
	})

	return roundResult, nil
}

func (s *ShootOffService) recordRoundScoresLogic(ctx context.Context, db bun.IDB, actor ActorContext, shootOffID, roundID uuid.UUID, scores []RoundScoreInput) (results.OperationResult[*RoundResult, error], error) {
	fail := func(f error) (results.OperationResult[*RoundResult, error], error) {
		return results.FailureResult[*RoundResult, error](f), nil
	}

	shootOff, err := s.repo.GetShootOffForUpdate(ctx, db, shootOffID)
	if err != nil {
		if errors.Is(err, shootoffdb.ErrNotFound) {
			return fail(ErrShootOffNotFound)
		}
		return results.OperationResult[*RoundResult, error]{}, err
	}

	if shootOff.Status != shootoffdomain.StatusInProgress {
		return fail(&InvalidStateError{Operation: "record scores on", Status: shootOff.Status})
	}

	var round *shootoffdb.Round
	for _, r := range shootOff.Rounds {
		if r.ID == roundID {
			round = r
			break
		}
	}
	if round == nil {
		return fail(ErrRoundNotFound)
	}
	if round.CompletedAt != nil {
		return fail(ErrRoundAlreadyCompleted)
	}

	active := shootOff.ActiveParticipants()
	activeByID := make(map[uuid.UUID]*shootoffdb.Participant, len(active))
	for _, p := range active {
		activeByID[p.ID] = p
	}

	// Exactly one score per active participant; a short count is invalid.
	if len(scores) != len(active) {
		return fail(&ValidationError{
			Field:   "scores",
			Message: fmt.Sprintf("expected %d scores (one per active participant), got %d", len(active), len(scores)),
		})
	}

	hitsByParticipant := make(map[uuid.UUID]int, len(scores))
	for _, sc := range scores {
		if _, ok := activeByID[sc.ParticipantID]; !ok {
			return fail(&ValidationError{
				Field:   "scores",
				Message: "participant " + sc.ParticipantID.String() + " is unknown or already eliminated",
			})
		}
		if _, dup := hitsByParticipant[sc.ParticipantID]; dup {
			return fail(&ValidationError{
				Field:   "scores",
				Message: "duplicate score for participant " + sc.ParticipantID.String(),
			})
		}
		if sc.TargetsHit < 0 || sc.TargetsHit > round.Targets {
			return fail(&ValidationError{
				Field:   "scores",
				Message: fmt.Sprintf("targets hit must be between 0 and %d", round.Targets),
			})
		}
		hitsByParticipant[sc.ParticipantID] = sc.TargetsHit
	}

	rows := make([]*shootoffdb.RoundScore, 0, len(scores))
	for participantID, hits := range hitsByParticipant {
		rows = append(rows, &shootoffdb.RoundScore{
			RoundID:          round.ID,
			ParticipantID:    participantID,
			TargetsHit:       hits,
			TargetsPresented: round.Targets,
		})
	}
	if err := s.repo.InsertRoundScores(ctx, db, rows); err != nil {
		return results.OperationResult[*RoundResult, error]{}, err
	}

	now := time.Now().UTC()
	if err := s.repo.CompleteRound(ctx, db, round.ID, now, actor.ID); err != nil {
		if errors.Is(err, shootoffdb.ErrNoRowsAffected) {
			return fail(ErrConflict)
		}
		return results.OperationResult[*RoundResult, error]{}, err
	}

	// Cumulative totals over completed rounds plus this one.
	cumulative := make(map[uuid.UUID]int, len(active))
	for _, r := range shootOff.Rounds {
		if r.CompletedAt == nil {
			continue
		}
		for _, sc := range r.Scores {
			cumulative[sc.ParticipantID] += sc.TargetsHit
		}
	}

	standings := make([]shootoffdomain.RoundStanding, 0, len(active))
	for _, p := range active {
		hits := hitsByParticipant[p.ID]
		standings = append(standings, shootoffdomain.RoundStanding{
			ParticipantID:  p.ID,
			Hits:           hits,
			CumulativeHits: cumulative[p.ID] + hits,
		})
	}

	policy := shootoffdomain.PolicyFor(shootOff.Format, s.tournament.ShootOffFixedRoundCount)
	eliminatedIDs := policy.Eliminate(round.Sequence, standings)

	if err := s.repo.EliminateParticipants(ctx, db, shootOff.ID, eliminatedIDs); err != nil {
		return results.OperationResult[*RoundResult, error]{}, err
	}

	eliminatedCompetitors := make([]uuid.UUID, 0, len(eliminatedIDs))
	for _, participantID := range eliminatedIDs {
		eliminatedCompetitors = append(eliminatedCompetitors, activeByID[participantID].CompetitorID)
	}

	return results.SuccessResult[*RoundResult, error](&RoundResult{
		RoundID:         round.ID,
		Sequence:        round.Sequence,
		Eliminated:      eliminatedCompetitors,
		RemainingActive: len(active) - len(eliminatedIDs),
	}), nil
}
