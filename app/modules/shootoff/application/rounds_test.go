package shootoffservice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	shootoffevents "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/events"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
)

func lockRepo(so *shootoffdb.ShootOff) *FakeShootOffRepo {
	repo := NewFakeShootOffRepo()
	repo.GetShootOffForUpdateFunc = func(context.Context, bun.IDB, uuid.UUID) (*shootoffdb.ShootOff, error) {
		return so, nil
	}
	return repo
}

func TestOpenRound_Success(t *testing.T) {
	so := inProgressShootOff(3)
	repo := lockRepo(so)
	svc := newTestService(repo, nil, nil)

	view, err := svc.OpenRound(context.Background(), testActor(), so.ID)
	require.NoError(t, err)
	require.Equal(t, 1, view.Sequence)
	require.Equal(t, 2, view.Targets, "target count comes from tournament configuration")
	require.Nil(t, view.CompletedAt)
	require.Equal(t, []string{"GetShootOffForUpdate", "CreateRound"}, repo.Trace())
}

func TestOpenRound_SequenceFollowsCompletedRounds(t *testing.T) {
	so := inProgressShootOff(2)
	done := time.Now().UTC()
	so.Rounds = append(so.Rounds, &shootoffdb.Round{
		ID:          uuid.New(),
		ShootOffID:  so.ID,
		Sequence:    1,
		Targets:     2,
		CompletedAt: &done,
	})
	svc := newTestService(lockRepo(so), nil, nil)

	view, err := svc.OpenRound(context.Background(), testActor(), so.ID)
	require.NoError(t, err)
	require.Equal(t, 2, view.Sequence)
}

func TestOpenRound_Failures(t *testing.T) {
	t.Run("not in progress", func(t *testing.T) {
		so := inProgressShootOff(2)
		so.Status = shootoffdomain.StatusPending
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.OpenRound(context.Background(), testActor(), so.ID)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("previous round still open", func(t *testing.T) {
		so := inProgressShootOff(2)
		withOpenRound(so, 2)
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.OpenRound(context.Background(), testActor(), so.ID)
		require.ErrorIs(t, err, ErrPreviousRoundIncomplete)
	})

	t.Run("fewer than two active", func(t *testing.T) {
		so := inProgressShootOff(3)
		so.Participants[0].Eliminated = true
		so.Participants[1].Eliminated = true
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.OpenRound(context.Background(), testActor(), so.ID)
		require.ErrorIs(t, err, ErrInsufficientActiveParticipants)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(nil, nil, nil)

		_, err := svc.OpenRound(context.Background(), testActor(), uuid.New())
		require.ErrorIs(t, err, ErrShootOffNotFound)
	})
}

func TestRecordRoundScores_EliminatesLowScorers(t *testing.T) {
	so := inProgressShootOff(3)
	round := withOpenRound(so, 2)

	repo := lockRepo(so)
	var eliminated []uuid.UUID
	repo.EliminateParticipantsFunc = func(_ context.Context, _ bun.IDB, _ uuid.UUID, ids []uuid.UUID) error {
		eliminated = ids
		return nil
	}
	bus := &RecordingEventBus{}
	svc := newTestService(repo, nil, bus)

	scores := []RoundScoreInput{
		{ParticipantID: so.Participants[0].ID, TargetsHit: 2},
		{ParticipantID: so.Participants[1].ID, TargetsHit: 2},
		{ParticipantID: so.Participants[2].ID, TargetsHit: 1},
	}

	result, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, scores)
	require.NoError(t, err)
	require.Equal(t, round.ID, result.RoundID)
	require.Equal(t, 1, result.Sequence)
	require.Equal(t, 2, result.RemainingActive)
	require.Equal(t, []uuid.UUID{so.Participants[2].CompetitorID}, result.Eliminated)
	require.Equal(t, []uuid.UUID{so.Participants[2].ID}, eliminated)

	require.Equal(t, []string{
		"GetShootOffForUpdate",
		"InsertRoundScores",
		"CompleteRound",
		"EliminateParticipants",
	}, repo.Trace())

	events := bus.Events()
	require.Len(t, events, 1)
	require.Equal(t, shootoffevents.RoundCompleted, events[0].Topic)
	payload, ok := events[0].Payload.(shootoffevents.RoundCompletedPayload)
	require.True(t, ok)
	require.Equal(t, result.Eliminated, payload.Eliminated)
}

func TestRecordRoundScores_AllTiedKeepsEveryone(t *testing.T) {
	so := inProgressShootOff(2)
	round := withOpenRound(so, 2)
	svc := newTestService(lockRepo(so), nil, nil)

	result, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
		{ParticipantID: so.Participants[0].ID, TargetsHit: 2},
		{ParticipantID: so.Participants[1].ID, TargetsHit: 2},
	})
	require.NoError(t, err)
	require.Empty(t, result.Eliminated)
	require.Equal(t, 2, result.RemainingActive)
}

func TestRecordRoundScores_Validation(t *testing.T) {
	newFixture := func() (*shootoffdb.ShootOff, *shootoffdb.Round) {
		so := inProgressShootOff(2)
		round := withOpenRound(so, 2)
		return so, round
	}

	t.Run("short score set", func(t *testing.T) {
		so, round := newFixture()
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
			{ParticipantID: so.Participants[0].ID, TargetsHit: 1},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, "scores", verr.Field)
	})

	t.Run("unknown participant", func(t *testing.T) {
		so, round := newFixture()
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
			{ParticipantID: so.Participants[0].ID, TargetsHit: 1},
			{ParticipantID: uuid.New(), TargetsHit: 1},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("eliminated participant", func(t *testing.T) {
		so := inProgressShootOff(3)
		so.Participants[2].Eliminated = true
		round := withOpenRound(so, 2)
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
			{ParticipantID: so.Participants[0].ID, TargetsHit: 1},
			{ParticipantID: so.Participants[2].ID, TargetsHit: 1},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("duplicate participant", func(t *testing.T) {
		so, round := newFixture()
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
			{ParticipantID: so.Participants[0].ID, TargetsHit: 1},
			{ParticipantID: so.Participants[0].ID, TargetsHit: 2},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("hits above target count", func(t *testing.T) {
		so, round := newFixture()
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
			{ParticipantID: so.Participants[0].ID, TargetsHit: 3},
			{ParticipantID: so.Participants[1].ID, TargetsHit: 1},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("negative hits", func(t *testing.T) {
		so, round := newFixture()
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
			{ParticipantID: so.Participants[0].ID, TargetsHit: -1},
			{ParticipantID: so.Participants[1].ID, TargetsHit: 1},
		})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
	})
}

func TestRecordRoundScores_RejectsCompletedRound(t *testing.T) {
	so := inProgressShootOff(2)
	round := withOpenRound(so, 2)
	done := time.Now().UTC()
	round.CompletedAt = &done

	bus := &RecordingEventBus{}
	svc := newTestService(lockRepo(so), nil, bus)

	_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
		{ParticipantID: so.Participants[0].ID, TargetsHit: 1},
		{ParticipantID: so.Participants[1].ID, TargetsHit: 2},
	})
	require.ErrorIs(t, err, ErrRoundAlreadyCompleted)
	require.Empty(t, bus.Events())
}

func TestRecordRoundScores_UnknownRound(t *testing.T) {
	so := inProgressShootOff(2)
	withOpenRound(so, 2)
	svc := newTestService(lockRepo(so), nil, nil)

	_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, uuid.New(), []RoundScoreInput{
		{ParticipantID: so.Participants[0].ID, TargetsHit: 1},
		{ParticipantID: so.Participants[1].ID, TargetsHit: 2},
	})
	require.ErrorIs(t, err, ErrRoundNotFound)
}

func TestRecordRoundScores_ConcurrentCompletionLosesRace(t *testing.T) {
	so := inProgressShootOff(2)
	round := withOpenRound(so, 2)

	repo := lockRepo(so)
	repo.CompleteRoundFunc = func(context.Context, bun.IDB, uuid.UUID, time.Time, uuid.UUID) error {
		return shootoffdb.ErrNoRowsAffected
	}
	svc := newTestService(repo, nil, nil)

	_, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
		{ParticipantID: so.Participants[0].ID, TargetsHit: 1},
		{ParticipantID: so.Participants[1].ID, TargetsHit: 2},
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestRecordRoundScores_ProgressiveHeadToHead(t *testing.T) {
	so := inProgressShootOff(2)
	so.Format = shootoffdomain.FormatProgressive
	round := withOpenRound(so, 2)
	svc := newTestService(lockRepo(so), nil, nil)

	result, err := svc.RecordRoundScores(context.Background(), testActor(), so.ID, round.ID, []RoundScoreInput{
		{ParticipantID: so.Participants[0].ID, TargetsHit: 2},
		{ParticipantID: so.Participants[1].ID, TargetsHit: 0},
	})
	require.NoError(t, err)
	require.Equal(t, []uuid.UUID{so.Participants[1].CompetitorID}, result.Eliminated)
	require.Equal(t, 1, result.RemainingActive)
}
