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

// decidedShootOff builds a three-way contest where the first two rounds
// eliminated participants 1 and 2, leaving participant 0 the sole survivor.
// Cumulative totals: p0=4, p1=3, p2=1.
func decidedShootOff() *shootoffdb.ShootOff {
	so := inProgressShootOff(3)
	so.Participants[1].Eliminated = true
	so.Participants[2].Eliminated = true

	done := time.Now().UTC()
	so.Rounds = []*shootoffdb.Round{
		{
			ID: uuid.New(), ShootOffID: so.ID, Sequence: 1, Targets: 2, CompletedAt: &done,
			Scores: []*shootoffdb.RoundScore{
				{ParticipantID: so.Participants[0].ID, TargetsHit: 2, TargetsPresented: 2},
				{ParticipantID: so.Participants[1].ID, TargetsHit: 2, TargetsPresented: 2},
				{ParticipantID: so.Participants[2].ID, TargetsHit: 1, TargetsPresented: 2},
			},
		},
		{
			ID: uuid.New(), ShootOffID: so.ID, Sequence: 2, Targets: 2, CompletedAt: &done,
			Scores: []*shootoffdb.RoundScore{
				{ParticipantID: so.Participants[0].ID, TargetsHit: 2, TargetsPresented: 2},
				{ParticipantID: so.Participants[1].ID, TargetsHit: 1, TargetsPresented: 2},
			},
		},
	}
	return so
}

func TestDeclareWinner_Success(t *testing.T) {
	so := decidedShootOff()
	winner := so.Participants[0]

	repo := lockRepo(so)
	var places map[uuid.UUID]int
	repo.SetFinalPlacesFunc = func(_ context.Context, _ bun.IDB, _ uuid.UUID, p map[uuid.UUID]int) error {
		places = p
		return nil
	}
	bus := &RecordingEventBus{}
	svc := newTestService(repo, nil, bus)

	view, err := svc.DeclareWinner(context.Background(), testActor(), so.ID, winner.CompetitorID)
	require.NoError(t, err)
	require.Equal(t, shootoffdomain.StatusCompleted, view.Status)
	require.NotNil(t, view.WinnerID)
	require.Equal(t, winner.CompetitorID, *view.WinnerID)
	require.NotNil(t, view.CompletedAt)

	// Survivor first, then eliminated by descending cumulative total.
	require.Equal(t, map[uuid.UUID]int{
		so.Participants[0].ID: 1,
		so.Participants[1].ID: 2,
		so.Participants[2].ID: 3,
	}, places)

	for _, p := range view.Participants {
		require.NotNil(t, p.FinalPlace, "every participant receives a final place")
	}

	require.Equal(t, []string{
		"GetShootOffForUpdate",
		"SetFinalPlaces",
		"CompleteShootOff",
	}, repo.Trace())

	events := bus.Events()
	require.Len(t, events, 1)
	require.Equal(t, shootoffevents.ShootOffCompleted, events[0].Topic)
	payload, ok := events[0].Payload.(shootoffevents.ShootOffCompletedPayload)
	require.True(t, ok)
	require.Equal(t, winner.CompetitorID, payload.WinnerID)
	require.Len(t, payload.Placements, 3)
}

func TestDeclareWinner_Failures(t *testing.T) {
	t.Run("not sole survivor", func(t *testing.T) {
		so := decidedShootOff()
		so.Participants[1].Eliminated = false
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.DeclareWinner(context.Background(), testActor(), so.ID, so.Participants[0].CompetitorID)
		require.ErrorIs(t, err, ErrNotSoleSurvivor)
	})

	t.Run("candidate not a participant", func(t *testing.T) {
		so := decidedShootOff()
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.DeclareWinner(context.Background(), testActor(), so.ID, uuid.New())
		require.ErrorIs(t, err, ErrWinnerNotParticipant)
	})

	t.Run("candidate eliminated", func(t *testing.T) {
		so := decidedShootOff()
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.DeclareWinner(context.Background(), testActor(), so.ID, so.Participants[1].CompetitorID)
		require.ErrorIs(t, err, ErrWinnerEliminated)
	})

	t.Run("already decided", func(t *testing.T) {
		so := decidedShootOff()
		winnerID := so.Participants[0].CompetitorID
		so.WinnerID = &winnerID
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.DeclareWinner(context.Background(), testActor(), so.ID, winnerID)
		require.ErrorIs(t, err, ErrAlreadyDecided)
	})

	t.Run("not in progress", func(t *testing.T) {
		so := decidedShootOff()
		so.Status = shootoffdomain.StatusCancelled
		svc := newTestService(lockRepo(so), nil, nil)

		_, err := svc.DeclareWinner(context.Background(), testActor(), so.ID, so.Participants[0].CompetitorID)
		require.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("not found", func(t *testing.T) {
		svc := newTestService(nil, nil, nil)

		_, err := svc.DeclareWinner(context.Background(), testActor(), uuid.New(), uuid.New())
		require.ErrorIs(t, err, ErrShootOffNotFound)
	})
}

func TestDeclareWinner_ConcurrentCompletionLosesRace(t *testing.T) {
	so := decidedShootOff()

	repo := lockRepo(so)
	repo.CompleteShootOffFunc = func(context.Context, bun.IDB, uuid.UUID, uuid.UUID, time.Time) error {
		return shootoffdb.ErrNoRowsAffected
	}
	bus := &RecordingEventBus{}
	svc := newTestService(repo, nil, bus)

	_, err := svc.DeclareWinner(context.Background(), testActor(), so.ID, so.Participants[0].CompetitorID)
	require.ErrorIs(t, err, ErrConflict)
	require.Empty(t, bus.Events())
}
