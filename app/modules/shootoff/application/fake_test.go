package shootoffservice

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	standingsdb "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/infrastructure/repositories"
)

// ------------------------
// Fake ShootOff Repo
// ------------------------

type FakeShootOffRepo struct {
	trace []string

	CreateShootOffFunc        func(ctx context.Context, db bun.IDB, shootOff *shootoffdb.ShootOff, participants []*shootoffdb.Participant) error
	GetShootOffFunc           func(ctx context.Context, db bun.IDB, id uuid.UUID) (*shootoffdb.ShootOff, error)
	GetShootOffForUpdateFunc  func(ctx context.Context, db bun.IDB, id uuid.UUID) (*shootoffdb.ShootOff, error)
	ListShootOffsFunc         func(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, status *shootoffdomain.Status) ([]*shootoffdb.ShootOff, error)
	UpdateStatusFunc          func(ctx context.Context, db bun.IDB, id uuid.UUID, from, to shootoffdomain.Status, startedAt, completedAt *time.Time) error
	CompleteShootOffFunc      func(ctx context.Context, db bun.IDB, id uuid.UUID, winnerID uuid.UUID, completedAt time.Time) error
	CreateRoundFunc           func(ctx context.Context, db bun.IDB, round *shootoffdb.Round) error
	CompleteRoundFunc         func(ctx context.Context, db bun.IDB, roundID uuid.UUID, completedAt time.Time, recordedBy uuid.UUID) error
	InsertRoundScoresFunc     func(ctx context.Context, db bun.IDB, scores []*shootoffdb.RoundScore) error
	EliminateParticipantsFunc func(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, participantIDs []uuid.UUID) error
	SetFinalPlacesFunc        func(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, places map[uuid.UUID]int) error
}

func NewFakeShootOffRepo() *FakeShootOffRepo {
	return &FakeShootOffRepo{trace: []string{}}
}

func (f *FakeShootOffRepo) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeShootOffRepo) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeShootOffRepo) CreateShootOff(ctx context.Context, db bun.IDB, shootOff *shootoffdb.ShootOff, participants []*shootoffdb.Participant) error {
	f.record("CreateShootOff")
	if f.CreateShootOffFunc != nil {
		return f.CreateShootOffFunc(ctx, db, shootOff, participants)
	}
	return nil
}

func (f *FakeShootOffRepo) GetShootOff(ctx context.Context, db bun.IDB, id uuid.UUID) (*shootoffdb.ShootOff, error) {
	f.record("GetShootOff")
	if f.GetShootOffFunc != nil {
		return f.GetShootOffFunc(ctx, db, id)
	}
	return nil, shootoffdb.ErrNotFound
}

func (f *FakeShootOffRepo) GetShootOffForUpdate(ctx context.Context, db bun.IDB, id uuid.UUID) (*shootoffdb.ShootOff, error) {
	f.record("GetShootOffForUpdate")
	if f.GetShootOffForUpdateFunc != nil {
		return f.GetShootOffForUpdateFunc(ctx, db, id)
	}
	return nil, shootoffdb.ErrNotFound
}

func (f *FakeShootOffRepo) ListShootOffsByTournament(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, status *shootoffdomain.Status) ([]*shootoffdb.ShootOff, error) {
	f.record("ListShootOffsByTournament")
	if f.ListShootOffsFunc != nil {
		return f.ListShootOffsFunc(ctx, db, tournamentID, status)
	}
	return nil, nil
}

func (f *FakeShootOffRepo) UpdateStatus(ctx context.Context, db bun.IDB, id uuid.UUID, from, to shootoffdomain.Status, startedAt, completedAt *time.Time) error {
	f.record("UpdateStatus")
	if f.UpdateStatusFunc != nil {
		return f.UpdateStatusFunc(ctx, db, id, from, to, startedAt, completedAt)
	}
	return nil
}

func (f *FakeShootOffRepo) CompleteShootOff(ctx context.Context, db bun.IDB, id uuid.UUID, winnerID uuid.UUID, completedAt time.Time) error {
	f.record("CompleteShootOff")
	if f.CompleteShootOffFunc != nil {
		return f.CompleteShootOffFunc(ctx, db, id, winnerID, completedAt)
	}
	return nil
}

func (f *FakeShootOffRepo) CreateRound(ctx context.Context, db bun.IDB, round *shootoffdb.Round) error {
	f.record("CreateRound")
	if f.CreateRoundFunc != nil {
		return f.CreateRoundFunc(ctx, db, round)
	}
	return nil
}

func (f *FakeShootOffRepo) CompleteRound(ctx context.Context, db bun.IDB, roundID uuid.UUID, completedAt time.Time, recordedBy uuid.UUID) error {
	f.record("CompleteRound")
	if f.CompleteRoundFunc != nil {
		return f.CompleteRoundFunc(ctx, db, roundID, completedAt, recordedBy)
	}
	return nil
}

func (f *FakeShootOffRepo) InsertRoundScores(ctx context.Context, db bun.IDB, scores []*shootoffdb.RoundScore) error {
	f.record("InsertRoundScores")
	if f.InsertRoundScoresFunc != nil {
		return f.InsertRoundScoresFunc(ctx, db, scores)
	}
	return nil
}

func (f *FakeShootOffRepo) EliminateParticipants(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, participantIDs []uuid.UUID) error {
	f.record("EliminateParticipants")
	if f.EliminateParticipantsFunc != nil {
		return f.EliminateParticipantsFunc(ctx, db, shootOffID, participantIDs)
	}
	return nil
}

func (f *FakeShootOffRepo) SetFinalPlaces(ctx context.Context, db bun.IDB, shootOffID uuid.UUID, places map[uuid.UUID]int) error {
	f.record("SetFinalPlaces")
	if f.SetFinalPlacesFunc != nil {
		return f.SetFinalPlacesFunc(ctx, db, shootOffID, places)
	}
	return nil
}

var _ shootoffdb.Repository = (*FakeShootOffRepo)(nil)

// ------------------------
// Fake Ledger Repo
// ------------------------

type FakeLedgerRepo struct {
	Totals map[uuid.UUID]int
	Err    error
}

func (f *FakeLedgerRepo) GetRegulationTotals(context.Context, bun.IDB, uuid.UUID, *uuid.UUID) ([]standingsdb.RegulationScore, error) {
	panic("not used by the shoot-off service")
}

func (f *FakeLedgerRepo) GetTotalsForCompetitors(_ context.Context, _ bun.IDB, _ uuid.UUID, _ *uuid.UUID, competitorIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	out := make(map[uuid.UUID]int, len(competitorIDs))
	for _, id := range competitorIDs {
		if total, ok := f.Totals[id]; ok {
			out[id] = total
		}
	}
	return out, nil
}

var _ standingsdb.Repository = (*FakeLedgerRepo)(nil)

// ------------------------
// Recording Event Bus
// ------------------------

type publishedEvent struct {
	Topic   string
	Payload any
}

type RecordingEventBus struct {
	mu     sync.Mutex
	events []publishedEvent
	Err    error
}

func (b *RecordingEventBus) Publish(_ context.Context, topic string, payload any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.events = append(b.events, publishedEvent{Topic: topic, Payload: payload})
	return nil
}

func (b *RecordingEventBus) Close() error { return nil }

func (b *RecordingEventBus) Events() []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]publishedEvent, len(b.events))
	copy(out, b.events)
	return out
}
