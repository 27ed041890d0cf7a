package shootoffservice

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace/noop"

	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/config"
	"github.com/georgewallace/claytargettracker-sub002/internal/observability"
)

// newTestService builds a ShootOffService on fakes. The nil *bun.DB makes
// runInTx execute the operation directly, so no database is needed.
func newTestService(repo *FakeShootOffRepo, ledger *FakeLedgerRepo, bus *RecordingEventBus) *ShootOffService {
	if repo == nil {
		repo = NewFakeShootOffRepo()
	}
	if ledger == nil {
		ledger = &FakeLedgerRepo{}
	}
	if bus == nil {
		bus = &RecordingEventBus{}
	}

	return NewShootOffService(
		repo,
		ledger,
		bus,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewNoopMetrics(),
		noop.NewTracerProvider().Tracer("test"),
		nil,
		config.TournamentConfig{
			ShootOffTargetsPerRound: 2,
			ShootOffFixedRoundCount: 3,
			MaxScorePerTarget:       1,
		},
	)
}

// inProgressShootOff builds an in_progress sudden-death aggregate with n
// active participants and no rounds.
func inProgressShootOff(n int) *shootoffdb.ShootOff {
	now := time.Now().UTC()
	so := &shootoffdb.ShootOff{
		ID:           uuid.New(),
		TournamentID: uuid.New(),
		Position:     1,
		Format:       shootoffdomain.FormatSuddenDeath,
		Status:       shootoffdomain.StatusInProgress,
		TiedScore:    48,
		CreatedBy:    uuid.New(),
		CreatedAt:    now,
		StartedAt:    &now,
	}
	for i := 0; i < n; i++ {
		so.Participants = append(so.Participants, &shootoffdb.Participant{
			ID:           uuid.New(),
			ShootOffID:   so.ID,
			CompetitorID: uuid.New(),
			TiedScore:    so.TiedScore,
		})
	}
	return so
}

// withOpenRound appends an open round at the next sequence.
func withOpenRound(so *shootoffdb.ShootOff, targets int) *shootoffdb.Round {
	round := &shootoffdb.Round{
		ID:         uuid.New(),
		ShootOffID: so.ID,
		Sequence:   so.MaxSequence() + 1,
		Targets:    targets,
	}
	so.Rounds = append(so.Rounds, round)
	return round
}

func testActor() ActorContext {
	return ActorContext{ID: uuid.New(), Role: "admin"}
}
