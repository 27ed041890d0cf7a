package shootoffservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	standingsdb "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/config"
	"github.com/georgewallace/claytargettracker-sub002/internal/eventbus"
	"github.com/georgewallace/claytargettracker-sub002/internal/observability"
	"github.com/georgewallace/claytargettracker-sub002/internal/results"
)

const serviceName = "ShootOffService"

// ShootOffService implements the Service interface.
type ShootOffService struct {
	repo       shootoffdb.Repository
	ledger     standingsdb.Repository
	events     eventbus.EventBus
	logger     *slog.Logger
	metrics    observability.OperationMetrics
	tracer     trace.Tracer
	db         *bun.DB
	tournament config.TournamentConfig
}

// NewShootOffService creates a new ShootOffService.
func NewShootOffService(
	repo shootoffdb.Repository,
	ledger standingsdb.Repository,
	events eventbus.EventBus,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	tournament config.TournamentConfig,
) *ShootOffService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	if events == nil {
		events = eventbus.NewNoop()
	}
	return &ShootOffService{
		repo:       repo,
		ledger:     ledger,
		events:     events,
		logger:     logger,
		metrics:    metrics,
		tracer:     tracer,
		db:         db,
		tournament: tournament,
	}
}

// -----------------------------------------------------------------------------
// Generic helpers (functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any] func(ctx context.Context) (results.OperationResult[S, error], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic
// recovery. Infrastructure errors are logged and wrapped; domain failures
// are logged at warn and passed through untouched.
func withTelemetry[S any](
	s *ShootOffService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S],
) (result results.OperationResult[S, error], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
		defer span.End()
	} else {
		span = trace.SpanFromContext(ctx)
	}

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				slog.String("operation", operationName),
				slog.String("identifier", identifier),
				slog.Any("error", err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, error]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("error", wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			slog.String("operation", operationName),
			slog.String("identifier", identifier),
			slog.Any("failure", *result.Failure),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		return result, nil
	}

	s.logger.InfoContext(ctx, "Operation completed successfully",
		slog.String("operation", operationName),
		slog.String("identifier", identifier),
	)
	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)

	return result, nil
}

// runInTx ensures the operation runs within a transaction. All mutating
// operations lock the aggregate row first (GetShootOffForUpdate), so two
// operators racing on the same shoot-off serialize here.
func runInTx[S any](
	s *ShootOffService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, error], error),
) (results.OperationResult[S, error], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, error]

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}

// unwrap converts an operation result into the (value, error) shape the
// interface promises.
func unwrap[S any](result results.OperationResult[S, error], err error) (S, error) {
	var zero S
	if err != nil {
		return zero, err
	}
	if result.IsFailure() {
		return zero, *result.Failure
	}
	return *result.Success, nil
}

// publish sends a lifecycle event best-effort after commit. A publish
// failure never affects the committed state change.
func (s *ShootOffService) publish(ctx context.Context, topic string, payload any) {
	if err := s.events.Publish(ctx, topic, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}

// -----------------------------------------------------------------------------
// View mapping
// -----------------------------------------------------------------------------

func toView(so *shootoffdb.ShootOff) *ShootOffView {
	view := &ShootOffView{
		ID:           so.ID,
		TournamentID: so.TournamentID,
		DisciplineID: so.DisciplineID,
		Position:     so.Position,
		Format:       so.Format,
		Status:       so.Status,
		TiedScore:    so.TiedScore,
		WinnerID:     so.WinnerID,
		CreatedAt:    so.CreatedAt,
		StartedAt:    so.StartedAt,
		CompletedAt:  so.CompletedAt,
		Participants: make([]ParticipantView, 0, len(so.Participants)),
		Rounds:       make([]RoundView, 0, len(so.Rounds)),
	}

	for _, p := range so.Participants {
		view.Participants = append(view.Participants, ParticipantView{
			ID:           p.ID,
			CompetitorID: p.CompetitorID,
			TiedScore:    p.TiedScore,
			Eliminated:   p.Eliminated,
			FinalPlace:   p.FinalPlace,
		})
	}
	sort.Slice(view.Participants, func(i, j int) bool {
		return view.Participants[i].CompetitorID.String() < view.Participants[j].CompetitorID.String()
	})

	for _, r := range so.Rounds {
		view.Rounds = append(view.Rounds, toRoundView(r))
	}
	sort.Slice(view.Rounds, func(i, j int) bool {
		return view.Rounds[i].Sequence < view.Rounds[j].Sequence
	})

	return view
}

func toRoundView(r *shootoffdb.Round) RoundView {
	view := RoundView{
		ID:          r.ID,
		Sequence:    r.Sequence,
		Targets:     r.Targets,
		CompletedAt: r.CompletedAt,
		Scores:      make([]RoundScoreView, 0, len(r.Scores)),
	}
	for _, sc := range r.Scores {
		view.Scores = append(view.Scores, RoundScoreView{
			ParticipantID:    sc.ParticipantID,
			TargetsHit:       sc.TargetsHit,
			TargetsPresented: sc.TargetsPresented,
		})
	}
	return view
}
