package standingsservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	standingsdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/domain"
	standingsdb "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/internal/observability"
)

const serviceName = "StandingsService"

// StandingsService implements the Service interface.
type StandingsService struct {
	repo    standingsdb.Repository
	logger  *slog.Logger
	metrics observability.OperationMetrics
	tracer  trace.Tracer
}

// NewStandingsService creates a new StandingsService.
func NewStandingsService(
	repo standingsdb.Repository,
	logger *slog.Logger,
	metrics observability.OperationMetrics,
	tracer trace.Tracer,
) *StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}
	return &StandingsService{
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
	}
}

// DetectTies loads regulation totals and runs tie detection over them.
// Detection requires no locking: it is a pure read over ledger state.
func (s *StandingsService) DetectTies(ctx context.Context, tournamentID uuid.UUID, disciplineID *uuid.UUID, scope standingsdomain.Scope, policy standingsdomain.TriggerPolicy) ([]standingsdomain.TieGroup, error) {
	if s.tracer != nil {
		var span trace.Span
		ctx, span = s.tracer.Start(ctx, "DetectTies", trace.WithAttributes(
			attribute.String("tournament_id", tournamentID.String()),
			attribute.String("scope", string(scope)),
		))
		defer span.End()
	}

	s.metrics.RecordOperationAttempt(ctx, "DetectTies", serviceName)

	totals, err := s.repo.GetRegulationTotals(ctx, nil, tournamentID, disciplineID)
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "DetectTies", serviceName)
		return nil, fmt.Errorf("DetectTies: %w", err)
	}

	standings := make([]standingsdomain.Standing, 0, len(totals))
	for _, t := range totals {
		standings = append(standings, standingsdomain.Standing{
			CompetitorID: t.CompetitorID,
			Score:        t.TotalHits,
		})
	}

	groups := standingsdomain.DetectTies(scope, standings, policy)

	s.logger.InfoContext(ctx, "Tie detection completed",
		slog.String("tournament_id", tournamentID.String()),
		slog.String("scope", string(scope)),
		slog.Int("standings", len(standings)),
		slog.Int("tie_groups", len(groups)),
	)
	s.metrics.RecordOperationSuccess(ctx, "DetectTies", serviceName)

	return groups, nil
}
