package standingsdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository is the engine's read-only surface over the score ledger.
type Repository interface {
	// GetRegulationTotals returns the regulation totals for a tournament,
	// sorted by descending total. A nil disciplineID means the overall
	// (cross-discipline) totals.
	GetRegulationTotals(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, disciplineID *uuid.UUID) ([]RegulationScore, error)

	// GetTotalsForCompetitors returns the regulation total for each of the
	// given competitors, keyed by competitor id. Competitors with no
	// recorded total are absent from the map.
	GetTotalsForCompetitors(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, disciplineID *uuid.UUID, competitorIDs []uuid.UUID) (map[uuid.UUID]int, error)
}
