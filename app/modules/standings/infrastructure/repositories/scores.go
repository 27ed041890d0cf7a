package standingsdb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements Repository using Bun.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new score ledger repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetRegulationTotals returns regulation totals sorted by descending total.
func (r *Impl) GetRegulationTotals(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, disciplineID *uuid.UUID) ([]RegulationScore, error) {
	db = r.resolveDB(db)

	var scores []RegulationScore
	q := db.NewSelect().
		Model(&scores).
		Where("tournament_id = ?", tournamentID)
	if disciplineID != nil {
		q = q.Where("discipline_id = ?", *disciplineID)
	} else {
		q = q.Where("discipline_id IS NULL")
	}

	if err := q.Order("total_hits DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get regulation totals: %w", err)
	}
	return scores, nil
}

// GetTotalsForCompetitors returns the regulation total per competitor id.
func (r *Impl) GetTotalsForCompetitors(ctx context.Context, db bun.IDB, tournamentID uuid.UUID, disciplineID *uuid.UUID, competitorIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	db = r.resolveDB(db)

	if len(competitorIDs) == 0 {
		return map[uuid.UUID]int{}, nil
	}

	var scores []RegulationScore
	q := db.NewSelect().
		Model(&scores).
		Where("tournament_id = ?", tournamentID).
		Where("competitor_id IN (?)", bun.In(competitorIDs))
	if disciplineID != nil {
		q = q.Where("discipline_id = ?", *disciplineID)
	} else {
		q = q.Where("discipline_id IS NULL")
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to get totals for competitors: %w", err)
	}

	totals := make(map[uuid.UUID]int, len(scores))
	for _, s := range scores {
		totals[s.CompetitorID] = s.TotalHits
	}
	return totals, nil
}
