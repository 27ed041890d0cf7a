package standingsdb

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RegulationScore is a competitor's pre-aggregated targets-hit total for the
// regulation portion of a tournament. The score ledger collaborator owns and
// writes this table; the engine only reads it, to assemble standings and to
// verify claimed ties.
type RegulationScore struct {
	bun.BaseModel `bun:"table:regulation_scores,alias:rs"`

	TournamentID uuid.UUID  `bun:"tournament_id,pk,type:uuid"`
	CompetitorID uuid.UUID  `bun:"competitor_id,pk,type:uuid"`
	DisciplineID *uuid.UUID `bun:"discipline_id,type:uuid,nullzero"`
	TotalHits    int        `bun:"total_hits,notnull"`
}
