package standingsservice

import (
	"context"

	"github.com/google/uuid"

	standingsdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/domain"
)

// Service detects ties in current standings.
type Service interface {
	// DetectTies assembles current standings for the tournament (and
	// optional discipline) from the score ledger and returns the tie groups
	// matching the policy. Pure read: repeated calls against unchanged
	// standings return identical groups.
	DetectTies(ctx context.Context, tournamentID uuid.UUID, disciplineID *uuid.UUID, scope standingsdomain.Scope, policy standingsdomain.TriggerPolicy) ([]standingsdomain.TieGroup, error)
}
