// Package standings wires the regulation standings module.
package standings

import (
	"github.com/uptrace/bun"

	standingsservice "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/application"
	standingsdb "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/internal/observability"
)

// Module is the standings module. Repository is exported so the shoot-off
// module can re-verify claimed scores against the regulation ledger.
type Module struct {
	Service    standingsservice.Service
	Repository standingsdb.Repository
}

// NewModule creates and wires the standings module.
func NewModule(obs *observability.Observability, db *bun.DB) *Module {
	repo := standingsdb.NewRepository(db)
	metrics := observability.NewNoopMetrics()
	if obs.Registry != nil {
		metrics = observability.NewOperationMetrics(obs.Registry, "standings")
	}

	service := standingsservice.NewStandingsService(repo, obs.Logger, metrics, obs.Tracer)

	return &Module{Service: service, Repository: repo}
}
