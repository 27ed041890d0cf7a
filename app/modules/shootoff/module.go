// Package shootoff wires the shoot-off engine module: repository, service,
// and HTTP handlers.
package shootoff

import (
	"github.com/uptrace/bun"

	shootoffservice "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/application"
	shootoffdb "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/infrastructure/repositories"
	standingsdb "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/infrastructure/repositories"
	"github.com/georgewallace/claytargettracker-sub002/config"
	"github.com/georgewallace/claytargettracker-sub002/internal/eventbus"
	"github.com/georgewallace/claytargettracker-sub002/internal/observability"
)

// Module is the shoot-off engine module.
type Module struct {
	Service shootoffservice.Service
}

// NewModule creates and wires the shoot-off module.
func NewModule(
	obs *observability.Observability,
	db *bun.DB,
	events eventbus.EventBus,
	ledger standingsdb.Repository,
	tournament config.TournamentConfig,
) *Module {
	repo := shootoffdb.NewRepository(db)
	metrics := observability.NewNoopMetrics()
	if obs.Registry != nil {
		metrics = observability.NewOperationMetrics(obs.Registry, "shootoff")
	}

	service := shootoffservice.NewShootOffService(
		repo,
		ledger,
		events,
		obs.Logger,
		metrics,
		obs.Tracer,
		db,
		tournament,
	)

	return &Module{Service: service}
}
