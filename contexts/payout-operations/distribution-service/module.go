// Package distributionservice assembles the payout distribution engine:
// round-robin assignment of pending outbound payouts, the reloadable
// automatic scheduler, operator cancellation with merchant callbacks, and
// the dashboard listing APIs.
package distributionservice

import (
	"context"
	"log/slog"

	httpadapter "github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/adapters/http"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/adapters/memory"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/application"
	"github.com/Fhkhdu777/chase-linker-payout/contexts/payout-operations/distribution-service/ports"
	"github.com/Fhkhdu777/chase-linker-payout/internal/platform/events"
)

type Module struct {
	Handler    httpadapter.Handler
	Service    application.Service
	Scheduler  application.Scheduler
	AutoConfig *application.AutoConfigHolder
	Bus        *events.Bus
	Store      *memory.Store
}

type Dependencies struct {
	Repository  ports.PayoutRepository
	Audit       ports.CallbackAuditLog
	Webhook     ports.WebhookGateway
	IDGenerator ports.IDGenerator
	Bus         *events.Bus
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	autoConfig := application.NewAutoConfigHolder()
	service := application.Service{
		Repo:       deps.Repository,
		Audit:      deps.Audit,
		Webhook:    deps.Webhook,
		Bus:        deps.Bus,
		Limits:     application.NewLimitRegistry(),
		AutoConfig: autoConfig,
		Cursor:     application.NewRotationCursor(),
		IDGen:      deps.IDGenerator,
		Logger:     deps.Logger,
	}
	return Module{
		Handler:    httpadapter.NewHandler(service, deps.Logger),
		Service:    service,
		Scheduler:  application.Scheduler{Service: service, Logger: deps.Logger},
		AutoConfig: autoConfig,
		Bus:        deps.Bus,
	}
}

// NewInMemoryModule wires the module against the in-process store and a
// no-op webhook sender, for tests and local runs without Postgres.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repository:  store,
		Audit:       store,
		Webhook:     noopWebhook{},
		IDGenerator: store,
		Bus:         events.NewBus(),
		Logger:      logger,
	})
	module.Store = store
	return module
}

// noopWebhook short-circuits callback delivery as a successful send.
type noopWebhook struct{}

func (noopWebhook) Post(context.Context, string, string, []byte) (int, string, error) {
	return 200, "", nil
}
