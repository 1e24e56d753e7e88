package rolestewardship

import (
	"log/slog"
	"time"

	httpadapter "stewardship/contexts/group-governance/role-stewardship/adapters/http"
	"stewardship/contexts/group-governance/role-stewardship/adapters/memory"
	"stewardship/contexts/group-governance/role-stewardship/application/commands"
	"stewardship/contexts/group-governance/role-stewardship/application/queries"
	"stewardship/contexts/group-governance/role-stewardship/application/workers"
	"stewardship/contexts/group-governance/role-stewardship/domain/services"
	"stewardship/contexts/group-governance/role-stewardship/ports"
	"stewardship/internal/platform/keylock"
)

type Module struct {
	Handler      httpadapter.Handler
	Coordinator  commands.RoleActivationCoordinator
	Capabilities *queries.CapabilityView
	Relay        workers.OutboxRelay
	Projector    workers.MembershipProjector
	Store        *memory.Store
}

// EventBus is the publish and subscribe side of one broker.
type EventBus interface {
	ports.EventPublisher
	ports.EventSubscriber
}

type Dependencies struct {
	Repository         ports.Repository
	Members            ports.MembershipDirectory
	External           ports.ExternalResponsibilities
	CapabilityCache    ports.CapabilityCache
	Outbox             ports.OutboxRepository
	Publisher          ports.EventPublisher
	Subscriber         ports.EventSubscriber
	Projection         ports.MembershipProjection
	Clock              ports.Clock
	IDGenerator        ports.IDGenerator
	Metrics            ports.Metrics
	LockTimeout        time.Duration
	CapabilityCacheTTL time.Duration
	AggregationPolicy  string
	OutboxBatchSize    int
	Logger             *slog.Logger
}

func NewModule(deps Dependencies) Module {
	aggregator := services.NewAggregator(deps.AggregationPolicy)
	capabilities := queries.NewCapabilityView(queries.CapabilityView{
		Repository: deps.Repository,
		External:   deps.External,
		Cache:      deps.CapabilityCache,
		Clock:      deps.Clock,
		CacheTTL:   deps.CapabilityCacheTTL,
		Metrics:    deps.Metrics,
		Logger:     deps.Logger,
	})
	coordinator := commands.RoleActivationCoordinator{
		Repository:   deps.Repository,
		Members:      deps.Members,
		Projection:   deps.Projection,
		Cache:        deps.CapabilityCache,
		Capabilities: capabilities,
		Clock:        deps.Clock,
		IDGenerator:  deps.IDGenerator,
		Locks:        keylock.New(),
		LockTimeout:  deps.LockTimeout,
		StateMachine: services.RoleStateMachine{Aggregator: aggregator},
		Metrics:      deps.Metrics,
		Logger:       deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Coordinator:  coordinator,
			Capabilities: capabilities,
			TrustData: queries.TrustDataUseCase{
				Repository: deps.Repository,
				Aggregator: aggregator,
			},
			Logger: deps.Logger,
		},
		Coordinator:  coordinator,
		Capabilities: capabilities,
		Relay: workers.OutboxRelay{
			Outbox:    deps.Outbox,
			Publisher: deps.Publisher,
			Clock:     deps.Clock,
			BatchSize: deps.OutboxBatchSize,
			Logger:    deps.Logger,
		},
		Projector: workers.MembershipProjector{
			Subscriber: deps.Subscriber,
			Projection: deps.Projection,
			Cache:      deps.CapabilityCache,
			Logger:     deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one memory.Store. bus may be nil when
// no relay or projector will run.
func NewInMemoryModule(bus EventBus, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Publisher:          bus,
		Subscriber:         bus,
		Projection:         store,
		Repository:         store,
		Members:            store,
		External:           store,
		CapabilityCache:    store,
		Outbox:             store,
		Clock:              store,
		IDGenerator:        store,
		LockTimeout:        2 * time.Second,
		CapabilityCacheTTL: time.Minute,
		AggregationPolicy:  services.AggregationPolicyMean,
		Logger:             logger,
	})
	module.Store = store
	return module
}
