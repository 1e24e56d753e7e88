package ports

import (
	"context"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for groups, roles and outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = contractsv1.Envelope

// RoleTx is the view of one role inside its serialized transaction. Every
// read and write goes through the same transaction; nothing outside it may be
// touched until the callback returns.
type RoleTx interface {
	Role(ctx context.Context) (entities.Role, error)
	SaveRole(ctx context.Context, role entities.Role) error

	ListHolders(ctx context.Context) ([]entities.RoleHolder, error)
	AddHolder(ctx context.Context, holder entities.RoleHolder) error
	RemoveHolder(ctx context.Context, userID string) (bool, error)

	GetExpression(ctx context.Context, trustorID string, trusteeID string) (entities.TrustExpression, bool, error)
	PutExpression(ctx context.Context, expression entities.TrustExpression) error
	RemoveExpression(ctx context.Context, trustorID string, trusteeID string) (bool, error)
	ListExpressions(ctx context.Context) ([]entities.TrustExpression, error)

	DeclareCandidacy(ctx context.Context, candidacy entities.Candidacy) (bool, error)
	WithdrawCandidacy(ctx context.Context, userID string) (bool, error)
	ListCandidacies(ctx context.Context) ([]entities.Candidacy, error)

	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// Repository persists groups, roles and the trust ledger.
type Repository interface {
	// CreateGroup stores the group together with its founding memberships.
	CreateGroup(ctx context.Context, group entities.Group, founders ...entities.Membership) error
	GetGroup(ctx context.Context, groupID string) (entities.Group, error)
	UpdateGroup(ctx context.Context, group entities.Group) error

	CreateRole(ctx context.Context, role entities.Role) error
	GetRole(ctx context.Context, roleID string) (entities.Role, error)
	ListRolesByGroup(ctx context.Context, groupID string) ([]entities.Role, error)

	// Unlocked reads. Results may trail an in-flight role transaction.
	ListHolders(ctx context.Context, roleID string) ([]entities.RoleHolder, error)
	ListExpressions(ctx context.Context, roleID string) ([]entities.TrustExpression, error)
	ListCandidacies(ctx context.Context, roleID string) ([]entities.Candidacy, error)
	ListHeldResponsibilities(ctx context.Context, userID string, groupID string) ([]string, error)

	// WithinRoleTx runs fn with exclusive access to the role row. fn's error
	// rolls back every write made through tx.
	WithinRoleTx(ctx context.Context, roleID string, fn func(ctx context.Context, tx RoleTx) error) error
}

// MembershipDirectory is the external group-membership lookup.
type MembershipDirectory interface {
	GetMembership(ctx context.Context, groupID string, userID string) (entities.Membership, bool, error)
}

// ExternalResponsibilities lists responsibilities granted outside the engine,
// such as admin-assigned common roles.
type ExternalResponsibilities interface {
	ListExternalResponsibilities(ctx context.Context, userID string, groupID string) ([]string, error)
}

// MembershipProjection keeps the local membership and external
// responsibility read models in step with upstream group events.
type MembershipProjection interface {
	UpsertMembership(ctx context.Context, membership entities.Membership) error
	DeleteMembership(ctx context.Context, groupID string, userID string) error
	ReplaceExternalResponsibilities(ctx context.Context, userID string, groupID string, responsibilities []string) error
}

// CapabilityCache stores resolved responsibility sets with TTL semantics.
// Every Invalidate bumps the key's generation; Set stores only when the
// generation read before the load is still current and reports whether it did.
type CapabilityCache interface {
	Get(ctx context.Context, userID string, groupID string, now time.Time) ([]string, bool, error)
	Generation(ctx context.Context, userID string, groupID string) (uint64, error)
	Set(ctx context.Context, userID string, groupID string, responsibilities []string, expiresAt time.Time, generation uint64) (bool, error)
	Invalidate(ctx context.Context, userID string, groupID string) error
}

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// Metrics receives coordinator and capability instrumentation.
type Metrics interface {
	ObserveOperation(operation string, outcome string, duration time.Duration)
	RecordTransition(kind string)
	RecordCapabilityLookup(cacheHit bool)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, string, time.Duration) {}
func (NopMetrics) RecordTransition(string) {}
func (NopMetrics) RecordCapabilityLookup(bool) {}
