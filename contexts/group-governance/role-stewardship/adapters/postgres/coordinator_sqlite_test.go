package postgresadapter

import (
	"context"
	"testing"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/adapters/memory"
	"stewardship/contexts/group-governance/role-stewardship/application/commands"
	"stewardship/contexts/group-governance/role-stewardship/application/queries"
	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	"stewardship/contexts/group-governance/role-stewardship/domain/services"
	"stewardship/internal/platform/keylock"
)

// fixedClock steps forward one second per read.
type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestCoordinatorActivatesOverSQLRepository(t *testing.T) {
	repo := openTestRepository(t)
	ctx := context.Background()
	clock := &fixedClock{now: testNow}
	cache := memory.NewCapabilityCache()
	capabilities := queries.NewCapabilityView(queries.CapabilityView{
		Repository: repo,
		External:   repo,
		Cache:      cache,
		Clock:      clock,
		CacheTTL:   time.Minute,
	})
	coordinator := commands.RoleActivationCoordinator{
		Repository:   repo,
		Members:      repo,
		Projection:   repo,
		Cache:        cache,
		Capabilities: capabilities,
		Clock:        clock,
		IDGenerator:  UUIDGenerator{},
		Locks:        keylock.New(),
		LockTimeout:  time.Second,
		StateMachine: services.RoleStateMachine{Aggregator: services.MeanAggregator{}},
	}

	group, err := coordinator.RegisterGroup(ctx, commands.RegisterGroupCommand{
		ActorID: "admin",
		Name:    "tenants",
		Mode:    entities.GroupModeLeaderless,
	})
	if err != nil {
		t.Fatalf("register group: %v", err)
	}
	for _, member := range []entities.Membership{
		{GroupID: group.GroupID, UserID: "admin", JoinedAt: testNow.Add(-time.Hour), IsAdmin: true},
		{GroupID: group.GroupID, UserID: "alice", JoinedAt: testNow.Add(-time.Hour)},
		{GroupID: group.GroupID, UserID: "bob", JoinedAt: testNow.Add(-time.Hour)},
		{GroupID: group.GroupID, UserID: "carol", JoinedAt: testNow.Add(-time.Hour)},
	} {
		if err := repo.UpsertMembership(ctx, member); err != nil {
			t.Fatalf("seed member: %v", err)
		}
	}

	role, err := coordinator.DefineRole(ctx, commands.DefineRoleCommand{
		GroupID:           group.GroupID,
		ActorID:           "admin",
		Name:              "coordinator",
		Responsibilities:  []string{"Scheduling"},
		Assignment:        entities.AssignmentTrustActivated,
		ThresholdRequired: 60,
		Capacity:          1,
	})
	if err != nil {
		t.Fatalf("define role: %v", err)
	}
	if _, err := coordinator.DeclareCandidacy(ctx, commands.DeclareCandidacyCommand{RoleID: role.RoleID, UserID: "alice"}); err != nil {
		t.Fatalf("declare: %v", err)
	}
	outcome, err := coordinator.ExpressTrust(ctx, commands.ExpressTrustCommand{RoleID: role.RoleID, TrustorID: "bob", TrusteeID: "alice", Weight: 90})
	if err != nil {
		t.Fatalf("express bob: %v", err)
	}
	if outcome.Status != entities.RoleStatusActive || len(outcome.Holders) != 1 || outcome.Holders[0] != "alice" {
		t.Fatalf("expected alice active, got %+v", outcome)
	}

	ok, err := capabilities.HasResponsibility(ctx, "alice", group.GroupID, "scheduling")
	if err != nil || !ok {
		t.Fatalf("expected alice to hold Scheduling, got %v (%v)", ok, err)
	}

	// Mean of 90 and 0 is 45; still above the revocation floor of 30.
	outcome, err = coordinator.ExpressTrust(ctx, commands.ExpressTrustCommand{RoleID: role.RoleID, TrustorID: "carol", TrusteeID: "alice", Weight: 0})
	if err != nil {
		t.Fatalf("express carol: %v", err)
	}
	if len(outcome.Holders) != 1 {
		t.Fatalf("expected hysteresis to keep alice, got %+v", outcome)
	}

	outcome, err = coordinator.RetractTrust(ctx, commands.RetractTrustCommand{RoleID: role.RoleID, TrustorID: "bob", TrusteeID: "alice"})
	if err != nil {
		t.Fatalf("retract: %v", err)
	}
	if len(outcome.Holders) != 0 || outcome.Status != entities.RoleStatusPending {
		t.Fatalf("expected alice revoked with pending status, got %+v", outcome)
	}
	ok, _ = capabilities.HasResponsibility(ctx, "alice", group.GroupID, "Scheduling")
	if ok {
		t.Fatalf("expected capability cache invalidated on revocation")
	}

	pending, err := repo.ListPendingOutbox(ctx, 100)
	if err != nil {
		t.Fatalf("outbox: %v", err)
	}
	counts := map[string]int{}
	for _, row := range pending {
		counts[row.EventType]++
	}
	if counts["stewardship.role_activated"] != 1 || counts["stewardship.role_revoked"] != 1 {
		t.Fatalf("unexpected outbox events: %v", counts)
	}
}
