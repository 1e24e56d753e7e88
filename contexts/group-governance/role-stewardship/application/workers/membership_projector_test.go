package workers

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/adapters/memory"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

func envelope(t *testing.T, eventType string, data any) contractsv1.Envelope {
	t.Helper()
	payload, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return contractsv1.Envelope{
		EventID:    "evt-" + eventType,
		EventType:  eventType,
		OccurredAt: time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC),
		Data:       payload,
	}
}

func TestMembershipProjectorAppliesMemberEvents(t *testing.T) {
	store := memory.NewStore()
	projector := MembershipProjector{Projection: store, Cache: store}
	ctx := context.Background()

	if err := projector.Handle(ctx, envelope(t, contractsv1.EventMemberJoined, contractsv1.MemberEventData{
		GroupID: "g-1", UserID: "u-1", IsAdmin: true,
	})); err != nil {
		t.Fatalf("handle joined: %v", err)
	}
	membership, ok, _ := store.GetMembership(ctx, "g-1", "u-1")
	if !ok || !membership.IsAdmin {
		t.Fatalf("expected admin membership, got %+v %v", membership, ok)
	}
	if membership.JoinedAt.IsZero() {
		t.Fatalf("expected join time to fall back to occurred_at")
	}

	if err := projector.Handle(ctx, envelope(t, contractsv1.EventMemberLeft, contractsv1.MemberEventData{
		GroupID: "g-1", UserID: "u-1",
	})); err != nil {
		t.Fatalf("handle left: %v", err)
	}
	if _, ok, _ := store.GetMembership(ctx, "g-1", "u-1"); ok {
		t.Fatalf("expected membership removed")
	}
}

func TestMembershipProjectorReplacesExternalResponsibilities(t *testing.T) {
	store := memory.NewStore()
	projector := MembershipProjector{Projection: store, Cache: store}
	ctx := context.Background()
	if _, err := store.Set(ctx, "u-1", "g-1", []string{"Stale"}, time.Now().Add(time.Hour), 0); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	if err := projector.Handle(ctx, envelope(t, contractsv1.EventExternalResponsibilitiesChanged, contractsv1.ResponsibilitiesEventData{
		GroupID: "g-1", UserID: "u-1", Responsibilities: []string{"Events", " Events ", "Outreach"},
	})); err != nil {
		t.Fatalf("handle responsibilities: %v", err)
	}
	items, _ := store.ListExternalResponsibilities(ctx, "u-1", "g-1")
	if len(items) != 2 || items[0] != "Events" || items[1] != "Outreach" {
		t.Fatalf("expected normalized responsibilities, got %v", items)
	}
	if _, hit, _ := store.Get(ctx, "u-1", "g-1", time.Now()); hit {
		t.Fatalf("expected cache entry invalidated")
	}
}
