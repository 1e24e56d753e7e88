package workers

import (
	"context"
	"errors"
	"testing"

	"stewardship/contexts/group-governance/role-stewardship/adapters/memory"
	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	"stewardship/contexts/group-governance/role-stewardship/ports"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type recordingPublisher struct {
	topics  []string
	failOn  string
	failErr error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	if p.failOn != "" && event.EventID == p.failOn {
		return p.failErr
	}
	p.topics = append(p.topics, topic)
	return nil
}

func seedOutbox(t *testing.T, store *memory.Store, eventIDs ...string) {
	t.Helper()
	ctx := context.Background()
	if err := store.CreateGroup(ctx, entities.Group{GroupID: "g-1", Name: "club"}); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if err := store.CreateRole(ctx, entities.Role{RoleID: "r-1", GroupID: "g-1", Name: "steward", Capacity: 1}); err != nil {
		t.Fatalf("create role: %v", err)
	}
	if err := store.WithinRoleTx(ctx, "r-1", func(ctx context.Context, tx ports.RoleTx) error {
		for _, id := range eventIDs {
			if err := tx.AppendOutbox(ctx, contractsv1.Envelope{
				EventID:      id,
				EventType:    contractsv1.EventTrustExpressed,
				PartitionKey: "r-1",
			}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("seed outbox: %v", err)
	}
}

func TestOutboxRelayPublishesPendingRows(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "e-1", "e-2", "e-3")
	publisher := &recordingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 2}

	published, err := relay.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if published != 2 {
		t.Fatalf("expected batch of 2, got %d", published)
	}
	published, err = relay.RunOnce(context.Background())
	if err != nil || published != 1 {
		t.Fatalf("expected remaining row published, got %d %v", published, err)
	}
	if len(publisher.topics) != 3 || publisher.topics[0] != contractsv1.EventTrustExpressed {
		t.Fatalf("unexpected topics %v", publisher.topics)
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore()
	seedOutbox(t, store, "e-1", "e-2")
	boom := errors.New("broker unavailable")
	publisher := &recordingPublisher{failOn: "e-2", failErr: boom}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store}

	published, err := relay.RunOnce(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if published != 1 {
		t.Fatalf("expected first row published before failure, got %d", published)
	}
	pending, _ := store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 1 || pending[0].OutboxID != "e-2" {
		t.Fatalf("expected failed row to stay pending, got %+v", pending)
	}
}
