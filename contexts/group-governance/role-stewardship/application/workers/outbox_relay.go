package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	application "stewardship/contexts/group-governance/role-stewardship/application"
	"stewardship/contexts/group-governance/role-stewardship/ports"
)

const moduleName = "group-governance/role-stewardship"

// OutboxRelay publishes persisted stewardship events to the event bus.
type OutboxRelay struct {
	Outbox    ports.OutboxRepository
	Publisher ports.EventPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending outbox rows and marks each row
// published only after the publish succeeds. It stops on the first failure
// so the next cycle retries the remaining rows in order.
func (r OutboxRelay) RunOnce(ctx context.Context) (int, error) {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingOutbox(ctx, limit)
	if err != nil {
		logger.Error("stewardship outbox list failed",
			"event", "stewardship_outbox_list_failed",
			"module", moduleName,
			"layer", "worker",
			"error", err.Error(),
		)
		return 0, err
	}
	if len(pending) == 0 {
		logger.Debug("stewardship outbox relay found no pending rows",
			"event", "stewardship_outbox_relay_noop",
			"module", moduleName,
			"layer", "worker",
			"batch_size", limit,
		)
		return 0, nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	published := 0
	for _, row := range pending {
		var event ports.EventEnvelope
		if err := json.Unmarshal(row.Payload, &event); err != nil {
			logger.Error("stewardship outbox decode failed",
				"event", "stewardship_outbox_decode_failed",
				"module", moduleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		topic := event.EventType
		if topic == "" {
			topic = row.EventType
		}
		if err := r.Publisher.Publish(ctx, topic, event); err != nil {
			logger.Error("stewardship outbox publish failed",
				"event", "stewardship_outbox_publish_failed",
				"module", moduleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"event_id", event.EventID,
				"event_type", event.EventType,
				"error", err.Error(),
			)
			return published, err
		}
		if err := r.Outbox.MarkOutboxPublished(ctx, row.OutboxID, now); err != nil {
			logger.Error("stewardship outbox mark published failed",
				"event", "stewardship_outbox_mark_published_failed",
				"module", moduleName,
				"layer", "worker",
				"outbox_id", row.OutboxID,
				"error", err.Error(),
			)
			return published, err
		}
		published++
	}

	logger.Info("stewardship outbox relay cycle completed",
		"event", "stewardship_outbox_relay_completed",
		"module", moduleName,
		"layer", "worker",
		"published_count", published,
	)
	return published, nil
}
