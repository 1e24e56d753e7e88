package commands

import (
	"encoding/json"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/ports"
)

func newStewardshipEnvelope(
	eventID string,
	eventType string,
	roleID string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Partitioned by role so consumers see one role's transitions in commit order.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "role-stewardship",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "role_id",
		PartitionKey:     roleID,
		Data:             payload,
	}, nil
}
