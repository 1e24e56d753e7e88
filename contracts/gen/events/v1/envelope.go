package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned event envelope written to the stewardship outbox
// and relayed to the bus. Field names are part of the consumer contract.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// Stewardship event types.
const (
	EventCandidacyDeclared  = "stewardship.candidacy_declared"
	EventCandidacyNominated = "stewardship.candidacy_nominated"
	EventTrustExpressed     = "stewardship.trust_expressed"
	EventTrustRetracted     = "stewardship.trust_retracted"
	EventRoleActivated      = "stewardship.role_activated"
	EventRoleRevoked        = "stewardship.role_revoked"
	EventHolderResigned     = "stewardship.holder_resigned"
	EventHolderAssigned     = "stewardship.holder_assigned"
	EventStatusChanged      = "stewardship.role_status_changed"
	EventRoleConverted      = "stewardship.role_converted"
)

// Upstream group events consumed by the stewardship membership projection.
const (
	EventMemberJoined                    = "community.member_joined"
	EventMemberLeft                      = "community.member_left"
	EventExternalResponsibilitiesChanged = "community.responsibilities_changed"
)

// MemberEventData is the data payload of member_joined and member_left.
type MemberEventData struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	IsAdmin  bool      `json:"is_admin"`
}

// ResponsibilitiesEventData carries the full set of responsibilities a user
// holds in a group through paths outside the trust engine.
type ResponsibilitiesEventData struct {
	GroupID          string   `json:"group_id"`
	UserID           string   `json:"user_id"`
	Responsibilities []string `json:"responsibilities"`
}
