package entities

import "time"

const (
	MinTrustWeight = 0
	MaxTrustWeight = 100
)

// TrustExpression is one member's live trust signal for one candidate.
type TrustExpression struct {
	GroupID   string    `json:"group_id"`
	RoleID    string    `json:"role_id"`
	TrustorID string    `json:"trustor_id"`
	TrusteeID string    `json:"trustee_id"`
	Weight    int       `json:"weight"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ValidWeight(weight int) bool {
	return weight >= MinTrustWeight && weight <= MaxTrustWeight
}

// Candidacy is a stored candidacy for a role. NominatedBy is empty for a
// self-declaration and names the nominating member otherwise.
type Candidacy struct {
	RoleID      string    `json:"role_id"`
	UserID      string    `json:"user_id"`
	NominatedBy string    `json:"nominated_by,omitempty"`
	DeclaredAt  time.Time `json:"declared_at"`
}

// CandidateScore is the aggregate trust for one trustee.
type CandidateScore struct {
	TrusteeID       string    `json:"trustee_id"`
	Score           int       `json:"score"`
	ExpressionCount int       `json:"expression_count"`
	ReachedAt       time.Time `json:"reached_at"`
}

// RoleOutcome is the committed role snapshot returned by mutating operations.
type RoleOutcome struct {
	RoleID            string     `json:"role_id"`
	GroupID           string     `json:"group_id"`
	Status            RoleStatus `json:"status"`
	ThresholdCurrent  int        `json:"threshold_current"`
	ThresholdRequired int        `json:"threshold_required"`
	Capacity          int        `json:"capacity"`
	Holders           []string   `json:"holders"`
	RoleFull          bool       `json:"role_full"`
}
