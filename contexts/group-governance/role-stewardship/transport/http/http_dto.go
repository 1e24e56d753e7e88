package httptransport

import "time"

// RegisterGroupRequest makes an existing community group known to the engine.
type RegisterGroupRequest struct {
	GroupID             string `json:"group_id,omitempty"`
	Name                string `json:"name"`
	Mode                string `json:"mode,omitempty"`
	MinMemberAgeDays    int    `json:"min_member_age_days,omitempty"`
	TrustRateLimitHours int    `json:"trust_rate_limit_hours,omitempty"`
}

type GroupResponse struct {
	GroupID             string    `json:"group_id"`
	Name                string    `json:"name"`
	Mode                string    `json:"mode"`
	MinMemberAgeDays    int       `json:"min_member_age_days"`
	TrustRateLimitHours int       `json:"trust_rate_limit_hours"`
	CreatedAt           time.Time `json:"created_at"`
}

type ConvertToLeaderlessRequest struct {
	ThresholdRequired int `json:"threshold_required,omitempty"`
}

type DefineRoleRequest struct {
	Name              string   `json:"name"`
	Responsibilities  []string `json:"responsibilities"`
	Assignment        string   `json:"assignment,omitempty"`
	ThresholdRequired int      `json:"threshold_required,omitempty"`
	Capacity          int      `json:"capacity,omitempty"`
	Bootstrap         bool     `json:"bootstrap,omitempty"`
}

type RoleResponse struct {
	RoleID            string   `json:"role_id"`
	GroupID           string   `json:"group_id"`
	Name              string   `json:"name"`
	Responsibilities  []string `json:"responsibilities"`
	Assignment        string   `json:"assignment"`
	Status            string   `json:"status"`
	ThresholdCurrent  int      `json:"threshold_current"`
	ThresholdRequired int      `json:"threshold_required"`
	Bootstrap         bool     `json:"bootstrap"`
	Capacity          int      `json:"capacity"`
}

type ConfigureRoleRequest struct {
	ThresholdRequired int `json:"threshold_required"`
	Capacity          int `json:"capacity"`
}

type ExpressTrustRequest struct {
	Weight *int `json:"weight"`
}

type UserRequest struct {
	UserID string `json:"user_id"`
}

// AddMemberRequest records a member in the group directory. JoinedAt
// defaults to the time of the request.
type AddMemberRequest struct {
	UserID   string     `json:"user_id"`
	IsAdmin  bool       `json:"is_admin,omitempty"`
	JoinedAt *time.Time `json:"joined_at,omitempty"`
}

type MemberResponse struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	IsAdmin  bool      `json:"is_admin"`
	JoinedAt time.Time `json:"joined_at"`
}

// RoleOutcomeResponse is the committed role snapshot after a mutation.
type RoleOutcomeResponse struct {
	RoleID            string   `json:"role_id"`
	GroupID           string   `json:"group_id"`
	Status            string   `json:"status"`
	ThresholdCurrent  int      `json:"threshold_current"`
	ThresholdRequired int      `json:"threshold_required"`
	Capacity          int      `json:"capacity"`
	Holders           []string `json:"holders"`
	RoleFull          bool     `json:"role_full,omitempty"`
}

type RoleOutcomeListResponse struct {
	Roles []RoleOutcomeResponse `json:"roles"`
}

type ResponsibilitiesResponse struct {
	UserID           string   `json:"user_id"`
	GroupID          string   `json:"group_id"`
	Responsibilities []string `json:"responsibilities"`
}

type HasResponsibilityResponse struct {
	UserID         string `json:"user_id"`
	GroupID        string `json:"group_id"`
	Responsibility string `json:"responsibility"`
	Allowed        bool   `json:"allowed"`
}

type TrustExpressionDTO struct {
	TrustorID string    `json:"trustor_id"`
	TrusteeID string    `json:"trustee_id"`
	Weight    int       `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CandidateDTO struct {
	UserID          string `json:"user_id"`
	Declared        bool   `json:"declared"`
	NominatedBy     string `json:"nominated_by,omitempty"`
	Score           int    `json:"score"`
	ExpressionCount int    `json:"expression_count"`
}

type HolderDTO struct {
	UserID     string    `json:"user_id"`
	GrantedVia string    `json:"granted_via"`
	GrantedAt  time.Time `json:"granted_at"`
}

type TrustDataResponse struct {
	Role               RoleResponse         `json:"role"`
	Holders            []HolderDTO          `json:"holders"`
	Candidates         []CandidateDTO       `json:"candidates"`
	Expressions        []TrustExpressionDTO `json:"expressions"`
	MyTrustExpressions []TrustExpressionDTO `json:"my_trust_expressions"`
}

type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}
