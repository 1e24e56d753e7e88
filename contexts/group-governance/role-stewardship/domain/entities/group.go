package entities

import "time"

// GroupMode decides how roles in a group are filled.
type GroupMode string

const (
	GroupModeAdminManaged GroupMode = "admin_managed"
	GroupModeLeaderless   GroupMode = "leaderless"
)

func (m GroupMode) Valid() bool {
	return m == GroupModeAdminManaged || m == GroupModeLeaderless
}

// GroupSettings carries the anti-abuse knobs applied to trust expressions.
type GroupSettings struct {
	MinMemberAgeDays    int `json:"min_member_age_days"`
	TrustRateLimitHours int `json:"trust_rate_limit_hours"`
}

type Group struct {
	GroupID   string        `json:"group_id"`
	Name      string        `json:"name"`
	Mode      GroupMode     `json:"mode"`
	Settings  GroupSettings `json:"settings"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Membership is the directory view of one user in one group.
type Membership struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	JoinedAt time.Time `json:"joined_at"`
	IsAdmin  bool      `json:"is_admin"`
}
