package entities

import (
	"sort"
	"strings"
	"time"
)

// AssignmentMode decides whether holders are written by admins or by the trust engine.
type AssignmentMode string

const (
	AssignmentAdminAssigned  AssignmentMode = "admin_assigned"
	AssignmentTrustActivated AssignmentMode = "trust_activated"
)

func (m AssignmentMode) Valid() bool {
	return m == AssignmentAdminAssigned || m == AssignmentTrustActivated
}

type RoleStatus string

const (
	RoleStatusVacant  RoleStatus = "vacant"
	RoleStatusPending RoleStatus = "pending"
	RoleStatusActive  RoleStatus = "active"
)

// GrantSource records which path created a holder row.
type GrantSource string

const (
	GrantedViaAdmin     GrantSource = "admin"
	GrantedViaTrust     GrantSource = "trust"
	GrantedViaBootstrap GrantSource = "bootstrap"
)

const (
	MinThresholdRequired     = 1
	MaxThresholdRequired     = 100
	DefaultThresholdRequired = 50
	DefaultCapacity          = 1
)

// Role is a named capability slot within a group.
type Role struct {
	RoleID            string         `json:"role_id"`
	GroupID           string         `json:"group_id"`
	Name              string         `json:"name"`
	Responsibilities  []string       `json:"responsibilities"`
	Assignment        AssignmentMode `json:"assignment"`
	Status            RoleStatus     `json:"status"`
	ThresholdCurrent  int            `json:"threshold_current"`
	ThresholdRequired int            `json:"threshold_required"`
	Bootstrap         bool           `json:"bootstrap"`
	Capacity          int            `json:"capacity"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func (r Role) TrustActivated() bool {
	return r.Assignment == AssignmentTrustActivated
}

// ValidThresholds reports whether the threshold and capacity fields are usable.
func ValidThresholds(thresholdRequired int, capacity int) bool {
	if thresholdRequired < MinThresholdRequired || thresholdRequired > MaxThresholdRequired {
		return false
	}
	return capacity >= 1
}

// NormalizeResponsibilities trims, deduplicates and sorts a responsibility set.
func NormalizeResponsibilities(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

// RoleHolder grants a role to one user.
type RoleHolder struct {
	RoleID     string      `json:"role_id"`
	UserID     string      `json:"user_id"`
	GrantedAt  time.Time   `json:"granted_at"`
	GrantedVia GrantSource `json:"granted_via"`
}

// HolderIDs returns holder user ids in grant order.
func HolderIDs(holders []RoleHolder) []string {
	items := append([]RoleHolder(nil), holders...)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].GrantedAt.Equal(items[j].GrantedAt) {
			return items[i].UserID < items[j].UserID
		}
		return items[i].GrantedAt.Before(items[j].GrantedAt)
	})
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.UserID)
	}
	return ids
}

// ResponsibilityAdministration lets a holder act as a group admin.
const ResponsibilityAdministration = "Administration"
