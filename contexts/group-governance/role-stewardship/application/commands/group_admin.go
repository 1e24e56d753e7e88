package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type RegisterGroupCommand struct {
	GroupID  string
	ActorID  string
	Name     string
	Mode     entities.GroupMode
	Settings entities.GroupSettings
}

type DefineRoleCommand struct {
	GroupID           string
	ActorID           string
	Name              string
	Responsibilities  []string
	Assignment        entities.AssignmentMode
	ThresholdRequired int
	Capacity          int
	Bootstrap         bool
}

type ConvertToLeaderlessCommand struct {
	GroupID           string
	ActorID           string
	ThresholdRequired int
}

// RegisterGroup makes a group known to the engine. Groups default to
// admin-managed. The registering user becomes the group's first admin member.
func (c RoleActivationCoordinator) RegisterGroup(ctx context.Context, cmd RegisterGroupCommand) (entities.Group, error) {
	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return entities.Group{}, domainerrors.ErrForbidden
	}
	mode := cmd.Mode
	if mode == "" {
		mode = entities.GroupModeAdminManaged
	}
	if !mode.Valid() || strings.TrimSpace(cmd.Name) == "" {
		return entities.Group{}, domainerrors.ErrInvalidInput
	}
	if cmd.Settings.MinMemberAgeDays < 0 || cmd.Settings.TrustRateLimitHours < 0 {
		return entities.Group{}, domainerrors.ErrInvalidInput
	}

	groupID := strings.TrimSpace(cmd.GroupID)
	if groupID == "" {
		id, err := c.IDGenerator.NewID(ctx)
		if err != nil {
			return entities.Group{}, err
		}
		groupID = id
	}
	now := c.now()
	group := entities.Group{
		GroupID:   groupID,
		Name:      strings.TrimSpace(cmd.Name),
		Mode:      mode,
		Settings:  cmd.Settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	founder := entities.Membership{
		GroupID:  groupID,
		UserID:   actorID,
		JoinedAt: now,
		IsAdmin:  true,
	}
	if err := c.Repository.CreateGroup(ctx, group, founder); err != nil {
		return entities.Group{}, err
	}
	c.logger().Info("group registered",
		"event", "stewardship_group_registered",
		"module", moduleName,
		"layer", "application",
		"group_id", group.GroupID,
		"mode", string(group.Mode),
		"founder_id", actorID,
	)
	return group, nil
}

// DefineRole adds a role to a group. Leaderless groups only accept
// trust-activated roles.
func (c RoleActivationCoordinator) DefineRole(ctx context.Context, cmd DefineRoleCommand) (entities.Role, error) {
	groupID := strings.TrimSpace(cmd.GroupID)
	name := strings.TrimSpace(cmd.Name)
	if groupID == "" || name == "" {
		return entities.Role{}, domainerrors.ErrInvalidRoleDefinition
	}
	threshold := cmd.ThresholdRequired
	if threshold == 0 {
		threshold = entities.DefaultThresholdRequired
	}
	capacity := cmd.Capacity
	if capacity == 0 {
		capacity = entities.DefaultCapacity
	}
	if !entities.ValidThresholds(threshold, capacity) {
		return entities.Role{}, domainerrors.ErrInvalidRoleDefinition
	}
	if err := c.requireAdmin(ctx, groupID, strings.TrimSpace(cmd.ActorID)); err != nil {
		return entities.Role{}, err
	}

	var role entities.Role
	err := c.lockKey(ctx, groupLockKey(groupID), func() error {
		group, err := c.Repository.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		assignment := cmd.Assignment
		if assignment == "" {
			assignment = entities.AssignmentAdminAssigned
			if group.Mode == entities.GroupModeLeaderless {
				assignment = entities.AssignmentTrustActivated
			}
		}
		if !assignment.Valid() {
			return domainerrors.ErrInvalidRoleDefinition
		}
		if group.Mode == entities.GroupModeLeaderless && assignment != entities.AssignmentTrustActivated {
			return domainerrors.ErrInvalidRoleDefinition
		}

		roleID, err := c.IDGenerator.NewID(ctx)
		if err != nil {
			return err
		}
		now := c.now()
		role = entities.Role{
			RoleID:            roleID,
			GroupID:           group.GroupID,
			Name:              name,
			Responsibilities:  entities.NormalizeResponsibilities(cmd.Responsibilities),
			Assignment:        assignment,
			Status:            entities.RoleStatusVacant,
			ThresholdRequired: threshold,
			Bootstrap:         cmd.Bootstrap && assignment == entities.AssignmentTrustActivated,
			Capacity:          capacity,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		return c.Repository.CreateRole(ctx, role)
	})
	if err != nil {
		return entities.Role{}, err
	}
	c.logger().Info("role defined",
		"event", "stewardship_role_defined",
		"module", moduleName,
		"layer", "application",
		"group_id", role.GroupID,
		"role_id", role.RoleID,
		"assignment", string(role.Assignment),
	)
	return role, nil
}

// ConvertToLeaderless moves a group to leaderless mode. The transition is
// one-way. Each admin-assigned role becomes trust-activated; current holders
// are kept as bootstrap holders so the group is never left without stewards.
// Roles are converted one at a time. Re-running the command on a leaderless
// group finishes any role a failed run left behind.
func (c RoleActivationCoordinator) ConvertToLeaderless(ctx context.Context, cmd ConvertToLeaderlessCommand) ([]entities.RoleOutcome, error) {
	groupID := strings.TrimSpace(cmd.GroupID)
	if groupID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	threshold := cmd.ThresholdRequired
	if threshold == 0 {
		threshold = entities.DefaultThresholdRequired
	}
	if !entities.ValidThresholds(threshold, 1) {
		return nil, domainerrors.ErrInvalidRoleDefinition
	}
	if err := c.requireAdmin(ctx, groupID, strings.TrimSpace(cmd.ActorID)); err != nil {
		return nil, err
	}

	var outcomes []entities.RoleOutcome
	err := c.lockKey(ctx, groupLockKey(groupID), func() error {
		group, err := c.Repository.GetGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if group.Mode != entities.GroupModeLeaderless {
			group.Mode = entities.GroupModeLeaderless
			group.UpdatedAt = c.now()
			if err := c.Repository.UpdateGroup(ctx, group); err != nil {
				return err
			}
		}

		roles, err := c.Repository.ListRolesByGroup(ctx, groupID)
		if err != nil {
			return err
		}
		for _, role := range roles {
			if role.TrustActivated() {
				continue
			}
			outcome, err := c.convertRole(ctx, role.RoleID, threshold, strings.TrimSpace(cmd.ActorID))
			if err != nil {
				return err
			}
			outcomes = append(outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		return outcomes, err
	}
	c.logger().Info("group converted to leaderless",
		"event", "stewardship_group_converted",
		"module", moduleName,
		"layer", "application",
		"group_id", groupID,
		"converted_roles", len(outcomes),
	)
	return outcomes, nil
}

func (c RoleActivationCoordinator) convertRole(ctx context.Context, roleID string, threshold int, actorID string) (entities.RoleOutcome, error) {
	return c.withRole(ctx, "convert_role", roleID, func(ctx context.Context, session *roleSession) error {
		if session.role.TrustActivated() {
			return nil
		}
		holders, err := session.tx.ListHolders(ctx)
		if err != nil {
			return err
		}
		for _, holder := range holders {
			if _, err := session.tx.RemoveHolder(ctx, holder.UserID); err != nil {
				return err
			}
			holder.GrantedVia = entities.GrantedViaBootstrap
			if err := session.tx.AddHolder(ctx, holder); err != nil {
				return err
			}
		}

		session.role.Assignment = entities.AssignmentTrustActivated
		session.role.ThresholdRequired = threshold
		if session.role.Capacity < len(holders) {
			session.role.Capacity = len(holders)
		}
		if session.role.Capacity < 1 {
			session.role.Capacity = entities.DefaultCapacity
		}
		session.role.Bootstrap = len(holders) == 0
		session.roleDirty = true
		return c.emit(ctx, session, contractsv1.EventRoleConverted, map[string]any{
			"role_id":            session.role.RoleID,
			"group_id":           session.role.GroupID,
			"kept_holders":       len(holders),
			"threshold_required": threshold,
			"actor_id":           actorID,
		})
	})
}
