package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type AssignHolderCommand struct {
	RoleID  string
	ActorID string
	UserID  string
}

type UnassignHolderCommand struct {
	RoleID  string
	ActorID string
	UserID  string
}

// AssignHolder is the direct admin path for admin-assigned roles.
func (c RoleActivationCoordinator) AssignHolder(ctx context.Context, cmd AssignHolderCommand) (entities.RoleOutcome, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidInput
	}
	role, err := c.adminRole(ctx, cmd.RoleID, cmd.ActorID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	if _, err := c.requireMember(ctx, role.GroupID, userID); err != nil {
		return entities.RoleOutcome{}, err
	}

	return c.withRole(ctx, "assign_holder", role.RoleID, func(ctx context.Context, session *roleSession) error {
		if session.role.TrustActivated() {
			return domainerrors.ErrRoleNotAdminAssigned
		}
		holders, err := session.tx.ListHolders(ctx)
		if err != nil {
			return err
		}
		for _, holder := range holders {
			if holder.UserID == userID {
				return domainerrors.ErrAlreadyHolder
			}
		}
		if len(holders) >= session.role.Capacity {
			return domainerrors.ErrRoleFull
		}
		if err := session.tx.AddHolder(ctx, entities.RoleHolder{
			RoleID:     session.role.RoleID,
			UserID:     userID,
			GrantedAt:  session.now,
			GrantedVia: entities.GrantedViaAdmin,
		}); err != nil {
			return err
		}
		session.touch(userID)
		return c.emit(ctx, session, contractsv1.EventHolderAssigned, map[string]any{
			"role_id":  session.role.RoleID,
			"group_id": session.role.GroupID,
			"user_id":  userID,
			"actor_id": strings.TrimSpace(cmd.ActorID),
		})
	})
}

// UnassignHolder removes an admin-granted holder. Removing an absent holder succeeds.
func (c RoleActivationCoordinator) UnassignHolder(ctx context.Context, cmd UnassignHolderCommand) (entities.RoleOutcome, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidInput
	}
	role, err := c.adminRole(ctx, cmd.RoleID, cmd.ActorID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}

	return c.withRole(ctx, "unassign_holder", role.RoleID, func(ctx context.Context, session *roleSession) error {
		if session.role.TrustActivated() {
			return domainerrors.ErrRoleNotAdminAssigned
		}
		removed, err := session.tx.RemoveHolder(ctx, userID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		session.touch(userID)
		session.revoked++
		return c.emit(ctx, session, contractsv1.EventRoleRevoked, map[string]any{
			"role_id":     session.role.RoleID,
			"group_id":    session.role.GroupID,
			"user_id":     userID,
			"granted_via": string(entities.GrantedViaAdmin),
			"reason":      "admin_unassigned",
			"actor_id":    strings.TrimSpace(cmd.ActorID),
		})
	})
}

func (c RoleActivationCoordinator) adminRole(ctx context.Context, roleID string, actorID string) (entities.Role, error) {
	role, err := c.loadRole(ctx, roleID)
	if err != nil {
		return entities.Role{}, err
	}
	if role.TrustActivated() {
		return entities.Role{}, domainerrors.ErrRoleNotAdminAssigned
	}
	if err := c.requireAdmin(ctx, role.GroupID, strings.TrimSpace(actorID)); err != nil {
		return entities.Role{}, err
	}
	return role, nil
}
