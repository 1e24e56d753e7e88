package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type SeedBootstrapHolderCommand struct {
	RoleID  string
	ActorID string
	UserID  string
}

// SeedBootstrapHolder lets a group admin seat the first holder of a
// bootstrap role without trust. The bootstrap flag is consumed, so every
// later holder goes through the trust path.
func (c RoleActivationCoordinator) SeedBootstrapHolder(ctx context.Context, cmd SeedBootstrapHolderCommand) (entities.RoleOutcome, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidInput
	}
	role, err := c.loadRole(ctx, cmd.RoleID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	if !role.TrustActivated() {
		return entities.RoleOutcome{}, domainerrors.ErrRoleNotTrustActivated
	}
	if err := c.requireAdmin(ctx, role.GroupID, strings.TrimSpace(cmd.ActorID)); err != nil {
		return entities.RoleOutcome{}, err
	}
	if _, err := c.requireMember(ctx, role.GroupID, userID); err != nil {
		return entities.RoleOutcome{}, err
	}

	return c.withRole(ctx, "seed_bootstrap_holder", role.RoleID, func(ctx context.Context, session *roleSession) error {
		if !session.role.Bootstrap {
			return domainerrors.ErrBootstrapUnavailable
		}
		holders, err := session.tx.ListHolders(ctx)
		if err != nil {
			return err
		}
		if len(holders) > 0 {
			return domainerrors.ErrBootstrapUnavailable
		}

		holder := entities.RoleHolder{
			RoleID:     session.role.RoleID,
			UserID:     userID,
			GrantedAt:  session.now,
			GrantedVia: entities.GrantedViaBootstrap,
		}
		if err := session.tx.AddHolder(ctx, holder); err != nil {
			return err
		}
		session.role.Bootstrap = false
		session.roleDirty = true
		session.touch(userID)
		session.activated++
		return c.emit(ctx, session, contractsv1.EventRoleActivated, map[string]any{
			"role_id":     session.role.RoleID,
			"group_id":    session.role.GroupID,
			"user_id":     userID,
			"granted_via": string(entities.GrantedViaBootstrap),
			"actor_id":    strings.TrimSpace(cmd.ActorID),
		})
	})
}
