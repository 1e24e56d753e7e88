package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
)

type ConfigureRoleCommand struct {
	RoleID            string
	ActorID           string
	ThresholdRequired int
	Capacity          int
}

// ConfigureRole changes the threshold and capacity of a role and re-evaluates
// it under the new values. Capacity may not drop below the current holder count.
func (c RoleActivationCoordinator) ConfigureRole(ctx context.Context, cmd ConfigureRoleCommand) (entities.RoleOutcome, error) {
	if !entities.ValidThresholds(cmd.ThresholdRequired, cmd.Capacity) {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidRoleDefinition
	}
	role, err := c.loadRole(ctx, cmd.RoleID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	if err := c.requireAdmin(ctx, role.GroupID, strings.TrimSpace(cmd.ActorID)); err != nil {
		return entities.RoleOutcome{}, err
	}

	return c.withRole(ctx, "configure_role", role.RoleID, func(ctx context.Context, session *roleSession) error {
		holders, err := session.tx.ListHolders(ctx)
		if err != nil {
			return err
		}
		if len(holders) > cmd.Capacity {
			return domainerrors.ErrInvalidRoleDefinition
		}
		session.role.ThresholdRequired = cmd.ThresholdRequired
		session.role.Capacity = cmd.Capacity
		session.roleDirty = true
		return nil
	})
}
