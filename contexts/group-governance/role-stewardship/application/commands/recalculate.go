package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
)

type RecalculateRoleCommand struct {
	RoleID string
}

type RecalculateGroupCommand struct {
	GroupID string
}

// Recalculate re-runs the state machine over the stored ledger.
func (c RoleActivationCoordinator) Recalculate(ctx context.Context, cmd RecalculateRoleCommand) (entities.RoleOutcome, error) {
	role, err := c.loadRole(ctx, cmd.RoleID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	return c.withRole(ctx, "recalculate", role.RoleID, func(context.Context, *roleSession) error {
		return nil
	})
}

// RecalculateGroup recalculates each trust-activated role of a group in turn,
// releasing one role lock before taking the next.
func (c RoleActivationCoordinator) RecalculateGroup(ctx context.Context, cmd RecalculateGroupCommand) ([]entities.RoleOutcome, error) {
	groupID := strings.TrimSpace(cmd.GroupID)
	if groupID == "" {
		return nil, domainerrors.ErrInvalidInput
	}
	if _, err := c.Repository.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	roles, err := c.Repository.ListRolesByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	outcomes := make([]entities.RoleOutcome, 0, len(roles))
	for _, role := range roles {
		if !role.TrustActivated() {
			continue
		}
		outcome, err := c.Recalculate(ctx, RecalculateRoleCommand{RoleID: role.RoleID})
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}
