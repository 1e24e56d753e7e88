package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type ResignCommand struct {
	RoleID string
	UserID string
}

// Resign removes the caller's holder row for any assignment mode, then
// re-evaluates so a waiting candidate can take the freed seat in the same
// transaction. The resigner's own candidacy is withdrawn. Trust other members
// expressed for the resigner stays theirs to retract; the resigner is only
// excluded from the evaluation that closes the resignation.
func (c RoleActivationCoordinator) Resign(ctx context.Context, cmd ResignCommand) (entities.RoleOutcome, error) {
	userID := strings.TrimSpace(cmd.UserID)
	if userID == "" {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidInput
	}
	role, err := c.loadRole(ctx, cmd.RoleID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}

	return c.withRole(ctx, "resign", role.RoleID, func(ctx context.Context, session *roleSession) error {
		removed, err := session.tx.RemoveHolder(ctx, userID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		session.touch(userID)
		session.exclude(userID)
		if _, err := session.tx.WithdrawCandidacy(ctx, userID); err != nil {
			return err
		}
		return c.emit(ctx, session, contractsv1.EventHolderResigned, map[string]any{
			"role_id":  session.role.RoleID,
			"group_id": session.role.GroupID,
			"user_id":  userID,
		})
	})
}
