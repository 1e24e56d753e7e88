package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type RetractTrustCommand struct {
	RoleID    string
	TrustorID string
	TrusteeID string
}

// RetractTrust removes the trustor's expression and re-evaluates. Retracting
// an absent expression succeeds.
func (c RoleActivationCoordinator) RetractTrust(ctx context.Context, cmd RetractTrustCommand) (entities.RoleOutcome, error) {
	trustorID := strings.TrimSpace(cmd.TrustorID)
	trusteeID := strings.TrimSpace(cmd.TrusteeID)
	if trustorID == "" || trusteeID == "" {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidInput
	}
	if trustorID == trusteeID {
		return entities.RoleOutcome{}, domainerrors.ErrSelfTrust
	}
	role, err := c.loadRole(ctx, cmd.RoleID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	if !role.TrustActivated() {
		return entities.RoleOutcome{}, domainerrors.ErrRoleNotTrustActivated
	}

	return c.withRole(ctx, "retract_trust", role.RoleID, func(ctx context.Context, session *roleSession) error {
		removed, err := c.Ledger.Remove(ctx, session.tx, trustorID, trusteeID)
		if err != nil {
			return err
		}
		if !removed {
			return nil
		}
		return c.emit(ctx, session, contractsv1.EventTrustRetracted, map[string]any{
			"role_id":    session.role.RoleID,
			"group_id":   session.role.GroupID,
			"trustor_id": trustorID,
			"trustee_id": trusteeID,
		})
	})
}
