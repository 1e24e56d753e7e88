package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type DeclareCandidacyCommand struct {
	RoleID string
	UserID string
}

// DeclareCandidacy records a self-declaration. Declaring at capacity is
// accepted; the outcome reports RoleFull so the caller knows the candidate
// is queued for the next vacancy.
func (c RoleActivationCoordinator) DeclareCandidacy(ctx context.Context, cmd DeclareCandidacyCommand) (entities.RoleOutcome, error) {
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
	if _, err := c.requireMember(ctx, role.GroupID, userID); err != nil {
		return entities.RoleOutcome{}, err
	}

	return c.withRole(ctx, "declare_candidacy", role.RoleID, func(ctx context.Context, session *roleSession) error {
		if !session.role.TrustActivated() {
			return domainerrors.ErrRoleNotTrustActivated
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
		session.roleFull = len(holders) >= session.role.Capacity

		created, err := session.tx.DeclareCandidacy(ctx, entities.Candidacy{
			RoleID:     session.role.RoleID,
			UserID:     userID,
			DeclaredAt: session.now,
		})
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		return c.emit(ctx, session, contractsv1.EventCandidacyDeclared, map[string]any{
			"role_id":   session.role.RoleID,
			"group_id":  session.role.GroupID,
			"user_id":   userID,
			"role_full": session.roleFull,
		})
	})
}
