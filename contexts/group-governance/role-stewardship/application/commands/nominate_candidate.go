package commands

import (
	"context"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type NominateCandidateCommand struct {
	RoleID      string
	NominatorID string
	NomineeID   string
}

// NominateCandidate puts another member forward for a role. The nominee
// becomes a candidate exactly as if they had declared; nominating someone who
// is already a candidate changes nothing.
func (c RoleActivationCoordinator) NominateCandidate(ctx context.Context, cmd NominateCandidateCommand) (entities.RoleOutcome, error) {
	nominatorID := strings.TrimSpace(cmd.NominatorID)
	nomineeID := strings.TrimSpace(cmd.NomineeID)
	if nominatorID == "" || nomineeID == "" || nominatorID == nomineeID {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidInput
	}
	role, err := c.loadRole(ctx, cmd.RoleID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	if !role.TrustActivated() {
		return entities.RoleOutcome{}, domainerrors.ErrRoleNotTrustActivated
	}
	if _, err := c.requireMember(ctx, role.GroupID, nominatorID); err != nil {
		return entities.RoleOutcome{}, err
	}
	if _, err := c.requireMember(ctx, role.GroupID, nomineeID); err != nil {
		return entities.RoleOutcome{}, err
	}

	return c.withRole(ctx, "nominate_candidate", role.RoleID, func(ctx context.Context, session *roleSession) error {
		if !session.role.TrustActivated() {
			return domainerrors.ErrRoleNotTrustActivated
		}
		holders, err := session.tx.ListHolders(ctx)
		if err != nil {
			return err
		}
		for _, holder := range holders {
			if holder.UserID == nomineeID {
				return domainerrors.ErrAlreadyHolder
			}
		}
		session.roleFull = len(holders) >= session.role.Capacity

		created, err := session.tx.DeclareCandidacy(ctx, entities.Candidacy{
			RoleID:      session.role.RoleID,
			UserID:      nomineeID,
			NominatedBy: nominatorID,
			DeclaredAt:  session.now,
		})
		if err != nil || !created {
			return err
		}
		return c.emit(ctx, session, contractsv1.EventCandidacyNominated, map[string]any{
			"role_id":      session.role.RoleID,
			"group_id":     session.role.GroupID,
			"user_id":      nomineeID,
			"nominator_id": nominatorID,
			"role_full":    session.roleFull,
		})
	})
}
