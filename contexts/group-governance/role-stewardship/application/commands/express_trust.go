package commands

import (
	"context"
	"strings"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

type ExpressTrustCommand struct {
	RoleID    string
	TrustorID string
	TrusteeID string
	Weight    int
}

// ExpressTrust upserts the trustor's weight for a candidate and re-evaluates
// the role. Repeating the same weight changes nothing.
func (c RoleActivationCoordinator) ExpressTrust(ctx context.Context, cmd ExpressTrustCommand) (entities.RoleOutcome, error) {
	trustorID := strings.TrimSpace(cmd.TrustorID)
	trusteeID := strings.TrimSpace(cmd.TrusteeID)
	if trustorID == "" || trusteeID == "" {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidInput
	}
	if !entities.ValidWeight(cmd.Weight) {
		return entities.RoleOutcome{}, domainerrors.ErrInvalidWeight
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
	group, err := c.Repository.GetGroup(ctx, role.GroupID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	trustor, err := c.requireMember(ctx, role.GroupID, trustorID)
	if err != nil {
		return entities.RoleOutcome{}, err
	}
	if _, err := c.requireMember(ctx, role.GroupID, trusteeID); err != nil {
		return entities.RoleOutcome{}, err
	}
	if minAge := group.Settings.MinMemberAgeDays; minAge > 0 {
		if c.now().Sub(trustor.JoinedAt) < time.Duration(minAge)*24*time.Hour {
			return entities.RoleOutcome{}, domainerrors.ErrMembershipTooRecent
		}
	}

	return c.withRole(ctx, "express_trust", role.RoleID, func(ctx context.Context, session *roleSession) error {
		if !session.role.TrustActivated() {
			return domainerrors.ErrRoleNotTrustActivated
		}
		existing, found, err := session.tx.GetExpression(ctx, trustorID, trusteeID)
		if err != nil {
			return err
		}
		if !found {
			eligible, err := c.isCandidate(ctx, session, trusteeID)
			if err != nil {
				return err
			}
			if !eligible {
				return domainerrors.ErrNotACandidate
			}
		}
		if found && existing.Weight != cmd.Weight {
			if hours := group.Settings.TrustRateLimitHours; hours > 0 {
				if session.now.Sub(existing.UpdatedAt) < time.Duration(hours)*time.Hour {
					return domainerrors.ErrTrustRateLimited
				}
			}
		}

		expression, changed, err := c.Ledger.Put(ctx, session.tx, session.role.GroupID, trustorID, trusteeID, cmd.Weight, session.now)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return c.emit(ctx, session, contractsv1.EventTrustExpressed, map[string]any{
			"role_id":    expression.RoleID,
			"group_id":   expression.GroupID,
			"trustor_id": expression.TrustorID,
			"trustee_id": expression.TrusteeID,
			"weight":     expression.Weight,
		})
	})
}

// isCandidate accepts declared candidates, trustees already named by a live
// expression, and current holders whose support is being adjusted.
func (c RoleActivationCoordinator) isCandidate(ctx context.Context, session *roleSession, userID string) (bool, error) {
	candidacies, err := session.tx.ListCandidacies(ctx)
	if err != nil {
		return false, err
	}
	for _, candidacy := range candidacies {
		if candidacy.UserID == userID {
			return true, nil
		}
	}
	expressions, err := c.Ledger.ListForRole(ctx, session.tx)
	if err != nil {
		return false, err
	}
	for _, expression := range expressions {
		if expression.TrusteeID == userID {
			return true, nil
		}
	}
	holders, err := session.tx.ListHolders(ctx)
	if err != nil {
		return false, err
	}
	for _, holder := range holders {
		if holder.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
