package commands

import (
	"context"
	"strings"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/ports"
)

// TrustLedger keeps one live expression per (role, trustor, trustee). It
// works only through the caller's role transaction and takes no locks.
type TrustLedger struct{}

// Put replaces the expression for the triple. changed is false when the
// stored weight already matches, in which case nothing is written.
func (TrustLedger) Put(
	ctx context.Context,
	tx ports.RoleTx,
	groupID string,
	trustorID string,
	trusteeID string,
	weight int,
	now time.Time,
) (entities.TrustExpression, bool, error) {
	if !entities.ValidWeight(weight) {
		return entities.TrustExpression{}, false, domainerrors.ErrInvalidWeight
	}
	trustorID = strings.TrimSpace(trustorID)
	trusteeID = strings.TrimSpace(trusteeID)
	if trustorID == trusteeID {
		return entities.TrustExpression{}, false, domainerrors.ErrSelfTrust
	}

	role, err := tx.Role(ctx)
	if err != nil {
		return entities.TrustExpression{}, false, err
	}
	existing, found, err := tx.GetExpression(ctx, trustorID, trusteeID)
	if err != nil {
		return entities.TrustExpression{}, false, err
	}
	if found && existing.Weight == weight {
		return existing, false, nil
	}

	expression := entities.TrustExpression{
		GroupID:   groupID,
		RoleID:    role.RoleID,
		TrustorID: trustorID,
		TrusteeID: trusteeID,
		Weight:    weight,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if found {
		expression.CreatedAt = existing.CreatedAt
	}
	if err := tx.PutExpression(ctx, expression); err != nil {
		return entities.TrustExpression{}, false, err
	}
	return expression, true, nil
}

// Remove deletes the expression for the triple. A missing row is not an error.
func (TrustLedger) Remove(ctx context.Context, tx ports.RoleTx, trustorID string, trusteeID string) (bool, error) {
	return tx.RemoveExpression(ctx, strings.TrimSpace(trustorID), strings.TrimSpace(trusteeID))
}

func (TrustLedger) ListForRole(ctx context.Context, tx ports.RoleTx) ([]entities.TrustExpression, error) {
	return tx.ListExpressions(ctx)
}
