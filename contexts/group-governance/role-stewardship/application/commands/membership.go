package commands

import (
	"context"
	"strings"
	"time"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
)

type AddMemberCommand struct {
	GroupID  string
	ActorID  string
	UserID   string
	IsAdmin  bool
	JoinedAt time.Time
}

type RemoveMemberCommand struct {
	GroupID string
	ActorID string
	UserID  string
}

// AddMember records a member in the local directory. Only group admins may
// add members; a zero JoinedAt means the member joins now. Adding an existing
// member updates the admin flag and join time.
func (c RoleActivationCoordinator) AddMember(ctx context.Context, cmd AddMemberCommand) (entities.Membership, error) {
	groupID := strings.TrimSpace(cmd.GroupID)
	userID := strings.TrimSpace(cmd.UserID)
	if groupID == "" || userID == "" {
		return entities.Membership{}, domainerrors.ErrInvalidInput
	}
	if c.Projection == nil {
		return entities.Membership{}, domainerrors.ErrForbidden
	}
	if _, err := c.Repository.GetGroup(ctx, groupID); err != nil {
		return entities.Membership{}, err
	}
	if err := c.requireAdmin(ctx, groupID, strings.TrimSpace(cmd.ActorID)); err != nil {
		return entities.Membership{}, err
	}

	now := c.now()
	joinedAt := cmd.JoinedAt.UTC()
	if cmd.JoinedAt.IsZero() {
		joinedAt = now
	}
	if joinedAt.After(now) {
		return entities.Membership{}, domainerrors.ErrInvalidInput
	}
	membership := entities.Membership{
		GroupID:  groupID,
		UserID:   userID,
		JoinedAt: joinedAt,
		IsAdmin:  cmd.IsAdmin,
	}
	if err := c.Projection.UpsertMembership(ctx, membership); err != nil {
		return entities.Membership{}, err
	}
	c.invalidate(ctx, groupID, map[string]struct{}{userID: {}})
	c.logger().Info("member added",
		"event", "stewardship_member_added",
		"module", moduleName,
		"layer", "application",
		"group_id", groupID,
		"user_id", userID,
		"is_admin", membership.IsAdmin,
	)
	return membership, nil
}

// RemoveMember drops a member from the local directory. Admins may remove
// anyone; members may remove themselves. Removing an absent member succeeds.
func (c RoleActivationCoordinator) RemoveMember(ctx context.Context, cmd RemoveMemberCommand) error {
	groupID := strings.TrimSpace(cmd.GroupID)
	userID := strings.TrimSpace(cmd.UserID)
	actorID := strings.TrimSpace(cmd.ActorID)
	if groupID == "" || userID == "" {
		return domainerrors.ErrInvalidInput
	}
	if c.Projection == nil {
		return domainerrors.ErrForbidden
	}
	if actorID != userID {
		if err := c.requireAdmin(ctx, groupID, actorID); err != nil {
			return err
		}
	}
	if err := c.Projection.DeleteMembership(ctx, groupID, userID); err != nil {
		return err
	}
	c.invalidate(ctx, groupID, map[string]struct{}{userID: {}})
	c.logger().Info("member removed",
		"event", "stewardship_member_removed",
		"module", moduleName,
		"layer", "application",
		"group_id", groupID,
		"user_id", userID,
	)
	return nil
}
