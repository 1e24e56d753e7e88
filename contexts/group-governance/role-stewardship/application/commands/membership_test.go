package commands

import (
	"context"
	"errors"
	"testing"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
)

func TestRegisterGroupSeedsFounderAsAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	group, err := h.coordinator.RegisterGroup(ctx, RegisterGroupCommand{
		ActorID: "founder",
		Name:    "allotment",
		Mode:    entities.GroupModeLeaderless,
	})
	if err != nil {
		t.Fatalf("register group: %v", err)
	}
	membership, ok, err := h.store.GetMembership(ctx, group.GroupID, "founder")
	if err != nil || !ok {
		t.Fatalf("expected founder membership, got ok=%v err=%v", ok, err)
	}
	if !membership.IsAdmin {
		t.Fatalf("expected founder to be admin, got %+v", membership)
	}

	// The founder can define a role straight away.
	if _, err := h.coordinator.DefineRole(ctx, DefineRoleCommand{
		GroupID:           group.GroupID,
		ActorID:           "founder",
		Name:              "secretary",
		Assignment:        entities.AssignmentTrustActivated,
		ThresholdRequired: 60,
		Capacity:          1,
	}); err != nil {
		t.Fatalf("define role as founder: %v", err)
	}

	if _, err := h.coordinator.RegisterGroup(ctx, RegisterGroupCommand{
		Name: "orphan",
		Mode: entities.GroupModeLeaderless,
	}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden without an actor, got %v", err)
	}
}

func TestAddMemberRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	groupID := h.group(t, entities.GroupModeLeaderless, entities.GroupSettings{}, "x")

	membership, err := h.coordinator.AddMember(ctx, AddMemberCommand{GroupID: groupID, ActorID: "admin", UserID: "y"})
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if membership.JoinedAt.IsZero() || membership.IsAdmin {
		t.Fatalf("expected a plain member joined now, got %+v", membership)
	}
	if _, ok, _ := h.store.GetMembership(ctx, groupID, "y"); !ok {
		t.Fatalf("expected y in the directory")
	}

	if _, err := h.coordinator.AddMember(ctx, AddMemberCommand{GroupID: groupID, ActorID: "x", UserID: "z"}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin actor, got %v", err)
	}
	if _, err := h.coordinator.AddMember(ctx, AddMemberCommand{
		GroupID: groupID, ActorID: "admin", UserID: "z", JoinedAt: h.now.AddDate(0, 0, 1),
	}); !errors.Is(err, domainerrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for a future join date, got %v", err)
	}
	if _, err := h.coordinator.AddMember(ctx, AddMemberCommand{GroupID: "missing", ActorID: "admin", UserID: "z"}); !errors.Is(err, domainerrors.ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestRemoveMemberAllowsSelfOrAdmin(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	groupID := h.group(t, entities.GroupModeLeaderless, entities.GroupSettings{}, "x", "y")

	if err := h.coordinator.RemoveMember(ctx, RemoveMemberCommand{GroupID: groupID, ActorID: "x", UserID: "y"}); !errors.Is(err, domainerrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden removing another member, got %v", err)
	}
	if err := h.coordinator.RemoveMember(ctx, RemoveMemberCommand{GroupID: groupID, ActorID: "x", UserID: "x"}); err != nil {
		t.Fatalf("self removal: %v", err)
	}
	if err := h.coordinator.RemoveMember(ctx, RemoveMemberCommand{GroupID: groupID, ActorID: "admin", UserID: "y"}); err != nil {
		t.Fatalf("admin removal: %v", err)
	}
	for _, userID := range []string{"x", "y"} {
		if _, ok, _ := h.store.GetMembership(ctx, groupID, userID); ok {
			t.Fatalf("expected %s removed", userID)
		}
	}
}
