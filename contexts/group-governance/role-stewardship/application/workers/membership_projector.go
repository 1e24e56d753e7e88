package workers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	application "stewardship/contexts/group-governance/role-stewardship/application"
	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/ports"
	contractsv1 "stewardship/contracts/gen/events/v1"
)

const membershipConsumerGroup = "role-stewardship-membership"

// MembershipProjector folds upstream member and responsibility events into
// the local read models the coordinator and CapabilityView consult.
type MembershipProjector struct {
	Subscriber ports.EventSubscriber
	Projection ports.MembershipProjection
	Cache      ports.CapabilityCache
	Logger     *slog.Logger
}

// Start registers one subscription per upstream topic. Handlers run until ctx ends.
func (p MembershipProjector) Start(ctx context.Context) error {
	for _, topic := range []string{
		contractsv1.EventMemberJoined,
		contractsv1.EventMemberLeft,
		contractsv1.EventExternalResponsibilitiesChanged,
	} {
		if err := p.Subscriber.Subscribe(ctx, topic, membershipConsumerGroup, p.Handle); err != nil {
			return err
		}
	}
	application.ResolveLogger(p.Logger).Info("membership projector started",
		"event", "stewardship_membership_projector_started",
		"module", moduleName,
		"layer", "worker",
		"consumer_group", membershipConsumerGroup,
	)
	return nil
}

func (p MembershipProjector) Handle(ctx context.Context, event ports.EventEnvelope) error {
	var (
		groupID string
		userID  string
		err     error
	)
	switch event.EventType {
	case contractsv1.EventMemberJoined, contractsv1.EventMemberLeft:
		var data contractsv1.MemberEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		groupID, userID = strings.TrimSpace(data.GroupID), strings.TrimSpace(data.UserID)
		if groupID == "" || userID == "" {
			return domainerrors.ErrInvalidInput
		}
		if event.EventType == contractsv1.EventMemberJoined {
			joinedAt := data.JoinedAt.UTC()
			if joinedAt.IsZero() {
				joinedAt = event.OccurredAt.UTC()
			}
			err = p.Projection.UpsertMembership(ctx, entities.Membership{
				GroupID:  groupID,
				UserID:   userID,
				JoinedAt: joinedAt,
				IsAdmin:  data.IsAdmin,
			})
		} else {
			err = p.Projection.DeleteMembership(ctx, groupID, userID)
		}
	case contractsv1.EventExternalResponsibilitiesChanged:
		var data contractsv1.ResponsibilitiesEventData
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		groupID, userID = strings.TrimSpace(data.GroupID), strings.TrimSpace(data.UserID)
		if groupID == "" || userID == "" {
			return domainerrors.ErrInvalidInput
		}
		err = p.Projection.ReplaceExternalResponsibilities(ctx, userID, groupID, data.Responsibilities)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	if p.Cache != nil {
		_ = p.Cache.Invalidate(ctx, userID, groupID)
	}
	application.ResolveLogger(p.Logger).Debug("membership projection applied",
		"event", "stewardship_membership_projected",
		"module", moduleName,
		"layer", "worker",
		"event_type", event.EventType,
		"event_id", event.EventID,
		"group_id", groupID,
		"user_id", userID,
	)
	return nil
}
