package httpadapter

import (
	"context"
	"log/slog"

	application "stewardship/contexts/group-governance/role-stewardship/application"
	"stewardship/contexts/group-governance/role-stewardship/application/commands"
	"stewardship/contexts/group-governance/role-stewardship/application/queries"
	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	httptransport "stewardship/contexts/group-governance/role-stewardship/transport/http"
)

// Handler maps HTTP DTOs to coordinator commands and queries.
type Handler struct {
	Coordinator  commands.RoleActivationCoordinator
	Capabilities *queries.CapabilityView
	TrustData    queries.TrustDataUseCase
	Logger       *slog.Logger
}

func (h Handler) RegisterGroupHandler(
	ctx context.Context,
	actorID string,
	request httptransport.RegisterGroupRequest,
) (httptransport.GroupResponse, error) {
	group, err := h.Coordinator.RegisterGroup(ctx, commands.RegisterGroupCommand{
		GroupID: request.GroupID,
		ActorID: actorID,
		Name:    request.Name,
		Mode:    entities.GroupMode(request.Mode),
		Settings: entities.GroupSettings{
			MinMemberAgeDays:    request.MinMemberAgeDays,
			TrustRateLimitHours: request.TrustRateLimitHours,
		},
	})
	if err != nil {
		h.logFailure("register_group", err, "group_id", request.GroupID, "actor_id", actorID)
		return httptransport.GroupResponse{}, err
	}
	return httptransport.GroupResponse{
		GroupID:             group.GroupID,
		Name:                group.Name,
		Mode:                string(group.Mode),
		MinMemberAgeDays:    group.Settings.MinMemberAgeDays,
		TrustRateLimitHours: group.Settings.TrustRateLimitHours,
		CreatedAt:           group.CreatedAt,
	}, nil
}

func (h Handler) ConvertToLeaderlessHandler(
	ctx context.Context,
	groupID string,
	actorID string,
	request httptransport.ConvertToLeaderlessRequest,
) (httptransport.RoleOutcomeListResponse, error) {
	outcomes, err := h.Coordinator.ConvertToLeaderless(ctx, commands.ConvertToLeaderlessCommand{
		GroupID:           groupID,
		ActorID:           actorID,
		ThresholdRequired: request.ThresholdRequired,
	})
	if err != nil {
		h.logFailure("convert_to_leaderless", err, "group_id", groupID, "actor_id", actorID)
		return httptransport.RoleOutcomeListResponse{}, err
	}
	return toOutcomeList(outcomes), nil
}

func (h Handler) DefineRoleHandler(
	ctx context.Context,
	groupID string,
	actorID string,
	request httptransport.DefineRoleRequest,
) (httptransport.RoleResponse, error) {
	role, err := h.Coordinator.DefineRole(ctx, commands.DefineRoleCommand{
		GroupID:           groupID,
		ActorID:           actorID,
		Name:              request.Name,
		Responsibilities:  request.Responsibilities,
		Assignment:        entities.AssignmentMode(request.Assignment),
		ThresholdRequired: request.ThresholdRequired,
		Capacity:          request.Capacity,
		Bootstrap:         request.Bootstrap,
	})
	if err != nil {
		h.logFailure("define_role", err, "group_id", groupID, "actor_id", actorID)
		return httptransport.RoleResponse{}, err
	}
	return toRoleResponse(role), nil
}

func (h Handler) ConfigureRoleHandler(
	ctx context.Context,
	roleID string,
	actorID string,
	request httptransport.ConfigureRoleRequest,
) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.ConfigureRole(ctx, commands.ConfigureRoleCommand{
		RoleID:            roleID,
		ActorID:           actorID,
		ThresholdRequired: request.ThresholdRequired,
		Capacity:          request.Capacity,
	})
	if err != nil {
		h.logFailure("configure_role", err, "role_id", roleID, "actor_id", actorID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) DeclareCandidacyHandler(ctx context.Context, roleID string, userID string) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.DeclareCandidacy(ctx, commands.DeclareCandidacyCommand{
		RoleID: roleID,
		UserID: userID,
	})
	if err != nil {
		h.logFailure("declare_candidacy", err, "role_id", roleID, "user_id", userID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) NominateCandidateHandler(
	ctx context.Context,
	roleID string,
	nominatorID string,
	request httptransport.UserRequest,
) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.NominateCandidate(ctx, commands.NominateCandidateCommand{
		RoleID:      roleID,
		NominatorID: nominatorID,
		NomineeID:   request.UserID,
	})
	if err != nil {
		h.logFailure("nominate_candidate", err, "role_id", roleID, "nominator_id", nominatorID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) AddMemberHandler(
	ctx context.Context,
	groupID string,
	actorID string,
	request httptransport.AddMemberRequest,
) (httptransport.MemberResponse, error) {
	cmd := commands.AddMemberCommand{
		GroupID: groupID,
		ActorID: actorID,
		UserID:  request.UserID,
		IsAdmin: request.IsAdmin,
	}
	if request.JoinedAt != nil {
		cmd.JoinedAt = *request.JoinedAt
	}
	membership, err := h.Coordinator.AddMember(ctx, cmd)
	if err != nil {
		h.logFailure("add_member", err, "group_id", groupID, "actor_id", actorID)
		return httptransport.MemberResponse{}, err
	}
	return httptransport.MemberResponse{
		GroupID:  membership.GroupID,
		UserID:   membership.UserID,
		IsAdmin:  membership.IsAdmin,
		JoinedAt: membership.JoinedAt,
	}, nil
}

func (h Handler) RemoveMemberHandler(ctx context.Context, groupID string, actorID string, userID string) error {
	err := h.Coordinator.RemoveMember(ctx, commands.RemoveMemberCommand{
		GroupID: groupID,
		ActorID: actorID,
		UserID:  userID,
	})
	if err != nil {
		h.logFailure("remove_member", err, "group_id", groupID, "actor_id", actorID)
	}
	return err
}

func (h Handler) ExpressTrustHandler(
	ctx context.Context,
	roleID string,
	trustorID string,
	trusteeID string,
	request httptransport.ExpressTrustRequest,
) (httptransport.RoleOutcomeResponse, error) {
	if request.Weight == nil {
		return httptransport.RoleOutcomeResponse{}, domainerrors.ErrInvalidWeight
	}
	outcome, err := h.Coordinator.ExpressTrust(ctx, commands.ExpressTrustCommand{
		RoleID:    roleID,
		TrustorID: trustorID,
		TrusteeID: trusteeID,
		Weight:    *request.Weight,
	})
	if err != nil {
		h.logFailure("express_trust", err, "role_id", roleID, "trustor_id", trustorID, "trustee_id", trusteeID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) RetractTrustHandler(ctx context.Context, roleID string, trustorID string, trusteeID string) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.RetractTrust(ctx, commands.RetractTrustCommand{
		RoleID:    roleID,
		TrustorID: trustorID,
		TrusteeID: trusteeID,
	})
	if err != nil {
		h.logFailure("retract_trust", err, "role_id", roleID, "trustor_id", trustorID, "trustee_id", trusteeID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) ResignHandler(ctx context.Context, roleID string, userID string) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.Resign(ctx, commands.ResignCommand{RoleID: roleID, UserID: userID})
	if err != nil {
		h.logFailure("resign", err, "role_id", roleID, "user_id", userID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) SeedBootstrapHandler(
	ctx context.Context,
	roleID string,
	actorID string,
	request httptransport.UserRequest,
) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.SeedBootstrapHolder(ctx, commands.SeedBootstrapHolderCommand{
		RoleID:  roleID,
		ActorID: actorID,
		UserID:  request.UserID,
	})
	if err != nil {
		h.logFailure("seed_bootstrap_holder", err, "role_id", roleID, "actor_id", actorID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) AssignHolderHandler(
	ctx context.Context,
	roleID string,
	actorID string,
	request httptransport.UserRequest,
) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.AssignHolder(ctx, commands.AssignHolderCommand{
		RoleID:  roleID,
		ActorID: actorID,
		UserID:  request.UserID,
	})
	if err != nil {
		h.logFailure("assign_holder", err, "role_id", roleID, "actor_id", actorID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) UnassignHolderHandler(ctx context.Context, roleID string, actorID string, userID string) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.UnassignHolder(ctx, commands.UnassignHolderCommand{
		RoleID:  roleID,
		ActorID: actorID,
		UserID:  userID,
	})
	if err != nil {
		h.logFailure("unassign_holder", err, "role_id", roleID, "actor_id", actorID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) RecalculateRoleHandler(ctx context.Context, roleID string) (httptransport.RoleOutcomeResponse, error) {
	outcome, err := h.Coordinator.Recalculate(ctx, commands.RecalculateRoleCommand{RoleID: roleID})
	if err != nil {
		h.logFailure("recalculate_role", err, "role_id", roleID)
		return httptransport.RoleOutcomeResponse{}, err
	}
	return toOutcome(outcome), nil
}

func (h Handler) RecalculateGroupHandler(ctx context.Context, groupID string) (httptransport.RoleOutcomeListResponse, error) {
	outcomes, err := h.Coordinator.RecalculateGroup(ctx, commands.RecalculateGroupCommand{GroupID: groupID})
	if err != nil {
		h.logFailure("recalculate_group", err, "group_id", groupID)
		return httptransport.RoleOutcomeListResponse{}, err
	}
	return toOutcomeList(outcomes), nil
}

func (h Handler) ListResponsibilitiesHandler(ctx context.Context, groupID string, userID string) (httptransport.ResponsibilitiesResponse, error) {
	items, err := h.Capabilities.ListResponsibilities(ctx, userID, groupID)
	if err != nil {
		h.logFailure("list_responsibilities", err, "group_id", groupID, "user_id", userID)
		return httptransport.ResponsibilitiesResponse{}, err
	}
	if items == nil {
		items = []string{}
	}
	return httptransport.ResponsibilitiesResponse{
		UserID:           userID,
		GroupID:          groupID,
		Responsibilities: items,
	}, nil
}

func (h Handler) HasResponsibilityHandler(
	ctx context.Context,
	groupID string,
	userID string,
	responsibility string,
) (httptransport.HasResponsibilityResponse, error) {
	allowed, err := h.Capabilities.HasResponsibility(ctx, userID, groupID, responsibility)
	if err != nil {
		h.logFailure("has_responsibility", err, "group_id", groupID, "user_id", userID)
		return httptransport.HasResponsibilityResponse{}, err
	}
	return httptransport.HasResponsibilityResponse{
		UserID:         userID,
		GroupID:        groupID,
		Responsibility: responsibility,
		Allowed:        allowed,
	}, nil
}

func (h Handler) TrustDataHandler(ctx context.Context, roleID string, viewerID string) (httptransport.TrustDataResponse, error) {
	data, err := h.TrustData.Execute(ctx, queries.TrustDataQuery{RoleID: roleID, ViewerID: viewerID})
	if err != nil {
		h.logFailure("trust_data", err, "role_id", roleID)
		return httptransport.TrustDataResponse{}, err
	}
	resp := httptransport.TrustDataResponse{
		Role:               toRoleResponse(data.Role),
		Holders:            make([]httptransport.HolderDTO, 0, len(data.Holders)),
		Candidates:         make([]httptransport.CandidateDTO, 0, len(data.Candidates)),
		Expressions:        toExpressionDTOs(data.Expressions),
		MyTrustExpressions: toExpressionDTOs(data.ViewerExpressions),
	}
	for _, holder := range data.Holders {
		resp.Holders = append(resp.Holders, httptransport.HolderDTO{
			UserID:     holder.UserID,
			GrantedVia: string(holder.GrantedVia),
			GrantedAt:  holder.GrantedAt,
		})
	}
	for _, candidate := range data.Candidates {
		resp.Candidates = append(resp.Candidates, httptransport.CandidateDTO{
			UserID:          candidate.UserID,
			Declared:        candidate.Declared,
			NominatedBy:     candidate.NominatedBy,
			Score:           candidate.Score,
			ExpressionCount: candidate.ExpressionCount,
		})
	}
	return resp, nil
}

func (h Handler) logFailure(operation string, err error, attrs ...any) {
	fields := make([]any, 0, len(attrs)+10)
	fields = append(fields,
		"event", "stewardship_http_"+operation+"_failed",
		"module", "group-governance/role-stewardship",
		"layer", "transport",
		"retryable", domainerrors.IsRetryable(err),
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	application.ResolveLogger(h.Logger).Debug("http stewardship request failed", fields...)
}

func toOutcome(outcome entities.RoleOutcome) httptransport.RoleOutcomeResponse {
	holders := outcome.Holders
	if holders == nil {
		holders = []string{}
	}
	return httptransport.RoleOutcomeResponse{
		RoleID:            outcome.RoleID,
		GroupID:           outcome.GroupID,
		Status:            string(outcome.Status),
		ThresholdCurrent:  outcome.ThresholdCurrent,
		ThresholdRequired: outcome.ThresholdRequired,
		Capacity:          outcome.Capacity,
		Holders:           holders,
		RoleFull:          outcome.RoleFull,
	}
}

func toOutcomeList(outcomes []entities.RoleOutcome) httptransport.RoleOutcomeListResponse {
	items := make([]httptransport.RoleOutcomeResponse, 0, len(outcomes))
	for _, outcome := range outcomes {
		items = append(items, toOutcome(outcome))
	}
	return httptransport.RoleOutcomeListResponse{Roles: items}
}

func toRoleResponse(role entities.Role) httptransport.RoleResponse {
	responsibilities := role.Responsibilities
	if responsibilities == nil {
		responsibilities = []string{}
	}
	return httptransport.RoleResponse{
		RoleID:            role.RoleID,
		GroupID:           role.GroupID,
		Name:              role.Name,
		Responsibilities:  responsibilities,
		Assignment:        string(role.Assignment),
		Status:            string(role.Status),
		ThresholdCurrent:  role.ThresholdCurrent,
		ThresholdRequired: role.ThresholdRequired,
		Bootstrap:         role.Bootstrap,
		Capacity:          role.Capacity,
	}
}

func toExpressionDTOs(items []entities.TrustExpression) []httptransport.TrustExpressionDTO {
	out := make([]httptransport.TrustExpressionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, httptransport.TrustExpressionDTO{
			TrustorID: item.TrustorID,
			TrusteeID: item.TrusteeID,
			Weight:    item.Weight,
			UpdatedAt: item.UpdatedAt,
		})
	}
	return out
}
