package services

import (
	"time"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
)

// EvaluationInput is the locked role state a decision is computed from.
// Excluded trustees keep their scores but are neither activated nor counted
// as the leading candidate.
type EvaluationInput struct {
	Role        entities.Role
	Holders     []entities.RoleHolder
	Expressions []entities.TrustExpression
	Excluded    map[string]struct{}
	Now         time.Time
}

// Evaluation is the decided next state for a role.
type Evaluation struct {
	Status           entities.RoleStatus
	ThresholdCurrent int
	Holders          []entities.RoleHolder
	Activated        []entities.RoleHolder
	Revoked          []entities.RoleHolder
	Scores           []entities.CandidateScore
}

func (e Evaluation) Changed(role entities.Role) bool {
	return len(e.Activated) > 0 ||
		len(e.Revoked) > 0 ||
		e.Status != role.Status ||
		e.ThresholdCurrent != role.ThresholdCurrent
}

// RoleStateMachine decides activations and revocations. It performs no I/O.
type RoleStateMachine struct {
	Aggregator Aggregator
}

func (m RoleStateMachine) Evaluate(input EvaluationInput) Evaluation {
	role := input.Role
	if !role.TrustActivated() {
		status := entities.RoleStatusVacant
		if len(input.Holders) > 0 {
			status = entities.RoleStatusActive
		}
		return Evaluation{
			Status:           status,
			ThresholdCurrent: role.ThresholdCurrent,
			Holders:          append([]entities.RoleHolder(nil), input.Holders...),
		}
	}

	aggregator := m.Aggregator
	if aggregator == nil {
		aggregator = MeanAggregator{}
	}
	scores := aggregator.Scores(input.Expressions)

	result := Evaluation{Scores: scores}
	skip := make(map[string]struct{}, len(input.Holders)+len(input.Excluded))
	for userID := range input.Excluded {
		skip[userID] = struct{}{}
	}
	for _, holder := range input.Holders {
		if shouldRevoke(holder, scores, role.ThresholdRequired) {
			result.Revoked = append(result.Revoked, holder)
			continue
		}
		result.Holders = append(result.Holders, holder)
		skip[holder.UserID] = struct{}{}
	}

	capacity := role.Capacity
	if capacity < 1 {
		capacity = 1
	}
	for len(result.Holders) < capacity {
		leader, ok := Leading(scores, skip)
		if !ok || leader.Score < role.ThresholdRequired {
			break
		}
		holder := entities.RoleHolder{
			RoleID:     role.RoleID,
			UserID:     leader.TrusteeID,
			GrantedAt:  input.Now.UTC(),
			GrantedVia: entities.GrantedViaTrust,
		}
		result.Holders = append(result.Holders, holder)
		result.Activated = append(result.Activated, holder)
		skip[leader.TrusteeID] = struct{}{}
	}

	switch {
	case len(result.Holders) > 0:
		result.Status = entities.RoleStatusActive
	case len(input.Expressions) > 0:
		result.Status = entities.RoleStatusPending
	default:
		result.Status = entities.RoleStatusVacant
	}
	if leader, ok := Leading(scores, skip); ok {
		result.ThresholdCurrent = leader.Score
	}
	return result
}

// shouldRevoke applies the hysteresis band: a holder keeps the role until the
// score drops to half the required threshold or lower.
func shouldRevoke(holder entities.RoleHolder, scores []entities.CandidateScore, thresholdRequired int) bool {
	score, tracked := ScoreOf(scores, holder.UserID)
	switch holder.GrantedVia {
	case entities.GrantedViaAdmin:
		return false
	case entities.GrantedViaBootstrap:
		if !tracked {
			return false
		}
	}
	return score.Score*2 <= thresholdRequired
}
