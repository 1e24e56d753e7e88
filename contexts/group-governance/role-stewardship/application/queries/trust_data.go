package queries

import (
	"context"
	"sort"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
	domainerrors "stewardship/contexts/group-governance/role-stewardship/domain/errors"
	"stewardship/contexts/group-governance/role-stewardship/domain/services"
	"stewardship/contexts/group-governance/role-stewardship/ports"
)

type TrustDataQuery struct {
	RoleID   string
	ViewerID string
}

// Candidate is one trustee eligible for activation, with current support.
type Candidate struct {
	UserID          string
	Declared        bool
	NominatedBy     string
	Score           int
	ExpressionCount int
}

type TrustData struct {
	Role              entities.Role
	Holders           []entities.RoleHolder
	Candidates        []Candidate
	Expressions       []entities.TrustExpression
	ViewerExpressions []entities.TrustExpression
}

// TrustDataUseCase builds the trust panel for a role from unlocked reads.
type TrustDataUseCase struct {
	Repository ports.Repository
	Aggregator services.Aggregator
}

func (u TrustDataUseCase) Execute(ctx context.Context, query TrustDataQuery) (TrustData, error) {
	roleID := strings.TrimSpace(query.RoleID)
	if roleID == "" {
		return TrustData{}, domainerrors.ErrInvalidInput
	}
	role, err := u.Repository.GetRole(ctx, roleID)
	if err != nil {
		return TrustData{}, err
	}
	holders, err := u.Repository.ListHolders(ctx, roleID)
	if err != nil {
		return TrustData{}, err
	}
	expressions, err := u.Repository.ListExpressions(ctx, roleID)
	if err != nil {
		return TrustData{}, err
	}
	candidacies, err := u.Repository.ListCandidacies(ctx, roleID)
	if err != nil {
		return TrustData{}, err
	}

	aggregator := u.Aggregator
	if aggregator == nil {
		aggregator = services.MeanAggregator{}
	}
	scores := aggregator.Scores(expressions)

	held := make(map[string]struct{}, len(holders))
	for _, holder := range holders {
		held[holder.UserID] = struct{}{}
	}
	byUser := make(map[string]*Candidate)
	for _, score := range scores {
		if _, ok := held[score.TrusteeID]; ok {
			continue
		}
		byUser[score.TrusteeID] = &Candidate{
			UserID:          score.TrusteeID,
			Score:           score.Score,
			ExpressionCount: score.ExpressionCount,
		}
	}
	for _, candidacy := range candidacies {
		if _, ok := held[candidacy.UserID]; ok {
			continue
		}
		item, ok := byUser[candidacy.UserID]
		if !ok {
			item = &Candidate{UserID: candidacy.UserID}
			byUser[candidacy.UserID] = item
		}
		item.Declared = true
		item.NominatedBy = candidacy.NominatedBy
	}
	candidates := make([]Candidate, 0, len(byUser))
	for _, item := range byUser {
		candidates = append(candidates, *item)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].UserID < candidates[j].UserID
	})

	viewerID := strings.TrimSpace(query.ViewerID)
	var mine []entities.TrustExpression
	for _, expression := range expressions {
		if viewerID != "" && expression.TrustorID == viewerID {
			mine = append(mine, expression)
		}
	}

	return TrustData{
		Role:              role,
		Holders:           holders,
		Candidates:        candidates,
		Expressions:       expressions,
		ViewerExpressions: mine,
	}, nil
}
