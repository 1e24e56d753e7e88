package services

import (
	"sort"
	"strings"

	"stewardship/contexts/group-governance/role-stewardship/domain/entities"
)

const AggregationPolicyMean = "mean"

// Aggregator turns live trust expressions into per-candidate scores.
type Aggregator interface {
	Scores(expressions []entities.TrustExpression) []entities.CandidateScore
}

// NewAggregator resolves an aggregation policy name. Unknown names fall back to mean.
func NewAggregator(policy string) Aggregator {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case AggregationPolicyMean, "":
		return MeanAggregator{}
	default:
		return MeanAggregator{}
	}
}

// MeanAggregator scores a trustee as the rounded mean weight of the
// expressions naming them, on the 0..100 scale. The number of voters does
// not change the scale. ReachedAt is the earliest UpdatedAt among those
// expressions.
type MeanAggregator struct{}

func (MeanAggregator) Scores(expressions []entities.TrustExpression) []entities.CandidateScore {
	type acc struct {
		sum   int
		count int
		score entities.CandidateScore
	}
	byTrustee := make(map[string]*acc)
	for _, expression := range expressions {
		item, ok := byTrustee[expression.TrusteeID]
		if !ok {
			item = &acc{score: entities.CandidateScore{
				TrusteeID: expression.TrusteeID,
				ReachedAt: expression.UpdatedAt.UTC(),
			}}
			byTrustee[expression.TrusteeID] = item
		}
		item.sum += expression.Weight
		item.count++
		if expression.UpdatedAt.Before(item.score.ReachedAt) {
			item.score.ReachedAt = expression.UpdatedAt.UTC()
		}
	}

	scores := make([]entities.CandidateScore, 0, len(byTrustee))
	for _, item := range byTrustee {
		item.score.ExpressionCount = item.count
		item.score.Score = roundedMean(item.sum, item.count)
		scores = append(scores, item.score)
	}
	SortScores(scores)
	return scores
}

// roundedMean rounds half up; weights are never negative.
func roundedMean(sum int, count int) int {
	if count == 0 {
		return 0
	}
	return (2*sum + count) / (2 * count)
}

// SortScores orders candidates by score, then by who reached the score first,
// then by trustee id so equal ledgers always produce the same order.
func SortScores(scores []entities.CandidateScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		left, right := scores[i], scores[j]
		if left.Score != right.Score {
			return left.Score > right.Score
		}
		if !left.ReachedAt.Equal(right.ReachedAt) {
			return left.ReachedAt.Before(right.ReachedAt)
		}
		return left.TrusteeID < right.TrusteeID
	})
}

// Leading returns the best-ranked candidate not present in exclude.
func Leading(scores []entities.CandidateScore, exclude map[string]struct{}) (entities.CandidateScore, bool) {
	for _, score := range scores {
		if _, skip := exclude[score.TrusteeID]; skip {
			continue
		}
		return score, true
	}
	return entities.CandidateScore{}, false
}

// ScoreOf returns the score for one trustee and whether any expression names them.
func ScoreOf(scores []entities.CandidateScore, trusteeID string) (entities.CandidateScore, bool) {
	for _, score := range scores {
		if score.TrusteeID == trusteeID {
			return score, true
		}
	}
	return entities.CandidateScore{}, false
}
