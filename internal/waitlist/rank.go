// internal/waitlist/rank.go
package waitlist

import "sort"

// ScoredApplicant pairs an applicant with their computed breakdown.
type ScoredApplicant struct {
	UserID    string
	Breakdown ScoreBreakdown
}

// RankedApplicant is one entry of a waitlist ranking.
type RankedApplicant struct {
	UserID         string         `json:"userId"`
	Rank           int            `json:"rank"`
	Score          float64        `json:"score"`
	ScoreBreakdown ScoreBreakdown `json:"scoreBreakdown"`
}

// Ranking is ordered ascending by rank.
type Ranking []RankedApplicant

// Rank orders applicants by total score, highest first, breaking ties by
// ascending user id, and assigns contiguous 1-based ranks.
func Rank(scored []ScoredApplicant) Ranking {
	sorted := make([]ScoredApplicant, len(scored))
	copy(sorted, scored)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Breakdown.Total != sorted[j].Breakdown.Total {
			return sorted[i].Breakdown.Total > sorted[j].Breakdown.Total
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	ranking := make(Ranking, len(sorted))
	for i, s := range sorted {
		ranking[i] = RankedApplicant{
			UserID:         s.UserID,
			Rank:           i + 1,
			Score:          s.Breakdown.Total,
			ScoreBreakdown: s.Breakdown,
		}
	}
	return ranking
}

// Find returns the entry for userID, if ranked.
func (r Ranking) Find(userID string) (RankedApplicant, bool) {
	for _, entry := range r {
		if entry.UserID == userID {
			return entry, true
		}
	}
	return RankedApplicant{}, false
}
