// internal/waitlist/rank_test.go
package waitlist

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(userID string, total float64) ScoredApplicant {
	return ScoredApplicant{UserID: userID, Breakdown: ScoreBreakdown{Total: total}}
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	ranking := Rank([]ScoredApplicant{
		scored("u1", 40),
		scored("u2", 75.5),
		scored("u3", 60),
	})

	require.Len(t, ranking, 3)
	assert.Equal(t, "u2", ranking[0].UserID)
	assert.Equal(t, "u3", ranking[1].UserID)
	assert.Equal(t, "u1", ranking[2].UserID)

	for i, entry := range ranking {
		assert.Equal(t, i+1, entry.Rank)
		assert.Equal(t, entry.ScoreBreakdown.Total, entry.Score)
	}
}

func TestRank_TiesBreakByUserID(t *testing.T) {
	ranking := Rank([]ScoredApplicant{
		scored("user-c", 50),
		scored("user-a", 50),
		scored("user-b", 50),
	})

	require.Len(t, ranking, 3)
	assert.Equal(t, []string{"user-a", "user-b", "user-c"}, userIDs(ranking))
	assert.Equal(t, []int{1, 2, 3}, ranks(ranking))
}

func TestRank_DeterministicAcrossInputOrder(t *testing.T) {
	input := []ScoredApplicant{
		scored("b", 30), scored("a", 30), scored("c", 90), scored("d", 10),
	}
	reversed := make([]ScoredApplicant, len(input))
	for i := range input {
		reversed[len(input)-1-i] = input[i]
	}

	assert.Equal(t, Rank(input), Rank(reversed))
}

func TestRank_DoesNotReorderInput(t *testing.T) {
	input := []ScoredApplicant{scored("u1", 10), scored("u2", 20)}

	Rank(input)

	assert.Equal(t, "u1", input[0].UserID)
	assert.Equal(t, "u2", input[1].UserID)
}

func TestRank_Empty(t *testing.T) {
	ranking := Rank(nil)
	assert.NotNil(t, ranking)
	assert.Empty(t, ranking)
}

func TestRank_RandomProfilesHoldOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	categories := []string{"general", "OBC", "sc", "ST", "pc", "", "other"}

	input := make([]ScoredApplicant, 0, 200)
	for i := 0; i < 200; i++ {
		p := ApplicantProfile{
			UserID:       fmt.Sprintf("user-%03d", i),
			AnnualIncome: Float(float64(rng.Intn(3000000))),
			Category:     String(categories[rng.Intn(len(categories))]),
			DistanceKm:   Float(rng.Float64() * 60),
			Score10th:    Float(rng.Float64() * 100),
			Score12th:    Float(rng.Float64() * 100),
		}
		input = append(input, ScoredApplicant{UserID: p.UserID, Breakdown: CalculateScore(p)})
	}

	ranking := Rank(input)
	require.Len(t, ranking, len(input))

	seen := make(map[string]bool, len(ranking))
	for i, entry := range ranking {
		assert.Equal(t, i+1, entry.Rank)
		assert.False(t, seen[entry.UserID], "duplicate user %s", entry.UserID)
		seen[entry.UserID] = true

		assert.GreaterOrEqual(t, entry.Score, 0.0)
		assert.LessOrEqual(t, entry.Score, 100.0)

		if i == 0 {
			continue
		}
		prev := ranking[i-1]
		assert.GreaterOrEqual(t, prev.Score, entry.Score)
		if prev.Score == entry.Score {
			assert.Less(t, prev.UserID, entry.UserID)
		}
	}
}

func TestRanking_Find(t *testing.T) {
	ranking := Rank([]ScoredApplicant{scored("u1", 10), scored("u2", 20)})

	entry, ok := ranking.Find("u1")
	require.True(t, ok)
	assert.Equal(t, 2, entry.Rank)

	_, ok = ranking.Find("missing")
	assert.False(t, ok)
}

func userIDs(r Ranking) []string {
	out := make([]string, len(r))
	for i, e := range r {
		out[i] = e.UserID
	}
	return out
}

func ranks(r Ranking) []int {
	out := make([]int, len(r))
	for i, e := range r {
		out[i] = e.Rank
	}
	return out
}
