// internal/waitlist/score.go
package waitlist

import (
	"math"
	"math/big"
)

const (
	MaxDistancePoints = 25.0
	MaxDistanceKm     = 25.0
	MaxAcademicPoints = 20.0
)

// incomeTiers are inclusive upper bounds, evaluated top-down.
var incomeTiers = []struct {
	upTo   float64
	points float64
}{
	{400000, 30},
	{800000, 25},
	{1200000, 20},
	{1600000, 15},
	{2000000, 10},
	{2400000, 5},
}

// ScoreBreakdown is the four-part decomposition of an applicant's priority score.
type ScoreBreakdown struct {
	Income    float64 `json:"income"`
	Category  float64 `json:"category"`
	Distance  float64 `json:"distance"`
	Academics float64 `json:"academics"`
	Total     float64 `json:"total"`
}

// CalculateScore computes the priority score for a single profile. It never fails:
// missing inputs count as zero and a missing category as General.
//
// Distance and academics are stored rounded to two decimals, while Total is
// rounded once from the unrounded components.
func CalculateScore(p ApplicantProfile) ScoreBreakdown {
	income := IncomePoints(valueOr(p.AnnualIncome, 0))
	category := p.CategoryOf().Points()
	distance := distancePoints(valueOr(p.DistanceKm, 0))
	academics := academicPoints(valueOr(p.Score10th, 0), valueOr(p.Score12th, 0))

	return ScoreBreakdown{
		Income:    income,
		Category:  category,
		Distance:  Round2(distance),
		Academics: Round2(academics),
		Total:     Round2(income + category + distance + academics),
	}
}

// IncomePoints looks up the tier for an annual income.
func IncomePoints(income float64) float64 {
	for _, tier := range incomeTiers {
		if income <= tier.upTo {
			return tier.points
		}
	}
	return 0
}

func distancePoints(km float64) float64 {
	effective := math.Max(0, math.Min(km, MaxDistanceKm))
	return (effective / MaxDistanceKm) * MaxDistancePoints
}

func academicPoints(score10th, score12th float64) float64 {
	average := math.Max(0, math.Min((score10th+score12th)/2, 100))
	return (average / 100) * MaxAcademicPoints
}

var (
	hundred = big.NewRat(100, 1)
	half    = big.NewRat(1, 2)
)

// Round2 rounds to two decimal places from the exact binary value of v, with
// ties going away from zero. Scaling by 100 in float64 first would push
// values such as 0.015 (stored just below the half) across the tie.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	if v < 0 {
		return -Round2(-v)
	}

	r := new(big.Rat).SetFloat64(v)
	r.Mul(r, hundred)
	r.Add(r, half)
	// Denom is always positive, so Euclidean division floors.
	n := new(big.Int).Div(r.Num(), r.Denom())

	f, _ := new(big.Rat).SetFrac(n, big.NewInt(100)).Float64()
	return f
}
