// internal/waitlist/profile.go
package waitlist

import (
	"math"
	"strings"
)

// ApplicantProfile is a read-only snapshot of the scoring inputs for one applicant.
// A nil field means the value was never supplied.
type ApplicantProfile struct {
	UserID       string   `json:"userId"`
	AnnualIncome *float64 `json:"annualIncome,omitempty"`
	Category     *string  `json:"category,omitempty"`
	DistanceKm   *float64 `json:"distanceKm,omitempty"`
	Score10th    *float64 `json:"score10th,omitempty"`
	Score12th    *float64 `json:"score12th,omitempty"`
}

// Float returns a pointer to v, for building profiles in code.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// valueOr unwraps an optional number. NaN counts as absent.
func valueOr(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return def
	}
	return *v
}

// Category is the reservation class used for priority scoring.
type Category int

const (
	CategoryGeneral Category = iota
	CategoryOBC
	CategorySC
	CategoryST
	CategoryPhysicallyChallenged
)

var categoryAliases = map[string]Category{
	"general":               CategoryGeneral,
	"obc":                   CategoryOBC,
	"sc":                    CategorySC,
	"st":                    CategoryST,
	"sc/st":                 CategorySC,
	"pc":                    CategoryPhysicallyChallenged,
	"physically challenged": CategoryPhysicallyChallenged,
}

// ParseCategory maps free-form input onto a Category. Matching ignores case and
// surrounding whitespace; anything unrecognised is General.
func ParseCategory(raw string) Category {
	if c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return CategoryGeneral
}

// Points returns the category sub-score.
func (c Category) Points() float64 {
	switch c {
	case CategoryPhysicallyChallenged:
		return 25
	case CategorySC, CategoryST:
		return 20
	case CategoryOBC:
		return 15
	default:
		return 10
	}
}

func (c Category) String() string {
	switch c {
	case CategoryOBC:
		return "obc"
	case CategorySC:
		return "sc"
	case CategoryST:
		return "st"
	case CategoryPhysicallyChallenged:
		return "physically challenged"
	default:
		return "general"
	}
}

// CategoryOf returns the parsed category of the profile, General when absent.
func (p ApplicantProfile) CategoryOf() Category {
	if p.Category == nil {
		return CategoryGeneral
	}
	return ParseCategory(*p.Category)
}
