package lookupwaitlistposition

import "hostelverse-workers/internal/waitlist"

type Input struct {
	HostelID            string `json:"hostelId"`
	UserID              string `json:"userId"`
	FailIfNotWaitlisted bool   `json:"failIfNotWaitlisted,omitempty"`
}

// Output reports waitlisted=false with no rank when the applicant is not on
// the hostel's ranking.
type Output struct {
	HostelID       string                   `json:"hostelId"`
	UserID         string                   `json:"userId"`
	Waitlisted     bool                     `json:"waitlisted"`
	Rank           int                      `json:"rank,omitempty"`
	Score          float64                  `json:"score,omitempty"`
	ScoreBreakdown *waitlist.ScoreBreakdown `json:"scoreBreakdown,omitempty"`
	ApplicantCount int                      `json:"applicantCount"`
}
