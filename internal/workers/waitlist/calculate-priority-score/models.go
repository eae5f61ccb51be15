package calculatepriorityscore

import "hostelverse-workers/internal/waitlist"

// Input names an applicant to look up, or carries the profile inline. An
// inline profile wins when both are set.
type Input struct {
	UserID  string                     `json:"userId,omitempty"`
	Profile *waitlist.ApplicantProfile `json:"profile,omitempty"`
}

type Output struct {
	UserID         string                  `json:"userId"`
	Score          float64                 `json:"score"`
	ScoreBreakdown waitlist.ScoreBreakdown `json:"scoreBreakdown"`
}
