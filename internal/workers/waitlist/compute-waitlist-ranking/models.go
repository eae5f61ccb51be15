package computewaitlistranking

import (
	"time"

	"hostelverse-workers/internal/waitlist"
)

type Input struct {
	HostelID string `json:"hostelId"`
	Publish  bool   `json:"publish,omitempty"`
}

type Output struct {
	HostelID       string           `json:"hostelId"`
	RankingID      string           `json:"rankingId"`
	RankedUsers    waitlist.Ranking `json:"rankedUsers"`
	ApplicantCount int              `json:"applicantCount"`
	ComputedAt     time.Time        `json:"computedAt"`
}

func outputFromSnapshot(snapshot waitlist.Snapshot) *Output {
	return &Output{
		HostelID:       snapshot.HostelID,
		RankingID:      snapshot.RankingID,
		RankedUsers:    snapshot.Applicants,
		ApplicantCount: snapshot.ApplicantCount,
		ComputedAt:     snapshot.ComputedAt,
	}
}
