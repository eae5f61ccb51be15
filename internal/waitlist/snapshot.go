// internal/waitlist/snapshot.go
package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot is a derived, point-in-time copy of a ranking handed to sinks.
type Snapshot struct {
	RankingID      string    `json:"rankingId"`
	HostelID       string    `json:"hostelId"`
	ComputedAt     time.Time `json:"computedAt"`
	ApplicantCount int       `json:"applicantCount"`
	Applicants     Ranking   `json:"applicants"`
}

func NewSnapshot(hostelID string, ranking Ranking) Snapshot {
	if ranking == nil {
		ranking = Ranking{}
	}
	return Snapshot{
		RankingID:      uuid.NewString(),
		HostelID:       hostelID,
		ComputedAt:     time.Now().UTC(),
		ApplicantCount: len(ranking),
		Applicants:     ranking,
	}
}
