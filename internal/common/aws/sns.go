// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"hostelverse-workers/internal/waitlist"
)

const RankingComputedEvent = "waitlist.ranking.computed"

// SNSPublisher is the subset of *sns.Client used here.
type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func NewSNSClient(ctx context.Context, region string) (*sns.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return sns.NewFromConfig(cfg), nil
}

// RankingComputed is the notification body. It carries ranks only; full
// breakdowns stay with the snapshot store.
type RankingComputed struct {
	Event          string          `json:"event"`
	RankingID      string          `json:"rankingId"`
	HostelID       string          `json:"hostelId"`
	ComputedAt     time.Time       `json:"computedAt"`
	ApplicantCount int             `json:"applicantCount"`
	Ranks          []ApplicantRank `json:"ranks"`
}

type ApplicantRank struct {
	UserID string  `json:"userId"`
	Rank   int     `json:"rank"`
	Score  float64 `json:"score"`
}

// RankingNotifier publishes a RankingComputed event per snapshot so
// applicants can be told about rank changes.
type RankingNotifier struct {
	client   SNSPublisher
	topicARN string
}

func NewRankingNotifier(client SNSPublisher, topicARN string) *RankingNotifier {
	return &RankingNotifier{client: client, topicARN: topicARN}
}

// Publish implements waitlist.Sink.
func (n *RankingNotifier) Publish(ctx context.Context, snapshot waitlist.Snapshot) error {
	event := RankingComputed{
		Event:          RankingComputedEvent,
		RankingID:      snapshot.RankingID,
		HostelID:       snapshot.HostelID,
		ComputedAt:     snapshot.ComputedAt,
		ApplicantCount: snapshot.ApplicantCount,
		Ranks:          make([]ApplicantRank, 0, len(snapshot.Applicants)),
	}
	for _, a := range snapshot.Applicants {
		event.Ranks = append(event.Ranks, ApplicantRank{UserID: a.UserID, Rank: a.Rank, Score: a.Score})
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", RankingComputedEvent, err)
	}

	_, err = n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(n.topicARN),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(RankingComputedEvent),
			},
			"hostelId": {
				DataType:    awssdk.String("String"),
				StringValue: awssdk.String(snapshot.HostelID),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", RankingComputedEvent, err)
	}
	return nil
}
