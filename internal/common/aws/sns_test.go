package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostelverse-workers/internal/waitlist"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
}

func TestRankingNotifier_Publish(t *testing.T) {
	client := &fakeSNS{}
	notifier := NewRankingNotifier(client, "arn:aws:sns:ap-south-1:123456789012:waitlist")

	snapshot := waitlist.NewSnapshot("hostel-1", waitlist.Rank([]waitlist.ScoredApplicant{
		{UserID: "u2", Breakdown: waitlist.ScoreBreakdown{Total: 70}},
		{UserID: "u1", Breakdown: waitlist.ScoreBreakdown{Total: 90}},
	}))

	require.NoError(t, notifier.Publish(context.Background(), snapshot))
	require.Len(t, client.inputs, 1)

	input := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:ap-south-1:123456789012:waitlist", awssdk.ToString(input.TopicArn))
	assert.Equal(t, RankingComputedEvent, awssdk.ToString(input.MessageAttributes["event"].StringValue))
	assert.Equal(t, "hostel-1", awssdk.ToString(input.MessageAttributes["hostelId"].StringValue))

	var event RankingComputed
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(input.Message)), &event))
	assert.Equal(t, snapshot.RankingID, event.RankingID)
	assert.Equal(t, 2, event.ApplicantCount)
	assert.Equal(t, []ApplicantRank{
		{UserID: "u1", Rank: 1, Score: 90},
		{UserID: "u2", Rank: 2, Score: 70},
	}, event.Ranks)
}

func TestRankingNotifier_PublishError(t *testing.T) {
	notifier := NewRankingNotifier(&fakeSNS{err: errors.New("AuthorizationError")}, "arn")

	err := notifier.Publish(context.Background(), waitlist.NewSnapshot("hostel-1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AuthorizationError")
}

func TestRankingNotifier_EmptyRanking(t *testing.T) {
	client := &fakeSNS{}
	notifier := NewRankingNotifier(client, "arn")

	require.NoError(t, notifier.Publish(context.Background(), waitlist.NewSnapshot("hostel-1", nil)))

	var event RankingComputed
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(client.inputs[0].Message)), &event))
	assert.NotNil(t, event.Ranks)
	assert.Empty(t, event.Ranks)
}
