package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestObservability_SpansAndJobs(t *testing.T) {
	obs, err := New("waitlist-test", sdktrace.AlwaysSample())
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	ctx, span := obs.StartSpan(context.Background(), "compute", attribute.String("hostel.id", "h1"))
	assert.True(t, span.SpanContext().IsValid())
	assert.True(t, span.IsRecording())
	span.End()

	obs.RecordJob(ctx, "compute-waitlist-ranking", "completed", 15*time.Millisecond)
}

func TestObservability_NilReceiver(t *testing.T) {
	var obs *Observability

	_, span := obs.StartSpan(context.Background(), "noop")
	span.End()

	obs.RecordJob(context.Background(), "t", "failed", time.Second)
	assert.NoError(t, obs.Shutdown(context.Background()))
}
