package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"hostelverse-workers/internal/waitlist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWaitlist(t *testing.T) {
	cause := stderrors.New("connection reset")

	tests := []struct {
		name      string
		err       error
		code      ErrorCode
		retryable bool
	}{
		{
			name:      "wishlist failure",
			err:       &waitlist.CollaboratorError{Collaborator: waitlist.CollaboratorWishlist, HostelID: "h1", Err: cause},
			code:      ErrCodeWishlistLookupFailed,
			retryable: true,
		},
		{
			name:      "profile failure",
			err:       &waitlist.CollaboratorError{Collaborator: waitlist.CollaboratorProfile, HostelID: "h1", UserID: "u1", Err: cause},
			code:      ErrCodeProfileLookupFailed,
			retryable: true,
		},
		{
			name: "permission denied",
			err: &waitlist.CollaboratorError{
				Collaborator: waitlist.CollaboratorProfile,
				Err:          fmt.Errorf("%w: insufficient_privilege", waitlist.ErrPermissionDenied),
			},
			code: ErrCodeWaitlistAccessDenied,
		},
		{
			name:      "deadline",
			err:       fmt.Errorf("lookup: %w", context.DeadlineExceeded),
			code:      ErrCodeQueryTimeout,
			retryable: true,
		},
		{
			name: "not waitlisted",
			err:  fmt.Errorf("%w: user u1", waitlist.ErrNotWaitlisted),
			code: ErrCodeNotWaitlisted,
		},
		{
			name: "profile missing",
			err:  waitlist.ErrProfileNotFound,
			code: ErrCodeProfileNotFound,
		},
		{
			name: "empty hostel",
			err:  waitlist.ErrEmptyHostelID,
			code: ErrCodeInvalidInput,
		},
		{
			name: "unknown",
			err:  cause,
			code: ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdErr := FromWaitlist(tt.err, "h1", "u1")
			require.NotNil(t, stdErr)
			assert.Equal(t, tt.code, stdErr.Code)
			assert.Equal(t, tt.retryable, stdErr.Retryable)
		})
	}
}

func TestFromWaitlist_PassesThroughStandardError(t *testing.T) {
	original := NewInvalidInputError("hostelId is required")
	assert.Same(t, original, FromWaitlist(fmt.Errorf("wrapped: %w", original), "", ""))
}

func TestConvertToBPMNError(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewWishlistLookupFailedError("h1", stderrors.New("boom")))

	assert.Equal(t, "WISHLIST_LOOKUP_FAILED", bpmnErr.Code)
	assert.True(t, bpmnErr.Retryable)
	assert.Equal(t, 3, bpmnErr.Retries)

	vars := bpmnErr.ToErrorVariables()
	assert.Equal(t, "WISHLIST_LOOKUP_FAILED", vars["errorCode"])
	assert.Equal(t, "WISHLIST_LOOKUP_FAILED", vars["originalErrorCode"])
	assert.Equal(t, "h1", vars["hostelId"])
	assert.Equal(t, "boom", vars["errorDetails"])
}

func TestConvertToBPMNError_BusinessErrorsNotRetried(t *testing.T) {
	bpmnErr := ConvertToBPMNError(NewNotWaitlistedError("h1", "u1"))
	assert.False(t, bpmnErr.Retryable)
	assert.Zero(t, bpmnErr.Retries)
}

func TestRetriesFor(t *testing.T) {
	retryable := &BPMNError{Retries: 3}

	assert.Equal(t, 2, RetriesFor(retryable, 3, 0))
	assert.Equal(t, 1, RetriesFor(retryable, 5, 2))
	assert.Equal(t, 0, RetriesFor(retryable, 1, 0))
	assert.Equal(t, 0, RetriesFor(retryable, 0, 0))
	assert.Equal(t, 0, RetriesFor(&BPMNError{Retries: 0}, 3, 0))
}

func TestNormalize(t *testing.T) {
	stdErr := Normalize(stderrors.New("plain"))
	assert.Equal(t, ErrCodeInternal, stdErr.Code)
	assert.Equal(t, "plain", stdErr.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeProfileLookupFailed))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "AUTHORIZATION", GetErrorCategory(ErrCodeWaitlistAccessDenied))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidInput))
	assert.Equal(t, "BUSINESS", GetErrorCategory(ErrCodeNotWaitlisted))
	assert.True(t, IsRetryableErrorCode(ErrCodeWishlistLookupFailed))
	assert.False(t, IsRetryableErrorCode(ErrCodeProfileNotFound))
}
