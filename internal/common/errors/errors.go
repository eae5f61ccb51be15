// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"hostelverse-workers/internal/waitlist"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeWishlistLookupFailed ErrorCode = "WISHLIST_LOOKUP_FAILED"
	ErrCodeProfileLookupFailed  ErrorCode = "PROFILE_LOOKUP_FAILED"
	ErrCodeWaitlistAccessDenied ErrorCode = "WAITLIST_ACCESS_DENIED"
	ErrCodeQueryTimeout         ErrorCode = "QUERY_TIMEOUT"

	ErrCodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	ErrCodeNotWaitlisted   ErrorCode = "NOT_WAITLISTED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable validation error.
func NewInvalidInputError(details string) *StandardError {
	return newError(ErrCodeInvalidInput, "Invalid job input", details, false)
}

// NewWishlistLookupFailedError creates a retryable collaborator error.
func NewWishlistLookupFailedError(hostelID string, err error) *StandardError {
	e := newError(ErrCodeWishlistLookupFailed, "Wishlist lookup failed", err.Error(), true)
	e.Metadata = map[string]interface{}{"hostelId": hostelID}
	return e
}

// NewProfileLookupFailedError creates a retryable collaborator error.
func NewProfileLookupFailedError(userID string, err error) *StandardError {
	e := newError(ErrCodeProfileLookupFailed, "Applicant profile lookup failed", err.Error(), true)
	e.Metadata = map[string]interface{}{"userId": userID}
	return e
}

func NewWaitlistAccessDeniedError(err error) *StandardError {
	return newError(ErrCodeWaitlistAccessDenied, "Access to waitlist data denied", err.Error(), false)
}

func NewQueryTimeoutError(operation string) *StandardError {
	return newError(ErrCodeQueryTimeout, fmt.Sprintf("Query '%s' timed out", operation), "", true)
}

func NewProfileNotFoundError(userID string) *StandardError {
	return newError(ErrCodeProfileNotFound, "Applicant profile not found", "userId="+userID, false)
}

func NewNotWaitlistedError(hostelID, userID string) *StandardError {
	return newError(ErrCodeNotWaitlisted, "Applicant is not on the waitlist",
		fmt.Sprintf("hostelId=%s userId=%s", hostelID, userID), false)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// FromWaitlist classifies an error returned by the waitlist query.
func FromWaitlist(err error, hostelID, userID string) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}

	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return NewQueryTimeoutError("waitlist")
	case waitlist.IsPermissionDenied(err):
		return NewWaitlistAccessDeniedError(err)
	case stderrors.Is(err, waitlist.ErrEmptyHostelID):
		return NewInvalidInputError(err.Error())
	case stderrors.Is(err, waitlist.ErrNotWaitlisted):
		return NewNotWaitlistedError(hostelID, userID)
	case stderrors.Is(err, waitlist.ErrProfileNotFound):
		return NewProfileNotFoundError(userID)
	}

	var collabErr *waitlist.CollaboratorError
	if stderrors.As(err, &collabErr) {
		if collabErr.Collaborator == waitlist.CollaboratorWishlist {
			return NewWishlistLookupFailedError(collabErr.HostelID, collabErr.Err)
		}
		return NewProfileLookupFailedError(collabErr.UserID, collabErr.Err)
	}

	return NewInternalError(err)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidInput:         "INVALID_INPUT",
	ErrCodeWishlistLookupFailed: "WISHLIST_LOOKUP_FAILED",
	ErrCodeProfileLookupFailed:  "PROFILE_LOOKUP_FAILED",
	ErrCodeWaitlistAccessDenied: "WAITLIST_ACCESS_DENIED",
	ErrCodeQueryTimeout:         "QUERY_TIMEOUT",
	ErrCodeProfileNotFound:      "PROFILE_NOT_FOUND",
	ErrCodeNotWaitlisted:        "NOT_WAITLISTED",
	ErrCodeInternal:             "INTERNAL_ERROR",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeWishlistLookupFailed,
		ErrCodeProfileLookupFailed:
		return 3

	case ErrCodeQueryTimeout:
		return 2

	default:
		return 0 // business errors are thrown
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LOOKUP") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ACCESS"):
		return "AUTHORIZATION"
	case strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "NOT_FOUND") || strings.Contains(codeStr, "WAITLISTED"):
		return "BUSINESS"
	default:
		return "OTHER"
	}
}
