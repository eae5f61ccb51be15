// internal/waitlist/errors.go
package waitlist

import (
	"errors"
	"fmt"
)

var (
	// ErrProfileNotFound is returned by a ProfileStore when the user has no profile.
	// The query skips such applicants.
	ErrProfileNotFound = errors.New("applicant profile not found")

	// ErrPermissionDenied marks a collaborator failure caused by missing read access.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotWaitlisted is returned by ApplicantPosition when the user is not ranked for the hostel.
	ErrNotWaitlisted = errors.New("applicant is not on the waitlist")

	ErrEmptyHostelID = errors.New("hostel id is required")
)

const (
	CollaboratorWishlist = "wishlist"
	CollaboratorProfile  = "profile"
)

// CollaboratorError reports a hard failure of a WishlistStore or ProfileStore.
type CollaboratorError struct {
	Collaborator string
	HostelID     string
	UserID       string
	Err          error
}

func (e *CollaboratorError) Error() string {
	if e.UserID != "" {
		return fmt.Sprintf("%s lookup failed for hostel %s, user %s: %v", e.Collaborator, e.HostelID, e.UserID, e.Err)
	}
	return fmt.Sprintf("%s lookup failed for hostel %s: %v", e.Collaborator, e.HostelID, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// IsPermissionDenied reports whether err was caused by an authorization failure.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
