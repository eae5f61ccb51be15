// internal/store/postgres/store.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hostelverse-workers/internal/waitlist"

	"github.com/lib/pq"
)

// SQLSTATE insufficient_privilege, raised by GRANT and row-level security checks.
const codeInsufficientPrivilege = pq.ErrorCode("42501")

const listApplicantsQuery = `SELECT DISTINCT user_id FROM wishlists WHERE hostel_id = $1 ORDER BY user_id`

const getProfileQuery = `
	SELECT id, annual_income, category, distance, score_10th, score_12th
	FROM profiles WHERE id = $1`

// WishlistStore reads the wishlists table owned by the HostelVerse app.
type WishlistStore struct {
	db *sql.DB
}

func NewWishlistStore(db *sql.DB) *WishlistStore {
	return &WishlistStore{db: db}
}

func (s *WishlistStore) ListApplicants(ctx context.Context, hostelID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, listApplicantsQuery, hostelID)
	if err != nil {
		return nil, classify("list wishlist applicants", err)
	}
	defer rows.Close()

	var userIDs []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan wishlist row: %w", err)
		}
		userIDs = append(userIDs, userID)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate wishlist rows", err)
	}
	return userIDs, nil
}

// ProfileStore reads the profiles table owned by the HostelVerse app.
type ProfileStore struct {
	db *sql.DB
}

func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) GetProfile(ctx context.Context, userID string) (waitlist.ApplicantProfile, error) {
	var (
		id                   string
		income, distance     sql.NullFloat64
		score10th, score12th sql.NullFloat64
		category             sql.NullString
	)

	err := s.db.QueryRowContext(ctx, getProfileQuery, userID).
		Scan(&id, &income, &category, &distance, &score10th, &score12th)
	if errors.Is(err, sql.ErrNoRows) {
		return waitlist.ApplicantProfile{}, waitlist.ErrProfileNotFound
	}
	if err != nil {
		return waitlist.ApplicantProfile{}, classify("get profile", err)
	}

	return waitlist.ApplicantProfile{
		UserID:       id,
		AnnualIncome: nullFloat(income),
		Category:     nullString(category),
		DistanceKm:   nullFloat(distance),
		Score10th:    nullFloat(score10th),
		Score12th:    nullFloat(score12th),
	}, nil
}

// classify wraps err with op, and additionally with ErrPermissionDenied for
// privilege failures.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == codeInsufficientPrivilege {
		return fmt.Errorf("%s: %w: %w", op, waitlist.ErrPermissionDenied, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return waitlist.Float(v.Float64)
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return waitlist.String(v.String)
}
