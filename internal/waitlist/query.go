// internal/waitlist/query.go
package waitlist

import (
	"context"
	"errors"
	"fmt"

	"hostelverse-workers/internal/common/logger"
	"hostelverse-workers/internal/common/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

const DefaultMaxConcurrentLookups = 8

var tracer = otel.Tracer("hostelverse-workers/internal/waitlist")

// WishlistStore resolves the applicants who wishlisted a hostel.
type WishlistStore interface {
	ListApplicants(ctx context.Context, hostelID string) ([]string, error)
}

// ProfileStore resolves applicant profiles. Implementations return
// ErrProfileNotFound when the user has no profile.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (ApplicantProfile, error)
}

// Sink receives a snapshot of a freshly computed ranking.
type Sink interface {
	Publish(ctx context.Context, snapshot Snapshot) error
}

type QueryConfig struct {
	MaxConcurrentLookups int
}

// Query computes waitlist rankings from the wishlist and profile collaborators.
type Query struct {
	config    QueryConfig
	wishlists WishlistStore
	profiles  ProfileStore
	sinks     []Sink
	logger    logger.Logger
}

func NewQuery(config QueryConfig, wishlists WishlistStore, profiles ProfileStore, log logger.Logger, sinks ...Sink) *Query {
	if config.MaxConcurrentLookups <= 0 {
		config.MaxConcurrentLookups = DefaultMaxConcurrentLookups
	}
	return &Query{
		config:    config,
		wishlists: wishlists,
		profiles:  profiles,
		sinks:     sinks,
		logger:    log.WithFields(map[string]interface{}{"component": "waitlist-query"}),
	}
}

// ComputeWaitlistRanking ranks every applicant with a resolvable profile who
// wishlisted hostelID. An empty waitlist yields an empty ranking and no error;
// collaborator failures are returned as *CollaboratorError.
func (q *Query) ComputeWaitlistRanking(ctx context.Context, hostelID string) (Ranking, error) {
	if hostelID == "" {
		return nil, ErrEmptyHostelID
	}

	ctx, span := tracer.Start(ctx, "waitlist.compute_ranking")
	defer span.End()
	span.SetAttributes(attribute.String("hostel.id", hostelID))

	userIDs, err := q.wishlists.ListApplicants(ctx, hostelID)
	if err != nil {
		err = &CollaboratorError{Collaborator: CollaboratorWishlist, HostelID: hostelID, Err: err}
		span.RecordError(err)
		span.SetStatus(codes.Error, "wishlist lookup failed")
		return nil, err
	}
	userIDs = dedupe(userIDs)
	span.SetAttributes(attribute.Int("applicants.count", len(userIDs)))

	if len(userIDs) == 0 {
		q.logger.Debug("no applicants wishlisted", map[string]interface{}{"hostelId": hostelID})
		return Ranking{}, nil
	}

	profiles, err := q.fetchProfiles(ctx, hostelID, userIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile lookup failed")
		return nil, err
	}

	scored := make([]ScoredApplicant, 0, len(profiles))
	for _, p := range profiles {
		scored = append(scored, ScoredApplicant{UserID: p.UserID, Breakdown: CalculateScore(p)})
	}
	ranking := Rank(scored)

	skipped := len(userIDs) - len(profiles)
	if skipped > 0 {
		metrics.WaitlistProfilesSkipped.Add(float64(skipped))
	}
	metrics.WaitlistApplicantsRanked.Observe(float64(len(ranking)))

	q.logger.Info("waitlist ranking computed", map[string]interface{}{
		"hostelId":   hostelID,
		"applicants": len(userIDs),
		"ranked":     len(ranking),
		"skipped":    skipped,
	})

	return ranking, nil
}

func (q *Query) fetchProfiles(ctx context.Context, hostelID string, userIDs []string) ([]ApplicantProfile, error) {
	found := make([]*ApplicantProfile, len(userIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.config.MaxConcurrentLookups)

	for i, userID := range userIDs {
		g.Go(func() error {
			profile, err := q.profiles.GetProfile(gctx, userID)
			if errors.Is(err, ErrProfileNotFound) {
				q.logger.Debug("skipping applicant without profile", map[string]interface{}{
					"hostelId": hostelID,
					"userId":   userID,
				})
				return nil
			}
			if err != nil {
				return &CollaboratorError{Collaborator: CollaboratorProfile, HostelID: hostelID, UserID: userID, Err: err}
			}
			// The wishlist id is authoritative for identity.
			profile.UserID = userID
			found[i] = &profile
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	profiles := make([]ApplicantProfile, 0, len(found))
	for _, p := range found {
		if p != nil {
			profiles = append(profiles, *p)
		}
	}
	return profiles, nil
}

// Position is one applicant's standing on a hostel waitlist.
type Position struct {
	HostelID       string          `json:"hostelId"`
	Applicant      RankedApplicant `json:"applicant"`
	ApplicantCount int             `json:"applicantCount"`
}

// ApplicantPosition computes the ranking for hostelID and returns userID's entry.
func (q *Query) ApplicantPosition(ctx context.Context, hostelID, userID string) (*Position, error) {
	ranking, err := q.ComputeWaitlistRanking(ctx, hostelID)
	if err != nil {
		return nil, err
	}

	entry, ok := ranking.Find(userID)
	if !ok {
		return nil, fmt.Errorf("%w: user %s, hostel %s", ErrNotWaitlisted, userID, hostelID)
	}

	return &Position{
		HostelID:       hostelID,
		Applicant:      entry,
		ApplicantCount: len(ranking),
	}, nil
}

// Publish hands snapshot to every configured sink. All sinks are attempted;
// their failures are joined.
func (q *Query) Publish(ctx context.Context, snapshot Snapshot) error {
	var errs []error
	for _, sink := range q.sinks {
		if err := sink.Publish(ctx, snapshot); err != nil {
			q.logger.Warn("ranking sink failed", map[string]interface{}{
				"hostelId":  snapshot.HostelID,
				"rankingId": snapshot.RankingID,
				"sink":      fmt.Sprintf("%T", sink),
				"error":     err.Error(),
			})
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Profile fetches a single applicant profile. ErrProfileNotFound is returned
// as is; other failures come back as *CollaboratorError.
func (q *Query) Profile(ctx context.Context, userID string) (ApplicantProfile, error) {
	profile, err := q.profiles.GetProfile(ctx, userID)
	if errors.Is(err, ErrProfileNotFound) {
		return ApplicantProfile{}, err
	}
	if err != nil {
		return ApplicantProfile{}, &CollaboratorError{Collaborator: CollaboratorProfile, UserID: userID, Err: err}
	}
	profile.UserID = userID
	return profile, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
