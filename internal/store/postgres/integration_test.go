//go:build integration

// internal/store/postgres/integration_test.go
package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"hostelverse-workers/internal/common/logger"
	"hostelverse-workers/internal/waitlist"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const schema = `
CREATE TABLE profiles (
	id TEXT PRIMARY KEY,
	annual_income DOUBLE PRECISION,
	category TEXT,
	distance DOUBLE PRECISION,
	score_10th DOUBLE PRECISION,
	score_12th DOUBLE PRECISION
);
CREATE TABLE wishlists (
	id SERIAL PRIMARY KEY,
	user_id TEXT NOT NULL,
	hostel_id TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
INSERT INTO profiles VALUES
	('alice', 300000, 'SC', 30, 90, 90),
	('bob', 2500000, 'general', 1, 60, 60),
	('carol', 700000, 'OBC', 10, 75, 85);
INSERT INTO wishlists (user_id, hostel_id) VALUES
	('alice', 'hostel-1'), ('bob', 'hostel-1'), ('carol', 'hostel-1'),
	('dave', 'hostel-1'), ('alice', 'hostel-1'), ('bob', 'hostel-2');
CREATE ROLE restricted LOGIN PASSWORD 'restricted';
`

func startPostgres(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("hostelverse"),
		tcpostgres.WithUsername("hostel"),
		tcpostgres.WithPassword("hostel"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.ExecContext(ctx, schema)
	require.NoError(t, err)
	return db
}

func TestIntegration_ComputeWaitlistRanking(t *testing.T) {
	db := startPostgres(t)

	q := waitlist.NewQuery(waitlist.QueryConfig{MaxConcurrentLookups: 2},
		NewWishlistStore(db), NewProfileStore(db), logger.NewTestLogger(t))

	ranking, err := q.ComputeWaitlistRanking(context.Background(), "hostel-1")
	require.NoError(t, err)

	require.Len(t, ranking, 3)
	assert.Equal(t, "alice", ranking[0].UserID)
	assert.Equal(t, 93.0, ranking[0].Score)
	assert.Equal(t, "carol", ranking[1].UserID)
	assert.Equal(t, "bob", ranking[2].UserID)
}

func TestIntegration_PermissionDenied(t *testing.T) {
	db := startPostgres(t)
	ctx := context.Background()

	conn, err := db.Conn(ctx)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.ExecContext(ctx, `SET ROLE restricted`)
	require.NoError(t, err)

	var userID string
	err = conn.QueryRowContext(ctx, listApplicantsQuery, "hostel-1").Scan(&userID)
	require.Error(t, err)
	assert.True(t, waitlist.IsPermissionDenied(classify("list wishlist applicants", err)))
}
