// cmd/waitlist-cli/main.go
package main

import (
	"context"
	"fmt"
	"os"

	"hostelverse-workers/internal/common/config"
	"hostelverse-workers/internal/common/database"
	"hostelverse-workers/internal/common/logger"
	"hostelverse-workers/internal/store/cache"
	"hostelverse-workers/internal/store/postgres"
	"hostelverse-workers/internal/store/search"
	"hostelverse-workers/internal/waitlist"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type snapshotSource interface {
	Latest(ctx context.Context, hostelID string) (*waitlist.Snapshot, bool, error)
}

type profileInvalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// App holds dependencies that are only built for commands that need them.
type App struct {
	logLevel string
	zapLog   *zap.Logger
	cfg      *config.Config
	pg       *database.PostgresClient
	rdb      *database.RedisClient

	rankings snapshotSource
	profiles profileInvalidator
}

func (a *App) loadConfig() (*config.Config, error) {
	if a.cfg == nil {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	return a.cfg, nil
}

// Query connects to Postgres on first use and returns an uncached,
// sink-free waitlist query.
func (a *App) Query(ctx context.Context) (*waitlist.Query, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	if a.pg == nil {
		a.pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, err
		}
		if err := a.pg.Ping(ctx); err != nil {
			return nil, err
		}
	}

	return waitlist.NewQuery(
		waitlist.QueryConfig{MaxConcurrentLookups: cfg.Waitlist.MaxConcurrentLookups},
		postgres.NewWishlistStore(a.pg.DB),
		postgres.NewProfileStore(a.pg.DB),
		logger.NewZapAdapter(a.zapLog),
	), nil
}

// Rankings reads published snapshots from the Elasticsearch ranking index.
func (a *App) Rankings(ctx context.Context) (snapshotSource, error) {
	if a.rankings != nil {
		return a.rankings, nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.Database.Elasticsearch.Enabled() {
		return nil, fmt.Errorf("database.elasticsearch is not configured")
	}

	es, err := database.NewElasticsearch(cfg.Database.Elasticsearch, nil)
	if err != nil {
		return nil, err
	}
	if err := es.Ping(ctx); err != nil {
		return nil, err
	}

	a.rankings = search.NewRankingIndex(es.Client, cfg.Waitlist.RankingIndex)
	return a.rankings, nil
}

// Profiles drops entries from the Redis profile cache.
func (a *App) Profiles(ctx context.Context) (profileInvalidator, error) {
	if a.profiles != nil {
		return a.profiles, nil
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Redis.Address == "" {
		return nil, fmt.Errorf("database.redis.address is not configured")
	}

	a.rdb = database.NewRedis(cfg.Database.Redis)
	if err := a.rdb.Ping(ctx); err != nil {
		return nil, err
	}

	// Invalidate never reads through, so no backing store is needed.
	a.profiles = cache.NewProfileCache(a.rdb.Client, nil, cfg.Waitlist.CacheTTL(), logger.NewZapAdapter(a.zapLog))
	return a.profiles, nil
}

func (a *App) Close() {
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.zapLog != nil {
		_ = a.zapLog.Sync()
	}
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "waitlist-cli",
		Short:         "HostelVerse waitlist operator tool",
		Long:          `Compute and inspect hostel waitlist rankings, score applicant profiles and check the activity registry.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			app.zapLog = logger.New(logger.Options{Level: app.logLevel, Format: "console", Output: "stderr"})
		},
	}

	rootCmd.PersistentFlags().StringVar(&app.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(rankCmd(app))
	rootCmd.AddCommand(positionCmd(app))
	rootCmd.AddCommand(latestCmd(app))
	rootCmd.AddCommand(forgetProfileCmd(app))
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(registryCmd())
	return rootCmd
}

func main() {
	app := &App{}
	err := newRootCmd(app).Execute()
	app.Close()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
