package jobs

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Manager owns the background maintenance jobs: pruning old position rows and
// rolling fix counts into the daily stats table. Schedules run in UTC.
type Manager struct {
	db          *pgxpool.Pool
	redisClient *redis.Client
	retention   time.Duration
	logger      *zap.SugaredLogger
	cronManager *cron.Cron
}

// NewManager creates the job manager and registers the schedules. Call Start
// to begin running them.
func NewManager(db *pgxpool.Pool, redisClient *redis.Client, retention time.Duration, logger *zap.SugaredLogger) (*Manager, error) {
	m := &Manager{
		db:          db,
		redisClient: redisClient,
		retention:   retention,
		logger:      logger,
		cronManager: cron.New(cron.WithLocation(time.UTC)),
	}

	// Hourly prune of positions past the retention window
	if _, err := m.cronManager.AddFunc("0 * * * *", m.pruneOldPositions); err != nil {
		return nil, err
	}
	// Daily rollup of yesterday's fix counts, shortly after midnight UTC
	if _, err := m.cronManager.AddFunc("10 0 * * *", m.rollupDailyStats); err != nil {
		return nil, err
	}

	return m, nil
}

// Start begins running the registered schedules.
func (m *Manager) Start() {
	m.cronManager.Start()
	m.logger.Infow("maintenance jobs scheduled", "retention", m.retention)
}

// Stop halts scheduling and waits for a running job to finish.
func (m *Manager) Stop() {
	ctx := m.cronManager.Stop()
	<-ctx.Done()
}

// pruneOldPositions deletes position rows past the retention window and drops
// the station list cache so the next read repopulates it.
func (m *Manager) pruneOldPositions() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-m.retention)
	tag, err := m.db.Exec(ctx, `DELETE FROM tracker_positions WHERE recorded_at < $1`, cutoff)
	if err != nil {
		m.logger.Errorw("position prune failed", "error", err)
		return
	}

	m.redisClient.Del(ctx, "stations:all")

	m.logger.Infow("pruned old positions", "deleted", tag.RowsAffected(), "cutoff", cutoff)
}

// rollupDailyStats writes yesterday's per-tracker fix counts.
func (m *Manager) rollupDailyStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	query := `
		INSERT INTO tracker_daily_stats (tracker_id, day, fix_count)
		SELECT tracker_id, (recorded_at AT TIME ZONE 'UTC')::date AS day, COUNT(*)
		FROM tracker_positions
		WHERE recorded_at >= $1 AND recorded_at < $2
		GROUP BY tracker_id, day
		ON CONFLICT (tracker_id, day)
		DO UPDATE SET fix_count = EXCLUDED.fix_count
	`

	today := time.Now().UTC().Truncate(24 * time.Hour)
	yesterday := today.Add(-24 * time.Hour)

	if _, err := m.db.Exec(ctx, query, yesterday, today); err != nil {
		m.logger.Errorw("daily stats rollup failed", "error", err)
		return
	}
	m.logger.Infow("daily stats rolled up", "day", yesterday.Format("2006-01-02"))
}
