package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aeroway/aeroway-api/internal/metrics"
)

// TrackingExpirer rewrites the stored status of sessions past their expiry.
type TrackingExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// MessagePruner removes chat messages older than a cutoff.
type MessagePruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SweepJob periodically marks stale tracking sessions expired and prunes old
// chat history. Reads never depend on it: expiry is also checked against
// expires_at whenever a session is loaded.
type SweepJob struct {
	sessions      TrackingExpirer
	messages      MessagePruner
	interval      time.Duration
	chatRetention time.Duration
	now           func() time.Time
	done          chan struct{}
}

func NewSweepJob(
	sessions TrackingExpirer,
	messages MessagePruner,
	interval time.Duration,
	chatRetention time.Duration,
) *SweepJob {
	return &SweepJob{
		sessions:      sessions,
		messages:      messages,
		interval:      interval,
		chatRetention: chatRetention,
		now:           time.Now,
		done:          make(chan struct{}),
	}
}

func (j *SweepJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("sweep job started")
}

func (j *SweepJob) Stop() {
	close(j.done)
	log.Info().Msg("sweep job stopped")
}

func (j *SweepJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *SweepJob) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := j.now().UTC()
	j.runTask(ctx, "expired tracking sessions", func(ctx context.Context) (int64, error) {
		return j.sessions.ExpireStale(ctx, now)
	})
	if j.messages != nil && j.chatRetention > 0 {
		j.runTask(ctx, "old chat messages", func(ctx context.Context) (int64, error) {
			return j.messages.DeleteOlderThan(ctx, now.Add(-j.chatRetention))
		})
	}
}

func (j *SweepJob) runTask(ctx context.Context, name string, fn func(context.Context) (int64, error)) {
	count, err := fn(ctx)
	if err != nil {
		log.Error().Err(err).Msgf("failed to sweep %s", name)
		return
	}
	if count > 0 {
		metrics.SweepRows.WithLabelValues(name).Add(float64(count))
		log.Info().Int64("count", count).Msgf("swept %s", name)
	}
}
