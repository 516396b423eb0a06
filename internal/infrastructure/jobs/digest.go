package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hilthontt/encore/internal/infrastructure/logger"
	"github.com/hilthontt/encore/internal/infrastructure/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const digestJobName = "notification_digest"

// DigestSender mails the notifications created in (since, until] and returns
// how many were included.
type DigestSender interface {
	SendDigest(ctx context.Context, since, until time.Time) (int, error)
}

type DigestJob struct {
	sender   DigestSender
	logger   *logger.Logger
	schedule string

	mu      sync.Mutex
	lastRun time.Time
	now     func() time.Time
}

func NewDigestJob(sender DigestSender, schedule string, logger *logger.Logger) *DigestJob {
	return &DigestJob{
		sender:   sender,
		logger:   logger.Named("digest"),
		schedule: schedule,
		lastRun:  time.Now().UTC(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start blocks until ctx is cancelled and waits for a running digest to finish.
func (j *DigestJob) Start(ctx context.Context) error {
	c := cron.New()
	if _, err := c.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", j.schedule, err)
	}

	j.logger.Info("Notification digest job started", zap.String("schedule", j.schedule))
	c.Start()

	<-ctx.Done()
	<-c.Stop().Done()

	j.logger.Info("Notification digest job stopped")
	return nil
}

// RunOnce sends one digest covering everything since the previous successful
// run, up to the time the run started.
func (j *DigestJob) RunOnce(ctx context.Context) {
	j.mu.Lock()
	defer j.mu.Unlock()

	startTime := time.Now()
	until := j.now()
	count, err := j.sender.SendDigest(ctx, j.lastRun, until)
	metrics.RecordJobRun(digestJobName, err)
	if err != nil {
		j.logger.Error("Notification digest failed",
			zap.Error(err),
			zap.Time("since", j.lastRun),
		)
		return
	}

	j.logger.Info("Notification digest completed",
		zap.Int("notifications", count),
		zap.Duration("duration", time.Since(startTime)),
	)
	j.lastRun = until
}
