// File: internal/jobs/promo_digest.go
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ShIIIrochka/SecondStagePROD/internal/config"
	"github.com/ShIIIrochka/SecondStagePROD/internal/promo"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// PromoDigestJob periodically logs an engagement snapshot: how many
// promocodes exist and how many likes, comments and activations arrived
// since the previous run. It observes only; it never mutates data.
type PromoDigestJob struct {
	promoRepo     promo.Repository
	logger        *zap.Logger
	cfg           *config.Config
	cronScheduler *cron.Cron
	lastRun       time.Time
}

// NewPromoDigestJob creates a new PromoDigestJob.
func NewPromoDigestJob(
	promoRepo promo.Repository,
	logger *zap.Logger,
	cfg *config.Config,
) *PromoDigestJob {
	scheduler := cron.New(cron.WithLogger(NewCronLogger(logger.Named("cron"))))

	return &PromoDigestJob{
		promoRepo:     promoRepo,
		logger:        logger.Named("PromoDigestJob"),
		cfg:           cfg,
		cronScheduler: scheduler,
		lastRun:       time.Now(),
	}
}

// SetupAndStart schedules and starts the cron job.
func (j *PromoDigestJob) SetupAndStart() error {
	jobSpec := j.cfg.DigestSchedule // e.g., "@daily", "0 1 * * *" (1 AM daily)
	if jobSpec == "" {
		j.logger.Warn("Promo digest schedule not defined (DIGEST_SCHEDULE). Job will not run.")
		return nil // Not a fatal error, just won't run
	}

	jobID, err := j.cronScheduler.AddFunc(jobSpec, j.runJob)
	if err != nil {
		j.logger.Error("Failed to schedule promo digest job", zap.String("spec", jobSpec), zap.Error(err))
		return err
	}

	j.logger.Info("Promo digest job scheduled", zap.String("spec", jobSpec), zap.Any("jobID", jobID))
	j.cronScheduler.Start() // Start the scheduler in the background
	return nil
}

// runJob is the actual work performed by the cron job.
func (j *PromoDigestJob) runJob() {
	j.logger.Info("Starting promo digest run...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute) // Job timeout
	defer cancel()

	since := j.lastRun
	stats, err := j.promoRepo.DigestStats(ctx, since)
	if err != nil {
		j.logger.Error("Promo digest run failed", zap.Error(err))
		return
	}
	j.lastRun = time.Now()

	j.logger.Info("Promo digest run completed",
		zap.Time("since", since),
		zap.Int64("total_promos", stats.TotalPromos),
		zap.Int64("new_likes", stats.NewLikes),
		zap.Int64("new_comments", stats.NewComments),
		zap.Int64("new_activations", stats.NewActivations))
}

// Stop gracefully stops the cron scheduler.
func (j *PromoDigestJob) Stop() {
	if j.cronScheduler != nil {
		j.logger.Info("Stopping promo digest job scheduler...")
		stopCtx := j.cronScheduler.Stop() // Returns a context that is done when the scheduler has stopped
		select {
		case <-stopCtx.Done():
			j.logger.Info("Promo digest job scheduler stopped gracefully.")
		case <-time.After(10 * time.Second): // Timeout for stopping
			j.logger.Warn("Promo digest job scheduler stop timed out.")
		}
	}
}

// --- Cron Logger Adapter ---

// cronLogger adapts zap.Logger to cron.Logger interface.
type cronLogger struct {
	zl *zap.Logger
}

// NewCronLogger creates a new cronLogger.
func NewCronLogger(zl *zap.Logger) cron.Logger {
	return &cronLogger{zl: zl}
}

// Info logs routine messages from cron.
func (cl *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	cl.zl.Info(msg, fields...)
}

// Error logs error messages from cron.
func (cl *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	fields := cl.parseKeysAndValues(keysAndValues...)
	fields = append(fields, zap.Error(err))
	cl.zl.Error(msg, fields...)
}

func (cl *cronLogger) parseKeysAndValues(keysAndValues ...interface{}) []zap.Field {
	var fields []zap.Field
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), keysAndValues[i+1]))
		} else {
			fields = append(fields, zap.Any(fmt.Sprintf("%v", keysAndValues[i]), "MISSING_VALUE"))
		}
	}
	return fields
}
