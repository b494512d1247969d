package availability

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/services/shared/locker"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/utils"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Worker keeps a rolling window of dated availability materialized from weekday templates.
type Worker struct {
	log                 *zap.Logger
	cfg                 *config.InternalConfig
	locker              contracts.LockerService
	availabilityUsecase contracts.AvailabilityUsecase
	cron                *cron.Cron
	runCtx              context.Context
	cancel              context.CancelFunc
	now                 func() time.Time
}

func NewWorker(log *zap.Logger, cfg *config.InternalConfig, lockerSvc contracts.LockerService, availabilityUsecase contracts.AvailabilityUsecase) *Worker {
	return &Worker{log: log, cfg: cfg, locker: lockerSvc, availabilityUsecase: availabilityUsecase, now: time.Now}
}

func (w *Worker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	spec := w.cfg.Workers.AvailabilityWorkerCronSpec
	if _, err := c.AddFunc(spec, func() { w.RunOnce(w.runCtx) }); err != nil {
		w.log.Warn("availability.worker: invalid cron spec; falling back to @daily", zap.String("spec", spec), zap.Error(err))
		c = cron.New()
		_, _ = c.AddFunc("@daily", func() { w.RunOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

// Stop cancels in-flight work and waits for a running job to finish.
func (w *Worker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *Worker) RunOnce(ctx context.Context) {
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, utils.GenerateRequestID())
	locker.RunAsLeader(ctx, w.locker, w.log, constvars.AvailabilityWorkerLeaderLockKey, w.cfg.LeaderLockTTL(), func(ctx context.Context) {
		_, _ = utils.LogSweep(ctx, w.log, "availability.materialize_window", func(ctx context.Context) (int, error) {
			return w.availabilityUsecase.MaterializeWindow(ctx, w.now(), w.cfg.Workers.AvailabilityWindowDays)
		})
	})
}
