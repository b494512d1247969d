package invoices

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

// OverdueWorker flags invoices and plan installments whose due date has passed.
type OverdueWorker struct {
	log                *zap.Logger
	cfg                *config.InternalConfig
	locker             contracts.LockerService
	invoiceUsecase     contracts.InvoiceUsecase
	paymentPlanUsecase contracts.PaymentPlanUsecase
	cron               *cron.Cron
	runCtx             context.Context
	cancel             context.CancelFunc
	now                func() time.Time
}

func NewOverdueWorker(
	log *zap.Logger,
	cfg *config.InternalConfig,
	lockerSvc contracts.LockerService,
	invoiceUsecase contracts.InvoiceUsecase,
	paymentPlanUsecase contracts.PaymentPlanUsecase,
) *OverdueWorker {
	return &OverdueWorker{
		log:                log,
		cfg:                cfg,
		locker:             lockerSvc,
		invoiceUsecase:     invoiceUsecase,
		paymentPlanUsecase: paymentPlanUsecase,
		now:                time.Now,
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	w.runCtx, w.cancel = context.WithCancel(ctx)
	c := cron.New()
	spec := w.cfg.Workers.OverdueWorkerCronSpec
	if _, err := c.AddFunc(spec, func() { w.RunOnce(w.runCtx) }); err != nil {
		w.log.Warn("invoices.overdueWorker: invalid cron spec; falling back to @daily", zap.String("spec", spec), zap.Error(err))
		c = cron.New()
		_, _ = c.AddFunc("@daily", func() { w.RunOnce(w.runCtx) })
	}
	c.Start()
	w.cron = c
}

func (w *OverdueWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.cron != nil {
		<-w.cron.Stop().Done()
	}
}

func (w *OverdueWorker) RunOnce(ctx context.Context) {
	ctx = context.WithValue(ctx, constvars.CONTEXT_REQUEST_ID_KEY, utils.GenerateRequestID())
	locker.RunAsLeader(ctx, w.locker, w.log, constvars.OverdueWorkerLeaderLockKey, w.cfg.LeaderLockTTL(), func(ctx context.Context) {
		today := w.now()
		_, _ = utils.LogSweep(ctx, w.log, "invoices.mark_overdue", func(ctx context.Context) (int, error) {
			return w.invoiceUsecase.MarkOverdue(ctx, today)
		})
		_, _ = utils.LogSweep(ctx, w.log, "payment_plans.mark_overdue", func(ctx context.Context) (int, error) {
			return w.paymentPlanUsecase.MarkOverdue(ctx, today)
		})
	})
}
