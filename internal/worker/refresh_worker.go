package worker

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-portal/internal/cache"
	"github.com/spec-kit/helpdesk-portal/internal/config"
)

// StartRefreshWorker schedules periodic derived-state refreshes. Overdue
// flags and time-open strings depend on the clock, so they drift between
// mutations unless something re-enriches the list. Returns a stop function.
func StartRefreshWorker(cfg config.RefreshConfig, ticketCache *cache.TicketCache, logger *zap.Logger) (stop func(), err error) {
	if !cfg.Enabled {
		logger.Info("refresh worker disabled")
		return func() {}, nil
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.CronSpec, func() {
		ticketCache.RefreshDerived()
		logger.Debug("derived state refreshed")
	})
	if err != nil {
		return nil, err
	}

	scheduler.Start()
	logger.Info("refresh worker started", zap.String("spec", cfg.CronSpec))

	return func() {
		ctx := scheduler.Stop()
		<-ctx.Done()
	}, nil
}
