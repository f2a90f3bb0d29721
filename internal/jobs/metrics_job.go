package jobs

import (
	"log"

	"klipz/config"
	"klipz/internal/service"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the periodic submission metrics refresh. Earnings on pending
// submissions are recomputed each pass; submissions at or below the configured
// auto-approve threshold are approved without manual review.
type Scheduler struct {
	cron        *cron.Cron
	cfg         *config.JobsConfig
	earningsSvc *service.EarningsService
}

func NewScheduler(cfg *config.JobsConfig, earningsSvc *service.EarningsService) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		cfg:         cfg,
		earningsSvc: earningsSvc,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.MetricsRefreshSpec, func() {
		s.earningsSvc.RefreshPending(s.cfg.AutoApproveEarningsCents)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[Jobs] metrics refresh scheduled (%s)", s.cfg.MetricsRefreshSpec)
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
