package services

import (
	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

// SyncScheduler periodically enqueues import tasks for every configured
// vendor source. Without a cron expression in config it stays dormant.
type SyncScheduler struct {
	cfg   *config.ExternalSourceConfig
	queue TaskQueue
	cron  *cron.Cron
}

func NewSyncScheduler(cfg *config.ExternalSourceConfig, queue TaskQueue) *SyncScheduler {
	return &SyncScheduler{cfg: cfg, queue: queue}
}

// Start registers the configured schedule and starts the cron loop.
func (s *SyncScheduler) Start() {
	if s.cfg.SyncCron == "" || len(s.cfg.Vendors) == 0 {
		logger.Infof("[Scheduler] Source sync disabled (no schedule or no vendors)")
		return
	}

	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.cfg.SyncCron, s.enqueueAll)
	if err != nil {
		logger.Errorf("[Scheduler] Invalid sync cron %q: %v", s.cfg.SyncCron, err)
		return
	}

	s.cron.Start()
	logger.Infof("[Scheduler] Source sync scheduled (cron: %s, %d vendors)", s.cfg.SyncCron, len(s.cfg.Vendors))
}

// Stop halts the cron loop. Running jobs finish on their own.
func (s *SyncScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *SyncScheduler) enqueueAll() {
	for _, vendor := range s.cfg.Vendors {
		task := &ImportTask{
			VendorCode:  vendor.VendorCode,
			FormID:      vendor.FormID,
			ServiceName: vendor.ServiceName,
			SortType:    s.cfg.SortType,
			Promote:     true,
		}
		if err := s.queue.Enqueue(task); err != nil {
			logger.Errorf("[Scheduler] Failed to enqueue sync for vendor %s: %v", vendor.VendorCode, err)
		}
	}
}
