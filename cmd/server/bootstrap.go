package main

import (
	"context"

	"github.com/formpulse/backend/internal/config"
	"github.com/formpulse/backend/internal/handlers"
	"github.com/formpulse/backend/internal/models"
	"github.com/formpulse/backend/internal/services"
	"github.com/formpulse/backend/internal/utils"
	"github.com/formpulse/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	events     *services.EventService
	feedback   *services.FeedbackService
	aggregator *services.AggregationService
	importer   *services.ImporterService
	scheduler  *services.SyncScheduler
	taskQueue  services.TaskQueue
	worker     *services.Worker
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	// Initialize database
	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto migrate database
	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Seed default data
	if err := models.SeedDefaultData(&cfg.OpenAI); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	db := models.GetDB()
	events := services.NewEventService()

	itemStore := services.NewItemStore(db)
	reportStore := services.NewReportStore(db)
	commentStore := services.NewCommentStore(db)

	analysis := services.NewAnalysisService(db, &cfg.OpenAI)
	taxonomy := services.NewTaxonomyService(itemStore)
	aggregator := services.NewAggregationService(itemStore, reportStore, analysis, events)
	feedback := services.NewFeedbackService(itemStore, analysis, taxonomy, aggregator)
	importer := services.NewImporterService(commentStore, feedback, events, &cfg.ExternalSource)

	processImportTask := func(ctx context.Context, task *services.ImportTask) error {
		result, err := importer.ImportAll(ctx, services.SourceConfig{
			VendorCode:  task.VendorCode,
			FormID:      task.FormID,
			ServiceName: task.ServiceName,
			SortType:    task.SortType,
		})
		if err != nil {
			return err
		}
		logger.Infof("[Import] Vendor %s: %d new comments over %d pages", task.VendorCode, result.NewComments, result.Pages)
		if task.Promote {
			if _, err := importer.PromotePending(ctx, task.FormID); err != nil {
				return err
			}
		}
		return nil
	}

	// Initialize task queue (uses Redis if enabled, otherwise sync mode)
	taskQueue := services.InitTaskQueue(cfg)
	if syncQueue, ok := taskQueue.(*services.SyncQueue); ok {
		syncQueue.SetProcessor(processImportTask)
	}

	// Start async worker if Redis is enabled
	var worker *services.Worker
	if cfg.Redis.Enabled {
		worker = services.InitWorker(&cfg.Redis)
		if worker != nil {
			worker.SetProcessor(processImportTask)
			worker.Start()
		}
	}

	// Start periodic source sync
	scheduler := services.NewSyncScheduler(&cfg.ExternalSource, taskQueue)
	scheduler.Start()

	// Create default admin user
	authHandler := handlers.NewAuthHandler(db, &cfg.JWT)
	if err := authHandler.EnsureAdmin(); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		events:     events,
		feedback:   feedback,
		aggregator: aggregator,
		importer:   importer,
		scheduler:  scheduler,
		taskQueue:  taskQueue,
		worker:     worker,
	}
}

// shutdown gracefully stops all services.
func (s *appServices) shutdown() {
	s.scheduler.Stop()
	if s.worker != nil {
		s.worker.Stop()
	}
	if s.taskQueue != nil {
		s.taskQueue.Close()
	}
	logger.Info().Msg("All services stopped")
}
