package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	_ "time/tzdata"

	"github.com/poofware/deletion-service/internal/app"
	"github.com/poofware/deletion-service/internal/config"
	"github.com/poofware/deletion-service/internal/controllers"
	"github.com/poofware/deletion-service/internal/repositories"
	"github.com/poofware/deletion-service/internal/routes"
	"github.com/poofware/deletion-service/internal/services"
	"github.com/poofware/deletion-service/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	deletionRepo := repositories.NewDeletionRequestRepository(application.DB)
	accountRepo := repositories.NewAccountRepository(application.DB)
	rateLimitRepo := repositories.NewRateLimitRepository(application.DB)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, cfg)
	dispatcher := services.NewChannelDispatcher(cfg)
	deletionQueue := services.NewDeletionQueue(cfg)

	deletionService := services.NewDeletionService(
		deletionRepo,
		accountRepo,
		rateLimiterService,
		dispatcher,
		deletionQueue,
		cfg,
	)

	deletionSweepService := services.NewDeletionSweepService(deletionRepo, cfg)
	rateLimitCleanupService := services.NewRateLimitCleanupService(rateLimitRepo)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	deletionController := controllers.NewDeletionController(deletionService, cfg)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods("GET")
	router.HandleFunc(routes.InitiateDeletion, deletionController.InitiateDeletion).Methods("POST")
	router.HandleFunc(routes.ConfirmDeletion, deletionController.ConfirmDeletion).Methods("POST")

	//----------------------------------------------------------------------
	// Scheduled hygiene via cron
	//----------------------------------------------------------------------
	c := cron.New()

	// overdue pending requests -> expired
	_, schErr1 := c.AddFunc("*/10 * * * *", func() {
		if e := deletionSweepService.SweepExpired(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled deletion request sweep failed")
		}
	})
	if schErr1 != nil {
		utils.Logger.WithError(schErr1).Fatal("Failed to schedule deletion request sweep job")
	}

	// terminal rows past retention
	_, schErr2 := c.AddFunc("0 3 * * *", func() {
		if e := deletionSweepService.PurgeDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled deletion request purge failed")
		}
	})
	if schErr2 != nil {
		utils.Logger.WithError(schErr2).Fatal("Failed to schedule deletion request purge job")
	}

	// rate limit counter cleanup
	_, schErr3 := c.AddFunc("10 3 * * *", func() {
		if e := rateLimitCleanupService.CleanupDaily(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled rate limit counter cleanup failed")
		}
	})
	if schErr3 != nil {
		utils.Logger.WithError(schErr3).Fatal("Failed to schedule rate limit counter cleanup job")
	}

	c.Start()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, utils.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Device-ID", "ngrok-skip-browser-warning"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
