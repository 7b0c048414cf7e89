package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/anjiri1684/enrollment_service/configs"
	"github.com/anjiri1684/enrollment_service/database"
	"github.com/anjiri1684/enrollment_service/directory"
	"github.com/anjiri1684/enrollment_service/events"
	"github.com/anjiri1684/enrollment_service/handlers"
	"github.com/anjiri1684/enrollment_service/jobs"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/notifications"
	"github.com/anjiri1684/enrollment_service/routes"
	"github.com/anjiri1684/enrollment_service/services"
	"github.com/robfig/cron/v3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := database.Open(cfg, log)
	if err != nil {
		log.Fatal("database connection failed", "error", err)
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		log.Fatal("database migration failed", "error", err)
	}

	dir := directory.New(cfg.StudentServiceURL, cfg.CourseServiceURL, cfg.GatewayTimeout)

	var notifier services.Notifier
	email := notifications.NewEmailService(cfg.BrevoAPIKey, cfg.EmailSender, cfg.EmailSenderName, log)
	if email.Enabled() {
		notifier = email
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := events.NewHub(log)
	go hub.Run(ctx)

	enrollments := services.NewEnrollmentService(store, dir, notifier, log).WithEvents(hub)
	reports := services.NewReportService(store, dir, log, cfg.GatewayFanout)

	c := cron.New()
	if _, err := jobs.Schedule(c, cfg.StatsCron, jobs.NewStatsJob(store, dir, log)); err != nil {
		log.Fatal("stats job schedule failed", "schedule", cfg.StatsCron, "error", err)
	}
	c.Start()
	log.Info("stats job scheduled", "schedule", cfg.StatsCron)

	app := routes.NewApp(log, cfg.CORSOrigins, !cfg.IsProduction())
	routes.EnrollmentRoutes(app,
		handlers.NewEnrollmentHandler(enrollments, reports),
		handlers.NewEventsHandler(hub, cfg.JWTSecret, log),
		cfg.JWTSecret)

	listenErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		if err != nil {
			log.Error("server failed", "error", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.Error("server shutdown", "error", err)
		}
	}

	<-c.Stop().Done()
	enrollments.Wait()
	log.Info("server stopped")
}
