package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/portfolio/backend/internal/config"
	"github.com/portfolio/backend/internal/handler"
	"github.com/portfolio/backend/internal/logging"
	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/pkg/auth"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logging.Fatal("failed to connect to database", "error", err)
	}
	defer pool.Close()

	messageRepo := repository.NewPgMessageRepository(pool)
	adminRepo := repository.NewPgAdminRepository(pool)

	var notifier notify.Notifier
	if cfg.SMTPEnabled() {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		slog.Warn("SMTP not configured; notifications will be logged, not sent")
		notifier = &notify.LogNotifier{Logger: slog.Default()}
	}

	dispatcher := notify.NewDispatcher(notifier, messageRepo, cfg.ContactInbox, cfg.NotifyQueueSize, slog.Default())

	intakeService := service.NewIntakeService(messageRepo, dispatcher)
	moderationService := service.NewModerationService(messageRepo, notifier)
	authService := service.NewAuthService(adminRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)

	h := handler.New(pool, cfg.FrontendURL)
	contactHandler := handler.NewContactHandler(intakeService)
	adminHandler := handler.NewAdminHandler(moderationService, authService, notifier)

	rateLimiter := handler.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	requireAdmin := auth.RequireAdmin([]byte(cfg.JWTSecret))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.Handle("POST /api/contact", rateLimiter.Middleware(http.HandlerFunc(contactHandler.Submit)))
	mux.HandleFunc("POST /api/subscribe", contactHandler.Subscribe)

	mux.HandleFunc("POST /api/admin/login", adminHandler.Login)
	mux.Handle("GET /api/admin/verify", requireAdmin(http.HandlerFunc(adminHandler.Verify)))
	mux.Handle("GET /api/admin/messages", requireAdmin(http.HandlerFunc(adminHandler.ListMessages)))
	mux.Handle("GET /api/admin/messages/{id}", requireAdmin(http.HandlerFunc(adminHandler.GetMessage)))
	mux.Handle("PUT /api/admin/messages/{id}/status", requireAdmin(http.HandlerFunc(adminHandler.UpdateStatus)))
	mux.Handle("DELETE /api/admin/messages/{id}", requireAdmin(http.HandlerFunc(adminHandler.DeleteMessage)))
	mux.Handle("POST /api/admin/messages/{id}/reply", requireAdmin(http.HandlerFunc(adminHandler.Reply)))
	mux.Handle("POST /api/admin/send-email", requireAdmin(http.HandlerFunc(adminHandler.SendEmail)))
	mux.Handle("GET /api/admin/stats", requireAdmin(http.HandlerFunc(adminHandler.Stats)))

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler.SecurityHeaders(handler.RequestLogger(h.CORS(mux))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}

	// Drain pending notifications before the pool closes under them.
	dispatcher.Close()
}
