package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/teamtodo/teamtodo-api/internal/config"
	apihttp "github.com/teamtodo/teamtodo-api/internal/http"
	"github.com/teamtodo/teamtodo-api/internal/mail"
	"github.com/teamtodo/teamtodo-api/internal/middleware"
	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
	"github.com/teamtodo/teamtodo-api/internal/service"
	"github.com/teamtodo/teamtodo-api/internal/worker"
)

// principalResolver adapts the user repository to the auth middleware. A
// subject seen for the first time gets a user row on the spot, so there is
// no separate signup step.
type principalResolver struct {
	repo repository.UserRepository
}

func (r *principalResolver) ResolvePrincipal(ctx context.Context, subject, email string) (model.Principal, error) {
	user, err := r.repo.GetOrCreate(ctx, subject, email)
	if err != nil {
		return model.Principal{}, fmt.Errorf("failed to resolve principal: %w", err)
	}
	return model.Principal{UserID: user.ID, Email: user.Email}, nil
}

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Missing .env is fine; everything can come from real env vars.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("config loaded",
		"env", cfg.AppEnv,
		"port", cfg.ServerPort,
		"auth_dev_mode", cfg.AuthDevMode,
		"log_level", cfg.LogLevel,
	)

	// Database connection
	db, err := repository.NewDB(cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database connected")

	// Repositories
	userRepo := repository.NewPostgresUser(db)
	teamRepo := repository.NewPostgresTeam(db)
	todoRepo := repository.NewPostgresTodo(db)
	categoryRepo := repository.NewPostgresCategory(db)
	invitationRepo := repository.NewPostgresInvitation(db)

	// Mailer
	var mailer mail.Mailer
	if cfg.SMTP.Enabled() {
		mailer = mail.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		logger.Info("smtp mailer initialized", "host", cfg.SMTP.Host)
	} else {
		mailer = mail.NewLogMailer(logger)
		logger.Warn("no smtp server configured, invite mails are logged only")
	}

	inviteTTL, err := cfg.Invite.TTLDuration()
	if err != nil {
		return err
	}
	sweepInterval, err := cfg.Invite.SweepIntervalDuration()
	if err != nil {
		return err
	}

	// Services
	agentSvc := service.NewAgentService(teamRepo)
	quotaSvc := service.NewQuotaService(userRepo, teamRepo)
	todoSvc := service.NewTodoService(agentSvc, quotaSvc, todoRepo, categoryRepo)
	categorySvc := service.NewCategoryService(agentSvc, categoryRepo)
	teamSvc := service.NewTeamService(agentSvc, quotaSvc, teamRepo)
	invitationSvc := service.NewInvitationService(agentSvc, teamRepo, invitationRepo, mailer, logger, cfg.BaseURL, inviteTTL)
	userSvc := service.NewUserService(userRepo, teamRepo)

	// Auth middleware
	authCfg := middleware.AuthConfig{
		DevMode:  cfg.AuthDevMode,
		Resolver: &principalResolver{repo: userRepo},
	}
	if !cfg.AuthDevMode {
		authCfg.JWKSClient = middleware.NewJWKSClient(cfg.Auth.ResolveJWKSURL())
		authCfg.Issuer = cfg.Auth.Issuer
		authCfg.Audience = cfg.Auth.Audience
	}
	auth, err := middleware.NewAuth(authCfg)
	if err != nil {
		return fmt.Errorf("failed to create auth middleware: %w", err)
	}

	// Background invitation sweeper
	sweeper := worker.NewInvitationSweeper(invitationRepo, logger, sweepInterval)
	if err := sweeper.Start(); err != nil {
		return err
	}
	defer sweeper.Stop()
	logger.Info("invitation sweeper started", "interval", sweepInterval.String())

	// HTTP Server
	srv := apihttp.NewServer(cfg.ServerPort, logger, auth, apihttp.Services{
		Todos:       todoSvc,
		Categories:  categorySvc,
		Teams:       teamSvc,
		Invitations: invitationSvc,
		Users:       userSvc,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	logger.Info("server starting", "port", cfg.ServerPort)

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}
