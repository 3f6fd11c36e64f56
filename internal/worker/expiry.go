// Package worker holds the background jobs that run alongside the HTTP
// server.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/teamtodo/teamtodo-api/internal/repository"
)

const sweepTimeout = 30 * time.Second

// InvitationSweeper periodically deletes expired team invitations. The
// accept path does not check expiry itself; the sweeper bounds how long an
// expired invitation stays acceptable.
type InvitationSweeper struct {
	cron     *cron.Cron
	repo     repository.InvitationRepository
	logger   *slog.Logger
	interval time.Duration
}

func NewInvitationSweeper(repo repository.InvitationRepository, logger *slog.Logger, interval time.Duration) *InvitationSweeper {
	return &InvitationSweeper{
		cron:     cron.New(),
		repo:     repo,
		logger:   logger,
		interval: interval,
	}
}

func (s *InvitationSweeper) Start() error {
	spec := fmt.Sprintf("@every %ds", int(s.interval.Seconds()))
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule invitation sweep: %w", err)
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *InvitationSweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *InvitationSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	deleted, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("invitation sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("expired invitations removed", "count", deleted)
	}
}
