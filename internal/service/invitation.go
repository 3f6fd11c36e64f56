package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/teamtodo/teamtodo-api/internal/mail"
	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
)

const mailDispatchTimeout = 10 * time.Second

type InvitationService struct {
	agents  *AgentService
	teams   repository.TeamRepository
	repo    repository.InvitationRepository
	mailer  mail.Mailer
	logger  *slog.Logger
	baseURL string
	ttl     time.Duration
}

func NewInvitationService(
	agents *AgentService,
	teams repository.TeamRepository,
	repo repository.InvitationRepository,
	mailer mail.Mailer,
	logger *slog.Logger,
	baseURL string,
	ttl time.Duration,
) *InvitationService {
	return &InvitationService{
		agents:  agents,
		teams:   teams,
		repo:    repo,
		mailer:  mailer,
		logger:  logger,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
	}
}

type CreateInvitationOutput struct {
	ID              string `json:"id"`
	Link            string `json:"link"`
	EmailDispatched bool   `json:"email_dispatched"`
}

// Create issues an invitation for the team. With an email the invitation is
// bound to that address and a mail is dispatched; without one an open link
// invitation is returned, reusing the team's existing open invitation if it
// has one. Owner only.
func (s *InvitationService) Create(ctx context.Context, principal model.Principal, teamID string, email *string) (CreateInvitationOutput, error) {
	team, err := s.agents.RequireTeamOwner(ctx, principal, teamID)
	if err != nil {
		return CreateInvitationOutput{}, err
	}

	if email != nil {
		return s.createBound(ctx, principal, team, *email)
	}
	return s.createOpen(ctx, principal, team)
}

func (s *InvitationService) createBound(ctx context.Context, principal model.Principal, team model.Team, email string) (CreateInvitationOutput, error) {
	if email == "" {
		return CreateInvitationOutput{}, fmt.Errorf("%w: email must not be empty", ErrInvalidInput)
	}

	exists, err := s.teams.MemberEmailExists(ctx, team.ID, email)
	if err != nil {
		return CreateInvitationOutput{}, fmt.Errorf("failed to check member email: %w", err)
	}
	if exists {
		return CreateInvitationOutput{}, fmt.Errorf("%w: %s already belongs to the team", ErrAlreadyMember, email)
	}

	invitation, err := s.repo.Create(ctx, model.Invitation{
		ID:        uuid.NewString(),
		TeamID:    team.ID,
		InvitedBy: principal.UserID,
		Email:     &email,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	})
	if err != nil {
		return CreateInvitationOutput{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	// Fire and forget: delivery is not part of the invitation's consistency.
	// A failed send leaves the invitation in place and is only logged.
	go s.dispatchMail(team, principal.Email, email, s.link(invitation.ID))

	return CreateInvitationOutput{
		ID:              invitation.ID,
		Link:            s.link(invitation.ID),
		EmailDispatched: true,
	}, nil
}

func (s *InvitationService) createOpen(ctx context.Context, principal model.Principal, team model.Team) (CreateInvitationOutput, error) {
	existing, err := s.repo.FindOpenByTeam(ctx, team.ID)
	if err == nil {
		return CreateInvitationOutput{ID: existing.ID, Link: s.link(existing.ID)}, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return CreateInvitationOutput{}, fmt.Errorf("failed to look up open invitation: %w", err)
	}

	invitation, err := s.repo.Create(ctx, model.Invitation{
		ID:        uuid.NewString(),
		TeamID:    team.ID,
		InvitedBy: principal.UserID,
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	})
	if err != nil {
		return CreateInvitationOutput{}, fmt.Errorf("failed to create invitation: %w", err)
	}

	return CreateInvitationOutput{ID: invitation.ID, Link: s.link(invitation.ID)}, nil
}

// Accept consumes the invitation and enrolls the principal: the membership
// insert and the invitation delete commit together. A second accept of the
// same invitation finds no row and fails with not found.
func (s *InvitationService) Accept(ctx context.Context, principal model.Principal, invitationID string) (model.Team, error) {
	invitation, err := s.repo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Team{}, ErrNotFound
		}
		return model.Team{}, fmt.Errorf("failed to get invitation: %w", err)
	}

	if !invitation.Open() && *invitation.Email != principal.Email {
		return model.Team{}, fmt.Errorf("%w: invitation is bound to a different address", ErrUnauthorized)
	}

	count, err := s.teams.MembershipCount(ctx, invitation.TeamID, principal.UserID)
	if err != nil {
		return model.Team{}, fmt.Errorf("failed to check membership: %w", err)
	}
	if count > 0 {
		return model.Team{}, fmt.Errorf("%w: you already belong to this team", ErrAlreadyMember)
	}

	if err := s.repo.Accept(ctx, invitation.ID, principal.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Team{}, ErrNotFound
		}
		return model.Team{}, fmt.Errorf("failed to accept invitation: %w", err)
	}

	team, err := s.teams.GetByID(ctx, invitation.TeamID)
	if err != nil {
		return model.Team{}, fmt.Errorf("failed to get team: %w", err)
	}
	return team, nil
}

// Delete revokes an invitation. Owner only.
func (s *InvitationService) Delete(ctx context.Context, principal model.Principal, invitationID string) error {
	invitation, err := s.repo.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get invitation: %w", err)
	}

	if _, err := s.agents.RequireTeamOwner(ctx, principal, invitation.TeamID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, invitation.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete invitation: %w", err)
	}
	return nil
}

// List returns the team's pending invitations. Any member may look.
func (s *InvitationService) List(ctx context.Context, principal model.Principal, teamID string) ([]model.Invitation, error) {
	if _, err := s.agents.Authorize(ctx, principal, model.AgentTypeTeam, teamID); err != nil {
		return nil, err
	}

	invitations, err := s.repo.ListByTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invitations, nil
}

func (s *InvitationService) link(invitationID string) string {
	return fmt.Sprintf("%s/join-team/%s", s.baseURL, invitationID)
}

func (s *InvitationService) dispatchMail(team model.Team, inviter, to, link string) {
	ctx, cancel := context.WithTimeout(context.Background(), mailDispatchTimeout)
	defer cancel()

	invite := mail.Invite{
		To:       to,
		TeamName: team.Name,
		Inviter:  inviter,
		Link:     link,
	}
	if err := s.mailer.SendInvite(ctx, invite); err != nil {
		s.logger.Error("failed to dispatch invite mail", "team_id", team.ID, "error", err)
	}
}
