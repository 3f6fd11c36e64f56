package service_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/teamtodo/teamtodo-api/internal/mail"
	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/service"
)

// mockMailer records invites on a channel so tests can wait for the
// fire-and-forget dispatch goroutine.
type mockMailer struct {
	sent chan mail.Invite
	err  error
}

func newMockMailer() *mockMailer {
	return &mockMailer{sent: make(chan mail.Invite, 1)}
}

func (m *mockMailer) SendInvite(ctx context.Context, invite mail.Invite) error {
	m.sent <- invite
	return m.err
}

func newInvitationService(teams *mockTeamRepo, repo *mockInvitationRepo, mailer mail.Mailer) *service.InvitationService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return service.NewInvitationService(
		service.NewAgentService(teams),
		teams,
		repo,
		mailer,
		logger,
		"https://todo.example.com",
		24*time.Hour,
	)
}

func TestInvitationCreateBound(t *testing.T) {
	email := "invitee@example.com"

	tests := []struct {
		name        string
		email       string
		memberEmail bool
		ownerID     string
		wantErr     error
	}{
		{
			name:    "success",
			email:   email,
			ownerID: "user-1",
		},
		{
			name:    "empty email",
			email:   "",
			ownerID: "user-1",
			wantErr: service.ErrInvalidInput,
		},
		{
			name:        "address already on the team",
			email:       email,
			memberEmail: true,
			ownerID:     "user-1",
			wantErr:     service.ErrAlreadyMember,
		},
		{
			name:    "non-owner rejected",
			email:   email,
			ownerID: "user-2",
			wantErr: service.ErrUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams := &mockTeamRepo{
				getByIDFn: func(ctx context.Context, id string) (model.Team, error) {
					team := sampleTeam()
					team.OwnerID = tt.ownerID
					return team, nil
				},
				memberEmailExistsFn: func(ctx context.Context, teamID, email string) (bool, error) {
					return tt.memberEmail, nil
				},
			}
			repo := &mockInvitationRepo{
				createFn: func(ctx context.Context, invitation model.Invitation) (model.Invitation, error) {
					if invitation.Email == nil || *invitation.Email != tt.email {
						t.Errorf("expected invitation bound to %q, got %v", tt.email, invitation.Email)
					}
					if invitation.ID == "" {
						t.Error("expected a generated invitation id")
					}
					return invitation, nil
				},
			}
			mailer := newMockMailer()
			svc := newInvitationService(teams, repo, mailer)

			boundEmail := tt.email
			got, err := svc.Create(context.Background(), samplePrincipal(), "team-1", &boundEmail)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.EmailDispatched {
				t.Error("expected email_dispatched=true")
			}
			if got.Link == "" {
				t.Error("expected an invitation link")
			}

			select {
			case invite := <-mailer.sent:
				if invite.To != tt.email {
					t.Errorf("expected mail to %q, got %q", tt.email, invite.To)
				}
				if invite.Link != got.Link {
					t.Errorf("expected mail link %q, got %q", got.Link, invite.Link)
				}
			case <-time.After(time.Second):
				t.Fatal("expected an invite mail to be dispatched")
			}
		})
	}
}

func TestInvitationCreateOpen(t *testing.T) {
	tests := []struct {
		name     string
		existing *model.Invitation
	}{
		{name: "creates a new open invitation"},
		{name: "reuses the existing open invitation", existing: ptrInvitation(sampleInvitation(nil))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			created := false
			repo := &mockInvitationRepo{
				findOpenByTeamFn: func(ctx context.Context, teamID string) (model.Invitation, error) {
					if tt.existing != nil {
						return *tt.existing, nil
					}
					return model.Invitation{}, sql.ErrNoRows
				},
				createFn: func(ctx context.Context, invitation model.Invitation) (model.Invitation, error) {
					created = true
					if invitation.Email != nil {
						t.Error("expected an open invitation with no email")
					}
					return invitation, nil
				},
			}
			svc := newInvitationService(selfMemberTeamRepo(), repo, newMockMailer())

			got, err := svc.Create(context.Background(), samplePrincipal(), "team-1", nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.existing != nil {
				if created {
					t.Error("expected existing invitation to be reused, not a new one created")
				}
				if got.ID != tt.existing.ID {
					t.Errorf("expected id=%s, got %s", tt.existing.ID, got.ID)
				}
			} else if !created {
				t.Error("expected a new invitation to be created")
			}
			if got.EmailDispatched {
				t.Error("open invitation must not report a dispatched mail")
			}
		})
	}
}

func TestInvitationAccept(t *testing.T) {
	otherEmail := "someone-else@example.com"
	myEmail := "user1@example.com"

	tests := []struct {
		name      string
		getFn     func(ctx context.Context, id string) (model.Invitation, error)
		countFn   func(ctx context.Context, teamID, userID string) (int, error)
		acceptErr error
		wantErr   error
	}{
		{
			name: "open invitation",
			getFn: func(ctx context.Context, id string) (model.Invitation, error) {
				return sampleInvitation(nil), nil
			},
		},
		{
			name: "bound invitation matching email",
			getFn: func(ctx context.Context, id string) (model.Invitation, error) {
				return sampleInvitation(&myEmail), nil
			},
		},
		{
			name: "bound invitation for another address",
			getFn: func(ctx context.Context, id string) (model.Invitation, error) {
				return sampleInvitation(&otherEmail), nil
			},
			wantErr: service.ErrUnauthorized,
		},
		{
			name: "invitation gone",
			getFn: func(ctx context.Context, id string) (model.Invitation, error) {
				return model.Invitation{}, fmt.Errorf("scan: %w", sql.ErrNoRows)
			},
			wantErr: service.ErrNotFound,
		},
		{
			name: "already a member",
			getFn: func(ctx context.Context, id string) (model.Invitation, error) {
				return sampleInvitation(nil), nil
			},
			countFn: func(ctx context.Context, teamID, userID string) (int, error) {
				return 1, nil
			},
			wantErr: service.ErrAlreadyMember,
		},
		{
			name: "consumed between load and accept",
			getFn: func(ctx context.Context, id string) (model.Invitation, error) {
				return sampleInvitation(nil), nil
			},
			acceptErr: sql.ErrNoRows,
			wantErr:   service.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			countFn := tt.countFn
			if countFn == nil {
				countFn = func(ctx context.Context, teamID, userID string) (int, error) {
					return 0, nil
				}
			}
			teams := &mockTeamRepo{
				membershipCountFn: countFn,
				getByIDFn: func(ctx context.Context, id string) (model.Team, error) {
					return sampleTeam(), nil
				},
			}
			repo := &mockInvitationRepo{
				getByIDFn: tt.getFn,
				acceptFn: func(ctx context.Context, id, userID string) error {
					if userID != "user-1" {
						t.Errorf("expected user-1 enrolled, got %s", userID)
					}
					return tt.acceptErr
				},
			}
			svc := newInvitationService(teams, repo, newMockMailer())

			team, err := svc.Accept(context.Background(), samplePrincipal(), "inv-1")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if team.ID != "team-1" {
				t.Errorf("expected team-1, got %s", team.ID)
			}
		})
	}
}

func TestInvitationDelete(t *testing.T) {
	tests := []struct {
		name    string
		ownerID string
		getErr  error
		wantErr error
	}{
		{name: "owner revokes", ownerID: "user-1"},
		{name: "non-owner rejected", ownerID: "user-2", wantErr: service.ErrUnauthorized},
		{name: "invitation gone", ownerID: "user-1", getErr: sql.ErrNoRows, wantErr: service.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams := &mockTeamRepo{
				getByIDFn: func(ctx context.Context, id string) (model.Team, error) {
					team := sampleTeam()
					team.OwnerID = tt.ownerID
					return team, nil
				},
			}
			repo := &mockInvitationRepo{
				getByIDFn: func(ctx context.Context, id string) (model.Invitation, error) {
					if tt.getErr != nil {
						return model.Invitation{}, tt.getErr
					}
					return sampleInvitation(nil), nil
				},
				deleteFn: func(ctx context.Context, id string) error {
					return nil
				},
			}
			svc := newInvitationService(teams, repo, newMockMailer())

			err := svc.Delete(context.Background(), samplePrincipal(), "inv-1")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestInvitationList(t *testing.T) {
	tests := []struct {
		name    string
		teamID  string
		wantErr error
	}{
		{name: "member may list", teamID: "team-1"},
		{name: "outsider may not", teamID: "team-9", wantErr: service.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockInvitationRepo{
				listByTeamFn: func(ctx context.Context, teamID string) ([]model.Invitation, error) {
					return []model.Invitation{sampleInvitation(nil)}, nil
				},
			}
			svc := newInvitationService(selfMemberTeamRepo(), repo, newMockMailer())

			got, err := svc.List(context.Background(), samplePrincipal(), tt.teamID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != 1 {
				t.Errorf("expected 1 invitation, got %d", len(got))
			}
		})
	}
}

func ptrInvitation(i model.Invitation) *model.Invitation {
	return &i
}
