package service_test

import (
	"context"
	"time"

	"github.com/teamtodo/teamtodo-api/internal/model"
)

// Function-field mocks for the repository interfaces. A nil field means the
// test does not expect that call; reaching it panics and fails the test
// loudly.

type mockUserRepo struct {
	getOrCreateFn  func(ctx context.Context, subject, email string) (model.User, error)
	getByIDFn      func(ctx context.Context, id string) (model.User, error)
	updateFn       func(ctx context.Context, user model.User) (model.User, error)
	syncCountersFn func(ctx context.Context, userID string) (model.User, error)
}

func (m *mockUserRepo) GetOrCreate(ctx context.Context, subject, email string) (model.User, error) {
	return m.getOrCreateFn(ctx, subject, email)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id string) (model.User, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockUserRepo) Update(ctx context.Context, user model.User) (model.User, error) {
	return m.updateFn(ctx, user)
}
func (m *mockUserRepo) SyncCounters(ctx context.Context, userID string) (model.User, error) {
	return m.syncCountersFn(ctx, userID)
}

type mockTeamRepo struct {
	createFn            func(ctx context.Context, name, color, ownerID string) (model.Team, error)
	getByIDFn           func(ctx context.Context, id string) (model.Team, error)
	updateProfileFn     func(ctx context.Context, id, name, color string) (model.Team, error)
	membershipCountFn   func(ctx context.Context, teamID, userID string) (int, error)
	memberEmailExistsFn func(ctx context.Context, teamID, email string) (bool, error)
	listMembersFn       func(ctx context.Context, teamID string) ([]model.Member, error)
	listForUserFn       func(ctx context.Context, userID string) ([]model.Team, error)
}

func (m *mockTeamRepo) Create(ctx context.Context, name, color, ownerID string) (model.Team, error) {
	return m.createFn(ctx, name, color, ownerID)
}
func (m *mockTeamRepo) GetByID(ctx context.Context, id string) (model.Team, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockTeamRepo) UpdateProfile(ctx context.Context, id, name, color string) (model.Team, error) {
	return m.updateProfileFn(ctx, id, name, color)
}
func (m *mockTeamRepo) MembershipCount(ctx context.Context, teamID, userID string) (int, error) {
	return m.membershipCountFn(ctx, teamID, userID)
}
func (m *mockTeamRepo) MemberEmailExists(ctx context.Context, teamID, email string) (bool, error) {
	return m.memberEmailExistsFn(ctx, teamID, email)
}
func (m *mockTeamRepo) ListMembers(ctx context.Context, teamID string) ([]model.Member, error) {
	return m.listMembersFn(ctx, teamID)
}
func (m *mockTeamRepo) ListForUser(ctx context.Context, userID string) ([]model.Team, error) {
	return m.listForUserFn(ctx, userID)
}

type mockTodoRepo struct {
	createFn      func(ctx context.Context, todo model.Todo) (model.Todo, error)
	getByIDFn     func(ctx context.Context, id string) (model.Todo, error)
	updateFn      func(ctx context.Context, todo model.Todo) (model.Todo, error)
	setDoneFn     func(ctx context.Context, id string, done bool, doneAt *time.Time, doneBy *string) (model.Todo, error)
	deleteFn      func(ctx context.Context, id string, owner model.Agent) error
	listByOwnerFn func(ctx context.Context, params model.TodoListParams) ([]model.Todo, error)
}

func (m *mockTodoRepo) Create(ctx context.Context, todo model.Todo) (model.Todo, error) {
	return m.createFn(ctx, todo)
}
func (m *mockTodoRepo) GetByID(ctx context.Context, id string) (model.Todo, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockTodoRepo) Update(ctx context.Context, todo model.Todo) (model.Todo, error) {
	return m.updateFn(ctx, todo)
}
func (m *mockTodoRepo) SetDone(ctx context.Context, id string, done bool, doneAt *time.Time, doneBy *string) (model.Todo, error) {
	return m.setDoneFn(ctx, id, done, doneAt, doneBy)
}
func (m *mockTodoRepo) Delete(ctx context.Context, id string, owner model.Agent) error {
	return m.deleteFn(ctx, id, owner)
}
func (m *mockTodoRepo) ListByOwner(ctx context.Context, params model.TodoListParams) ([]model.Todo, error) {
	return m.listByOwnerFn(ctx, params)
}

type mockCategoryRepo struct {
	createFn      func(ctx context.Context, category model.Category) (model.Category, error)
	getByIDFn     func(ctx context.Context, id string) (model.Category, error)
	updateFn      func(ctx context.Context, category model.Category) (model.Category, error)
	deleteFn      func(ctx context.Context, id string, owner model.Agent, deleteTodos bool) (int, error)
	listByOwnerFn func(ctx context.Context, owner model.Agent) ([]model.Category, error)
}

func (m *mockCategoryRepo) Create(ctx context.Context, category model.Category) (model.Category, error) {
	return m.createFn(ctx, category)
}
func (m *mockCategoryRepo) GetByID(ctx context.Context, id string) (model.Category, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockCategoryRepo) Update(ctx context.Context, category model.Category) (model.Category, error) {
	return m.updateFn(ctx, category)
}
func (m *mockCategoryRepo) Delete(ctx context.Context, id string, owner model.Agent, deleteTodos bool) (int, error) {
	return m.deleteFn(ctx, id, owner, deleteTodos)
}
func (m *mockCategoryRepo) ListByOwner(ctx context.Context, owner model.Agent) ([]model.Category, error) {
	return m.listByOwnerFn(ctx, owner)
}

type mockInvitationRepo struct {
	createFn         func(ctx context.Context, invitation model.Invitation) (model.Invitation, error)
	getByIDFn        func(ctx context.Context, id string) (model.Invitation, error)
	findOpenByTeamFn func(ctx context.Context, teamID string) (model.Invitation, error)
	listByTeamFn     func(ctx context.Context, teamID string) ([]model.Invitation, error)
	acceptFn         func(ctx context.Context, id, userID string) error
	deleteFn         func(ctx context.Context, id string) error
	deleteExpiredFn  func(ctx context.Context, now time.Time) (int64, error)
}

func (m *mockInvitationRepo) Create(ctx context.Context, invitation model.Invitation) (model.Invitation, error) {
	return m.createFn(ctx, invitation)
}
func (m *mockInvitationRepo) GetByID(ctx context.Context, id string) (model.Invitation, error) {
	return m.getByIDFn(ctx, id)
}
func (m *mockInvitationRepo) FindOpenByTeam(ctx context.Context, teamID string) (model.Invitation, error) {
	return m.findOpenByTeamFn(ctx, teamID)
}
func (m *mockInvitationRepo) ListByTeam(ctx context.Context, teamID string) ([]model.Invitation, error) {
	return m.listByTeamFn(ctx, teamID)
}
func (m *mockInvitationRepo) Accept(ctx context.Context, id, userID string) error {
	return m.acceptFn(ctx, id, userID)
}
func (m *mockInvitationRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockInvitationRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return m.deleteExpiredFn(ctx, now)
}

var now = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func samplePrincipal() model.Principal {
	return model.Principal{UserID: "user-1", Email: "user1@example.com"}
}

func sampleUser() model.User {
	return model.User{
		ID:        "user-1",
		Subject:   "sub-1",
		Email:     "user1@example.com",
		Name:      "User One",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleTeam() model.Team {
	return model.Team{
		ID:        "team-1",
		Name:      "Backend",
		Color:     "#3366ff",
		OwnerID:   "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleTodo() model.Todo {
	return model.Todo{
		ID:          "todo-1",
		Owner:       model.UserAgent("user-1"),
		Title:       "Buy groceries",
		Description: "Milk, eggs, bread",
		CreatedBy:   "user-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func sampleCategory() model.Category {
	return model.Category{
		ID:        "cat-1",
		Owner:     model.UserAgent("user-1"),
		Name:      "Errands",
		Color:     "#ff9900",
		CreatedBy: "user-1",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleInvitation(email *string) model.Invitation {
	return model.Invitation{
		ID:        "inv-1",
		TeamID:    "team-1",
		InvitedBy: "user-1",
		Email:     email,
		ExpiresAt: now.Add(24 * time.Hour),
		CreatedAt: now,
	}
}

// selfMemberTeamRepo answers membership checks so user-1 is a member of
// team-1 and nothing else.
func selfMemberTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{
		membershipCountFn: func(ctx context.Context, teamID, userID string) (int, error) {
			if teamID == "team-1" && userID == "user-1" {
				return 1, nil
			}
			return 0, nil
		},
		getByIDFn: func(ctx context.Context, id string) (model.Team, error) {
			return sampleTeam(), nil
		},
	}
}
