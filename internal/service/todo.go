package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
)

// parseDueAt parses an RFC3339 string into *time.Time.
// Returns nil if input is nil.
func parseDueAt(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid due_at format, expected RFC3339", ErrInvalidInput)
	}
	return &t, nil
}

type TodoInput struct {
	AgentType       model.AgentType
	AgentID         string
	Title           string
	Description     string
	DueAt           *string // RFC3339 string, parsed in service
	CategoryIDs     []string
	AssignedUserIDs []string
}

type TodoService struct {
	agents     *AgentService
	quota      *QuotaService
	repo       repository.TodoRepository
	categories repository.CategoryRepository
}

func NewTodoService(agents *AgentService, quota *QuotaService, repo repository.TodoRepository, categories repository.CategoryRepository) *TodoService {
	return &TodoService{agents: agents, quota: quota, repo: repo, categories: categories}
}

func (s *TodoService) Create(ctx context.Context, principal model.Principal, input TodoInput) (model.Todo, error) {
	agent, err := s.agents.Authorize(ctx, principal, input.AgentType, input.AgentID)
	if err != nil {
		return model.Todo{}, err
	}

	dueAt, err := validateTodoInput(agent, input)
	if err != nil {
		return model.Todo{}, err
	}
	if err := s.verifyCategoryLinks(ctx, agent, input.CategoryIDs); err != nil {
		return model.Todo{}, err
	}

	if err := s.quota.CheckTodoCreate(ctx, agent); err != nil {
		return model.Todo{}, err
	}

	todo := model.Todo{
		Owner:       agent,
		Title:       input.Title,
		Description: input.Description,
		DueAt:       dueAt,
		CategoryIDs: input.CategoryIDs,
		AssigneeIDs: input.AssignedUserIDs,
		CreatedBy:   principal.UserID,
	}

	created, err := s.repo.Create(ctx, todo)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to create todo: %w", err)
	}
	return created, nil
}

func (s *TodoService) Update(ctx context.Context, principal model.Principal, todoID string, input TodoInput) (model.Todo, error) {
	agent, existing, err := s.authorizeForTodo(ctx, principal, todoID, input.AgentType, input.AgentID)
	if err != nil {
		return model.Todo{}, err
	}

	if existing.Done {
		return model.Todo{}, fmt.Errorf("%w: todo is already done", ErrInvalidState)
	}

	dueAt, err := validateTodoInput(agent, input)
	if err != nil {
		return model.Todo{}, err
	}
	if err := s.verifyCategoryLinks(ctx, agent, input.CategoryIDs); err != nil {
		return model.Todo{}, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.DueAt = dueAt
	existing.CategoryIDs = input.CategoryIDs
	existing.AssigneeIDs = input.AssignedUserIDs
	existing.UpdatedBy = &principal.UserID

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to update todo: %w", err)
	}
	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, principal model.Principal, todoID string, agentType model.AgentType, agentID string) error {
	agent, _, err := s.authorizeForTodo(ctx, principal, todoID, agentType, agentID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, todoID, agent); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

func (s *TodoService) MarkDone(ctx context.Context, principal model.Principal, todoID string, agentType model.AgentType, agentID string) (model.Todo, error) {
	_, todo, err := s.authorizeForTodo(ctx, principal, todoID, agentType, agentID)
	if err != nil {
		return model.Todo{}, err
	}
	// Re-marking is a no-op so the original done_at/done_by stamp survives.
	if todo.Done {
		return todo, nil
	}

	now := time.Now().UTC()
	updated, err := s.repo.SetDone(ctx, todoID, true, &now, &principal.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to mark todo done: %w", err)
	}
	return updated, nil
}

func (s *TodoService) Undo(ctx context.Context, principal model.Principal, todoID string, agentType model.AgentType, agentID string) (model.Todo, error) {
	_, todo, err := s.authorizeForTodo(ctx, principal, todoID, agentType, agentID)
	if err != nil {
		return model.Todo{}, err
	}
	if !todo.Done {
		return todo, nil
	}

	updated, err := s.repo.SetDone(ctx, todoID, false, nil, nil)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrNotFound
		}
		return model.Todo{}, fmt.Errorf("failed to undo todo: %w", err)
	}
	return updated, nil
}

// List returns the agent's todos together with its categories so callers can
// resolve the links without a second request.
func (s *TodoService) List(ctx context.Context, principal model.Principal, agentType model.AgentType, agentID string, done *bool) (model.TodoListResult, error) {
	agent, err := s.agents.Authorize(ctx, principal, agentType, agentID)
	if err != nil {
		return model.TodoListResult{}, err
	}

	todos, err := s.repo.ListByOwner(ctx, model.TodoListParams{Owner: agent, Done: done})
	if err != nil {
		return model.TodoListResult{}, fmt.Errorf("failed to list todos: %w", err)
	}
	categories, err := s.categories.ListByOwner(ctx, agent)
	if err != nil {
		return model.TodoListResult{}, fmt.Errorf("failed to list categories: %w", err)
	}

	return model.TodoListResult{Todos: todos, Categories: categories}, nil
}

// authorizeForTodo authorizes the claimed agent and re-verifies server-side
// that the todo is actually owned by that agent; the claim is never trusted
// on its own.
func (s *TodoService) authorizeForTodo(ctx context.Context, principal model.Principal, todoID string, agentType model.AgentType, agentID string) (model.Agent, model.Todo, error) {
	agent, err := s.agents.Authorize(ctx, principal, agentType, agentID)
	if err != nil {
		return model.Agent{}, model.Todo{}, err
	}

	todo, err := s.repo.GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Agent{}, model.Todo{}, ErrNotFound
		}
		return model.Agent{}, model.Todo{}, fmt.Errorf("failed to get todo: %w", err)
	}
	if todo.Owner != agent {
		return model.Agent{}, model.Todo{}, fmt.Errorf("%w: todo belongs to another agent", ErrUnauthorized)
	}
	return agent, todo, nil
}

// verifyCategoryLinks confirms every category a todo links to belongs to the
// same agent. Foreign links would misattribute the cascade of a category
// delete and desync the owners' todo counters.
func (s *TodoService) verifyCategoryLinks(ctx context.Context, agent model.Agent, categoryIDs []string) error {
	for _, id := range categoryIDs {
		category, err := s.categories.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: unknown category %s", ErrInvalidInput, id)
			}
			return fmt.Errorf("failed to get category: %w", err)
		}
		if category.Owner != agent {
			return fmt.Errorf("%w: category %s belongs to another agent", ErrUnauthorized, id)
		}
	}
	return nil
}

func validateTodoInput(agent model.Agent, input TodoInput) (*time.Time, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(input.AssignedUserIDs) > 0 && agent.Type != model.AgentTypeTeam {
		return nil, fmt.Errorf("%w: assignees are only allowed on team todos", ErrInvalidInput)
	}
	return parseDueAt(input.DueAt)
}
