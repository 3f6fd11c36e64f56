package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/teamtodo/teamtodo-api/internal/model"
	"github.com/teamtodo/teamtodo-api/internal/repository"
)

const (
	minCategoryName = 3
	maxCategoryName = 50
)

type CreateCategoryInput struct {
	AgentType   model.AgentType
	AgentID     string
	Name        string
	Color       string
	Description string
}

type UpdateCategoryInput struct {
	AgentType   model.AgentType
	AgentID     string
	Name        *string
	Color       *string
	Description *string
}

type CategoryService struct {
	agents *AgentService
	repo   repository.CategoryRepository
}

func NewCategoryService(agents *AgentService, repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{agents: agents, repo: repo}
}

func (s *CategoryService) Create(ctx context.Context, principal model.Principal, input CreateCategoryInput) (model.Category, error) {
	agent, err := s.agents.Authorize(ctx, principal, input.AgentType, input.AgentID)
	if err != nil {
		return model.Category{}, err
	}

	if err := validateCategoryName(input.Name); err != nil {
		return model.Category{}, err
	}
	if !model.ValidColor(input.Color) {
		return model.Category{}, fmt.Errorf("%w: color must be of the form #RRGGBB", ErrInvalidInput)
	}

	category := model.Category{
		Owner:       agent,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		CreatedBy:   principal.UserID,
	}

	created, err := s.repo.Create(ctx, category)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to create category: %w", err)
	}
	return created, nil
}

func (s *CategoryService) Update(ctx context.Context, principal model.Principal, categoryID string, input UpdateCategoryInput) (model.Category, error) {
	_, existing, err := s.authorizeForCategory(ctx, principal, categoryID, input.AgentType, input.AgentID)
	if err != nil {
		return model.Category{}, err
	}

	if input.Name != nil {
		if err := validateCategoryName(*input.Name); err != nil {
			return model.Category{}, err
		}
		existing.Name = *input.Name
	}
	if input.Color != nil {
		if !model.ValidColor(*input.Color) {
			return model.Category{}, fmt.Errorf("%w: color must be of the form #RRGGBB", ErrInvalidInput)
		}
		existing.Color = *input.Color
	}
	if input.Description != nil {
		existing.Description = *input.Description
	}
	existing.UpdatedBy = &principal.UserID

	updated, err := s.repo.Update(ctx, existing)
	if err != nil {
		return model.Category{}, fmt.Errorf("failed to update category: %w", err)
	}
	return updated, nil
}

// Delete removes a category. With deleteTodos the todos under it go too,
// otherwise they survive with their category link cleared.
func (s *CategoryService) Delete(ctx context.Context, principal model.Principal, categoryID string, agentType model.AgentType, agentID string, deleteTodos bool) error {
	agent, _, err := s.authorizeForCategory(ctx, principal, categoryID, agentType, agentID)
	if err != nil {
		return err
	}

	if _, err := s.repo.Delete(ctx, categoryID, agent, deleteTodos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) List(ctx context.Context, principal model.Principal, agentType model.AgentType, agentID string) ([]model.Category, error) {
	agent, err := s.agents.Authorize(ctx, principal, agentType, agentID)
	if err != nil {
		return nil, err
	}

	categories, err := s.repo.ListByOwner(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) authorizeForCategory(ctx context.Context, principal model.Principal, categoryID string, agentType model.AgentType, agentID string) (model.Agent, model.Category, error) {
	agent, err := s.agents.Authorize(ctx, principal, agentType, agentID)
	if err != nil {
		return model.Agent{}, model.Category{}, err
	}

	category, err := s.repo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Agent{}, model.Category{}, ErrNotFound
		}
		return model.Agent{}, model.Category{}, fmt.Errorf("failed to get category: %w", err)
	}
	if category.Owner != agent {
		return model.Agent{}, model.Category{}, fmt.Errorf("%w: category belongs to another agent", ErrUnauthorized)
	}
	return agent, category, nil
}

func validateCategoryName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < minCategoryName || n > maxCategoryName {
		return fmt.Errorf("%w: name must be %d-%d characters", ErrInvalidInput, minCategoryName, maxCategoryName)
	}
	return nil
}
