// internal/services/category_service.go
package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type CategoryService struct {
	repo repository.Repository
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	NameLocal   string `json:"name_local,omitempty" validate:"omitempty,max=100"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty" validate:"omitempty,max=100"`
}

func NewCategoryService(repo repository.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, actor policy.Actor) ([]models.Category, error) {
	rows, err := s.repo.Categories().List(ctx)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(c *models.Category) policy.Decision {
		return policy.CategoryRead(actor, c)
	}), nil
}

func (s *CategoryService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Category, error) {
	return visible[models.Category](ctx, s.repo, s.repo.Categories(), actor, policy.EntityCategory, id)
}

func (s *CategoryService) Create(ctx context.Context, actor policy.Actor, req *CategoryRequest) (*models.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name:        strings.TrimSpace(req.Name),
		NameLocal:   req.NameLocal,
		Description: req.Description,
		Icon:        req.Icon,
	}
	category.ID = uuid.New()

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityCategory, Op: policy.OpInsert, Proposed: category,
		}); err != nil {
			return err
		}
		if err := checkRow(category); err != nil {
			return err
		}
		if err := uniqueCategoryName(ctx, tx, category); err != nil {
			return err
		}
		return tx.Categories().Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *CategoryRequest) (*models.Category, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated *models.Category
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Categories().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}

		proposed := *current
		proposed.Name = strings.TrimSpace(req.Name)
		proposed.NameLocal = req.NameLocal
		proposed.Description = req.Description
		proposed.Icon = req.Icon

		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityCategory, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
		}); err != nil {
			return err
		}
		if err := checkRow(&proposed); err != nil {
			return err
		}
		if err := uniqueCategoryName(ctx, tx, &proposed); err != nil {
			return err
		}
		if err := tx.Categories().Update(ctx, &proposed); err != nil {
			return err
		}
		updated = &proposed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete keeps the category's products and clears their category.
func (s *CategoryService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	return s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Categories().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityCategory, Op: policy.OpDelete, Current: current,
		}); err != nil {
			return err
		}
		return deleteCategoryCascade(ctx, tx, id)
	})
}

func uniqueCategoryName(ctx context.Context, tx repository.Repository, c *models.Category) error {
	existing, err := tx.Categories().FindByName(ctx, c.Name)
	switch {
	case apperrors.IsNotFound(err):
		return nil
	case err != nil:
		return err
	case existing.ID != c.ID:
		verr := apperrors.Integrity(apperrors.ViolationDuplicate, "name", "category %q already exists", c.Name)
		logViolation(verr)
		return verr
	}
	return nil
}
