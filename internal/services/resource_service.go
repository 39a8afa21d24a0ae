// internal/services/resource_service.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type ResourceService struct {
	repo repository.Repository
}

type ResourceRequest struct {
	Title        string `json:"title" validate:"required,max=255"`
	TitleLocal   string `json:"title_local,omitempty" validate:"omitempty,max=255"`
	Content      string `json:"content" validate:"required"`
	ContentLocal string `json:"content_local,omitempty"`
	Category     string `json:"category,omitempty" validate:"omitempty,max=100"`
	MediaURL     string `json:"media_url,omitempty" validate:"omitempty,url"`
	IsPublished  bool   `json:"is_published"`
}

func NewResourceService(repo repository.Repository) *ResourceService {
	return &ResourceService{repo: repo}
}

// List returns the resources the actor may read, optionally narrowed to
// one category.
func (s *ResourceService) List(ctx context.Context, actor policy.Actor, category string) ([]models.EducationalResource, error) {
	rows, err := s.repo.Resources().List(ctx)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(r *models.EducationalResource) policy.Decision {
		if category != "" && r.Category != category {
			return policy.Deny
		}
		return policy.ResourceRead(actor, r)
	}), nil
}

func (s *ResourceService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.EducationalResource, error) {
	return visible[models.EducationalResource](ctx, s.repo, s.repo.Resources(), actor, policy.EntityResource, id)
}

// View returns the resource and counts the view. The counter is maintained
// by the system, so a reader needs no write permission on the row.
func (s *ResourceService) View(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.EducationalResource, error) {
	var viewed *models.EducationalResource
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if _, err := visible[models.EducationalResource](ctx, tx, tx.Resources(), actor, policy.EntityResource, id); err != nil {
			return err
		}
		if err := tx.Resources().IncrementViews(ctx, id); err != nil {
			return err
		}
		row, err := tx.Resources().Get(ctx, id)
		if err != nil {
			return err
		}
		viewed = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return viewed, nil
}

func (s *ResourceService) Create(ctx context.Context, actor policy.Actor, req *ResourceRequest) (*models.EducationalResource, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	resource := &models.EducationalResource{}
	applyResourceRequest(resource, req)
	resource.ID = uuid.New()
	if !actor.IsAnonymous() {
		author := actor.ID
		resource.AuthorID = &author
	}

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityResource, Op: policy.OpInsert, Proposed: resource,
		}); err != nil {
			return err
		}
		if err := checkRow(resource); err != nil {
			return err
		}
		return tx.Resources().Create(ctx, resource)
	})
	if err != nil {
		return nil, err
	}
	return resource, nil
}

func (s *ResourceService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *ResourceRequest) (*models.EducationalResource, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated *models.EducationalResource
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Resources().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}

		proposed := *current
		applyResourceRequest(&proposed, req)

		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityResource, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
		}); err != nil {
			return err
		}
		if err := checkRow(&proposed); err != nil {
			return err
		}
		if err := tx.Resources().Update(ctx, &proposed); err != nil {
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

// Delete removes the resource and every bookmark pointing at it.
func (s *ResourceService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	return s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Resources().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityResource, Op: policy.OpDelete, Current: current,
		}); err != nil {
			return err
		}
		return deleteResourceCascade(ctx, tx, id)
	})
}

func applyResourceRequest(r *models.EducationalResource, req *ResourceRequest) {
	r.Title = req.Title
	r.TitleLocal = req.TitleLocal
	r.Content = req.Content
	r.ContentLocal = req.ContentLocal
	r.Category = req.Category
	r.MediaURL = req.MediaURL
	r.IsPublished = req.IsPublished
}
