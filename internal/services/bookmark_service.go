// internal/services/bookmark_service.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type BookmarkService struct {
	repo repository.Repository
}

type CreateBookmarkRequest struct {
	ResourceID uuid.UUID `json:"resource_id" validate:"required"`
}

func NewBookmarkService(repo repository.Repository) *BookmarkService {
	return &BookmarkService{repo: repo}
}

func (s *BookmarkService) List(ctx context.Context, actor policy.Actor) ([]models.ResourceBookmark, error) {
	if actor.IsAnonymous() {
		return []models.ResourceBookmark{}, nil
	}
	rows, err := s.repo.Bookmarks().ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(b *models.ResourceBookmark) policy.Decision {
		return policy.BookmarkAccess(actor, b)
	}), nil
}

// Create bookmarks a resource the actor can read. Bookmarking the same
// resource twice is a duplicate.
func (s *BookmarkService) Create(ctx context.Context, actor policy.Actor, req *CreateBookmarkRequest) (*models.ResourceBookmark, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	bookmark := &models.ResourceBookmark{
		UserID:     actor.ID,
		ResourceID: req.ResourceID,
	}
	bookmark.ID = uuid.New()

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityResourceBookmark, Op: policy.OpInsert, Proposed: bookmark,
		}); err != nil {
			return err
		}
		if _, err := visible[models.EducationalResource](ctx, tx, tx.Resources(), actor, policy.EntityResource, req.ResourceID); err != nil {
			return err
		}
		if err := checkRow(bookmark); err != nil {
			return err
		}

		if _, err := tx.Bookmarks().FindByKey(ctx, bookmark.UserID, bookmark.ResourceID); err == nil {
			verr := apperrors.Integrity(apperrors.ViolationDuplicate, "resource_id", "resource %s already bookmarked", bookmark.ResourceID)
			logViolation(verr)
			return verr
		} else if !apperrors.IsNotFound(err) {
			return err
		}

		return tx.Bookmarks().Create(ctx, bookmark)
	})
	if err != nil {
		return nil, err
	}
	return bookmark, nil
}

func (s *BookmarkService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	return s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Bookmarks().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityResourceBookmark, Op: policy.OpDelete, Current: current,
		}); err != nil {
			return err
		}
		return tx.Bookmarks().Delete(ctx, id)
	})
}
