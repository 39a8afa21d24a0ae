// internal/services/review_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type ReviewService struct {
	repo repository.Repository
}

type CreateReviewRequest struct {
	ProductID uuid.UUID  `json:"product_id" validate:"required"`
	OrderID   *uuid.UUID `json:"order_id,omitempty"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"rating,omitempty"`
	Comment *string `json:"comment,omitempty"`
}

func NewReviewService(repo repository.Repository) *ReviewService {
	return &ReviewService{repo: repo}
}

func (s *ReviewService) ListByProduct(ctx context.Context, actor policy.Actor, productID uuid.UUID) ([]models.Review, error) {
	rows, err := s.repo.Reviews().ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(r *models.Review) policy.Decision {
		return policy.ReviewRead(actor, r)
	}), nil
}

func (s *ReviewService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Review, error) {
	return visible[models.Review](ctx, s.repo, s.repo.Reviews(), actor, policy.EntityReview, id)
}

// Create records a verified-purchase review. The delivered-order check runs
// in the same transaction as the insert and holds the qualifying orders,
// so a concurrent status change cannot slip between check and write.
func (s *ReviewService) Create(ctx context.Context, actor policy.Actor, req *CreateReviewRequest) (*models.Review, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	review := &models.Review{
		ProductID:          req.ProductID,
		BuyerID:            actor.ID,
		OrderID:            req.OrderID,
		Rating:             req.Rating,
		Comment:            req.Comment,
		IsVerifiedPurchase: true,
	}
	review.ID = uuid.New()

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityReview, Op: policy.OpInsert, Proposed: review,
		}); err != nil {
			return err
		}
		if err := checkRow(review); err != nil {
			return err
		}

		if _, err := tx.Reviews().FindByKey(ctx, review.ProductID, review.BuyerID, review.OrderID); err == nil {
			verr := apperrors.Integrity(apperrors.ViolationDuplicate, "product_id",
				"product %s already reviewed for this order", review.ProductID)
			logViolation(verr)
			return verr
		} else if !apperrors.IsNotFound(err) {
			return err
		}

		return tx.Reviews().Create(ctx, review)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"review_id": review.ID, "product_id": review.ProductID}).Info("Review created")
	return review, nil
}

func (s *ReviewService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *UpdateReviewRequest) (*models.Review, error) {
	var updated *models.Review
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Reviews().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}

		proposed := *current
		if req.Rating != nil {
			proposed.Rating = *req.Rating
		}
		if req.Comment != nil {
			proposed.Comment = *req.Comment
		}

		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityReview, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
		}); err != nil {
			return err
		}
		if err := checkRow(&proposed); err != nil {
			return err
		}
		if err := tx.Reviews().Update(ctx, &proposed); err != nil {
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

func (s *ReviewService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	return s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Reviews().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityReview, Op: policy.OpDelete, Current: current,
		}); err != nil {
			return err
		}
		return tx.Reviews().Delete(ctx, id)
	})
}
