// internal/services/account_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type AccountService struct {
	repo repository.Repository
}

// UpdateAccountRequest is a partial update; nil fields are left unchanged.
// Role is accepted so that attempts to change it reach the policy and are
// refused there.
type UpdateAccountRequest struct {
	FullName  *string      `json:"full_name,omitempty" validate:"omitempty,max=255"`
	Phone     *string      `json:"phone,omitempty" validate:"omitempty,max=32"`
	Locale    *string      `json:"locale,omitempty" validate:"omitempty,max=10"`
	Region    *string      `json:"region,omitempty" validate:"omitempty,max=100"`
	AvatarURL *string      `json:"avatar_url,omitempty" validate:"omitempty,url"`
	IsActive  *bool        `json:"is_active,omitempty"`
	Role      *models.Role `json:"role,omitempty"`
}

func NewAccountService(repo repository.Repository) *AccountService {
	return &AccountService{repo: repo}
}

func (s *AccountService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Account, error) {
	return visible[models.Account](ctx, s.repo, s.repo.Accounts(), actor, policy.EntityAccount, id)
}

// List returns the accounts the actor may see: all of them for an admin,
// only its own otherwise.
func (s *AccountService) List(ctx context.Context, actor policy.Actor) ([]models.Account, error) {
	rows, err := s.repo.Accounts().List(ctx)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(a *models.Account) policy.Decision {
		return policy.AccountRead(actor, a)
	}), nil
}

func (s *AccountService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *UpdateAccountRequest) (*models.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var updated *models.Account
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Accounts().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}

		proposed := *current
		if req.FullName != nil {
			proposed.FullName = *req.FullName
		}
		if req.Phone != nil {
			proposed.Phone = *req.Phone
		}
		if req.Locale != nil {
			proposed.Locale = *req.Locale
		}
		if req.Region != nil {
			proposed.Region = *req.Region
		}
		if req.AvatarURL != nil {
			proposed.AvatarURL = *req.AvatarURL
		}
		if req.IsActive != nil {
			proposed.IsActive = *req.IsActive
		}
		if req.Role != nil {
			proposed.Role = *req.Role
		}

		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityAccount, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
		}); err != nil {
			return err
		}
		if err := checkRow(&proposed); err != nil {
			return err
		}
		if err := tx.Accounts().Update(ctx, &proposed); err != nil {
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

// Delete removes the account together with everything it owns.
func (s *AccountService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Accounts().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityAccount, Op: policy.OpDelete, Current: current,
		}); err != nil {
			return err
		}
		return deleteAccountCascade(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{"account_id": id, "actor_id": actor.ID}).Info("Account deleted")
	return nil
}
