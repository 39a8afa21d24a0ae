// internal/services/service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/integrity"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

// authorize runs the policy for req against the live state seen by repo.
func authorize(ctx context.Context, repo repository.Repository, req policy.Request) error {
	if req.Op != policy.OpRead {
		if err := activeActor(ctx, repo, req); err != nil {
			return err
		}
	}

	decision, err := policy.Evaluate(ctx, repository.Snapshot{Repo: repo}, req)
	if err != nil {
		return err
	}
	if decision == policy.Deny {
		logrus.WithFields(logrus.Fields{
			"actor_id": req.Actor.ID,
			"role":     req.Actor.Role,
			"entity":   req.Entity,
			"op":       req.Op,
		}).Debug("Authorization denied")
		return apperrors.ErrAuthorizationDenied
	}
	return nil
}

// activeActor denies writes by an actor whose account was deleted or
// deactivated after its token was issued, or whose role no longer matches.
// Self-registration is the one write whose actor has no row yet.
func activeActor(ctx context.Context, repo repository.Repository, req policy.Request) error {
	actor := req.Actor
	if actor.IsAnonymous() {
		return nil
	}
	if req.Entity == policy.EntityAccount && req.Op == policy.OpInsert {
		if proposed, ok := req.Proposed.(*models.Account); ok && proposed.ID == actor.ID {
			return nil
		}
	}

	account, err := repo.Accounts().Get(ctx, actor.ID)
	switch {
	case apperrors.IsNotFound(err):
	case err != nil:
		return err
	case account.IsActive && account.Role == actor.Role:
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"actor_id": actor.ID,
		"role":     actor.Role,
		"entity":   req.Entity,
		"op":       req.Op,
	}).Debug("Write by missing or inactive account denied")
	return apperrors.ErrAuthorizationDenied
}

// checkRow applies the structural invariants to a row about to be written.
func checkRow(row interface{}) error {
	if err := integrity.Check(row); err != nil {
		logViolation(err)
		return err
	}
	return nil
}

func logViolation(err error) {
	v, _ := apperrors.ViolationOf(err)
	logrus.WithField("violation", v).WithError(err).Info("Integrity violation")
}

// hideMissing reports an unknown target row as a denial, so that ids of rows
// the actor cannot see are indistinguishable from ids that do not exist.
func hideMissing(err error) error {
	if apperrors.IsNotFound(err) {
		return apperrors.ErrAuthorizationDenied
	}
	return err
}

// requireRef turns a failed lookup of a referenced row into a
// missing_reference violation.
func requireRef(err error, field string, id uuid.UUID) error {
	if apperrors.IsNotFound(err) {
		verr := apperrors.Integrity(apperrors.ViolationMissingReference, field, "%s %s does not exist", field, id)
		logViolation(verr)
		return verr
	}
	return err
}

func validateRequest(req interface{}) error {
	if err := utils.ValidateStruct(req); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// visible fetches a row and applies the read rule, collapsing "missing"
// and "hidden" into one denial.
func visible[T any](ctx context.Context, repo repository.Repository, table repository.Table[T], actor policy.Actor, entity policy.Entity, id uuid.UUID) (*T, error) {
	row, err := table.Get(ctx, id)
	if err != nil {
		return nil, hideMissing(err)
	}
	if err := authorize(ctx, repo, policy.Request{Actor: actor, Entity: entity, Op: policy.OpRead, Current: row}); err != nil {
		return nil, err
	}
	return row, nil
}
