// internal/database/seed.go
package database

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/config"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

// SeedInitialData creates the bootstrap admin and the default categories.
// It writes through the repository directly: there is no actor yet who could
// be authorized to create an admin. Running it twice changes nothing.
func SeedInitialData(ctx context.Context, repo repository.Repository, cfg config.SeedConfig) error {
	logrus.Info("Seeding initial data...")

	return repo.Transaction(ctx, func(tx repository.Repository) error {
		if cfg.AdminEmail != "" {
			if err := seedAdmin(ctx, tx, cfg); err != nil {
				return err
			}
		}

		for _, name := range cfg.Categories {
			_, err := tx.Categories().FindByName(ctx, name)
			if err == nil {
				continue
			}
			if !apperrors.IsNotFound(err) {
				return err
			}
			if err := tx.Categories().Create(ctx, &models.Category{Name: name}); err != nil {
				return fmt.Errorf("failed to create category %s: %w", name, err)
			}
		}

		logrus.WithField("categories", len(cfg.Categories)).Info("Initial data seeding completed")
		return nil
	})
}

func seedAdmin(ctx context.Context, tx repository.Repository, cfg config.SeedConfig) error {
	_, err := tx.Accounts().FindByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !apperrors.IsNotFound(err) {
		return err
	}

	admin := &models.Account{
		Email:    cfg.AdminEmail,
		FullName: cfg.AdminName,
		Role:     models.RoleAdmin,
		Locale:   "en",
		IsActive: true,
	}
	if err := admin.SetPassword(cfg.AdminPassword); err != nil {
		return fmt.Errorf("failed to set admin password: %w", err)
	}
	if err := tx.Accounts().Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	logrus.WithField("email", admin.Email).Info("Admin account created")
	return nil
}
