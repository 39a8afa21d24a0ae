// internal/services/cascade.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

// Deletion side effects. They run inside the caller's transaction after the
// root delete was authorized; owned rows are removed and weak references are
// cleared, mirroring the ON DELETE actions created by the migrations.

func deleteAccountCascade(ctx context.Context, tx repository.Repository, accountID uuid.UUID) error {
	products, err := tx.Products().List(ctx, repository.ProductFilter{FarmerID: &accountID})
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := deleteProductCascade(ctx, tx, p.ID); err != nil {
			return err
		}
	}

	orders, err := tx.Orders().List(ctx, repository.OrderFilter{PartyID: &accountID})
	if err != nil {
		return err
	}
	for _, o := range orders {
		if err := deleteOrderCascade(ctx, tx, o.ID); err != nil {
			return err
		}
	}

	messages, err := tx.Messages().ListForAccount(ctx, accountID)
	if err != nil {
		return err
	}
	for _, m := range messages {
		if err := tx.Messages().Delete(ctx, m.ID); err != nil {
			return err
		}
	}

	reviews, err := tx.Reviews().ListByBuyer(ctx, accountID)
	if err != nil {
		return err
	}
	for _, r := range reviews {
		if err := tx.Reviews().Delete(ctx, r.ID); err != nil {
			return err
		}
	}

	bookmarks, err := tx.Bookmarks().ListByUser(ctx, accountID)
	if err != nil {
		return err
	}
	for _, b := range bookmarks {
		if err := tx.Bookmarks().Delete(ctx, b.ID); err != nil {
			return err
		}
	}

	resources, err := tx.Resources().ListByAuthor(ctx, accountID)
	if err != nil {
		return err
	}
	for i := range resources {
		resources[i].AuthorID = nil
		if err := tx.Resources().Update(ctx, &resources[i]); err != nil {
			return err
		}
	}

	return tx.Accounts().Delete(ctx, accountID)
}

func deleteProductCascade(ctx context.Context, tx repository.Repository, productID uuid.UUID) error {
	items, err := tx.OrderItems().ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := tx.OrderItems().Delete(ctx, item.ID); err != nil {
			return err
		}
	}

	reviews, err := tx.Reviews().ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	for _, r := range reviews {
		if err := tx.Reviews().Delete(ctx, r.ID); err != nil {
			return err
		}
	}

	messages, err := tx.Messages().ListByProduct(ctx, productID)
	if err != nil {
		return err
	}
	for i := range messages {
		messages[i].ProductID = nil
		if err := tx.Messages().Update(ctx, &messages[i]); err != nil {
			return err
		}
	}

	return tx.Products().Delete(ctx, productID)
}

func deleteOrderCascade(ctx context.Context, tx repository.Repository, orderID uuid.UUID) error {
	items, err := tx.OrderItems().ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := tx.OrderItems().Delete(ctx, item.ID); err != nil {
			return err
		}
	}

	reviews, err := tx.Reviews().ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for i := range reviews {
		if err := detachReview(ctx, tx, &reviews[i]); err != nil {
			return err
		}
	}

	messages, err := tx.Messages().ListByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	for i := range messages {
		messages[i].OrderID = nil
		if err := tx.Messages().Update(ctx, &messages[i]); err != nil {
			return err
		}
	}

	return tx.Orders().Delete(ctx, orderID)
}

// detachReview clears the review's order. When the buyer already holds an
// order-less review of the product, that one is kept and this one goes.
func detachReview(ctx context.Context, tx repository.Repository, review *models.Review) error {
	existing, err := tx.Reviews().FindByKey(ctx, review.ProductID, review.BuyerID, nil)
	switch {
	case err == nil && existing.ID != review.ID:
		return tx.Reviews().Delete(ctx, review.ID)
	case err != nil && !apperrors.IsNotFound(err):
		return err
	}
	review.OrderID = nil
	return tx.Reviews().Update(ctx, review)
}

func deleteCategoryCascade(ctx context.Context, tx repository.Repository, categoryID uuid.UUID) error {
	products, err := tx.Products().List(ctx, repository.ProductFilter{CategoryID: &categoryID})
	if err != nil {
		return err
	}
	for i := range products {
		products[i].CategoryID = nil
		if err := tx.Products().Update(ctx, &products[i]); err != nil {
			return err
		}
	}
	return tx.Categories().Delete(ctx, categoryID)
}

func deleteResourceCascade(ctx context.Context, tx repository.Repository, resourceID uuid.UUID) error {
	bookmarks, err := tx.Bookmarks().ListByResource(ctx, resourceID)
	if err != nil {
		return err
	}
	for _, b := range bookmarks {
		if err := tx.Bookmarks().Delete(ctx, b.ID); err != nil {
			return err
		}
	}
	return tx.Resources().Delete(ctx, resourceID)
}
