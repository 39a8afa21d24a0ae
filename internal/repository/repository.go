// internal/repository/repository.go

// Package repository is the row store behind the marketplace model. It
// enforces nothing about who may act; services authorize first and then
// read and write through these ports.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/models"
)

// Table is the CRUD surface shared by every entity. Get and Delete return an
// error satisfying apperrors.IsNotFound for unknown ids.
type Table[T any] interface {
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, row *T) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type AccountRepository interface {
	Table[models.Account]
	List(ctx context.Context) ([]models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
}

type CategoryRepository interface {
	Table[models.Category]
	List(ctx context.Context) ([]models.Category, error)
	FindByName(ctx context.Context, name string) (*models.Category, error)
}

type ProductFilter struct {
	FarmerID   *uuid.UUID
	CategoryID *uuid.UUID
	ActiveOnly bool
	InStock    bool
	Tag        string
	Search     string
}

type ProductRepository interface {
	Table[models.Product]
	List(ctx context.Context, filter ProductFilter) ([]models.Product, error)
}

type OrderFilter struct {
	// PartyID matches orders where the account is buyer or farmer.
	PartyID  *uuid.UUID
	BuyerID  *uuid.UUID
	FarmerID *uuid.UUID
	Status   *models.OrderStatus
}

type OrderRepository interface {
	Table[models.Order]
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	// GetForUpdate locks the row until the surrounding transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

type OrderItemRepository interface {
	Table[models.OrderItem]
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.OrderItem, error)
}

type ReviewRepository interface {
	Table[models.Review]
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error)
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Review, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Review, error)
	// FindByKey treats a nil order id as a value of its own.
	FindByKey(ctx context.Context, productID, buyerID uuid.UUID, orderID *uuid.UUID) (*models.Review, error)
}

type MessageRepository interface {
	Table[models.Message]
	ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Message, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Message, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Message, error)
}

type ResourceRepository interface {
	Table[models.EducationalResource]
	List(ctx context.Context) ([]models.EducationalResource, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.EducationalResource, error)
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type BookmarkRepository interface {
	Table[models.ResourceBookmark]
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ResourceBookmark, error)
	ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.ResourceBookmark, error)
	FindByKey(ctx context.Context, userID, resourceID uuid.UUID) (*models.ResourceBookmark, error)
}

// Repository aggregates the tables. Writes issued inside Transaction commit
// or roll back together.
type Repository interface {
	Accounts() AccountRepository
	Categories() CategoryRepository
	Products() ProductRepository
	Orders() OrderRepository
	OrderItems() OrderItemRepository
	Reviews() ReviewRepository
	Messages() MessageRepository
	Resources() ResourceRepository
	Bookmarks() BookmarkRepository

	// HasDeliveredPurchase reports whether buyerID holds a delivered order
	// containing productID (restricted to orderID when set). Inside a
	// transaction the qualifying orders stay locked until it ends.
	HasDeliveredPurchase(ctx context.Context, buyerID, productID uuid.UUID, orderID *uuid.UUID) (bool, error)

	Transaction(ctx context.Context, fn func(Repository) error) error
}

// Snapshot adapts a Repository to the policy.Snapshot interface.
type Snapshot struct {
	Repo Repository
}

func (s Snapshot) Order(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.Repo.Orders().Get(ctx, id)
}

func (s Snapshot) HasDeliveredPurchase(ctx context.Context, buyerID, productID uuid.UUID, orderID *uuid.UUID) (bool, error) {
	return s.Repo.HasDeliveredPurchase(ctx, buyerID, productID, orderID)
}
