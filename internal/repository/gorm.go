// internal/repository/gorm.go
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
)

// GormRepository stores rows in postgres through gorm.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Accounts() AccountRepository     { return gormAccounts{gormTable[models.Account]{r.db}} }
func (r *GormRepository) Categories() CategoryRepository  { return gormCategories{gormTable[models.Category]{r.db}} }
func (r *GormRepository) Products() ProductRepository     { return gormProducts{gormTable[models.Product]{r.db}} }
func (r *GormRepository) Orders() OrderRepository         { return gormOrders{gormTable[models.Order]{r.db}} }
func (r *GormRepository) OrderItems() OrderItemRepository { return gormOrderItems{gormTable[models.OrderItem]{r.db}} }
func (r *GormRepository) Reviews() ReviewRepository       { return gormReviews{gormTable[models.Review]{r.db}} }
func (r *GormRepository) Messages() MessageRepository     { return gormMessages{gormTable[models.Message]{r.db}} }
func (r *GormRepository) Resources() ResourceRepository {
	return gormResources{gormTable[models.EducationalResource]{r.db}}
}
func (r *GormRepository) Bookmarks() BookmarkRepository {
	return gormBookmarks{gormTable[models.ResourceBookmark]{r.db}}
}

func (r *GormRepository) Transaction(ctx context.Context, fn func(Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepository{db: tx})
	})
}

// HasDeliveredPurchase takes FOR SHARE OF orders so that a concurrent status
// revert on a qualifying order waits for the caller's transaction.
func (r *GormRepository) HasDeliveredPurchase(ctx context.Context, buyerID, productID uuid.UUID, orderID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND orders.buyer_id = ? AND orders.status = ?",
			productID, buyerID, models.OrderStatusDelivered).
		Clauses(clause.Locking{Strength: "SHARE", Table: clause.Table{Name: "orders"}})

	if orderID != nil {
		query = query.Where("orders.id = ?", *orderID)
	}

	var ids []uuid.UUID
	if err := query.Limit(1).Pluck("orders.id", &ids).Error; err != nil {
		return false, apperrors.Wrap(err, "check delivered purchase")
	}
	return len(ids) > 0, nil
}

type gormTable[T any] struct {
	db *gorm.DB
}

func (t gormTable[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var row T
	if err := t.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (t gormTable[T]) Create(ctx context.Context, row *T) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Create(row).Error)
}

func (t gormTable[T]) Update(ctx context.Context, row *T) error {
	return translate(t.db.WithContext(ctx).Omit(clause.Associations).Save(row).Error)
}

func (t gormTable[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result := t.db.WithContext(ctx).Delete(new(T), "id = ?", id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (t gormTable[T]) find(ctx context.Context, query interface{}, args ...interface{}) ([]T, error) {
	var rows []T
	if err := t.db.WithContext(ctx).Where(query, args...).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (t gormTable[T]) first(ctx context.Context, query interface{}, args ...interface{}) (*T, error) {
	var row T
	if err := t.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

// translate maps driver errors onto the model's taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return apperrors.Integrity(apperrors.ViolationDuplicate, pgErr.ConstraintName, "%s", pgErr.Detail)
		case "23503":
			return apperrors.Integrity(apperrors.ViolationMissingReference, pgErr.ConstraintName, "%s", pgErr.Detail)
		case "23514":
			return apperrors.Integrity(apperrors.ViolationOutOfRange, pgErr.ConstraintName, "%s", pgErr.Message)
		case "23502":
			return apperrors.Integrity(apperrors.ViolationMissingField, pgErr.ColumnName, "%s", pgErr.Message)
		case "22003":
			return apperrors.Integrity(apperrors.ViolationOutOfRange, pgErr.ColumnName, "%s", pgErr.Message)
		}
	}
	return apperrors.Wrap(err, "database error")
}

type gormAccounts struct{ gormTable[models.Account] }

func (r gormAccounts) List(ctx context.Context) ([]models.Account, error) {
	return r.find(ctx, "1 = 1")
}

func (r gormAccounts) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.first(ctx, "LOWER(email) = ?", strings.ToLower(email))
}

type gormCategories struct{ gormTable[models.Category] }

func (r gormCategories) List(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r gormCategories) FindByName(ctx context.Context, name string) (*models.Category, error) {
	return r.first(ctx, "LOWER(name) = ?", strings.ToLower(name))
}

type gormProducts struct{ gormTable[models.Product] }

func (r gormProducts) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})

	if filter.FarmerID != nil {
		query = query.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.InStock {
		query = query.Where("stock_quantity > 0")
	}
	if filter.Tag != "" {
		query = query.Where("? = ANY(tags)", filter.Tag)
	}
	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

type gormOrders struct{ gormTable[models.Order] }

func (r gormOrders) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})

	if filter.PartyID != nil {
		query = query.Where("buyer_id = ? OR farmer_id = ?", *filter.PartyID, *filter.PartyID)
	}
	if filter.BuyerID != nil {
		query = query.Where("buyer_id = ?", *filter.BuyerID)
	}
	if filter.FarmerID != nil {
		query = query.Where("farmer_id = ?", *filter.FarmerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var rows []models.Order
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r gormOrders) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var row models.Order
	if err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

type gormOrderItems struct{ gormTable[models.OrderItem] }

func (r gormOrderItems) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	return r.find(ctx, "order_id = ?", orderID)
}

func (r gormOrderItems) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.OrderItem, error) {
	return r.find(ctx, "product_id = ?", productID)
}

type gormReviews struct{ gormTable[models.Review] }

func (r gormReviews) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Review, error) {
	return r.find(ctx, "product_id = ?", productID)
}

func (r gormReviews) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.Review, error) {
	return r.find(ctx, "buyer_id = ?", buyerID)
}

func (r gormReviews) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Review, error) {
	return r.find(ctx, "order_id = ?", orderID)
}

func (r gormReviews) FindByKey(ctx context.Context, productID, buyerID uuid.UUID, orderID *uuid.UUID) (*models.Review, error) {
	query, args := reviewKey(productID, buyerID, orderID)
	return r.first(ctx, query, args...)
}

// reviewKey matches a missing order id with IS NULL; "= NULL" never matches.
func reviewKey(productID, buyerID uuid.UUID, orderID *uuid.UUID) (string, []interface{}) {
	if orderID == nil {
		return "product_id = ? AND buyer_id = ? AND order_id IS NULL", []interface{}{productID, buyerID}
	}
	return "product_id = ? AND buyer_id = ? AND order_id = ?", []interface{}{productID, buyerID, *orderID}
}

type gormMessages struct{ gormTable[models.Message] }

func (r gormMessages) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]models.Message, error) {
	return r.find(ctx, "sender_id = ? OR receiver_id = ?", accountID, accountID)
}

func (r gormMessages) ListByProduct(ctx context.Context, productID uuid.UUID) ([]models.Message, error) {
	return r.find(ctx, "product_id = ?", productID)
}

func (r gormMessages) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Message, error) {
	return r.find(ctx, "order_id = ?", orderID)
}

type gormResources struct{ gormTable[models.EducationalResource] }

func (r gormResources) List(ctx context.Context) ([]models.EducationalResource, error) {
	return r.find(ctx, "1 = 1")
}

func (r gormResources) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]models.EducationalResource, error) {
	return r.find(ctx, "author_id = ?", authorID)
}

func (r gormResources) IncrementViews(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.EducationalResource{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1"))
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

type gormBookmarks struct{ gormTable[models.ResourceBookmark] }

func (r gormBookmarks) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ResourceBookmark, error) {
	return r.find(ctx, "user_id = ?", userID)
}

func (r gormBookmarks) ListByResource(ctx context.Context, resourceID uuid.UUID) ([]models.ResourceBookmark, error) {
	return r.find(ctx, "resource_id = ?", resourceID)
}

func (r gormBookmarks) FindByKey(ctx context.Context, userID, resourceID uuid.UUID) (*models.ResourceBookmark, error) {
	return r.first(ctx, "user_id = ? AND resource_id = ?", userID, resourceID)
}
