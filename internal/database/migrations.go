// internal/database/migrations.go
package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/farm-marketplace/internal/models"
)

type foreignKey struct {
	table    string
	name     string
	column   string
	refTable string
	onDelete string
}

// Owned rows go with their owner; weak references are cleared.
var foreignKeys = []foreignKey{
	{"products", "fk_products_farmer", "farmer_id", "accounts", "CASCADE"},
	{"products", "fk_products_category", "category_id", "categories", "SET NULL"},
	{"orders", "fk_orders_buyer", "buyer_id", "accounts", "CASCADE"},
	{"orders", "fk_orders_farmer", "farmer_id", "accounts", "CASCADE"},
	{"order_items", "fk_order_items_order", "order_id", "orders", "CASCADE"},
	{"order_items", "fk_order_items_product", "product_id", "products", "CASCADE"},
	{"reviews", "fk_reviews_product", "product_id", "products", "CASCADE"},
	{"reviews", "fk_reviews_buyer", "buyer_id", "accounts", "CASCADE"},
	{"reviews", "fk_reviews_order", "order_id", "orders", "SET NULL"},
	{"messages", "fk_messages_sender", "sender_id", "accounts", "CASCADE"},
	{"messages", "fk_messages_receiver", "receiver_id", "accounts", "CASCADE"},
	{"messages", "fk_messages_product", "product_id", "products", "SET NULL"},
	{"messages", "fk_messages_order", "order_id", "orders", "SET NULL"},
	{"educational_resources", "fk_resources_author", "author_id", "accounts", "SET NULL"},
	{"resource_bookmarks", "fk_bookmarks_user", "user_id", "accounts", "CASCADE"},
	{"resource_bookmarks", "fk_bookmarks_resource", "resource_id", "educational_resources", "CASCADE"},
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	// gen_random_uuid() on postgres < 13
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
		return fmt.Errorf("failed to create pgcrypto extension: %w", err)
	}

	// Run auto-migrations
	err := db.AutoMigrate(
		&models.Account{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.Message{},
		&models.EducationalResource{},
		&models.ResourceBookmark{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createForeignKeys(db); err != nil {
		return fmt.Errorf("failed to create foreign keys: %w", err)
	}

	createIndexes(db)

	logrus.Info("Database migrations completed")
	return nil
}

func createForeignKeys(db *gorm.DB) error {
	for _, fk := range foreignKeys {
		var exists bool
		err := db.Raw(
			"SELECT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = ?)", fk.name,
		).Scan(&exists).Error
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		stmt := fmt.Sprintf(
			"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(id) ON DELETE %s",
			fk.table, fk.name, fk.column, fk.refTable, fk.onDelete,
		)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("%s: %w", fk.name, err)
		}
	}
	return nil
}

func createIndexes(db *gorm.DB) {
	indexes := []string{
		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_farmer ON products(farmer_id)",
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_tags ON products USING GIN(tags)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_buyer ON orders(buyer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_farmer ON orders(farmer_id)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Messaging and reviews
		"CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id, is_read)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_product ON reviews(product_id)",
		// NULL order ids are distinct to the composite unique index
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_reviews_product_buyer_no_order ON reviews(product_id, buyer_id) WHERE order_id IS NULL",

		// Resources
		"CREATE INDEX IF NOT EXISTS idx_resources_published ON educational_resources(is_published, created_at DESC)",

		// Full-text search
		"CREATE INDEX IF NOT EXISTS idx_products_search ON products USING GIN(to_tsvector('english', name || ' ' || description))",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			// Continue with other indexes instead of failing completely
			logrus.WithError(err).WithField("index", index).Warn("Failed to create index")
		}
	}
}
