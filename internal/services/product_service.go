// internal/services/product_service.go
package services

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type ProductService struct {
	repo           repository.Repository
	storageService *StorageService
}

type CreateProductRequest struct {
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	Name              string     `json:"name" validate:"required,max=255"`
	Description       string     `json:"description,omitempty"`
	Price             float64    `json:"price" validate:"gte=0,lte=99999999.99"`
	Unit              string     `json:"unit" validate:"required,max=20"`
	StockQuantity     int        `json:"stock_quantity" validate:"gte=0"`
	LowStockThreshold int        `json:"low_stock_threshold" validate:"gte=0"`
	Images            []string   `json:"images,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Location          string     `json:"location,omitempty" validate:"omitempty,max=255"`
	IsActive          *bool      `json:"is_active,omitempty"`
}

// UpdateProductRequest is a partial update; nil fields are left unchanged.
// Range checks happen on the resulting row, not here.
type UpdateProductRequest struct {
	CategoryID        *uuid.UUID `json:"category_id,omitempty"`
	ClearCategory     bool       `json:"clear_category,omitempty"`
	Name              *string    `json:"name,omitempty"`
	Description       *string    `json:"description,omitempty"`
	Price             *float64   `json:"price,omitempty"`
	Unit              *string    `json:"unit,omitempty"`
	StockQuantity     *int       `json:"stock_quantity,omitempty"`
	LowStockThreshold *int       `json:"low_stock_threshold,omitempty"`
	Images            []string   `json:"images,omitempty"`
	Tags              []string   `json:"tags,omitempty"`
	Location          *string    `json:"location,omitempty"`
	IsActive          *bool      `json:"is_active,omitempty"`
}

type ProductSearchParams struct {
	FarmerID   *uuid.UUID
	CategoryID *uuid.UUID
	Tag        string
	Search     string
}

func NewProductService(repo repository.Repository, storageService *StorageService) *ProductService {
	return &ProductService{
		repo:           repo,
		storageService: storageService,
	}
}

func (s *ProductService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Product, error) {
	return visible[models.Product](ctx, s.repo, s.repo.Products(), actor, policy.EntityProduct, id)
}

// List returns the visible products matching params. A buyer's catalog
// also drops products that are out of stock.
func (s *ProductService) List(ctx context.Context, actor policy.Actor, params ProductSearchParams) ([]models.Product, error) {
	filter := repository.ProductFilter{
		FarmerID:   params.FarmerID,
		CategoryID: params.CategoryID,
		Tag:        params.Tag,
		Search:     params.Search,
	}
	if actor.IsBuyer() {
		filter.ActiveOnly = true
		filter.InStock = true
	}

	rows, err := s.repo.Products().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(p *models.Product) policy.Decision {
		return policy.ProductRead(actor, p)
	}), nil
}

// ListLowStock returns the actor's own products at or under their restock
// threshold.
func (s *ProductService) ListLowStock(ctx context.Context, actor policy.Actor) ([]models.Product, error) {
	if actor.IsAnonymous() {
		return []models.Product{}, nil
	}

	rows, err := s.repo.Products().List(ctx, repository.ProductFilter{FarmerID: &actor.ID})
	if err != nil {
		return nil, err
	}

	visibleRows := policy.Filter(rows, func(p *models.Product) policy.Decision {
		return policy.ProductRead(actor, p)
	})
	out := make([]models.Product, 0, len(visibleRows))
	for _, p := range visibleRows {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *ProductService) Create(ctx context.Context, actor policy.Actor, req *CreateProductRequest) (*models.Product, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	product := &models.Product{
		FarmerID:          actor.ID,
		CategoryID:        req.CategoryID,
		Name:              req.Name,
		Description:       req.Description,
		Price:             req.Price,
		Unit:              req.Unit,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		Images:            pq.StringArray(req.Images),
		Tags:              pq.StringArray(req.Tags),
		Location:          req.Location,
		IsActive:          true,
	}
	product.ID = uuid.New()
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityProduct, Op: policy.OpInsert, Proposed: product,
		}); err != nil {
			return err
		}
		if err := checkRow(product); err != nil {
			return err
		}
		if err := categoryExists(ctx, tx, product.CategoryID); err != nil {
			return err
		}
		return tx.Products().Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"product_id": product.ID, "farmer_id": product.FarmerID}).Info("Product created")
	return product, nil
}

func (s *ProductService) Update(ctx context.Context, actor policy.Actor, id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	return s.update(ctx, actor, id, req.CategoryID != nil, func(p *models.Product) {
		applyProductUpdate(p, req)
	})
}

func (s *ProductService) update(ctx context.Context, actor policy.Actor, id uuid.UUID, checkCategory bool, mutate func(*models.Product)) (*models.Product, error) {
	var updated *models.Product
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Products().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}

		proposed := *current
		mutate(&proposed)

		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityProduct, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
		}); err != nil {
			return err
		}
		if err := checkRow(&proposed); err != nil {
			return err
		}
		if checkCategory {
			if err := categoryExists(ctx, tx, proposed.CategoryID); err != nil {
				return err
			}
		}
		if err := tx.Products().Update(ctx, &proposed); err != nil {
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

func applyProductUpdate(p *models.Product, req *UpdateProductRequest) {
	if req.ClearCategory {
		p.CategoryID = nil
	} else if req.CategoryID != nil {
		p.CategoryID = req.CategoryID
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Unit != nil {
		p.Unit = *req.Unit
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		p.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Images != nil {
		p.Images = pq.StringArray(req.Images)
	}
	if req.Tags != nil {
		p.Tags = pq.StringArray(req.Tags)
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
}

// Delete removes the product, its order lines and reviews, and detaches
// messages that referred to it.
func (s *ProductService) Delete(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	return s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Products().Get(ctx, id)
		if err != nil {
			return hideMissing(err)
		}
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityProduct, Op: policy.OpDelete, Current: current,
		}); err != nil {
			return err
		}
		return deleteProductCascade(ctx, tx, id)
	})
}

// UploadImage stores the file and appends its URL to the product's images.
// Permission is checked before the upload and again when the row is written.
func (s *ProductService) UploadImage(ctx context.Context, actor policy.Actor, id uuid.UUID, file multipart.File, header *multipart.FileHeader) (*models.Product, error) {
	current, err := s.repo.Products().Get(ctx, id)
	if err != nil {
		return nil, hideMissing(err)
	}
	proposed := *current
	if err := authorize(ctx, s.repo, policy.Request{
		Actor: actor, Entity: policy.EntityProduct, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
	}); err != nil {
		return nil, err
	}

	result, err := s.storageService.UploadFile(ctx, file, header, productImageOptions)
	if err != nil {
		return nil, err
	}

	updated, err := s.update(ctx, actor, id, false, func(p *models.Product) {
		p.Images = append(append(pq.StringArray{}, p.Images...), result.URL)
	})
	if err != nil {
		if derr := s.storageService.DeleteFile(ctx, result.Key); derr != nil {
			logrus.WithError(derr).WithField("key", result.Key).Warn("Failed to remove orphaned upload")
		}
		return nil, err
	}
	return updated, nil
}

func categoryExists(ctx context.Context, tx repository.Repository, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := tx.Categories().Get(ctx, *id); err != nil {
		return requireRef(err, "category_id", *id)
	}
	return nil
}
