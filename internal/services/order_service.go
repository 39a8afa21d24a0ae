// internal/services/order_service.go
package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/integrity"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

type OrderService struct {
	repo repository.Repository
}

type OrderLineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"gt=0,max=100000"`
}

type PlaceOrderRequest struct {
	FarmerID        uuid.UUID              `json:"farmer_id" validate:"required"`
	PaymentMethod   string                 `json:"payment_method,omitempty" validate:"omitempty,max=50"`
	DeliveryAddress map[string]interface{} `json:"delivery_address,omitempty"`
	Notes           string                 `json:"notes,omitempty"`
	Items           []OrderLineRequest     `json:"items" validate:"required,min=1,max=200,dive"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus models.PaymentStatus `json:"payment_status" validate:"required"`
}

func NewOrderService(repo repository.Repository) *OrderService {
	return &OrderService{repo: repo}
}

// Place creates a pending order with its lines in one transaction. Unit
// prices are taken from the products at placement time and the total is
// the sum of the line subtotals.
func (s *OrderService) Place(ctx context.Context, actor policy.Actor, req *PlaceOrderRequest) (*models.Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	order := &models.Order{
		BuyerID:         actor.ID,
		FarmerID:        req.FarmerID,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: models.JSONB(req.DeliveryAddress),
		Notes:           req.Notes,
	}
	order.ID = uuid.New()

	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityOrder, Op: policy.OpInsert, Proposed: order,
		}); err != nil {
			return err
		}

		if err := s.checkFarmer(ctx, tx, order.FarmerID); err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(req.Items))
		var total int64
		for _, line := range req.Items {
			item, err := s.priceLine(ctx, tx, order, line)
			if err != nil {
				return err
			}
			total += integrity.ToCents(item.Subtotal)
			items = append(items, *item)
		}
		order.TotalAmount = integrity.FromCents(total)

		if err := checkRow(order); err != nil {
			return err
		}
		if err := integrity.CheckOrderTotal(order, items); err != nil {
			logViolation(err)
			return err
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}

		for i := range items {
			if err := authorize(ctx, tx, policy.Request{
				Actor: actor, Entity: policy.EntityOrderItem, Op: policy.OpInsert, Proposed: &items[i],
			}); err != nil {
				return err
			}
			if err := integrity.CheckOrderItem(&items[i]); err != nil {
				logViolation(err)
				return err
			}
			if err := tx.OrderItems().Create(ctx, &items[i]); err != nil {
				return err
			}
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id":  order.ID,
		"buyer_id":  order.BuyerID,
		"farmer_id": order.FarmerID,
		"total":     order.TotalAmount,
	}).Info("Order placed")
	return order, nil
}

func (s *OrderService) checkFarmer(ctx context.Context, tx repository.Repository, farmerID uuid.UUID) error {
	farmer, err := tx.Accounts().Get(ctx, farmerID)
	if err != nil {
		return requireRef(err, "farmer_id", farmerID)
	}
	if farmer.Role != models.RoleFarmer {
		verr := apperrors.Integrity(apperrors.ViolationInvalidReference, "farmer_id", "account %s is not a farmer", farmerID)
		logViolation(verr)
		return verr
	}
	return nil
}

func (s *OrderService) priceLine(ctx context.Context, tx repository.Repository, order *models.Order, line OrderLineRequest) (*models.OrderItem, error) {
	product, err := tx.Products().Get(ctx, line.ProductID)
	if err != nil {
		return nil, requireRef(err, "product_id", line.ProductID)
	}

	var verr error
	switch {
	case product.FarmerID != order.FarmerID:
		verr = apperrors.Integrity(apperrors.ViolationInvalidReference, "product_id",
			"product %s is not sold by farmer %s", product.ID, order.FarmerID)
	case !product.IsActive:
		verr = apperrors.Integrity(apperrors.ViolationInvalidReference, "product_id",
			"product %s is not available", product.ID)
	}
	if verr != nil {
		logViolation(verr)
		return nil, verr
	}

	subtotal, err := integrity.Subtotal(line.Quantity, product.Price)
	if err != nil {
		logViolation(err)
		return nil, err
	}

	item := &models.OrderItem{
		OrderID:   order.ID,
		ProductID: product.ID,
		Quantity:  line.Quantity,
		UnitPrice: product.Price,
		Subtotal:  subtotal,
	}
	item.ID = uuid.New()
	return item, nil
}

// Get returns the order with the lines the actor may read.
func (s *OrderService) Get(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Order, error) {
	order, err := visible[models.Order](ctx, s.repo, s.repo.Orders(), actor, policy.EntityOrder, id)
	if err != nil {
		return nil, err
	}
	items, err := s.visibleItems(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

// List returns the orders where the actor is a party; admins see all.
func (s *OrderService) List(ctx context.Context, actor policy.Actor, status *models.OrderStatus) ([]models.Order, error) {
	if actor.IsAnonymous() {
		return []models.Order{}, nil
	}

	filter := repository.OrderFilter{Status: status}
	if !actor.IsAdmin() {
		filter.PartyID = &actor.ID
	}

	rows, err := s.repo.Orders().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return policy.Filter(rows, func(o *models.Order) policy.Decision {
		return policy.OrderRead(actor, o)
	}), nil
}

func (s *OrderService) Items(ctx context.Context, actor policy.Actor, orderID uuid.UUID) ([]models.OrderItem, error) {
	if _, err := visible[models.Order](ctx, s.repo, s.repo.Orders(), actor, policy.EntityOrder, orderID); err != nil {
		return nil, err
	}
	return s.visibleItems(ctx, actor, orderID)
}

func (s *OrderService) visibleItems(ctx context.Context, actor policy.Actor, orderID uuid.UUID) ([]models.OrderItem, error) {
	items, err := s.repo.OrderItems().ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	snap := repository.Snapshot{Repo: s.repo}
	return policy.FilterWith(items, func(item *models.OrderItem) (policy.Decision, error) {
		return policy.OrderItemRead(ctx, snap, actor, item)
	})
}

// UpdateStatus moves the order along its lifecycle. Writing the current
// status again is accepted and changes nothing.
func (s *OrderService) UpdateStatus(ctx context.Context, actor policy.Actor, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	return s.progress(ctx, actor, id, func(current, proposed *models.Order) error {
		proposed.Status = status
		return integrity.CheckTransition(current.Status, status)
	})
}

// UpdatePaymentStatus sets the payment status to any value of its
// enumeration; it is independent of the order status.
func (s *OrderService) UpdatePaymentStatus(ctx context.Context, actor policy.Actor, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {
	return s.progress(ctx, actor, id, func(_, proposed *models.Order) error {
		proposed.PaymentStatus = status
		return nil
	})
}

func (s *OrderService) progress(ctx context.Context, actor policy.Actor, id uuid.UUID, apply func(current, proposed *models.Order) error) (*models.Order, error) {
	var result *models.Order
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		current, err := tx.Orders().GetForUpdate(ctx, id)
		if err != nil {
			return hideMissing(err)
		}

		proposed := *current
		transitionErr := apply(current, &proposed)

		if err := authorize(ctx, tx, policy.Request{
			Actor: actor, Entity: policy.EntityOrder, Op: policy.OpUpdate, Current: current, Proposed: &proposed,
		}); err != nil {
			return err
		}
		if transitionErr != nil {
			logViolation(transitionErr)
			return transitionErr
		}
		if err := checkRow(&proposed); err != nil {
			return err
		}

		if proposed.Status == current.Status && proposed.PaymentStatus == current.PaymentStatus {
			result = current
			return nil
		}
		if err := tx.Orders().Update(ctx, &proposed); err != nil {
			return err
		}
		result = &proposed

		logrus.WithFields(logrus.Fields{
			"order_id":       id,
			"status":         proposed.Status,
			"payment_status": proposed.PaymentStatus,
		}).Info("Order progressed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
