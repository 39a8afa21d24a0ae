// internal/services/payment_service.go
package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/config"
	"github.com/javajoker/farm-marketplace/internal/integrity"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

// IntentCreator creates a Stripe PaymentIntent.
type IntentCreator func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

type PaymentService struct {
	repo         repository.Repository
	config       *config.Config
	createIntent IntentCreator
}

type PaymentIntentResponse struct {
	ClientSecret string  `json:"client_secret"`
	PaymentID    string  `json:"payment_id"`
	Status       string  `json:"status"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
}

func NewPaymentService(repo repository.Repository, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		repo:         repo,
		config:       config,
		createIntent: paymentintent.New,
	}
}

// WithIntentCreator replaces the Stripe call, e.g. with a stub.
func (s *PaymentService) WithIntentCreator(fn IntentCreator) *PaymentService {
	s.createIntent = fn
	return s
}

// CreatePaymentIntent asks Stripe to collect the order total from the
// buyer. The order itself is not modified; its payment status is moved by
// the farmer once the payment settles.
func (s *PaymentService) CreatePaymentIntent(ctx context.Context, actor policy.Actor, orderID uuid.UUID) (*PaymentIntentResponse, error) {
	order, err := visible[models.Order](ctx, s.repo, s.repo.Orders(), actor, policy.EntityOrder, orderID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(order.BuyerID) {
		return nil, apperrors.ErrAuthorizationDenied
	}

	switch {
	case order.Status == models.OrderStatusCancelled:
		return nil, apperrors.BadRequest("order %s is cancelled", order.ID)
	case order.PaymentStatus == models.PaymentStatusPaid:
		return nil, apperrors.BadRequest("order %s is already paid", order.ID)
	}

	if s.config.Payment.StripeSecretKey == "" {
		return nil, apperrors.ErrServiceUnavailable.WithDetails("payments are not configured")
	}

	currency := s.config.Payment.Currency
	if currency == "" {
		currency = "usd"
	}

	// Stripe amounts are in cents
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(integrity.ToCents(order.TotalAmount)),
		Currency: stripe.String(currency),
	}
	params.Context = ctx
	params.AddMetadata("order_id", order.ID.String())
	params.AddMetadata("buyer_id", order.BuyerID.String())
	params.AddMetadata("farmer_id", order.FarmerID.String())

	pi, err := s.createIntent(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	logrus.WithFields(logrus.Fields{"order_id": order.ID, "payment_id": pi.ID}).Info("Payment intent created")

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
		Amount:       order.TotalAmount,
		Currency:     currency,
	}, nil
}
