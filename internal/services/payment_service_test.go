package services

import (
	"github.com/stripe/stripe-go/v74"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
)

func (suite *ServiceTestSuite) stubIntents() *[]*stripe.PaymentIntentParams {
	var calls []*stripe.PaymentIntentParams
	suite.payments.WithIntentCreator(func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		calls = append(calls, p)
		return &stripe.PaymentIntent{
			ID:           "pi_test",
			ClientSecret: "pi_test_secret",
			Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
			Amount:       *p.Amount,
		}, nil
	})
	return &calls
}

func (suite *ServiceTestSuite) TestCreatePaymentIntent() {
	calls := suite.stubIntents()
	product := suite.newProduct(suite.farmer, "Cheese", 4.35, 10)
	order := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: product.ID, Quantity: 3})

	resp, err := suite.payments.CreatePaymentIntent(suite.ctx, suite.buyer, order.ID)
	suite.Require().NoError(err)
	suite.Equal("pi_test", resp.PaymentID)
	suite.Equal("pi_test_secret", resp.ClientSecret)
	suite.Equal("usd", resp.Currency)

	suite.Require().Len(*calls, 1)
	suite.Equal(int64(1305), *(*calls)[0].Amount)
	suite.Equal(order.ID.String(), (*calls)[0].Metadata["order_id"])
}

func (suite *ServiceTestSuite) TestPaymentIntentIsForTheBuyer() {
	calls := suite.stubIntents()
	product := suite.newProduct(suite.farmer, "Cheese", 4, 10)
	order := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: product.ID, Quantity: 1})
	stranger := suite.newAccount(models.RoleBuyer, "stranger@example.com")

	_, err := suite.payments.CreatePaymentIntent(suite.ctx, suite.farmer, order.ID)
	suite.assertDenied(err)
	_, err = suite.payments.CreatePaymentIntent(suite.ctx, stranger, order.ID)
	suite.assertDenied(err)
	suite.Empty(*calls)
}

func (suite *ServiceTestSuite) TestPaymentIntentRefusals() {
	calls := suite.stubIntents()
	product := suite.newProduct(suite.farmer, "Cheese", 4, 10)

	cancelled := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: product.ID, Quantity: 1})
	suite.advance(cancelled, models.OrderStatusCancelled)
	_, err := suite.payments.CreatePaymentIntent(suite.ctx, suite.buyer, cancelled.ID)
	suite.ErrorIs(err, apperrors.ErrBadRequest)

	paid := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: product.ID, Quantity: 1})
	_, err = suite.orders.UpdatePaymentStatus(suite.ctx, suite.farmer, paid.ID, models.PaymentStatusPaid)
	suite.Require().NoError(err)
	_, err = suite.payments.CreatePaymentIntent(suite.ctx, suite.buyer, paid.ID)
	suite.ErrorIs(err, apperrors.ErrBadRequest)

	open := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: product.ID, Quantity: 1})
	suite.cfg.Payment.StripeSecretKey = ""
	_, err = suite.payments.CreatePaymentIntent(suite.ctx, suite.buyer, open.ID)
	suite.ErrorIs(err, apperrors.ErrServiceUnavailable)

	suite.Empty(*calls)
}
