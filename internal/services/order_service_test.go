package services

import (
	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
)

func (suite *ServiceTestSuite) TestPlaceOrderPricesLines() {
	rice := suite.newProduct(suite.farmer, "Rice", 0.1, 100)
	beans := suite.newProduct(suite.farmer, "Beans", 2.5, 100)

	order := suite.placeOrder(suite.buyer, suite.farmer,
		OrderLineRequest{ProductID: rice.ID, Quantity: 3},
		OrderLineRequest{ProductID: beans.ID, Quantity: 2},
	)

	suite.Equal(models.OrderStatusPending, order.Status)
	suite.Equal(models.PaymentStatusPending, order.PaymentStatus)
	suite.InDelta(5.3, order.TotalAmount, 1e-9)
	suite.Require().Len(order.Items, 2)
	suite.InDelta(0.3, order.Items[0].Subtotal, 1e-9)
	suite.Equal(0.1, order.Items[0].UnitPrice)

	stored, err := suite.orders.Get(suite.ctx, suite.buyer, order.ID)
	suite.Require().NoError(err)
	suite.Len(stored.Items, 2)
}

func (suite *ServiceTestSuite) TestOnlyBuyersPlaceOrders() {
	rice := suite.newProduct(suite.farmer, "Rice", 1, 100)
	line := OrderLineRequest{ProductID: rice.ID, Quantity: 1}

	_, err := suite.orders.Place(suite.ctx, suite.farmer, &PlaceOrderRequest{FarmerID: suite.farmer.ID, Items: []OrderLineRequest{line}})
	suite.assertDenied(err)

	_, err = suite.orders.Place(suite.ctx, suite.admin, &PlaceOrderRequest{FarmerID: suite.farmer.ID, Items: []OrderLineRequest{line}})
	suite.assertDenied(err)
}

func (suite *ServiceTestSuite) TestPlaceOrderReferences() {
	rival := suite.newAccount(models.RoleFarmer, "rival@example.com")
	theirs := suite.newProduct(rival, "Theirs", 1, 10)
	ours := suite.newProduct(suite.farmer, "Ours", 1, 10)

	place := func(farmerID uuid.UUID, productID uuid.UUID) error {
		_, err := suite.orders.Place(suite.ctx, suite.buyer, &PlaceOrderRequest{
			FarmerID: farmerID,
			Items:    []OrderLineRequest{{ProductID: productID, Quantity: 1}},
		})
		return err
	}

	suite.assertViolation(place(suite.farmer.ID, theirs.ID), apperrors.ViolationInvalidReference)
	suite.assertViolation(place(suite.farmer.ID, uuid.New()), apperrors.ViolationMissingReference)
	suite.assertViolation(place(uuid.New(), ours.ID), apperrors.ViolationMissingReference)
	suite.assertViolation(place(suite.buyer.ID, ours.ID), apperrors.ViolationInvalidReference)

	inactive := false
	_, err := suite.products.Update(suite.ctx, suite.farmer, ours.ID, &UpdateProductRequest{IsActive: &inactive})
	suite.Require().NoError(err)
	suite.assertViolation(place(suite.farmer.ID, ours.ID), apperrors.ViolationInvalidReference)
}

func (suite *ServiceTestSuite) TestFailedPlacementLeavesNothing() {
	rice := suite.newProduct(suite.farmer, "Rice", 1, 100)

	_, err := suite.orders.Place(suite.ctx, suite.buyer, &PlaceOrderRequest{
		FarmerID: suite.farmer.ID,
		Items: []OrderLineRequest{
			{ProductID: rice.ID, Quantity: 1},
			{ProductID: uuid.New(), Quantity: 1},
		},
	})
	suite.assertViolation(err, apperrors.ViolationMissingReference)

	orders, err := suite.orders.List(suite.ctx, suite.buyer, nil)
	suite.Require().NoError(err)
	suite.Empty(orders)

	items, err := suite.repo.OrderItems().ListByProduct(suite.ctx, rice.ID)
	suite.Require().NoError(err)
	suite.Empty(items)
}

func (suite *ServiceTestSuite) TestPlaceOrderValidatesRequest() {
	_, err := suite.orders.Place(suite.ctx, suite.buyer, &PlaceOrderRequest{FarmerID: suite.farmer.ID})
	suite.assertInvalidRequest(err)

	rice := suite.newProduct(suite.farmer, "Rice", 1, 100)
	_, err = suite.orders.Place(suite.ctx, suite.buyer, &PlaceOrderRequest{
		FarmerID: suite.farmer.ID,
		Items:    []OrderLineRequest{{ProductID: rice.ID, Quantity: 0}},
	})
	suite.assertInvalidRequest(err)
}

func (suite *ServiceTestSuite) TestPlaceOrderRejectsUnrepresentableAmounts() {
	_, err := suite.orders.Place(suite.ctx, suite.buyer, &PlaceOrderRequest{
		FarmerID: suite.farmer.ID,
		Items:    []OrderLineRequest{{ProductID: uuid.New(), Quantity: 1 << 60}},
	})
	suite.assertInvalidRequest(err)

	truffle := suite.newProduct(suite.farmer, "Truffle", 99999999.99, 10)

	// One line whose subtotal does not fit the money column.
	_, err = suite.orders.Place(suite.ctx, suite.buyer, &PlaceOrderRequest{
		FarmerID: suite.farmer.ID,
		Items:    []OrderLineRequest{{ProductID: truffle.ID, Quantity: 100000}},
	})
	suite.assertViolation(err, apperrors.ViolationOutOfRange)

	// Lines that fit on their own but not as a total.
	_, err = suite.orders.Place(suite.ctx, suite.buyer, &PlaceOrderRequest{
		FarmerID: suite.farmer.ID,
		Items: []OrderLineRequest{
			{ProductID: truffle.ID, Quantity: 100},
			{ProductID: truffle.ID, Quantity: 100},
		},
	})
	suite.assertViolation(err, apperrors.ViolationOutOfRange)

	orders, err := suite.orders.List(suite.ctx, suite.buyer, nil)
	suite.Require().NoError(err)
	suite.Empty(orders)
}

func (suite *ServiceTestSuite) TestOrderStatusTransitions() {
	rice := suite.newProduct(suite.farmer, "Rice", 1, 100)
	order := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: rice.ID, Quantity: 1})

	_, err := suite.orders.UpdateStatus(suite.ctx, suite.buyer, order.ID, models.OrderStatusConfirmed)
	suite.assertDenied(err)

	_, err = suite.orders.UpdateStatus(suite.ctx, suite.farmer, order.ID, models.OrderStatusShipped)
	suite.assertViolation(err, apperrors.ViolationInvalidTransition)

	_, err = suite.orders.UpdateStatus(suite.ctx, suite.farmer, order.ID, models.OrderStatus("lost"))
	suite.assertViolation(err, apperrors.ViolationInvalidEnum)

	same, err := suite.orders.UpdateStatus(suite.ctx, suite.farmer, order.ID, models.OrderStatusPending)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusPending, same.Status)

	suite.advance(order, models.OrderStatusConfirmed, models.OrderStatusShipped, models.OrderStatusDelivered)

	_, err = suite.orders.UpdateStatus(suite.ctx, suite.farmer, order.ID, models.OrderStatusCancelled)
	suite.assertViolation(err, apperrors.ViolationInvalidTransition)

	stored, err := suite.orders.Get(suite.ctx, suite.admin, order.ID)
	suite.Require().NoError(err)
	suite.Equal(models.OrderStatusDelivered, stored.Status)
}

func (suite *ServiceTestSuite) TestCancelFromShipped() {
	rice := suite.newProduct(suite.farmer, "Rice", 1, 100)
	order := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: rice.ID, Quantity: 1})

	suite.advance(order, models.OrderStatusConfirmed, models.OrderStatusShipped, models.OrderStatusCancelled)

	_, err := suite.orders.UpdateStatus(suite.ctx, suite.farmer, order.ID, models.OrderStatusPending)
	suite.assertViolation(err, apperrors.ViolationInvalidTransition)
}

func (suite *ServiceTestSuite) TestPaymentStatus() {
	rice := suite.newProduct(suite.farmer, "Rice", 1, 100)
	order := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: rice.ID, Quantity: 1})

	_, err := suite.orders.UpdatePaymentStatus(suite.ctx, suite.buyer, order.ID, models.PaymentStatusPaid)
	suite.assertDenied(err)

	_, err = suite.orders.UpdatePaymentStatus(suite.ctx, suite.farmer, order.ID, models.PaymentStatus("gift"))
	suite.assertViolation(err, apperrors.ViolationInvalidEnum)

	paid, err := suite.orders.UpdatePaymentStatus(suite.ctx, suite.farmer, order.ID, models.PaymentStatusPaid)
	suite.Require().NoError(err)
	suite.Equal(models.PaymentStatusPaid, paid.PaymentStatus)
	suite.Equal(models.OrderStatusPending, paid.Status)
}

func (suite *ServiceTestSuite) TestOrderVisibility() {
	rice := suite.newProduct(suite.farmer, "Rice", 1, 100)
	order := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: rice.ID, Quantity: 1})
	stranger := suite.newAccount(models.RoleBuyer, "stranger@example.com")

	_, err := suite.orders.Get(suite.ctx, stranger, order.ID)
	suite.assertDenied(err)
	_, err = suite.orders.Items(suite.ctx, stranger, order.ID)
	suite.assertDenied(err)
	_, err = suite.orders.Get(suite.ctx, suite.buyer, uuid.New())
	suite.assertDenied(err)

	items, err := suite.orders.Items(suite.ctx, suite.farmer, order.ID)
	suite.Require().NoError(err)
	suite.Len(items, 1)

	rows, err := suite.orders.List(suite.ctx, stranger, nil)
	suite.Require().NoError(err)
	suite.Empty(rows)

	rows, err = suite.orders.List(suite.ctx, suite.farmer, nil)
	suite.Require().NoError(err)
	suite.Len(rows, 1)

	rows, err = suite.orders.List(suite.ctx, suite.admin, nil)
	suite.Require().NoError(err)
	suite.Len(rows, 1)

	delivered := models.OrderStatusDelivered
	rows, err = suite.orders.List(suite.ctx, suite.buyer, &delivered)
	suite.Require().NoError(err)
	suite.Empty(rows)
}
