package services

import (
	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

func (suite *ServiceTestSuite) TestReviewRequiresDeliveredPurchase() {
	product := suite.newProduct(suite.farmer, "Tomatoes", 1.2, 30)
	order := suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: product.ID, Quantity: 2})

	req := &CreateReviewRequest{ProductID: product.ID, OrderID: &order.ID, Rating: 5, Comment: "Sweet"}

	_, err := suite.reviews.Create(suite.ctx, suite.buyer, req)
	suite.assertDenied(err)

	suite.advance(order, models.OrderStatusConfirmed, models.OrderStatusShipped)
	_, err = suite.reviews.Create(suite.ctx, suite.buyer, req)
	suite.assertDenied(err)

	suite.advance(order, models.OrderStatusDelivered)
	review, err := suite.reviews.Create(suite.ctx, suite.buyer, req)
	suite.Require().NoError(err)
	suite.True(review.IsVerifiedPurchase)
	suite.Equal(suite.buyer.ID, review.BuyerID)

	_, err = suite.reviews.Create(suite.ctx, suite.buyer, req)
	suite.assertViolation(err, apperrors.ViolationDuplicate)
}

func (suite *ServiceTestSuite) TestReviewWithoutOrderUsesAnyDeliveredOrder() {
	product := suite.newProduct(suite.farmer, "Tomatoes", 1.2, 30)
	suite.deliveredOrder(product)

	review, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, Rating: 4})
	suite.Require().NoError(err)
	suite.Nil(review.OrderID)

	_, err = suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, Rating: 3})
	suite.assertViolation(err, apperrors.ViolationDuplicate)
}

func (suite *ServiceTestSuite) TestReviewRatingRange() {
	product := suite.newProduct(suite.farmer, "Tomatoes", 1.2, 30)
	suite.deliveredOrder(product)

	_, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, Rating: 6})
	suite.assertViolation(err, apperrors.ViolationOutOfRange)

	_, err = suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, Rating: 0})
	suite.assertViolation(err, apperrors.ViolationOutOfRange)
}

func (suite *ServiceTestSuite) TestStrangersCannotReview() {
	product := suite.newProduct(suite.farmer, "Tomatoes", 1.2, 30)
	order := suite.deliveredOrder(product)
	stranger := suite.newAccount(models.RoleBuyer, "stranger@example.com")

	_, err := suite.reviews.Create(suite.ctx, stranger, &CreateReviewRequest{ProductID: product.ID, OrderID: &order.ID, Rating: 1})
	suite.assertDenied(err)

	_, err = suite.reviews.Create(suite.ctx, suite.farmer, &CreateReviewRequest{ProductID: product.ID, Rating: 5})
	suite.assertDenied(err)
}

func (suite *ServiceTestSuite) TestReviewUpdateAndDelete() {
	product := suite.newProduct(suite.farmer, "Tomatoes", 1.2, 30)
	suite.deliveredOrder(product)
	review, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, Rating: 4})
	suite.Require().NoError(err)

	rating := 2
	_, err = suite.reviews.Update(suite.ctx, suite.farmer, review.ID, &UpdateReviewRequest{Rating: &rating})
	suite.assertDenied(err)

	updated, err := suite.reviews.Update(suite.ctx, suite.buyer, review.ID, &UpdateReviewRequest{Rating: &rating})
	suite.Require().NoError(err)
	suite.Equal(2, updated.Rating)

	tooHigh := 9
	_, err = suite.reviews.Update(suite.ctx, suite.buyer, review.ID, &UpdateReviewRequest{Rating: &tooHigh})
	suite.assertViolation(err, apperrors.ViolationOutOfRange)

	public, err := suite.reviews.ListByProduct(suite.ctx, policy.Actor{}, product.ID)
	suite.Require().NoError(err)
	suite.Len(public, 1)

	suite.assertDenied(suite.reviews.Delete(suite.ctx, suite.admin, review.ID))
	suite.Require().NoError(suite.reviews.Delete(suite.ctx, suite.buyer, review.ID))

	_, err = suite.reviews.Get(suite.ctx, suite.buyer, review.ID)
	suite.assertDenied(err)
}

func (suite *ServiceTestSuite) TestDetachingReviewKeepsOneWithoutOrder() {
	product := suite.newProduct(suite.farmer, "Tomatoes", 1.2, 30)
	order := suite.deliveredOrder(product)

	linked, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, OrderID: &order.ID, Rating: 5})
	suite.Require().NoError(err)
	loose, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, Rating: 4})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repo.Transaction(suite.ctx, func(tx repository.Repository) error {
		return deleteOrderCascade(suite.ctx, tx, order.ID)
	}))

	_, err = suite.repo.Reviews().Get(suite.ctx, linked.ID)
	suite.True(apperrors.IsNotFound(err))

	kept, err := suite.repo.Reviews().FindByKey(suite.ctx, product.ID, suite.buyer.ID, nil)
	suite.Require().NoError(err)
	suite.Equal(loose.ID, kept.ID)
}

func (suite *ServiceTestSuite) TestDetachingSoleReviewClearsOrder() {
	product := suite.newProduct(suite.farmer, "Tomatoes", 1.2, 30)
	order := suite.deliveredOrder(product)

	review, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, OrderID: &order.ID, Rating: 5})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repo.Transaction(suite.ctx, func(tx repository.Repository) error {
		return deleteOrderCascade(suite.ctx, tx, order.ID)
	}))

	stored, err := suite.repo.Reviews().Get(suite.ctx, review.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.OrderID)
}
