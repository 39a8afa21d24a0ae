package services

import (
	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/repository"
)

func (suite *ServiceTestSuite) TestAccountVisibility() {
	_, err := suite.accounts.Get(suite.ctx, suite.buyer, suite.buyer.ID)
	suite.NoError(err)

	_, err = suite.accounts.Get(suite.ctx, suite.admin, suite.buyer.ID)
	suite.NoError(err)

	_, err = suite.accounts.Get(suite.ctx, suite.farmer, suite.buyer.ID)
	suite.assertDenied(err)

	// Unknown ids look exactly like hidden ones.
	_, err = suite.accounts.Get(suite.ctx, suite.admin, uuid.New())
	suite.assertDenied(err)

	all, err := suite.accounts.List(suite.ctx, suite.admin)
	suite.Require().NoError(err)
	suite.Len(all, 3)

	own, err := suite.accounts.List(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Require().Len(own, 1)
	suite.Equal(suite.buyer.ID, own[0].ID)
}

func (suite *ServiceTestSuite) TestAccountUpdate() {
	name := "Amina Farmer"
	updated, err := suite.accounts.Update(suite.ctx, suite.farmer, suite.farmer.ID, &UpdateAccountRequest{FullName: &name})
	suite.Require().NoError(err)
	suite.Equal(name, updated.FullName)

	_, err = suite.accounts.Update(suite.ctx, suite.buyer, suite.farmer.ID, &UpdateAccountRequest{FullName: &name})
	suite.assertDenied(err)
}

func (suite *ServiceTestSuite) TestAccountRoleIsFrozen() {
	promoted := models.RoleAdmin
	_, err := suite.accounts.Update(suite.ctx, suite.buyer, suite.buyer.ID, &UpdateAccountRequest{Role: &promoted})
	suite.assertDenied(err)

	farmerRole := models.RoleFarmer
	_, err = suite.accounts.Update(suite.ctx, suite.admin, suite.buyer.ID, &UpdateAccountRequest{Role: &farmerRole})
	suite.assertDenied(err)

	stored, err := suite.repo.Accounts().Get(suite.ctx, suite.buyer.ID)
	suite.Require().NoError(err)
	suite.Equal(models.RoleBuyer, stored.Role)

	same := models.RoleBuyer
	_, err = suite.accounts.Update(suite.ctx, suite.buyer, suite.buyer.ID, &UpdateAccountRequest{Role: &same})
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestOnlyAdminsDeleteAccounts() {
	err := suite.accounts.Delete(suite.ctx, suite.buyer, suite.buyer.ID)
	suite.assertDenied(err)

	suite.NoError(suite.accounts.Delete(suite.ctx, suite.admin, suite.buyer.ID))

	_, err = suite.repo.Accounts().Get(suite.ctx, suite.buyer.ID)
	suite.True(apperrors.IsNotFound(err))
}

func (suite *ServiceTestSuite) TestDeletingFarmerCascades() {
	product := suite.newProduct(suite.farmer, "Maize", 1.2, 50)
	order := suite.deliveredOrder(product)

	review, err := suite.reviews.Create(suite.ctx, suite.buyer, &CreateReviewRequest{ProductID: product.ID, OrderID: &order.ID, Rating: 5})
	suite.Require().NoError(err)

	msg, err := suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: suite.farmer.ID, Content: "thanks", ProductID: &product.ID})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.accounts.Delete(suite.ctx, suite.admin, suite.farmer.ID))

	_, err = suite.repo.Products().Get(suite.ctx, product.ID)
	suite.True(apperrors.IsNotFound(err))
	_, err = suite.repo.Orders().Get(suite.ctx, order.ID)
	suite.True(apperrors.IsNotFound(err))
	_, err = suite.repo.Reviews().Get(suite.ctx, review.ID)
	suite.True(apperrors.IsNotFound(err))
	_, err = suite.repo.Messages().Get(suite.ctx, msg.ID)
	suite.True(apperrors.IsNotFound(err))

	items, err := suite.repo.OrderItems().ListByOrder(suite.ctx, order.ID)
	suite.Require().NoError(err)
	suite.Empty(items)

	// The buyer is untouched.
	_, err = suite.repo.Accounts().Get(suite.ctx, suite.buyer.ID)
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestDeletingBuyerKeepsFarmerData() {
	product := suite.newProduct(suite.farmer, "Maize", 1.2, 50)
	suite.placeOrder(suite.buyer, suite.farmer, OrderLineRequest{ProductID: product.ID, Quantity: 2})

	suite.Require().NoError(suite.accounts.Delete(suite.ctx, suite.admin, suite.buyer.ID))

	orders, err := suite.repo.Orders().List(suite.ctx, repository.OrderFilter{})
	suite.Require().NoError(err)
	suite.Empty(orders)

	_, err = suite.repo.Products().Get(suite.ctx, product.ID)
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestDeletingAuthorKeepsResources() {
	otherAdmin := suite.newAccount(models.RoleAdmin, "editor@example.com")
	resource, err := suite.resources.Create(suite.ctx, otherAdmin, &ResourceRequest{Title: "Composting", Content: "...", IsPublished: true})
	suite.Require().NoError(err)
	suite.Require().NotNil(resource.AuthorID)

	suite.Require().NoError(suite.accounts.Delete(suite.ctx, suite.admin, otherAdmin.ID))

	stored, err := suite.repo.Resources().Get(suite.ctx, resource.ID)
	suite.Require().NoError(err)
	suite.Nil(stored.AuthorID)
}

func (suite *ServiceTestSuite) TestDeletedAccountCannotWrite() {
	ghost := suite.newAccount(models.RoleFarmer, "ghost@example.com")
	suite.Require().NoError(suite.accounts.Delete(suite.ctx, suite.admin, ghost.ID))

	_, err := suite.products.Create(suite.ctx, ghost, &CreateProductRequest{Name: "Yams", Price: 1, Unit: "kg", StockQuantity: 5})
	suite.assertDenied(err)

	_, err = suite.messages.Send(suite.ctx, ghost, &SendMessageRequest{ReceiverID: suite.buyer.ID, Content: "still here"})
	suite.assertDenied(err)

	name := "Ghost"
	_, err = suite.accounts.Update(suite.ctx, ghost, ghost.ID, &UpdateAccountRequest{FullName: &name})
	suite.assertDenied(err)

	products, err := suite.repo.Products().List(suite.ctx, repository.ProductFilter{FarmerID: &ghost.ID})
	suite.Require().NoError(err)
	suite.Empty(products)

	inbox, err := suite.messages.List(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Empty(inbox)
}

func (suite *ServiceTestSuite) TestDeactivatedAccountCannotWrite() {
	inactive := false
	_, err := suite.accounts.Update(suite.ctx, suite.admin, suite.buyer.ID, &UpdateAccountRequest{IsActive: &inactive})
	suite.Require().NoError(err)

	active := true
	_, err = suite.accounts.Update(suite.ctx, suite.buyer, suite.buyer.ID, &UpdateAccountRequest{IsActive: &active})
	suite.assertDenied(err)

	_, err = suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: suite.farmer.ID, Content: "hello"})
	suite.assertDenied(err)

	stored, err := suite.repo.Accounts().Get(suite.ctx, suite.buyer.ID)
	suite.Require().NoError(err)
	suite.False(stored.IsActive)

	_, err = suite.accounts.Update(suite.ctx, suite.admin, suite.buyer.ID, &UpdateAccountRequest{IsActive: &active})
	suite.Require().NoError(err)
	_, err = suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: suite.farmer.ID, Content: "hello"})
	suite.NoError(err)
}

func (suite *ServiceTestSuite) TestOnlyAdminsToggleActive() {
	inactive := false
	_, err := suite.accounts.Update(suite.ctx, suite.farmer, suite.farmer.ID, &UpdateAccountRequest{IsActive: &inactive})
	suite.assertDenied(err)

	stored, err := suite.repo.Accounts().Get(suite.ctx, suite.farmer.ID)
	suite.Require().NoError(err)
	suite.True(stored.IsActive)
}

func (suite *ServiceTestSuite) TestStaleRoleCannotWrite() {
	// A token minted for a role the account does not hold.
	impostor := policy.NewActor(suite.buyer.ID, models.RoleFarmer)
	_, err := suite.products.Create(suite.ctx, impostor, &CreateProductRequest{Name: "Yams", Price: 1, Unit: "kg", StockQuantity: 5})
	suite.assertDenied(err)
}
