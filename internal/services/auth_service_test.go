package services

import (
	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

func (suite *ServiceTestSuite) register(email string, role models.Role) (*AuthResponse, error) {
	return suite.auth.Register(suite.ctx, &RegisterRequest{
		Email:    email,
		Password: "Harvest2024",
		FullName: "New Member",
		Role:     role,
	})
}

func (suite *ServiceTestSuite) TestRegisterIssuesTokens() {
	resp, err := suite.register("New.Farmer@Example.com", models.RoleFarmer)
	suite.Require().NoError(err)

	suite.Equal("new.farmer@example.com", resp.Account.Email)
	suite.Equal(models.RoleFarmer, resp.Account.Role)
	suite.Equal("en", resp.Account.Locale)
	suite.Equal("Bearer", resp.TokenType)
	suite.Equal(3600, resp.ExpiresIn)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	suite.Require().NoError(err)
	suite.Equal(resp.Account.ID.String(), claims.UserID)
	suite.Equal("farmer", claims.Role)
}

func (suite *ServiceTestSuite) TestRegisterRejectsAdminRole() {
	_, err := suite.register("sneaky@example.com", models.RoleAdmin)
	suite.Error(err)

	_, err = suite.repo.Accounts().FindByEmail(suite.ctx, "sneaky@example.com")
	suite.True(apperrors.IsNotFound(err))
}

func (suite *ServiceTestSuite) TestRegisterRejectsDuplicateEmail() {
	_, err := suite.register("buyer@example.com", models.RoleBuyer)
	suite.ErrorIs(err, apperrors.ErrEmailTaken)
}

func (suite *ServiceTestSuite) TestRegisterRejectsWeakPassword() {
	_, err := suite.auth.Register(suite.ctx, &RegisterRequest{
		Email:    "weak@example.com",
		Password: "password",
		FullName: "Weak",
		Role:     models.RoleBuyer,
	})
	suite.assertInvalidRequest(err)
}

func (suite *ServiceTestSuite) TestLogin() {
	_, err := suite.register("login@example.com", models.RoleBuyer)
	suite.Require().NoError(err)

	resp, err := suite.auth.Login(suite.ctx, &LoginRequest{Email: "login@example.com", Password: "Harvest2024"})
	suite.Require().NoError(err)
	suite.NotEmpty(resp.AccessToken)

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Email: "login@example.com", Password: "wrong"})
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Email: "nobody@example.com", Password: "Harvest2024"})
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (suite *ServiceTestSuite) TestLoginRefusesDeactivatedAccount() {
	resp, err := suite.register("paused@example.com", models.RoleBuyer)
	suite.Require().NoError(err)

	inactive := false
	_, err = suite.accounts.Update(suite.ctx, suite.admin, resp.Account.ID, &UpdateAccountRequest{IsActive: &inactive})
	suite.Require().NoError(err)

	_, err = suite.auth.Login(suite.ctx, &LoginRequest{Email: "paused@example.com", Password: "Harvest2024"})
	suite.ErrorIs(err, apperrors.ErrAccountInactive)

	_, err = suite.auth.RefreshToken(suite.ctx, resp.RefreshToken)
	suite.ErrorIs(err, apperrors.ErrAccountInactive)
}

func (suite *ServiceTestSuite) TestRefreshToken() {
	resp, err := suite.register("refresh@example.com", models.RoleBuyer)
	suite.Require().NoError(err)

	refreshed, err := suite.auth.RefreshToken(suite.ctx, resp.RefreshToken)
	suite.Require().NoError(err)
	suite.Equal(resp.Account.ID, refreshed.Account.ID)

	_, err = suite.auth.RefreshToken(suite.ctx, resp.AccessToken)
	suite.ErrorIs(err, apperrors.ErrInvalidCredentials)
}

func (suite *ServiceTestSuite) TestMe() {
	me, err := suite.auth.Me(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Equal(suite.buyer.ID, me.ID)

	_, err = suite.auth.Me(suite.ctx, policy.Actor{})
	suite.assertDenied(err)
}
