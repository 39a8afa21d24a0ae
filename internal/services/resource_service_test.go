package services

import (
	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/models"
	"github.com/javajoker/farm-marketplace/internal/policy"
)

func (suite *ServiceTestSuite) newResource(published bool) *models.EducationalResource {
	resource, err := suite.resources.Create(suite.ctx, suite.admin, &ResourceRequest{
		Title:       "Composting basics",
		Content:     "Layer greens and browns.",
		Category:    "soil",
		IsPublished: published,
	})
	suite.Require().NoError(err)
	return resource
}

func (suite *ServiceTestSuite) TestResourceVisibility() {
	published := suite.newResource(true)
	draft := suite.newResource(false)
	suite.Require().NotNil(draft.AuthorID)
	suite.Equal(suite.admin.ID, *draft.AuthorID)

	_, err := suite.resources.Get(suite.ctx, policy.Actor{}, draft.ID)
	suite.assertDenied(err)

	rows, err := suite.resources.List(suite.ctx, policy.Actor{}, "")
	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(published.ID, rows[0].ID)

	rows, err = suite.resources.List(suite.ctx, suite.admin, "")
	suite.Require().NoError(err)
	suite.Len(rows, 2)

	rows, err = suite.resources.List(suite.ctx, suite.admin, "pests")
	suite.Require().NoError(err)
	suite.Empty(rows)
}

func (suite *ServiceTestSuite) TestOnlyAdminsWriteResources() {
	_, err := suite.resources.Create(suite.ctx, suite.farmer, &ResourceRequest{Title: "Tips", Content: "..."})
	suite.assertDenied(err)

	resource := suite.newResource(true)
	_, err = suite.resources.Update(suite.ctx, suite.farmer, resource.ID, &ResourceRequest{Title: "Mine now", Content: "..."})
	suite.assertDenied(err)
	suite.assertDenied(suite.resources.Delete(suite.ctx, suite.buyer, resource.ID))

	updated, err := suite.resources.Update(suite.ctx, suite.admin, resource.ID, &ResourceRequest{
		Title: "Composting", Content: "Turn weekly.", Category: "soil", IsPublished: true,
	})
	suite.Require().NoError(err)
	suite.Equal("Composting", updated.Title)
}

func (suite *ServiceTestSuite) TestViewCountsWithoutWritePermission() {
	resource := suite.newResource(true)

	viewed, err := suite.resources.View(suite.ctx, policy.Actor{}, resource.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), viewed.ViewCount)

	viewed, err = suite.resources.View(suite.ctx, suite.buyer, resource.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), viewed.ViewCount)

	draft := suite.newResource(false)
	_, err = suite.resources.View(suite.ctx, suite.buyer, draft.ID)
	suite.assertDenied(err)
}

func (suite *ServiceTestSuite) TestBookmarks() {
	resource := suite.newResource(true)
	draft := suite.newResource(false)

	bookmark, err := suite.bookmarks.Create(suite.ctx, suite.buyer, &CreateBookmarkRequest{ResourceID: resource.ID})
	suite.Require().NoError(err)

	_, err = suite.bookmarks.Create(suite.ctx, suite.buyer, &CreateBookmarkRequest{ResourceID: resource.ID})
	suite.assertViolation(err, apperrors.ViolationDuplicate)

	_, err = suite.bookmarks.Create(suite.ctx, suite.buyer, &CreateBookmarkRequest{ResourceID: draft.ID})
	suite.assertDenied(err)

	suite.assertDenied(suite.bookmarks.Delete(suite.ctx, suite.farmer, bookmark.ID))

	mine, err := suite.bookmarks.List(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Len(mine, 1)

	theirs, err := suite.bookmarks.List(suite.ctx, suite.farmer)
	suite.Require().NoError(err)
	suite.Empty(theirs)
}

func (suite *ServiceTestSuite) TestDeletingResourceRemovesBookmarks() {
	resource := suite.newResource(true)
	_, err := suite.bookmarks.Create(suite.ctx, suite.buyer, &CreateBookmarkRequest{ResourceID: resource.ID})
	suite.Require().NoError(err)

	suite.Require().NoError(suite.resources.Delete(suite.ctx, suite.admin, resource.ID))

	mine, err := suite.bookmarks.List(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Empty(mine)
}
