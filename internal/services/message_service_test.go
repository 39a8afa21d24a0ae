package services

import (
	"github.com/google/uuid"

	"github.com/javajoker/farm-marketplace/internal/apperrors"
	"github.com/javajoker/farm-marketplace/internal/policy"
)

func (suite *ServiceTestSuite) send(from, to policy.Actor, content string) {
	_, err := suite.messages.Send(suite.ctx, from, &SendMessageRequest{ReceiverID: to.ID, Content: content})
	suite.Require().NoError(err)
}

func (suite *ServiceTestSuite) TestSendMessage() {
	msg, err := suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: suite.farmer.ID, Content: "Do you deliver?"})
	suite.Require().NoError(err)
	suite.Equal(suite.buyer.ID, msg.SenderID)
	suite.False(msg.IsRead)

	_, err = suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: uuid.New(), Content: "hello?"})
	suite.assertViolation(err, apperrors.ViolationMissingReference)

	missing := uuid.New()
	_, err = suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: suite.farmer.ID, ProductID: &missing, Content: "this one"})
	suite.assertViolation(err, apperrors.ViolationMissingReference)

	_, err = suite.messages.Send(suite.ctx, policy.Actor{}, &SendMessageRequest{ReceiverID: suite.farmer.ID, Content: "anon"})
	suite.assertDenied(err)
}

func (suite *ServiceTestSuite) TestMarkRead() {
	msg, err := suite.messages.Send(suite.ctx, suite.buyer, &SendMessageRequest{ReceiverID: suite.farmer.ID, Content: "ping"})
	suite.Require().NoError(err)

	_, err = suite.messages.MarkRead(suite.ctx, suite.buyer, msg.ID)
	suite.assertDenied(err)
	_, err = suite.messages.MarkRead(suite.ctx, suite.admin, msg.ID)
	suite.assertDenied(err)

	read, err := suite.messages.MarkRead(suite.ctx, suite.farmer, msg.ID)
	suite.Require().NoError(err)
	suite.True(read.IsRead)

	again, err := suite.messages.MarkRead(suite.ctx, suite.farmer, msg.ID)
	suite.Require().NoError(err)
	suite.True(again.IsRead)
}

func (suite *ServiceTestSuite) TestConversation() {
	suite.send(suite.buyer, suite.farmer, "one")
	suite.send(suite.farmer, suite.buyer, "two")
	suite.send(suite.buyer, suite.admin, "elsewhere")

	thread, err := suite.messages.Conversation(suite.ctx, suite.buyer, suite.farmer.ID)
	suite.Require().NoError(err)
	suite.Len(thread, 2)

	all, err := suite.messages.List(suite.ctx, suite.buyer)
	suite.Require().NoError(err)
	suite.Len(all, 3)

	farmerInbox, err := suite.messages.List(suite.ctx, suite.farmer)
	suite.Require().NoError(err)
	suite.Len(farmerInbox, 2)

	anonymous, err := suite.messages.List(suite.ctx, policy.Actor{})
	suite.Require().NoError(err)
	suite.Empty(anonymous)
}
