// internal/handlers/message.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/farm-marketplace/internal/middleware"
	"github.com/javajoker/farm-marketplace/internal/services"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler(messageService *services.MessageService) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
	}
}

// POST /messages
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	message, err := h.messageService.Send(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, message)
}

// GET /messages
func (h *MessageHandler) ListMessages(c *gin.Context) {
	messages, err := h.messageService.List(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(messages, utils.GetPaginationParams(c)))
}

// GET /messages/with/:accountId
func (h *MessageHandler) GetConversation(c *gin.Context) {
	other, err := utils.ParseUUIDParam(c, "accountId")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	messages, err := h.messageService.Conversation(c.Request.Context(), middleware.ActorFromContext(c), other)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, messages)
}

// PATCH /messages/:id/read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	message, err := h.messageService.MarkRead(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, message)
}
