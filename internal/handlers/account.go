// internal/handlers/account.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/farm-marketplace/internal/middleware"
	"github.com/javajoker/farm-marketplace/internal/services"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

type AccountHandler struct {
	accountService *services.AccountService
}

func NewAccountHandler(accountService *services.AccountService) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
	}
}

// GET /accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.accountService.List(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(accounts, utils.GetPaginationParams(c)))
}

// GET /accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	account, err := h.accountService.Get(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, account)
}

// PATCH /accounts/:id
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req services.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	account, err := h.accountService.Update(c.Request.Context(), middleware.ActorFromContext(c), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, account)
}

// DELETE /accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.accountService.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
