// internal/handlers/resource.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/farm-marketplace/internal/middleware"
	"github.com/javajoker/farm-marketplace/internal/services"
	"github.com/javajoker/farm-marketplace/internal/utils"
)

type ResourceHandler struct {
	resourceService *services.ResourceService
	bookmarkService *services.BookmarkService
}

func NewResourceHandler(resourceService *services.ResourceService, bookmarkService *services.BookmarkService) *ResourceHandler {
	return &ResourceHandler{
		resourceService: resourceService,
		bookmarkService: bookmarkService,
	}
}

// GET /resources
func (h *ResourceHandler) ListResources(c *gin.Context) {
	resources, err := h.resourceService.List(c.Request.Context(), middleware.ActorFromContext(c), c.Query("category"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.Paginate(resources, utils.GetPaginationParams(c)))
}

// GET /resources/:id
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	resource, err := h.resourceService.Get(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, resource)
}

// POST /resources/:id/view
func (h *ResourceHandler) ViewResource(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	resource, err := h.resourceService.View(c.Request.Context(), middleware.ActorFromContext(c), id)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, resource)
}

// POST /resources
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req services.ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	resource, err := h.resourceService.Create(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, resource)
}

// PUT /resources/:id
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	var req services.ResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	resource, err := h.resourceService.Update(c.Request.Context(), middleware.ActorFromContext(c), id, &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, resource)
}

// DELETE /resources/:id
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.resourceService.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.NoContentResponse(c)
}

// GET /bookmarks
func (h *ResourceHandler) ListBookmarks(c *gin.Context) {
	bookmarks, err := h.bookmarkService.List(c.Request.Context(), middleware.ActorFromContext(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, bookmarks)
}

// POST /bookmarks
func (h *ResourceHandler) CreateBookmark(c *gin.Context) {
	var req services.CreateBookmarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	bookmark, err := h.bookmarkService.Create(c.Request.Context(), middleware.ActorFromContext(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, bookmark)
}

// DELETE /bookmarks/:id
func (h *ResourceHandler) DeleteBookmark(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	if err := h.bookmarkService.Delete(c.Request.Context(), middleware.ActorFromContext(c), id); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.NoContentResponse(c)
}
