package handler

import (
	"fmt"
	"net/http"

	"anoa.com/catalog/internal/modules/category/dto"
	"anoa.com/catalog/internal/modules/category/usecase"
	"anoa.com/catalog/pkg/response"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	uc *usecase.UseCases
}

func NewCategoryHandler(uc *usecase.UseCases) *CategoryHandler {
	return &CategoryHandler{uc: uc}
}

func (h *CategoryHandler) Register(rg *gin.RouterGroup) {
	categories := rg.Group("/categories")
	categories.GET("", h.GetAllCategories)
	categories.GET("/:id", h.GetCategory)
	categories.POST("", h.CreateCategory)
	categories.PUT("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)
}

func (h *CategoryHandler) GetAllCategories(c *gin.Context) {
	categories, err := h.uc.GetAll.Execute(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	category, err := h.uc.GetByID.Execute(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	category, err := h.uc.Create.Execute(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/categories/%d", category.ID))
	c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	if err := h.uc.Update.Execute(c.Request.Context(), id, req); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.uc.Delete.Execute(c.Request.Context(), id); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
