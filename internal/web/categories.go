package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"anoa.com/catalog/internal/web/apiclient"
	"anoa.com/catalog/internal/web/session"
	"anoa.com/catalog/pkg/response"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const categoriesPath = "/categories"

type CategoryForm struct {
	Name string `form:"name" binding:"required,min=2,max=100"`
}

func (h *Handler) CategoryIndex(c *gin.Context) {
	categories, err := h.client(c).GetCategories(c.Request.Context())
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			h.expire(c)
			return
		}
		response.Logger(c).Error("error loading categories", zap.Error(err))
		session.Get(c).AddFlash(session.FlashError, "Error loading categories. Please try again.")
	}

	h.render(c, http.StatusOK, "categories/index", "Categories", gin.H{"Categories": categories})
}

func (h *Handler) categoryID(c *gin.Context) (int64, bool) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		session.Get(c).AddFlash(session.FlashError, "Category not found.")
		c.Redirect(http.StatusFound, categoriesPath)
		return 0, false
	}
	return id, true
}

func (h *Handler) CategoryDetails(c *gin.Context) {
	id, ok := h.categoryID(c)
	if !ok {
		return
	}

	category, err := h.client(c).GetCategory(c.Request.Context(), id)
	if err != nil {
		h.apiFailed(c, err, "Category not found.", "Error loading category. Please try again.", categoriesPath)
		return
	}

	h.render(c, http.StatusOK, "categories/details", category.Name, gin.H{"Category": category})
}

func (h *Handler) renderCategoryForm(c *gin.Context, status int, id int64, form CategoryForm, formErr string) {
	title := "Create Category"
	action := "/categories/create"
	if id > 0 {
		title = "Edit Category"
		action = fmt.Sprintf("/categories/%d/edit", id)
	}

	h.render(c, status, "categories/form", title, gin.H{
		"ID":     id,
		"Action": action,
		"Form":   form,
		"Error":  formErr,
	})
}

func (h *Handler) CategoryCreatePage(c *gin.Context) {
	h.renderCategoryForm(c, http.StatusOK, 0, CategoryForm{}, "")
}

func (h *Handler) CategoryCreate(c *gin.Context) {
	var form CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderCategoryForm(c, http.StatusBadRequest, 0, form, validator.FormatValidationError(err))
		return
	}

	h.log.Info("creating category", zap.String("name", form.Name))
	if _, err := h.client(c).CreateCategory(c.Request.Context(), apiclient.CategoryInput{Name: strings.TrimSpace(form.Name)}); err != nil {
		h.categoryFormFailed(c, 0, form, err, "Error creating category. Please try again.")
		return
	}

	session.Get(c).AddFlash(session.FlashSuccess, "Category created successfully.")
	c.Redirect(http.StatusFound, categoriesPath)
}

func (h *Handler) CategoryEditPage(c *gin.Context) {
	id, ok := h.categoryID(c)
	if !ok {
		return
	}

	category, err := h.client(c).GetCategory(c.Request.Context(), id)
	if err != nil {
		h.apiFailed(c, err, "Category not found.", "Error loading category. Please try again.", categoriesPath)
		return
	}

	h.renderCategoryForm(c, http.StatusOK, id, CategoryForm{Name: category.Name}, "")
}

func (h *Handler) CategoryEdit(c *gin.Context) {
	id, ok := h.categoryID(c)
	if !ok {
		return
	}

	var form CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderCategoryForm(c, http.StatusBadRequest, id, form, validator.FormatValidationError(err))
		return
	}

	h.log.Info("updating category", zap.Int64("id", id))
	if err := h.client(c).UpdateCategory(c.Request.Context(), id, apiclient.CategoryInput{Name: strings.TrimSpace(form.Name)}); err != nil {
		h.categoryFormFailed(c, id, form, err, "Error updating category. Please try again.")
		return
	}

	session.Get(c).AddFlash(session.FlashSuccess, "Category updated successfully.")
	c.Redirect(http.StatusFound, categoriesPath)
}

func (h *Handler) categoryFormFailed(c *gin.Context, id int64, form CategoryForm, err error, fallback string) {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, apiclient.ErrNotFound):
		h.apiFailed(c, err, "Category not found.", fallback, categoriesPath)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
		h.renderCategoryForm(c, http.StatusBadRequest, id, form, apiErr.Message)
	default:
		response.Logger(c).Error("category save failed", zap.Int64("id", id), zap.Error(err))
		h.renderCategoryForm(c, http.StatusOK, id, form, fallback)
	}
}

func (h *Handler) CategoryDeletePage(c *gin.Context) {
	id, ok := h.categoryID(c)
	if !ok {
		return
	}

	category, err := h.client(c).GetCategory(c.Request.Context(), id)
	if err != nil {
		h.apiFailed(c, err, "Category not found.", "Error loading category. Please try again.", categoriesPath)
		return
	}

	h.render(c, http.StatusOK, "categories/delete", "Delete Category", gin.H{"Category": category})
}

func (h *Handler) CategoryDelete(c *gin.Context) {
	id, ok := h.categoryID(c)
	if !ok {
		return
	}

	h.log.Info("deleting category", zap.Int64("id", id))
	if err := h.client(c).DeleteCategory(c.Request.Context(), id); err != nil {
		h.apiFailed(c, err, "Category not found.", "Error deleting category. Please try again.", categoriesPath)
		return
	}

	session.Get(c).AddFlash(session.FlashSuccess, "Category deleted successfully.")
	c.Redirect(http.StatusFound, categoriesPath)
}
