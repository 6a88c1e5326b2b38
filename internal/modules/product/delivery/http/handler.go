package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/catalog/internal/modules/product/dto"
	"anoa.com/catalog/internal/modules/product/usecase"
	"anoa.com/catalog/pkg/apperror"
	"anoa.com/catalog/pkg/response"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	uc *usecase.UseCases
}

func NewProductHandler(uc *usecase.UseCases) *ProductHandler {
	return &ProductHandler{uc: uc}
}

func (h *ProductHandler) Register(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	products.GET("", h.GetProducts)
	products.GET("/grouped", h.GetGroupedProducts)
	products.GET("/:id", h.GetProduct)
	products.POST("", h.CreateProduct)
	products.PUT("/:id", h.UpdateProduct)
	products.DELETE("/:id", h.DeleteProduct)
}

func (h *ProductHandler) GetProducts(c *gin.Context) {
	var filter dto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	if err := bindCamelCaseQuery(c, &filter); err != nil {
		response.ResponseError(c, err)
		return
	}

	result, err := h.uc.GetProducts.Execute(c.Request.Context(), filter)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProductHandler) GetGroupedProducts(c *gin.Context) {
	groups, err := h.uc.GetGrouped.Execute(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, groups)
}

func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	product, err := h.uc.GetByID.Execute(c.Request.Context(), id)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	product, err := h.uc.Create.Execute(c.Request.Context(), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Location", fmt.Sprintf("/api/products/%d", product.ID))
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateProductRequest
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

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
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

// bindCamelCaseQuery also accepts pageSize, categoryId, sortBy and sortDesc.
// The snake_case parameter wins when both are sent.
func bindCamelCaseQuery(c *gin.Context, f *dto.ProductFilter) error {
	if c.Query("category_id") == "" {
		f.CategoryID = nil
	}
	if v, ok := camelCaseQuery(c, "page_size", "pageSize"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperror.InvalidInput("pageSize must be a number")
		}
		f.PageSize = n
	}
	if v, ok := camelCaseQuery(c, "category_id", "categoryId"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return apperror.InvalidInput("categoryId must be a number")
		}
		f.CategoryID = &id
	}
	if v, ok := camelCaseQuery(c, "sort_by", "sortBy"); ok {
		f.SortBy = v
	}
	if v, ok := camelCaseQuery(c, "sort_desc", "sortDesc"); ok {
		desc, err := strconv.ParseBool(v)
		if err != nil {
			return apperror.InvalidInput("sortDesc must be true or false")
		}
		f.SortDesc = desc
	}
	return nil
}

func camelCaseQuery(c *gin.Context, name, camel string) (string, bool) {
	if _, ok := c.GetQuery(name); ok {
		return "", false
	}
	v, ok := c.GetQuery(camel)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
