package web

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/export"
	productDto "anoa.com/catalog/internal/modules/product/dto"
	"anoa.com/catalog/internal/web/apiclient"
	"anoa.com/catalog/internal/web/session"
	commonDto "anoa.com/catalog/pkg/dto"
	"anoa.com/catalog/pkg/response"
	"anoa.com/catalog/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const productsPath = "/products"

type ProductForm struct {
	Name       string `form:"name" binding:"required,min=2,max=200"`
	Price      string `form:"price" binding:"required"`
	CategoryID int64  `form:"category_id" binding:"required"`
}

// parse validates the fields the binding tags cannot express and returns the API request.
func (f ProductForm) parse() (productDto.CreateProductRequest, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(f.Price))
	if err != nil || !price.IsPositive() {
		return productDto.CreateProductRequest{}, errors.New("Price must be greater than 0")
	}
	return productDto.CreateProductRequest{
		Name:       strings.TrimSpace(f.Name),
		Price:      price,
		CategoryID: f.CategoryID,
	}, nil
}

// ProductList is the view model of the product index.
type ProductList struct {
	Result     *commonDto.PagedResult[entity.Product]
	Filter     productDto.ProductFilter
	Categories []entity.Category
}

func (l ProductList) query(page int, sortBy string, sortDesc bool) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(l.Filter.PageSize))
	if l.Filter.Search != "" {
		q.Set("search", l.Filter.Search)
	}
	if l.Filter.CategoryID != nil {
		q.Set("category_id", strconv.FormatInt(*l.Filter.CategoryID, 10))
	}
	if sortBy != "" {
		q.Set("sort_by", sortBy)
	}
	if sortDesc {
		q.Set("sort_desc", "true")
	}
	return productsPath + "?" + q.Encode()
}

// PageURL keeps the current filter and sort.
func (l ProductList) PageURL(page int) string {
	return l.query(page, l.Filter.SortBy, l.Filter.SortDesc)
}

// SortURL toggles the direction when column is already the sort column.
func (l ProductList) SortURL(column string) string {
	desc := strings.EqualFold(l.Filter.SortBy, column) && !l.Filter.SortDesc
	return l.query(1, column, desc)
}

func (l ProductList) SelectedCategory(id int64) bool {
	return l.Filter.CategoryID != nil && *l.Filter.CategoryID == id
}

func (h *Handler) ProductIndex(c *gin.Context) {
	var filter productDto.ProductFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		filter = productDto.ProductFilter{}
	}
	if filter.CategoryID != nil && *filter.CategoryID <= 0 {
		filter.CategoryID = nil
	}
	filter.PageQuery = filter.PageQuery.Normalize()

	h.log.Info("loading products index",
		zap.Int("page", filter.Page),
		zap.String("search", filter.Search),
	)

	api := h.client(c)
	list := ProductList{Filter: filter}

	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		res, err := api.GetProducts(ctx, filter)
		list.Result = res
		return err
	})
	g.Go(func() error {
		cats, err := api.GetCategories(ctx)
		list.Categories = cats
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			h.expire(c)
			return
		}
		response.Logger(c).Error("error loading products index", zap.Error(err))
		session.Get(c).AddFlash(session.FlashError, "Error loading products. Please try again.")
		empty := commonDto.NewPagedResult[entity.Product](nil, 0, filter.Page, filter.PageSize)
		list.Result = &empty
	}

	h.render(c, http.StatusOK, "products/index", "Products", gin.H{"List": list})
}

func (h *Handler) ProductGrouped(c *gin.Context) {
	groups, err := h.client(c).GetProductsGrouped(c.Request.Context())
	if err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			h.expire(c)
			return
		}
		response.Logger(c).Error("error loading grouped products", zap.Error(err))
		session.Get(c).AddFlash(session.FlashError, "Error loading grouped products report. Please try again.")
		groups = nil
	}

	h.render(c, http.StatusOK, "products/grouped", "Products by Category", gin.H{"Groups": groups})
}

func (h *Handler) ProductGroupedExport(c *gin.Context) {
	groups, err := h.client(c).GetProductsGrouped(c.Request.Context())
	if err != nil {
		h.apiFailed(c, err, "Error exporting report. Please try again.", "Error exporting report. Please try again.", "/products/grouped")
		return
	}

	raw, err := export.GroupedReport(groups)
	if err != nil {
		response.Logger(c).Error("error building grouped export", zap.Error(err))
		session.Get(c).AddFlash(session.FlashError, "Error exporting report. Please try again.")
		c.Redirect(http.StatusFound, "/products/grouped")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.GroupedFilename))
	c.Data(http.StatusOK, export.ContentTypeXLSX, raw)
}

// productID reads the id parameter, redirecting to the index when it is invalid.
func (h *Handler) productID(c *gin.Context) (int64, bool) {
	id, err := response.ParseID(c, "id")
	if err != nil {
		session.Get(c).AddFlash(session.FlashError, "Product not found.")
		c.Redirect(http.StatusFound, productsPath)
		return 0, false
	}
	return id, true
}

func (h *Handler) ProductDetails(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.client(c).GetProduct(c.Request.Context(), id)
	if err != nil {
		h.apiFailed(c, err, "Product not found.", "Error loading product. Please try again.", productsPath)
		return
	}

	h.render(c, http.StatusOK, "products/details", product.Name, gin.H{"Product": product})
}

func (h *Handler) renderProductForm(c *gin.Context, status int, id int64, form ProductForm, formErr string) {
	title := "Create Product"
	action := "/products/create"
	if id > 0 {
		title = "Edit Product"
		action = fmt.Sprintf("/products/%d/edit", id)
	}

	categories, err := h.client(c).GetCategories(c.Request.Context())
	if err != nil {
		h.apiFailed(c, err, "Category not found.", "Error loading form. Please try again.", productsPath)
		return
	}

	h.render(c, status, "products/form", title, gin.H{
		"ID":         id,
		"Action":     action,
		"Form":       form,
		"Error":      formErr,
		"Categories": categories,
	})
}

func (h *Handler) ProductCreatePage(c *gin.Context) {
	h.renderProductForm(c, http.StatusOK, 0, ProductForm{}, "")
}

func (h *Handler) ProductCreate(c *gin.Context) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderProductForm(c, http.StatusBadRequest, 0, form, validator.FormatValidationError(err))
		return
	}
	req, err := form.parse()
	if err != nil {
		h.renderProductForm(c, http.StatusBadRequest, 0, form, err.Error())
		return
	}

	h.log.Info("creating product", zap.String("name", req.Name))
	if _, err := h.client(c).CreateProduct(c.Request.Context(), req); err != nil {
		h.productFormFailed(c, 0, form, err, "Error creating product. Please try again.")
		return
	}

	session.Get(c).AddFlash(session.FlashSuccess, "Product created successfully.")
	c.Redirect(http.StatusFound, productsPath)
}

func (h *Handler) ProductEditPage(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.client(c).GetProduct(c.Request.Context(), id)
	if err != nil {
		h.apiFailed(c, err, "Product not found.", "Error loading product. Please try again.", productsPath)
		return
	}

	h.renderProductForm(c, http.StatusOK, id, ProductForm{
		Name:       product.Name,
		Price:      product.Price.StringFixed(2),
		CategoryID: product.CategoryID,
	}, "")
}

func (h *Handler) ProductEdit(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderProductForm(c, http.StatusBadRequest, id, form, validator.FormatValidationError(err))
		return
	}
	req, err := form.parse()
	if err != nil {
		h.renderProductForm(c, http.StatusBadRequest, id, form, err.Error())
		return
	}

	h.log.Info("updating product", zap.Int64("id", id))
	if err := h.client(c).UpdateProduct(c.Request.Context(), id, productDto.UpdateProductRequest(req)); err != nil {
		h.productFormFailed(c, id, form, err, "Error updating product. Please try again.")
		return
	}

	session.Get(c).AddFlash(session.FlashSuccess, "Product updated successfully.")
	c.Redirect(http.StatusFound, productsPath)
}

// productFormFailed re-renders the form with the API's validation message, or
// leaves the page when the product is gone or the session expired.
func (h *Handler) productFormFailed(c *gin.Context, id int64, form ProductForm, err error, fallback string) {
	var apiErr *apiclient.APIError
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized), errors.Is(err, apiclient.ErrNotFound):
		h.apiFailed(c, err, "Product not found.", fallback, productsPath)
	case errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest:
		h.renderProductForm(c, http.StatusBadRequest, id, form, apiErr.Message)
	default:
		response.Logger(c).Error("product save failed", zap.Int64("id", id), zap.Error(err))
		h.renderProductForm(c, http.StatusOK, id, form, fallback)
	}
}

func (h *Handler) ProductDeletePage(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.client(c).GetProduct(c.Request.Context(), id)
	if err != nil {
		h.apiFailed(c, err, "Product not found.", "Error loading product. Please try again.", productsPath)
		return
	}

	h.render(c, http.StatusOK, "products/delete", "Delete Product", gin.H{"Product": product})
}

func (h *Handler) ProductDelete(c *gin.Context) {
	id, ok := h.productID(c)
	if !ok {
		return
	}

	h.log.Info("deleting product", zap.Int64("id", id))
	if err := h.client(c).DeleteProduct(c.Request.Context(), id); err != nil {
		h.apiFailed(c, err, "Product not found.", "Error deleting product. Please try again.", productsPath)
		return
	}

	session.Get(c).AddFlash(session.FlashSuccess, "Product deleted successfully.")
	c.Redirect(http.StatusFound, productsPath)
}
