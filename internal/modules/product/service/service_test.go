package service_test

import (
	"context"
	"testing"

	"anoa.com/catalog/internal/entity"
	categoryRepo "anoa.com/catalog/internal/modules/category/repository"
	"anoa.com/catalog/internal/modules/product/dto"
	"anoa.com/catalog/internal/modules/product/repository"
	"anoa.com/catalog/internal/modules/product/service"
	"anoa.com/catalog/internal/testutil"
	"anoa.com/catalog/pkg/apperror"
	commonDto "anoa.com/catalog/pkg/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) service.ProductService {
	t.Helper()
	db := testutil.NewSeededDB(t)
	return service.NewProductService(
		repository.NewProductRepository(db.SQL),
		categoryRepo.NewCategoryRepository(db.SQL),
		zap.NewNop(),
	)
}

func TestGetProductsNormalizesPaging(t *testing.T) {
	svc := newService(t)

	tests := []struct {
		name         string
		in           commonDto.PageQuery
		wantPage     int
		wantPageSize int
		wantItems    int
		wantPages    int
	}{
		{"defaults", commonDto.PageQuery{}, 1, 10, 10, 2},
		{"negative page", commonDto.PageQuery{Page: -1, PageSize: 5}, 1, 5, 5, 3},
		{"oversized page size", commonDto.PageQuery{Page: 1, PageSize: 1000}, 1, 100, 15, 1},
		{"page past the end", commonDto.PageQuery{Page: 9, PageSize: 10}, 9, 10, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.GetProducts(context.Background(), dto.ProductFilter{PageQuery: tt.in})
			require.NoError(t, err)
			assert.Equal(t, tt.wantPage, res.Page)
			assert.Equal(t, tt.wantPageSize, res.PageSize)
			assert.Len(t, res.Items, tt.wantItems)
			assert.Equal(t, tt.wantPages, res.TotalPages)
			assert.Equal(t, int64(15), res.TotalCount)
		})
	}
}

func TestGetProductsFlags(t *testing.T) {
	svc := newService(t)

	res, err := svc.GetProducts(context.Background(), dto.ProductFilter{PageQuery: commonDto.PageQuery{Page: 2, PageSize: 5}})
	require.NoError(t, err)
	assert.True(t, res.HasPreviousPage)
	assert.True(t, res.HasNextPage)
}

func TestGetByIDMissing(t *testing.T) {
	_, err := newService(t).GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "product with id 404 not found")
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	created, err := svc.Create(ctx, dto.CreateProductRequest{
		Name:       "  Desk Lamp ",
		Price:      decimal.RequireFromString("24.499"),
		CategoryID: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", created.Name)
	assert.Equal(t, "24.5", created.Price.String())
	require.NotNil(t, created.CategoryName)
	assert.Equal(t, "Home & Garden", *created.CategoryName)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateProductValidation(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	tests := []struct {
		name    string
		req     dto.CreateProductRequest
		wantMsg string
	}{
		{"unknown category", dto.CreateProductRequest{Name: "Ghost", Price: decimal.NewFromInt(1), CategoryID: 77}, "category with id 77 does not exist"},
		{"price rounds to zero", dto.CreateProductRequest{Name: "Dust", Price: decimal.RequireFromString("0.001"), CategoryID: 1}, "price must be at least 0.01"},
		{"name only markup", dto.CreateProductRequest{Name: "<p></p>", Price: decimal.NewFromInt(1), CategoryID: 1}, "product name must be between 2 and 200 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.req)
			assert.ErrorIs(t, err, apperror.ErrInvalidInput)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestUpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	err := svc.Update(ctx, 1, dto.UpdateProductRequest{Name: "Gaming Laptop", Price: decimal.RequireFromString("1299.00"), CategoryID: 1})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Gaming Laptop", got.Name)
	assert.Equal(t, "1299", got.Price.String())
	assert.NotNil(t, got.UpdatedAt)

	err = svc.Update(ctx, 999, dto.UpdateProductRequest{Name: "Nothing", Price: decimal.NewFromInt(1), CategoryID: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	err = svc.Update(ctx, 1, dto.UpdateProductRequest{Name: "Laptop", Price: decimal.NewFromInt(1), CategoryID: 99})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, svc.Delete(ctx, 2))
	assert.ErrorIs(t, svc.Delete(ctx, 2), apperror.ErrNotFound)
}

func TestGetGroupedByCategory(t *testing.T) {
	groups, err := newService(t).GetGroupedByCategory(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 5)

	var electronics entity.ProductGroup
	for _, g := range groups {
		if g.CategoryName == "Electronics" {
			electronics = g
		}
	}
	assert.Equal(t, int64(4), electronics.ProductCount)
	assert.Equal(t, "1742.96", electronics.TotalValue.String())
	assert.Equal(t, "435.74", electronics.AveragePrice.String())
	assert.Equal(t, "12.99", electronics.MinPrice.String())
	assert.Equal(t, "999.99", electronics.MaxPrice.String())
}
