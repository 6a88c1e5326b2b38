package usecase

import (
	"context"
	"errors"
	"testing"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/product/dto"
	commonDto "anoa.com/catalog/pkg/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockService struct {
	mock.Mock
}

func (m *mockService) GetProducts(ctx context.Context, filter dto.ProductFilter) (*commonDto.PagedResult[entity.Product], error) {
	args := m.Called(ctx, filter)
	res, _ := args.Get(0).(*commonDto.PagedResult[entity.Product])
	return res, args.Error(1)
}

func (m *mockService) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockService) GetGroupedByCategory(ctx context.Context) ([]entity.ProductGroup, error) {
	args := m.Called(ctx)
	g, _ := args.Get(0).([]entity.ProductGroup)
	return g, args.Error(1)
}

func (m *mockService) Create(ctx context.Context, req dto.CreateProductRequest) (*entity.Product, error) {
	args := m.Called(ctx, req)
	p, _ := args.Get(0).(*entity.Product)
	return p, args.Error(1)
}

func (m *mockService) Update(ctx context.Context, id int64, req dto.UpdateProductRequest) error {
	return m.Called(ctx, id, req).Error(0)
}

func (m *mockService) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestGetProductsForwardsFilter(t *testing.T) {
	ctx := context.Background()
	svc := new(mockService)
	core, logs := observer.New(zap.InfoLevel)
	uc := New(svc, zap.New(core))

	filter := dto.ProductFilter{PageQuery: commonDto.PageQuery{Page: 2, PageSize: 5}, Search: "lap", SortBy: "price"}
	page := commonDto.NewPagedResult([]entity.Product{{ID: 1, Name: "Laptop"}}, 1, 2, 5)
	svc.On("GetProducts", ctx, filter).Return(&page, nil)

	got, err := uc.GetProducts.Execute(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TotalCount)

	entries := logs.FilterMessage("getting products").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "lap", entries[0].ContextMap()["search"])
}

func TestProductUseCases(t *testing.T) {
	ctx := context.Background()
	svc := new(mockService)
	uc := New(svc, zap.NewNop())

	createReq := dto.CreateProductRequest{Name: "Lamp", Price: decimal.NewFromInt(10), CategoryID: 4}
	updateReq := dto.UpdateProductRequest{Name: "Lamp", Price: decimal.NewFromInt(12), CategoryID: 4}

	svc.On("GetByID", ctx, int64(3)).Return(&entity.Product{ID: 3}, nil)
	svc.On("GetGroupedByCategory", ctx).Return([]entity.ProductGroup{{CategoryID: 1}}, nil)
	svc.On("Create", ctx, createReq).Return(&entity.Product{ID: 16, Name: "Lamp"}, nil)
	svc.On("Update", ctx, int64(16), updateReq).Return(nil)
	svc.On("Delete", ctx, int64(16)).Return(errors.New("db locked"))

	p, err := uc.GetByID.Execute(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ID)

	groups, err := uc.GetGrouped.Execute(ctx)
	require.NoError(t, err)
	assert.Len(t, groups, 1)

	created, err := uc.Create.Execute(ctx, createReq)
	require.NoError(t, err)
	assert.Equal(t, int64(16), created.ID)

	require.NoError(t, uc.Update.Execute(ctx, 16, updateReq))
	assert.EqualError(t, uc.Delete.Execute(ctx, 16), "db locked")

	svc.AssertExpectations(t)
}
