package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/category/dto"
	"anoa.com/catalog/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) FindAll(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	cats, _ := args.Get(0).([]entity.Category)
	return cats, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id int64) (*entity.Category, error) {
	args := m.Called(ctx, id)
	cat, _ := args.Get(0).(*entity.Category)
	return cat, args.Error(1)
}

func (m *mockRepo) Exists(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Create(ctx context.Context, category *entity.Category) (int64, error) {
	args := m.Called(ctx, category)
	id, _ := args.Get(0).(int64)
	category.ID = id
	return id, args.Error(1)
}

func (m *mockRepo) Update(ctx context.Context, category *entity.Category) (bool, error) {
	args := m.Called(ctx, category)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newService(repo *mockRepo) *categoryService {
	svc := NewCategoryService(repo, zap.NewNop()).(*categoryService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("FindByID", ctx, int64(1)).Return(&entity.Category{ID: 1, Name: "Books"}, nil)

		got, err := newService(repo).GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "Books", got.Name)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("FindByID", ctx, int64(9)).Return(nil, nil)

		_, err := newService(repo).GetByID(ctx, 9)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.EqualError(t, err, "category with id 9 not found")
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("FindByID", ctx, int64(2)).Return(nil, errors.New("db down"))

		_, err := newService(repo).GetByID(ctx, 2)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	repo := new(mockRepo)
	repo.On("Create", ctx, mock.MatchedBy(func(c *entity.Category) bool {
		return c.Name == "Toys & Games" && c.CreatedAt.Equal(fixedNow)
	})).Return(int64(6), nil)

	got, err := newService(repo).Create(ctx, dto.CreateCategoryRequest{Name: " <i>Toys & Games</i> "})
	require.NoError(t, err)
	assert.Equal(t, int64(6), got.ID)
	assert.Equal(t, "Toys & Games", got.Name)
	repo.AssertExpectations(t)
}

func TestCreateRejectsNameThatSanitizesTooShort(t *testing.T) {
	repo := new(mockRepo)

	_, err := newService(repo).Create(context.Background(), dto.CreateCategoryRequest{Name: "<b></b>x"})
	assert.ErrorIs(t, err, apperror.ErrInvalidInput)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Update", ctx, mock.MatchedBy(func(c *entity.Category) bool {
			return c.ID == 3 && c.Name == "Apparel" && c.UpdatedAt != nil && c.UpdatedAt.Equal(fixedNow)
		})).Return(true, nil)

		require.NoError(t, newService(repo).Update(ctx, 3, dto.UpdateCategoryRequest{Name: "Apparel"}))
		repo.AssertExpectations(t)
	})

	t.Run("missing", func(t *testing.T) {
		repo := new(mockRepo)
		repo.On("Update", ctx, mock.Anything).Return(false, nil)

		err := newService(repo).Update(ctx, 3, dto.UpdateCategoryRequest{Name: "Apparel"})
		assert.ErrorIs(t, err, apperror.ErrNotFound)
	})
}

func TestDelete(t *testing.T) {
	ctx := context.Background()

	repo := new(mockRepo)
	repo.On("Delete", ctx, int64(1)).Return(true, nil)
	repo.On("Delete", ctx, int64(2)).Return(false, nil)

	svc := newService(repo)
	assert.NoError(t, svc.Delete(ctx, 1))
	assert.ErrorIs(t, svc.Delete(ctx, 2), apperror.ErrNotFound)
}
