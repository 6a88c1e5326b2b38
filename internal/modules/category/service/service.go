package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/category/dto"
	"anoa.com/catalog/internal/modules/category/repository"
	"anoa.com/catalog/pkg/apperror"
	"anoa.com/catalog/pkg/sanitize"
	"go.uber.org/zap"
)

type CategoryService interface {
	GetAll(ctx context.Context) ([]entity.Category, error)
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*entity.Category, error)
	Update(ctx context.Context, id int64, req dto.UpdateCategoryRequest) error
	Delete(ctx context.Context, id int64) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewCategoryService(repo repository.CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryService{
		repo:   repo,
		logger: logger.Named("category_service"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *categoryService) GetAll(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	s.logger.Debug("retrieved categories", zap.Int("count", len(categories)))
	return categories, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category %d: %w", id, err)
	}
	if category == nil {
		s.logger.Debug("category not found", zap.Int64("id", id))
		return nil, apperror.NotFound("category with id %d not found", id)
	}
	return category, nil
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*entity.Category, error) {
	name, err := cleanName(req.Name)
	if err != nil {
		return nil, err
	}

	category := &entity.Category{
		Name:      name,
		CreatedAt: s.now(),
	}

	if _, err := s.repo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	s.logger.Debug("created category", zap.Int64("id", category.ID), zap.String("name", category.Name))
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req dto.UpdateCategoryRequest) error {
	name, err := cleanName(req.Name)
	if err != nil {
		return err
	}

	now := s.now()
	updated, err := s.repo.Update(ctx, &entity.Category{ID: id, Name: name, UpdatedAt: &now})
	if err != nil {
		return fmt.Errorf("update category %d: %w", id, err)
	}
	if !updated {
		return apperror.NotFound("category with id %d not found", id)
	}

	s.logger.Debug("updated category", zap.Int64("id", id))
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete category %d: %w", id, err)
	}
	if !deleted {
		return apperror.NotFound("category with id %d not found", id)
	}

	s.logger.Debug("deleted category", zap.Int64("id", id))
	return nil
}

func cleanName(raw string) (string, error) {
	name := sanitize.Text(raw)
	if n := utf8.RuneCountInString(name); n < 2 || n > 100 {
		return "", apperror.InvalidInput("category name must be between 2 and 100 characters")
	}
	return name, nil
}
