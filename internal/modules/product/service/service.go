package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"anoa.com/catalog/internal/entity"
	categoryRepo "anoa.com/catalog/internal/modules/category/repository"
	"anoa.com/catalog/internal/modules/product/dto"
	"anoa.com/catalog/internal/modules/product/repository"
	"anoa.com/catalog/pkg/apperror"
	commonDto "anoa.com/catalog/pkg/dto"
	"anoa.com/catalog/pkg/sanitize"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ProductService interface {
	GetProducts(ctx context.Context, filter dto.ProductFilter) (*commonDto.PagedResult[entity.Product], error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetGroupedByCategory(ctx context.Context) ([]entity.ProductGroup, error)
	Create(ctx context.Context, req dto.CreateProductRequest) (*entity.Product, error)
	Update(ctx context.Context, id int64, req dto.UpdateProductRequest) error
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	repo         repository.ProductRepository
	categoryRepo categoryRepo.CategoryRepository
	logger       *zap.Logger
	now          func() time.Time
}

func NewProductService(repo repository.ProductRepository, categoryRepo categoryRepo.CategoryRepository, logger *zap.Logger) ProductService {
	return &productService{
		repo:         repo,
		categoryRepo: categoryRepo,
		logger:       logger.Named("product_service"),
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *productService) GetProducts(ctx context.Context, filter dto.ProductFilter) (*commonDto.PagedResult[entity.Product], error) {
	filter.PageQuery = filter.PageQuery.Normalize()

	items, total, err := s.repo.FindPaged(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	s.logger.Debug("retrieved products",
		zap.Int("count", len(items)),
		zap.Int64("total", total),
		zap.Int("page", filter.Page),
		zap.Int("page_size", filter.PageSize),
	)

	result := commonDto.NewPagedResult(items, total, filter.Page, filter.PageSize)
	return &result, nil
}

func (s *productService) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	if product == nil {
		return nil, apperror.NotFound("product with id %d not found", id)
	}
	return product, nil
}

func (s *productService) GetGroupedByCategory(ctx context.Context) ([]entity.ProductGroup, error) {
	groups, err := s.repo.GroupByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("group products: %w", err)
	}

	for i := range groups {
		groups[i].TotalValue = groups[i].TotalValue.Round(2)
		groups[i].AveragePrice = groups[i].AveragePrice.Round(2)
		groups[i].MinPrice = groups[i].MinPrice.Round(2)
		groups[i].MaxPrice = groups[i].MaxPrice.Round(2)
	}

	s.logger.Debug("retrieved product groups", zap.Int("count", len(groups)))
	return groups, nil
}

func (s *productService) Create(ctx context.Context, req dto.CreateProductRequest) (*entity.Product, error) {
	product, err := s.buildProduct(ctx, req.Name, req.Price, req.CategoryID)
	if err != nil {
		return nil, err
	}
	product.CreatedAt = s.now()

	if _, err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Debug("created product", zap.Int64("id", product.ID), zap.String("name", product.Name))
	return s.GetByID(ctx, product.ID)
}

func (s *productService) Update(ctx context.Context, id int64, req dto.UpdateProductRequest) error {
	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	if !exists {
		return apperror.NotFound("product with id %d not found", id)
	}

	product, err := s.buildProduct(ctx, req.Name, req.Price, req.CategoryID)
	if err != nil {
		return err
	}
	now := s.now()
	product.ID = id
	product.UpdatedAt = &now

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		return fmt.Errorf("update product %d: %w", id, err)
	}
	if !updated {
		return apperror.NotFound("product with id %d not found", id)
	}

	s.logger.Debug("updated product", zap.Int64("id", id))
	return nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if !deleted {
		return apperror.NotFound("product with id %d not found", id)
	}

	s.logger.Debug("deleted product", zap.Int64("id", id))
	return nil
}

func (s *productService) buildProduct(ctx context.Context, rawName string, price decimal.Decimal, categoryID int64) (*entity.Product, error) {
	name := sanitize.Text(rawName)
	if n := utf8.RuneCountInString(name); n < 2 || n > 200 {
		return nil, apperror.InvalidInput("product name must be between 2 and 200 characters")
	}
	price = price.Round(2)
	if !price.IsPositive() {
		return nil, apperror.InvalidInput("price must be at least 0.01")
	}

	exists, err := s.categoryRepo.Exists(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("check category %d: %w", categoryID, err)
	}
	if !exists {
		return nil, apperror.InvalidInput("category with id %d does not exist", categoryID)
	}

	return &entity.Product{
		Name:       name,
		Price:      price,
		CategoryID: categoryID,
	}, nil
}
