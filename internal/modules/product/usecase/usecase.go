package usecase

import (
	"context"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/product/dto"
	"anoa.com/catalog/internal/modules/product/service"
	commonDto "anoa.com/catalog/pkg/dto"
	"go.uber.org/zap"
)

type UseCases struct {
	GetProducts *GetProducts
	GetByID     *GetProductByID
	GetGrouped  *GetGroupedProducts
	Create      *CreateProduct
	Update      *UpdateProduct
	Delete      *DeleteProduct
}

func New(svc service.ProductService, log *zap.Logger) *UseCases {
	log = log.Named("product_usecase")
	return &UseCases{
		GetProducts: &GetProducts{svc: svc, logger: log},
		GetByID:     &GetProductByID{svc: svc, logger: log},
		GetGrouped:  &GetGroupedProducts{svc: svc, logger: log},
		Create:      &CreateProduct{svc: svc, logger: log},
		Update:      &UpdateProduct{svc: svc, logger: log},
		Delete:      &DeleteProduct{svc: svc, logger: log},
	}
}

type GetProducts struct {
	svc    service.ProductService
	logger *zap.Logger
}

func (uc *GetProducts) Execute(ctx context.Context, filter dto.ProductFilter) (*commonDto.PagedResult[entity.Product], error) {
	uc.logger.Info("getting products",
		zap.Int("page", filter.Page),
		zap.Int("page_size", filter.PageSize),
		zap.String("search", filter.Search),
		zap.String("sort_by", filter.SortBy),
		zap.Bool("sort_desc", filter.SortDesc),
	)
	result, err := uc.svc.GetProducts(ctx, filter)
	if err != nil {
		uc.logger.Error("failed to get products", zap.Error(err))
		return nil, err
	}
	return result, nil
}

type GetProductByID struct {
	svc    service.ProductService
	logger *zap.Logger
}

func (uc *GetProductByID) Execute(ctx context.Context, id int64) (*entity.Product, error) {
	uc.logger.Info("getting product", zap.Int64("id", id))
	return uc.svc.GetByID(ctx, id)
}

type GetGroupedProducts struct {
	svc    service.ProductService
	logger *zap.Logger
}

func (uc *GetGroupedProducts) Execute(ctx context.Context) ([]entity.ProductGroup, error) {
	uc.logger.Info("getting products grouped by category")
	groups, err := uc.svc.GetGroupedByCategory(ctx)
	if err != nil {
		uc.logger.Error("failed to group products", zap.Error(err))
		return nil, err
	}
	return groups, nil
}

type CreateProduct struct {
	svc    service.ProductService
	logger *zap.Logger
}

func (uc *CreateProduct) Execute(ctx context.Context, req dto.CreateProductRequest) (*entity.Product, error) {
	uc.logger.Info("creating product", zap.String("name", req.Name), zap.Int64("category_id", req.CategoryID))
	product, err := uc.svc.Create(ctx, req)
	if err != nil {
		uc.logger.Warn("failed to create product", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("product created", zap.Int64("id", product.ID))
	return product, nil
}

type UpdateProduct struct {
	svc    service.ProductService
	logger *zap.Logger
}

func (uc *UpdateProduct) Execute(ctx context.Context, id int64, req dto.UpdateProductRequest) error {
	uc.logger.Info("updating product", zap.Int64("id", id))
	if err := uc.svc.Update(ctx, id, req); err != nil {
		uc.logger.Warn("failed to update product", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

type DeleteProduct struct {
	svc    service.ProductService
	logger *zap.Logger
}

func (uc *DeleteProduct) Execute(ctx context.Context, id int64) error {
	uc.logger.Info("deleting product", zap.Int64("id", id))
	if err := uc.svc.Delete(ctx, id); err != nil {
		uc.logger.Warn("failed to delete product", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}
