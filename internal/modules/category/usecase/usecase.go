package usecase

import (
	"context"

	"anoa.com/catalog/internal/entity"
	"anoa.com/catalog/internal/modules/category/dto"
	"anoa.com/catalog/internal/modules/category/service"
	"go.uber.org/zap"
)

// UseCases groups the category operations exposed to the delivery layer.
type UseCases struct {
	GetAll  *GetAllCategories
	GetByID *GetCategoryByID
	Create  *CreateCategory
	Update  *UpdateCategory
	Delete  *DeleteCategory
}

func New(svc service.CategoryService, log *zap.Logger) *UseCases {
	log = log.Named("category_usecase")
	return &UseCases{
		GetAll:  &GetAllCategories{svc: svc, logger: log},
		GetByID: &GetCategoryByID{svc: svc, logger: log},
		Create:  &CreateCategory{svc: svc, logger: log},
		Update:  &UpdateCategory{svc: svc, logger: log},
		Delete:  &DeleteCategory{svc: svc, logger: log},
	}
}

type GetAllCategories struct {
	svc    service.CategoryService
	logger *zap.Logger
}

func (uc *GetAllCategories) Execute(ctx context.Context) ([]entity.Category, error) {
	uc.logger.Info("getting all categories")
	categories, err := uc.svc.GetAll(ctx)
	if err != nil {
		uc.logger.Error("failed to get categories", zap.Error(err))
		return nil, err
	}
	return categories, nil
}

type GetCategoryByID struct {
	svc    service.CategoryService
	logger *zap.Logger
}

func (uc *GetCategoryByID) Execute(ctx context.Context, id int64) (*entity.Category, error) {
	uc.logger.Info("getting category", zap.Int64("id", id))
	return uc.svc.GetByID(ctx, id)
}

type CreateCategory struct {
	svc    service.CategoryService
	logger *zap.Logger
}

func (uc *CreateCategory) Execute(ctx context.Context, req dto.CreateCategoryRequest) (*entity.Category, error) {
	uc.logger.Info("creating category", zap.String("name", req.Name))
	category, err := uc.svc.Create(ctx, req)
	if err != nil {
		uc.logger.Warn("failed to create category", zap.Error(err))
		return nil, err
	}
	uc.logger.Info("category created", zap.Int64("id", category.ID))
	return category, nil
}

type UpdateCategory struct {
	svc    service.CategoryService
	logger *zap.Logger
}

func (uc *UpdateCategory) Execute(ctx context.Context, id int64, req dto.UpdateCategoryRequest) error {
	uc.logger.Info("updating category", zap.Int64("id", id))
	if err := uc.svc.Update(ctx, id, req); err != nil {
		uc.logger.Warn("failed to update category", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}

type DeleteCategory struct {
	svc    service.CategoryService
	logger *zap.Logger
}

func (uc *DeleteCategory) Execute(ctx context.Context, id int64) error {
	uc.logger.Info("deleting category", zap.Int64("id", id))
	if err := uc.svc.Delete(ctx, id); err != nil {
		uc.logger.Warn("failed to delete category", zap.Int64("id", id), zap.Error(err))
		return err
	}
	return nil
}
