package dto

import (
	commonDto "anoa.com/catalog/pkg/dto"
	"github.com/shopspring/decimal"
)

type ProductFilter struct {
	commonDto.PageQuery
	Search     string `form:"search" json:"search"`
	CategoryID *int64 `form:"category_id" json:"category_id"`
	SortBy     string `form:"sort_by" json:"sort_by"`
	SortDesc   bool   `form:"sort_desc" json:"sort_desc"`
}

type CreateProductRequest struct {
	Name       string          `json:"name" binding:"required,min=2,max=200"`
	Price      decimal.Decimal `json:"price" binding:"required,gt=0"`
	CategoryID int64           `json:"category_id" binding:"required"`
}

type UpdateProductRequest struct {
	Name       string          `json:"name" binding:"required,min=2,max=200"`
	Price      decimal.Decimal `json:"price" binding:"required,gt=0"`
	CategoryID int64           `json:"category_id" binding:"required"`
}
