package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Code        string          `json:"code"        validate:"required,min=2,max=64"`
	Name        string          `json:"name"        validate:"required,min=2,max=255"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"       validate:"min=0"`
	Stock       int             `json:"stock"       validate:"min=0"`
	Unit        string          `json:"unit"        validate:"required"`
	Image       *string         `json:"image"`
}

type UpdateProductRequest struct {
	Code        *string          `json:"code"        validate:"omitempty,min=2,max=64"`
	Name        *string          `json:"name"        validate:"omitempty,min=2,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Unit        *string          `json:"unit"`
	Image       *string          `json:"image"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Code string `form:"code"`
	Name string `form:"name"`
	Page int    `form:"page,default=1"   validate:"min=1"`
	Limit int   `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Unit        string          `json:"unit"`
	Image       *string         `json:"image"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
