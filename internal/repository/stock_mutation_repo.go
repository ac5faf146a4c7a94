package repository

import (
	"context"

	"stockroom/internal/dto"
	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockMutationRepository persists the append-only ledger. There are
// deliberately no Update or Delete methods.
type StockMutationRepository interface {
	CreateTx(tx *gorm.DB, m *model.StockMutation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockMutation, error)
	List(ctx context.Context, filter dto.StockMutationFilter) ([]model.StockMutation, int64, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMutation, error)
	// LatestByProductTx returns the most recent mutation for a product within
	// the given transaction, or gorm.ErrRecordNotFound when none exist.
	LatestByProductTx(tx *gorm.DB, productID uuid.UUID) (*model.StockMutation, error)
}

type stockMutationRepo struct{ db *gorm.DB }

func NewStockMutationRepository(db *gorm.DB) StockMutationRepository {
	return &stockMutationRepo{db: db}
}

func (r *stockMutationRepo) CreateTx(tx *gorm.DB, m *model.StockMutation) error {
	return tx.Create(m).Error
}

func (r *stockMutationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockMutation, error) {
	var m model.StockMutation
	err := r.db.WithContext(ctx).Preload("Product").Preload("User").First(&m, "id = ?", id).Error
	return &m, err
}

func (r *stockMutationRepo) List(ctx context.Context, filter dto.StockMutationFilter) ([]model.StockMutation, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockMutation{}).Preload("Product")
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		q = q.Where("date BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var mutations []model.StockMutation
	err := q.Order("date DESC, created_at DESC").Offset(offset).Limit(filter.Limit).Find(&mutations).Error
	return mutations, total, err
}

func (r *stockMutationRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockMutation, error) {
	var mutations []model.StockMutation
	err := r.db.WithContext(ctx).Preload("User").
		Where("product_id = ?", productID).
		Order("date DESC, created_at DESC").
		Find(&mutations).Error
	return mutations, err
}

func (r *stockMutationRepo) LatestByProductTx(tx *gorm.DB, productID uuid.UUID) (*model.StockMutation, error) {
	var m model.StockMutation
	err := tx.Where("product_id = ?", productID).
		Order("created_at DESC").
		First(&m).Error
	return &m, err
}
