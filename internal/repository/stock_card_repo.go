package repository

import (
	"context"
	"time"

	"stockroom/internal/dto"
	"stockroom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockCardRepository persists the per-(product, day) rollups. The composite
// unique index on (product_id, date) backs the duplicate check done at write
// time — both must agree.
type StockCardRepository interface {
	Create(ctx context.Context, c *model.StockCard) error
	CreateTx(tx *gorm.DB, c *model.StockCard) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockCard, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.StockCard, error)
	FindByProductAndDate(ctx context.Context, productID uuid.UUID, date time.Time) (*model.StockCard, error)
	FindByProductAndDateTx(tx *gorm.DB, productID uuid.UUID, date time.Time) (*model.StockCard, error)
	// LatestByProduct returns the card with the most recent date for the
	// product, or gorm.ErrRecordNotFound when the product has no cards.
	LatestByProduct(ctx context.Context, productID uuid.UUID) (*model.StockCard, error)
	LatestByProductTx(tx *gorm.DB, productID uuid.UUID) (*model.StockCard, error)
	List(ctx context.Context, filter dto.StockCardFilter) ([]model.StockCard, int64, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockCard, error)
	Update(ctx context.Context, c *model.StockCard) error
	UpdateTx(tx *gorm.DB, c *model.StockCard) error
	DeleteTx(tx *gorm.DB, id uuid.UUID) error
}

type stockCardRepo struct{ db *gorm.DB }

func NewStockCardRepository(db *gorm.DB) StockCardRepository { return &stockCardRepo{db: db} }

func (r *stockCardRepo) Create(ctx context.Context, c *model.StockCard) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *stockCardRepo) CreateTx(tx *gorm.DB, c *model.StockCard) error {
	return tx.Create(c).Error
}

func (r *stockCardRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StockCard, error) {
	var c model.StockCard
	err := r.db.WithContext(ctx).Preload("Product").First(&c, "id = ?", id).Error
	return &c, err
}

func (r *stockCardRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.StockCard, error) {
	var c model.StockCard
	err := tx.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *stockCardRepo) FindByProductAndDate(ctx context.Context, productID uuid.UUID, date time.Time) (*model.StockCard, error) {
	return r.FindByProductAndDateTx(r.db.WithContext(ctx), productID, date)
}

func (r *stockCardRepo) FindByProductAndDateTx(tx *gorm.DB, productID uuid.UUID, date time.Time) (*model.StockCard, error) {
	var c model.StockCard
	err := tx.Where("product_id = ? AND date = ?", productID, date).First(&c).Error
	return &c, err
}

func (r *stockCardRepo) LatestByProduct(ctx context.Context, productID uuid.UUID) (*model.StockCard, error) {
	return r.LatestByProductTx(r.db.WithContext(ctx), productID)
}

func (r *stockCardRepo) LatestByProductTx(tx *gorm.DB, productID uuid.UUID) (*model.StockCard, error) {
	var c model.StockCard
	err := tx.Where("product_id = ?", productID).Order("date DESC").First(&c).Error
	return &c, err
}

func (r *stockCardRepo) List(ctx context.Context, filter dto.StockCardFilter) ([]model.StockCard, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockCard{}).Preload("Product")
	if filter.ProductID != "" {
		q = q.Where("product_id = ?", filter.ProductID)
	}
	if filter.StartDate != "" && filter.EndDate != "" {
		q = q.Where("date BETWEEN ? AND ?", filter.StartDate, filter.EndDate)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	var cards []model.StockCard
	err := q.Order("date DESC").Offset(offset).Limit(filter.Limit).Find(&cards).Error
	return cards, total, err
}

func (r *stockCardRepo) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.StockCard, error) {
	var cards []model.StockCard
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("date DESC").Find(&cards).Error
	return cards, err
}

func (r *stockCardRepo) Update(ctx context.Context, c *model.StockCard) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *stockCardRepo) UpdateTx(tx *gorm.DB, c *model.StockCard) error {
	return tx.Save(c).Error
}

func (r *stockCardRepo) DeleteTx(tx *gorm.DB, id uuid.UUID) error {
	return tx.Delete(&model.StockCard{}, "id = ?", id).Error
}
