package service

import (
	"context"
	"errors"
	"time"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"
	"stockroom/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// LedgerService is the single write path for stock. Every stock change —
// manual mutation, order deduction, cancellation refund — goes through
// RecordTx, which appends a ledger entry, materializes product.Stock from it,
// and folds the entry into the day's rollup, all inside one transaction.
type LedgerService interface {
	Record(ctx context.Context, actorID uuid.UUID, req dto.RecordMutationRequest) (*dto.StockMutationResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.StockMutationResponse, error)
	List(ctx context.Context, filter dto.StockMutationFilter) (*dto.StockMutationListResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) (*dto.ProductMutationsResponse, error)

	// RecordTx appends one mutation inside an existing transaction. The
	// product row is locked before its stock is read, so the before/after
	// computation cannot race a concurrent writer. Used directly by the
	// order service so order rows and ledger rows share one atomic unit.
	RecordTx(tx *gorm.DB, actorID, productID uuid.UUID, mutType string, quantity int, date time.Time, description string) (*model.StockMutation, error)
}

type ledgerService struct {
	products  repository.ProductRepository
	mutations repository.StockMutationRepository
	cards     repository.StockCardRepository

	cache      *ProductCache
	dispatcher *worker.Dispatcher
	alertEmail string
	threshold  int
}

func NewLedgerService(
	products repository.ProductRepository,
	mutations repository.StockMutationRepository,
	cards repository.StockCardRepository,
	cache *ProductCache,
	dispatcher *worker.Dispatcher,
	alertEmail string,
	lowStockThreshold int,
) LedgerService {
	return &ledgerService{
		products:   products,
		mutations:  mutations,
		cards:      cards,
		cache:      cache,
		dispatcher: dispatcher,
		alertEmail: alertEmail,
		threshold:  lowStockThreshold,
	}
}

func (s *ledgerService) Record(ctx context.Context, actorID uuid.UUID, req dto.RecordMutationRequest) (*dto.StockMutationResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation("invalid product_id")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, apierror.Validation("invalid date, want YYYY-MM-DD")
	}

	var mutation *model.StockMutation
	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		mutation, err = s.RecordTx(tx, actorID, productID, req.Type, req.Quantity, date, req.Description)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	s.cache.Invalidate(ctx, productID)
	s.alertIfLow(ctx, mutation)

	return mutationToResponse(mutation), nil
}

func (s *ledgerService) RecordTx(tx *gorm.DB, actorID, productID uuid.UUID, mutType string, quantity int, date time.Time, description string) (*model.StockMutation, error) {
	if quantity <= 0 {
		return nil, apierror.Validation("quantity must be positive")
	}
	if mutType != model.MutationIn && mutType != model.MutationOut {
		return nil, apierror.Validation("mutation type must be %q or %q", model.MutationIn, model.MutationOut)
	}

	// Row lock: the read below and the SetStockTx write form one serializable
	// unit per product. Two concurrent "out" movements cannot both observe
	// the same before-stock.
	product, err := s.products.FindByIDForUpdateTx(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, apierror.Unexpected(err)
	}

	// The materialized stock should equal the ledger tail's after_stock.
	// Manual stock-card corrections can legitimately move it, so divergence
	// is logged and the mutation proceeds from the materialized value.
	if last, err := s.mutations.LatestByProductTx(tx, productID); err == nil {
		if last.AfterStock != product.Stock {
			log.Warn().Str("product_id", productID.String()).
				Int("ledger_after", last.AfterStock).
				Int("product_stock", product.Stock).
				Msg("product stock diverges from ledger tail")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.Unexpected(err)
	}

	before := product.Stock
	var after int
	switch mutType {
	case model.MutationIn:
		after = before + quantity
	case model.MutationOut:
		after = before - quantity
	}
	if after < 0 {
		return nil, apierror.InsufficientStock("insufficient stock for product %s: have %d, need %d", product.Name, before, quantity)
	}

	mutation := &model.StockMutation{
		ProductID:   productID,
		Type:        mutType,
		Quantity:    quantity,
		BeforeStock: before,
		AfterStock:  after,
		Date:        dateOnly(date),
		Description: description,
		UserID:      actorID,
	}
	if !mutation.Consistent() {
		log.Error().Str("product_id", productID.String()).
			Int("before", before).Int("after", after).Int("quantity", quantity).
			Msg("ledger arithmetic invariant violated")
		return nil, apierror.InternalConsistency("stock mutation arithmetic broken")
	}

	if err := s.mutations.CreateTx(tx, mutation); err != nil {
		return nil, apierror.Unexpected(err)
	}
	if err := s.products.SetStockTx(tx, productID, after); err != nil {
		return nil, apierror.Unexpected(err)
	}
	if err := s.applyRollupTx(tx, mutation); err != nil {
		return nil, err
	}

	mutation.Product = product
	return mutation, nil
}

// applyRollupTx folds one freshly appended mutation into the (product, date)
// stock card, creating the card on the first mutation of a new day. Runs in
// the same transaction as the ledger append: a rollup failure rolls back the
// mutation and the stock update too.
func (s *ledgerService) applyRollupTx(tx *gorm.DB, m *model.StockMutation) error {
	card, err := s.cards.FindByProductAndDateTx(tx, m.ProductID, m.Date)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		card = &model.StockCard{
			ProductID:    m.ProductID,
			Date:         m.Date,
			InitialStock: m.BeforeStock, // stock at start of day, immutable from here on
			FinalStock:   m.AfterStock,
		}
		if m.Type == model.MutationIn {
			card.InStock = m.Quantity
		} else {
			card.OutStock = m.Quantity
		}
		if !card.Consistent() {
			return apierror.InternalConsistency("new stock card inconsistent for product %s", m.ProductID)
		}
		if err := s.cards.CreateTx(tx, card); err != nil {
			return apierror.Unexpected(err)
		}
		return nil
	}
	if err != nil {
		return apierror.Unexpected(err)
	}

	if m.Type == model.MutationIn {
		card.InStock += m.Quantity
	} else {
		card.OutStock += m.Quantity
	}
	card.FinalStock = card.InitialStock + card.InStock - card.OutStock
	if card.FinalStock < 0 {
		// The ledger writer already rejected negative stock, so a negative
		// rollup means the card and the ledger have diverged.
		log.Error().Str("product_id", m.ProductID.String()).
			Str("date", m.Date.Format(dateLayout)).
			Int("final_stock", card.FinalStock).
			Msg("stock card rollup went negative")
		return apierror.InternalConsistency("stock card for product %s would go negative", m.ProductID)
	}
	if err := s.cards.UpdateTx(tx, card); err != nil {
		return apierror.Unexpected(err)
	}
	return nil
}

// alertIfLow enqueues a low-stock alert email after a committed out-movement.
// Best effort — failures are logged, never surfaced.
func (s *ledgerService) alertIfLow(ctx context.Context, m *model.StockMutation) {
	if s.dispatcher == nil || s.alertEmail == "" {
		return
	}
	if m.Type != model.MutationOut || m.AfterStock > s.threshold {
		return
	}
	name := m.ProductID.String()
	if m.Product != nil {
		name = m.Product.Name
	}
	err := s.dispatcher.EnqueueLowStockAlert(ctx, worker.LowStockAlertPayload{
		ToEmail:     s.alertEmail,
		ProductID:   m.ProductID.String(),
		ProductName: name,
		Stock:       m.AfterStock,
		Threshold:   s.threshold,
	})
	if err != nil {
		log.Warn().Err(err).Str("product_id", m.ProductID.String()).Msg("failed to enqueue low stock alert")
	}
}

func (s *ledgerService) Get(ctx context.Context, id uuid.UUID) (*dto.StockMutationResponse, error) {
	m, err := s.mutations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("stock mutation not found")
		}
		return nil, apierror.Unexpected(err)
	}
	return mutationToResponse(m), nil
}

func (s *ledgerService) List(ctx context.Context, filter dto.StockMutationFilter) (*dto.StockMutationListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	mutations, total, err := s.mutations.List(ctx, filter)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	items := make([]dto.StockMutationResponse, 0, len(mutations))
	for i := range mutations {
		items = append(items, *mutationToResponse(&mutations[i]))
	}
	return &dto.StockMutationListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *ledgerService) ListByProduct(ctx context.Context, productID uuid.UUID) (*dto.ProductMutationsResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product not found")
		}
		return nil, apierror.Unexpected(err)
	}
	mutations, err := s.mutations.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	items := make([]dto.StockMutationResponse, 0, len(mutations))
	for i := range mutations {
		items = append(items, *mutationToResponse(&mutations[i]))
	}
	return &dto.ProductMutationsResponse{
		Product:   *productToResponse(product),
		Mutations: items,
	}, nil
}

func mutationToResponse(m *model.StockMutation) *dto.StockMutationResponse {
	return &dto.StockMutationResponse{
		ID:          m.ID.String(),
		ProductID:   m.ProductID.String(),
		Type:        m.Type,
		Quantity:    m.Quantity,
		BeforeStock: m.BeforeStock,
		AfterStock:  m.AfterStock,
		Date:        m.Date.Format(dateLayout),
		Description: m.Description,
		UserID:      m.UserID.String(),
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}
