package service

import (
	"context"
	"errors"

	"stockroom/internal/apierror"
	"stockroom/internal/config"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// StockCardService is the manual maintenance surface over the daily rollups.
// The ledger writer keeps cards up to date on its own; these operations exist
// for corrections, and every write re-propagates the product's materialized
// stock so the two never drift apart.
type StockCardService interface {
	Create(ctx context.Context, req dto.CreateStockCardRequest) (*dto.StockCardResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.StockCardResponse, error)
	List(ctx context.Context, filter dto.StockCardFilter) (*dto.StockCardListResponse, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) (*dto.ProductStockCardsResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateStockCardRequest) (*dto.StockCardResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type stockCardService struct {
	cards        repository.StockCardRepository
	products     repository.ProductRepository
	cache        *ProductCache
	deletePolicy string
}

func NewStockCardService(
	cards repository.StockCardRepository,
	products repository.ProductRepository,
	cache *ProductCache,
	deletePolicy string,
) StockCardService {
	return &stockCardService{
		cards:        cards,
		products:     products,
		cache:        cache,
		deletePolicy: deletePolicy,
	}
}

func (s *stockCardService) Create(ctx context.Context, req dto.CreateStockCardRequest) (*dto.StockCardResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, apierror.Validation("invalid product_id %q", req.ProductID)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, apierror.Validation("invalid date %q, want YYYY-MM-DD", req.Date)
	}

	card := &model.StockCard{
		ProductID:    productID,
		Date:         date,
		InitialStock: req.InitialStock,
		InStock:      req.InStock,
		OutStock:     req.OutStock,
		FinalStock:   req.InitialStock + req.InStock - req.OutStock,
		Notes:        req.Notes,
	}
	if !card.Consistent() {
		return nil, apierror.Validation("card arithmetic yields negative final stock")
	}

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		if _, err := s.products.FindByIDForUpdateTx(tx, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("product %s not found", productID)
			}
			return apierror.Unexpected(err)
		}

		if _, err := s.cards.FindByProductAndDateTx(tx, productID, date); err == nil {
			return apierror.Duplicate("stock card already exists for product on %s", req.Date)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apierror.Unexpected(err)
		}

		if err := s.cards.CreateTx(tx, card); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Duplicate("stock card already exists for product on %s", req.Date)
			}
			return apierror.Unexpected(err)
		}

		return s.propagateLatestTx(tx, productID)
	})
	if txErr != nil {
		return nil, txErr
	}
	s.cache.Invalidate(ctx, productID)
	return stockCardToResponse(card), nil
}

func (s *stockCardService) Get(ctx context.Context, id uuid.UUID) (*dto.StockCardResponse, error) {
	card, err := s.cards.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("stock card not found")
		}
		return nil, apierror.Unexpected(err)
	}
	return stockCardToResponse(card), nil
}

func (s *stockCardService) List(ctx context.Context, filter dto.StockCardFilter) (*dto.StockCardListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	cards, total, err := s.cards.List(ctx, filter)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	items := make([]dto.StockCardResponse, 0, len(cards))
	for i := range cards {
		items = append(items, *stockCardToResponse(&cards[i]))
	}
	return &dto.StockCardListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *stockCardService) ListByProduct(ctx context.Context, productID uuid.UUID) (*dto.ProductStockCardsResponse, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("product %s not found", productID)
		}
		return nil, apierror.Unexpected(err)
	}
	cards, err := s.cards.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	items := make([]dto.StockCardResponse, 0, len(cards))
	for i := range cards {
		items = append(items, *stockCardToResponse(&cards[i]))
	}
	return &dto.ProductStockCardsResponse{
		Product:    *productToResponse(product),
		StockCards: items,
	}, nil
}

// Update edits a card's movements or date. initial_stock is immutable: it is
// the stock at the start of that day and corrections go through in/out. The
// final stock is always recomputed, never accepted from the client.
func (s *stockCardService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateStockCardRequest) (*dto.StockCardResponse, error) {
	var card *model.StockCard

	txErr := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		c, err := s.cards.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("stock card not found")
			}
			return apierror.Unexpected(err)
		}

		if _, err := s.products.FindByIDForUpdateTx(tx, c.ProductID); err != nil {
			return apierror.Unexpected(err)
		}

		// Re-read under the product lock: a ledger write may have folded a
		// mutation into this card while we waited for the lock, and saving
		// the pre-lock copy would silently discard it.
		c, err = s.cards.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("stock card not found")
			}
			return apierror.Unexpected(err)
		}
		card = c

		if req.Date != nil {
			newDate, err := parseDate(*req.Date)
			if err != nil {
				return apierror.Validation("invalid date %q, want YYYY-MM-DD", *req.Date)
			}
			if !newDate.Equal(card.Date) {
				if _, err := s.cards.FindByProductAndDateTx(tx, card.ProductID, newDate); err == nil {
					return apierror.Duplicate("stock card already exists for product on %s", *req.Date)
				} else if !errors.Is(err, gorm.ErrRecordNotFound) {
					return apierror.Unexpected(err)
				}
				card.Date = newDate
			}
		}
		if req.InStock != nil {
			card.InStock = *req.InStock
		}
		if req.OutStock != nil {
			card.OutStock = *req.OutStock
		}
		if req.Notes != nil {
			card.Notes = req.Notes
		}
		card.FinalStock = card.InitialStock + card.InStock - card.OutStock
		if !card.Consistent() {
			return apierror.Validation("card arithmetic yields negative final stock")
		}

		if err := s.cards.UpdateTx(tx, card); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apierror.Duplicate("stock card already exists for product on that date")
			}
			return apierror.Unexpected(err)
		}

		return s.propagateLatestTx(tx, card.ProductID)
	})
	if txErr != nil {
		return nil, txErr
	}
	s.cache.Invalidate(ctx, card.ProductID)
	return stockCardToResponse(card), nil
}

// Delete removes a card and re-derives the product's materialized stock from
// whichever card is now the most recent. With no cards left the behavior is
// configurable: "freeze" keeps the current product stock, "zero" resets it.
func (s *stockCardService) Delete(ctx context.Context, id uuid.UUID) error {
	var productID uuid.UUID
	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		card, err := s.cards.FindByIDTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("stock card not found")
			}
			return apierror.Unexpected(err)
		}

		if _, err := s.products.FindByIDForUpdateTx(tx, card.ProductID); err != nil {
			return apierror.Unexpected(err)
		}
		if err := s.cards.DeleteTx(tx, card.ID); err != nil {
			return apierror.Unexpected(err)
		}
		productID = card.ProductID
		return s.propagateLatestTx(tx, card.ProductID)
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, productID)
	return nil
}

// propagateLatestTx re-derives product.stock from the most recent card, so
// card edits and the materialized stock stay in step. Must run with the
// product row already locked.
func (s *stockCardService) propagateLatestTx(tx *gorm.DB, productID uuid.UUID) error {
	latest, err := s.cards.LatestByProductTx(tx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.deletePolicy == config.DeletePolicyZero {
				return s.products.SetStockTx(tx, productID, 0)
			}
			log.Debug().Str("product_id", productID.String()).
				Msg("no stock cards remain, leaving product stock untouched")
			return nil
		}
		return apierror.Unexpected(err)
	}
	return s.products.SetStockTx(tx, productID, latest.FinalStock)
}

func stockCardToResponse(c *model.StockCard) *dto.StockCardResponse {
	return &dto.StockCardResponse{
		ID:           c.ID.String(),
		ProductID:    c.ProductID.String(),
		Date:         c.Date.Format(dateLayout),
		InitialStock: c.InitialStock,
		InStock:      c.InStock,
		OutStock:     c.OutStock,
		FinalStock:   c.FinalStock,
		Notes:        c.Notes,
	}
}
