package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/policy"
	"stockroom/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor identifies the authenticated caller inside the service layer.
// Role gating happens at the router via the policy table; the actor is only
// used for ownership scoping (users see their own orders) and audit fields.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) admin() bool { return a.Role == policy.RoleAdmin }

// Order number collisions are retried with a fresh suffix; the whole
// transaction is re-run so no partial state survives a retry.
const orderNumberAttempts = 5

type OrderService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, actor Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	ListMine(ctx context.Context, actor Actor) ([]dto.OrderResponse, error)
	UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*dto.OrderResponse, error)
}

type orderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	ledger   LedgerService
	cache    *ProductCache
	prefix   string
}

func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger LedgerService,
	cache *ProductCache,
	orderNumberPrefix string,
) OrderService {
	return &orderService{
		orders:   orders,
		products: products,
		ledger:   ledger,
		cache:    cache,
		prefix:   orderNumberPrefix,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────
// One ACID transaction:
//  1. Lock all referenced product rows in sorted-UUID order (stable lock
//     acquisition order across concurrent orders — no deadlocks).
//  2. Validate availability per product against the *cumulative* requested
//     quantity, so an order listing the same product twice is checked against
//     the running total, not the pre-order snapshot.
//  3. Create the order (status=pending) with price-snapshot details.
//  4. Deduct stock item by item through the ledger writer, which re-validates
//     against the running stock and maintains the daily rollup.
// Any failure rolls the whole thing back, including earlier deductions.
// An order-number collision aborts the attempt and re-runs it with a fresh
// number.

func (s *orderService) Create(ctx context.Context, actor Actor, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	type item struct {
		productID uuid.UUID
		quantity  int
	}
	items := make([]item, 0, len(req.Items))
	for _, it := range req.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apierror.Validation("invalid product_id %q", it.ProductID)
		}
		if it.Quantity <= 0 {
			return nil, apierror.Validation("quantity must be positive")
		}
		items = append(items, item{productID: pid, quantity: it.Quantity})
	}

	// Cumulative requested quantity per product, and a stable lock order.
	wanted := make(map[uuid.UUID]int)
	for _, it := range items {
		wanted[it.productID] += it.quantity
	}
	lockOrder := make([]uuid.UUID, 0, len(wanted))
	for pid := range wanted {
		lockOrder = append(lockOrder, pid)
	}
	sort.Slice(lockOrder, func(i, j int) bool {
		return strings.Compare(lockOrder[i].String(), lockOrder[j].String()) < 0
	})

	var order *model.Order
	now := time.Now().UTC()

	for attempt := 0; attempt < orderNumberAttempts; attempt++ {
		orderNumber := s.newOrderNumber(now)

		txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
			products := make(map[uuid.UUID]*model.Product, len(wanted))
			for _, pid := range lockOrder {
				p, err := s.products.FindByIDForUpdateTx(tx, pid)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return apierror.NotFound("product %s not found", pid)
					}
					return apierror.Unexpected(err)
				}
				if p.Stock < wanted[pid] {
					return apierror.InsufficientStock(
						"insufficient stock for product %s: have %d, need %d",
						p.Name, p.Stock, wanted[pid])
				}
				products[pid] = p
			}

			total := decimal.Zero
			details := make([]model.OrderDetail, 0, len(items))
			for _, it := range items {
				p := products[it.productID]
				subtotal := p.Price.Mul(decimal.NewFromInt(int64(it.quantity)))
				total = total.Add(subtotal)
				details = append(details, model.OrderDetail{
					ProductID: it.productID,
					Quantity:  it.quantity,
					Price:     p.Price, // snapshot — later price changes must not touch this order
					Subtotal:  subtotal,
				})
			}

			order = &model.Order{
				OrderNumber:     orderNumber,
				UserID:          actor.ID,
				TotalAmount:     total,
				Status:          model.OrderPending,
				ShippingAddress: req.ShippingAddress,
				Notes:           req.Notes,
				Details:         details,
			}
			if err := s.orders.CreateTx(tx, order); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return errOrderNumberTaken
				}
				return apierror.Unexpected(err)
			}

			// Deductions in item-list order; the ledger re-reads the running
			// stock under the locks taken above.
			for _, it := range items {
				_, err := s.ledger.RecordTx(tx, actor.ID, it.productID, model.MutationOut,
					it.quantity, now, fmt.Sprintf("Order #%s", orderNumber))
				if err != nil {
					return err
				}
			}
			return nil
		})

		if errors.Is(txErr, errOrderNumberTaken) {
			log.Warn().Str("order_number", orderNumber).Msg("order number collision — regenerating")
			continue
		}
		if txErr != nil {
			return nil, txErr
		}
		s.cache.Invalidate(ctx, lockOrder...)
		return s.Get(ctx, actor, order.ID)
	}

	return nil, apierror.Unexpected(fmt.Errorf("order number collision persisted after %d attempts", orderNumberAttempts))
}

var errOrderNumberTaken = errors.New("order number taken")

// newOrderNumber builds "<prefix>-YYYYMMDD-XXXXX" with a random uppercase
// suffix. Uniqueness is enforced by the DB constraint; collisions retry.
func (s *orderService) newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:5]
	return fmt.Sprintf("%s-%s-%s", s.prefix, now.Format("20060102"), suffix)
}

// ── Read paths ────────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.NotFound("order not found")
		}
		return nil, apierror.Unexpected(err)
	}
	// Non-admins only ever see their own orders; a foreign order is
	// indistinguishable from a missing one.
	if !actor.admin() && order.UserID != actor.ID {
		return nil, apierror.NotFound("order not found")
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, actor Actor, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if !actor.admin() {
		filter.UserID = actor.ID.String()
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *orderService) ListMine(ctx context.Context, actor Actor) ([]dto.OrderResponse, error) {
	orders, err := s.orders.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, apierror.Unexpected(err)
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *orderToResponse(&orders[i]))
	}
	return items, nil
}

// ── UpdateStatus ──────────────────────────────────────────────────────────────
// Status transitions follow the state machine in model. Only the first
// transition into cancelled refunds stock (one "in" mutation per detail,
// inside the same transaction as the status write); repeating the cancel
// request is a no-op. Every other transition is a plain field update.

func (s *orderService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, status string) (*dto.OrderResponse, error) {
	if !model.ValidOrderStatus(status) {
		return nil, apierror.Validation("unknown order status %q", status)
	}

	var refunded []uuid.UUID
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		order, err := s.orders.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierror.NotFound("order not found")
			}
			return apierror.Unexpected(err)
		}

		if order.Status == status {
			// Idempotent: includes re-cancelling a cancelled order, which
			// must not refund twice.
			return nil
		}
		if !model.CanTransition(order.Status, status) {
			return apierror.Validation("cannot transition order from %s to %s", order.Status, status)
		}

		if status == model.OrderCancelled {
			now := time.Now().UTC()
			for _, detail := range order.Details {
				_, err := s.ledger.RecordTx(tx, actor.ID, detail.ProductID, model.MutationIn,
					detail.Quantity, now, fmt.Sprintf("Cancellation of order #%s", order.OrderNumber))
				if err != nil {
					return err
				}
				refunded = append(refunded, detail.ProductID)
			}
		}

		return s.orders.UpdateStatusTx(tx, id, status)
	})
	if txErr != nil {
		return nil, txErr
	}

	s.cache.Invalidate(ctx, refunded...)
	return s.Get(ctx, actor, id)
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	details := make([]dto.OrderDetailResponse, 0, len(o.Details))
	for _, d := range o.Details {
		name := ""
		if d.Product != nil {
			name = d.Product.Name
		}
		details = append(details, dto.OrderDetailResponse{
			ID:        d.ID.String(),
			ProductID: d.ProductID.String(),
			Product:   name,
			Quantity:  d.Quantity,
			Price:     d.Price,
			Subtotal:  d.Subtotal,
		})
	}
	return &dto.OrderResponse{
		ID:              o.ID.String(),
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID.String(),
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		Notes:           o.Notes,
		Details:         details,
		CreatedAt:       o.CreatedAt.UTC().Format(time.RFC3339),
	}
}
