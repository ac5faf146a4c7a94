package service

import (
	"context"
	"strings"
	"testing"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/model"
	"stockroom/internal/policy"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	svc       OrderService
	orders    *stubOrderRepo
	products  *stubProductRepo
	mutations *stubMutationRepo
	cards     *stubCardRepo
	widget    *model.Product
	gadget    *model.Product
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	widget := &model.Product{ID: uuid.New(), Code: "WID-001", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 100, Unit: "pcs"}
	gadget := &model.Product{ID: uuid.New(), Code: "GAD-001", Name: "Gadget", Price: decimal.NewFromFloat(2.50), Stock: 40, Unit: "pcs"}

	products := newStubProductRepo(widget, gadget)
	mutations := &stubMutationRepo{}
	cards := newStubCardRepo()
	orders := newStubOrderRepo()

	ledger := NewLedgerService(products, mutations, cards, nil, nil, "", 5)
	svc := NewOrderService(orders, products, ledger, nil, "ORD")
	return &orderFixture{
		svc: svc, orders: orders, products: products,
		mutations: mutations, cards: cards,
		widget: widget, gadget: gadget,
	}
}

func customer() Actor { return Actor{ID: uuid.New(), Role: policy.RoleUser} }
func admin() Actor    { return Actor{ID: uuid.New(), Role: policy.RoleAdmin} }

func orderOf(items ...dto.OrderItemRequest) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{Items: items, ShippingAddress: "1 Warehouse Way"}
}

func item(p *model.Product, qty int) dto.OrderItemRequest {
	return dto.OrderItemRequest{ProductID: p.ID.String(), Quantity: qty}
}

func TestCreateOrderDeductsStock(t *testing.T) {
	f := newOrderFixture(t)
	buyer := customer()

	resp, err := f.svc.Create(context.Background(), buyer, orderOf(item(f.widget, 30)))
	require.NoError(t, err)

	assert.Equal(t, model.OrderPending, resp.Status)
	assert.True(t, strings.HasPrefix(resp.OrderNumber, "ORD-"))
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(300)))
	require.Len(t, resp.Details, 1)
	assert.True(t, resp.Details[0].Price.Equal(decimal.NewFromInt(10)))
	assert.True(t, resp.Details[0].Subtotal.Equal(decimal.NewFromInt(300)))

	// Deduction went through the ledger, not around it.
	assert.Equal(t, 70, f.widget.Stock)
	ms := f.mutations.byProduct(f.widget.ID)
	require.Len(t, ms, 1)
	assert.Equal(t, model.MutationOut, ms[0].Type)
	assert.Contains(t, ms[0].Description, resp.OrderNumber)
	assert.Len(t, f.cards.byProduct(f.widget.ID), 1)
}

func TestCreateOrderMultipleProducts(t *testing.T) {
	f := newOrderFixture(t)

	resp, err := f.svc.Create(context.Background(), customer(), orderOf(item(f.widget, 2), item(f.gadget, 4)))
	require.NoError(t, err)

	// 2*10 + 4*2.50
	assert.True(t, resp.TotalAmount.Equal(decimal.NewFromInt(30)))
	assert.Equal(t, 98, f.widget.Stock)
	assert.Equal(t, 36, f.gadget.Stock)
}

func TestCreateOrderCumulativeQuantityCheck(t *testing.T) {
	// Same product listed twice: 30+30 exceeds the 50 available even though
	// each line alone would pass.
	f := newOrderFixture(t)
	f.widget.Stock = 50

	_, err := f.svc.Create(context.Background(), customer(), orderOf(item(f.widget, 30), item(f.widget, 30)))
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))
	assert.Equal(t, 50, f.widget.Stock)
	assert.Empty(t, f.mutations.byProduct(f.widget.ID))
	assert.Empty(t, f.orders.orders)
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	f.widget.Stock = 70

	_, err := f.svc.Create(context.Background(), customer(), orderOf(item(f.widget, 150)))
	require.Error(t, err)
	assert.Equal(t, apierror.KindInsufficientStock, apierror.KindOf(err))

	assert.Equal(t, 70, f.widget.Stock)
	assert.Empty(t, f.orders.orders)
	assert.Empty(t, f.mutations.byProduct(f.widget.ID))
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.Create(context.Background(), customer(),
		orderOf(dto.OrderItemRequest{ProductID: uuid.NewString(), Quantity: 1}))
	require.Error(t, err)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestCreateOrderNumberCollisionRetries(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.failCreates = 2

	resp, err := f.svc.Create(context.Background(), customer(), orderOf(item(f.widget, 1)))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.OrderNumber)
	assert.Equal(t, 99, f.widget.Stock)
}

func TestCreateOrderNumberCollisionExhausted(t *testing.T) {
	f := newOrderFixture(t)
	f.orders.failCreates = orderNumberAttempts

	_, err := f.svc.Create(context.Background(), customer(), orderOf(item(f.widget, 1)))
	require.Error(t, err)
	assert.Equal(t, apierror.KindUnexpected, apierror.KindOf(err))
}

func TestCancelRefundsOnce(t *testing.T) {
	f := newOrderFixture(t)
	buyer := customer()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, buyer, orderOf(item(f.widget, 30)))
	require.NoError(t, err)
	require.Equal(t, 70, f.widget.Stock)
	orderID := uuid.MustParse(created.ID)

	resp, err := f.svc.UpdateStatus(ctx, admin(), orderID, model.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, resp.Status)
	assert.Equal(t, 100, f.widget.Stock)

	ms := f.mutations.byProduct(f.widget.ID)
	require.Len(t, ms, 2)
	assert.Equal(t, model.MutationIn, ms[1].Type)
	assert.Contains(t, ms[1].Description, created.OrderNumber)

	// Cancelling again is a no-op: no second refund.
	resp, err = f.svc.UpdateStatus(ctx, admin(), orderID, model.OrderCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, resp.Status)
	assert.Equal(t, 100, f.widget.Stock)
	assert.Len(t, f.mutations.byProduct(f.widget.ID), 2)
}

func TestStatusTransitions(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, customer(), orderOf(item(f.widget, 5)))
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	// pending → completed skips processing.
	_, err = f.svc.UpdateStatus(ctx, admin(), orderID, model.OrderCompleted)
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))

	_, err = f.svc.UpdateStatus(ctx, admin(), orderID, model.OrderProcessing)
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, admin(), orderID, model.OrderCompleted)
	require.NoError(t, err)

	// Completed is terminal: no cancellation, no refund.
	_, err = f.svc.UpdateStatus(ctx, admin(), orderID, model.OrderCancelled)
	require.Error(t, err)
	assert.Equal(t, apierror.KindValidation, apierror.KindOf(err))
	assert.Equal(t, 95, f.widget.Stock)
}

func TestGetScopesToOwner(t *testing.T) {
	f := newOrderFixture(t)
	buyer := customer()
	other := customer()
	ctx := context.Background()

	created, err := f.svc.Create(ctx, buyer, orderOf(item(f.widget, 1)))
	require.NoError(t, err)
	orderID := uuid.MustParse(created.ID)

	_, err = f.svc.Get(ctx, buyer, orderID)
	assert.NoError(t, err)

	// A foreign order looks like a missing one.
	_, err = f.svc.Get(ctx, other, orderID)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))

	_, err = f.svc.Get(ctx, admin(), orderID)
	assert.NoError(t, err)
}

func TestListScopesToOwner(t *testing.T) {
	f := newOrderFixture(t)
	buyer := customer()
	other := customer()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, buyer, orderOf(item(f.widget, 1)))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, other, orderOf(item(f.widget, 1)))
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, buyer, dto.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, mine.Data, 1)

	all, err := f.svc.List(ctx, admin(), dto.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Data, 2)
}
