package service

import (
	"context"
	"testing"

	"stockroom/internal/apierror"
	"stockroom/internal/dto"
	"stockroom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture(t *testing.T) (ProductService, *stubProductRepo) {
	t.Helper()
	repo := newStubProductRepo()
	return NewProductService(repo, nil), repo
}

func TestCreateProduct(t *testing.T) {
	svc, _ := newProductFixture(t)

	resp, err := svc.Create(context.Background(), dto.CreateProductRequest{
		Code: "WID-001", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 25, Unit: "pcs",
	})
	require.NoError(t, err)
	assert.Equal(t, "WID-001", resp.Code)
	assert.Equal(t, 25, resp.Stock)
}

func TestCreateProductDuplicateCode(t *testing.T) {
	svc, _ := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateProductRequest{Code: "WID-001", Name: "Widget", Unit: "pcs"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, dto.CreateProductRequest{Code: "WID-001", Name: "Other", Unit: "pcs"})
	assert.Equal(t, apierror.KindDuplicate, apierror.KindOf(err))
}

func TestUpdateProductNeverTouchesStock(t *testing.T) {
	svc, repo := newProductFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateProductRequest{
		Code: "WID-001", Name: "Widget", Price: decimal.NewFromInt(10), Stock: 25, Unit: "pcs",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	newName := "Widget v2"
	newPrice := decimal.NewFromInt(12)
	resp, err := svc.Update(ctx, id, dto.UpdateProductRequest{Name: &newName, Price: &newPrice})
	require.NoError(t, err)

	assert.Equal(t, "Widget v2", resp.Name)
	assert.True(t, resp.Price.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 25, resp.Stock)

	stored, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25, stored.Stock)
}

func TestUpdateProductCodeCollision(t *testing.T) {
	svc, _ := newProductFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, dto.CreateProductRequest{Code: "WID-001", Name: "Widget", Unit: "pcs"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, dto.CreateProductRequest{Code: "GAD-001", Name: "Gadget", Unit: "pcs"})
	require.NoError(t, err)

	clash := "WID-001"
	_, err = svc.Update(ctx, uuid.MustParse(second.ID), dto.UpdateProductRequest{Code: &clash})
	assert.Equal(t, apierror.KindDuplicate, apierror.KindOf(err))
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newProductFixture(t)

	_, err := svc.Get(context.Background(), uuid.New())
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestDeleteProduct(t *testing.T) {
	svc, repo := newProductFixture(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, dto.CreateProductRequest{Code: "WID-001", Name: "Widget", Unit: "pcs"})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	require.NoError(t, svc.Delete(ctx, id))
	_, err = repo.FindByID(ctx, id)
	assert.Error(t, err)

	err = svc.Delete(ctx, id)
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}

func TestGetByCode(t *testing.T) {
	svc, repo := newProductFixture(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Product{
		Code: "WID-001", Name: "Widget", Price: decimal.NewFromInt(10), Unit: "pcs",
	}))

	resp, err := svc.GetByCode(ctx, "WID-001")
	require.NoError(t, err)
	assert.Equal(t, "Widget", resp.Name)

	_, err = svc.GetByCode(ctx, "NOPE")
	assert.Equal(t, apierror.KindNotFound, apierror.KindOf(err))
}
