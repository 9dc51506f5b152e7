package service

import (
	"context"
	"testing"

	"github.com/opsdash/backend-go/internal/domain"
	"github.com/opsdash/backend-go/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPOServiceCreate(t *testing.T) {
	repo := newFakePORepo()
	svc := NewPOService(repo, newFakeComponentRepo(widgetComponent()), nil)

	po, err := svc.Create(context.Background(), CreatePOInput{
		SupplierID:   7,
		ShippingCost: decimal.NewFromInt(20),
		Tax:          decimal.NewFromInt(5),
		Items: []CreatePOItemInput{
			{ComponentID: 1, Quantity: 10, UnitPrice: decimal.RequireFromString("2.50")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, po.Status)
	assert.Equal(t, "PO-2026030001", po.PONumber)
	require.Len(t, po.Items, 1)
	assert.True(t, po.Items[0].LineTotal.Equal(decimal.NewFromInt(25)))
	assert.True(t, po.Subtotal.Equal(decimal.NewFromInt(25)))
	assert.True(t, po.Total.Equal(decimal.NewFromInt(50)))
}

func TestPOServiceCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreatePOInput
		field string
	}{
		{"missing supplier", CreatePOInput{
			Items: []CreatePOItemInput{{ComponentID: 1, Quantity: 1}},
		}, "supplier_id"},
		{"no items", CreatePOInput{SupplierID: 7}, "items"},
		{"zero quantity", CreatePOInput{
			SupplierID: 7,
			Items:      []CreatePOItemInput{{ComponentID: 1, Quantity: 0}},
		}, "items.quantity"},
		{"negative unit price", CreatePOInput{
			SupplierID: 7,
			Items: []CreatePOItemInput{
				{ComponentID: 1, Quantity: 1, UnitPrice: decimal.NewFromInt(-1)},
			},
		}, "items.unit_price"},
		{"negative shipping", CreatePOInput{
			SupplierID:   7,
			ShippingCost: decimal.NewFromInt(-1),
			Items:        []CreatePOItemInput{{ComponentID: 1, Quantity: 1}},
		}, "shipping_cost"},
	}

	svc := NewPOService(newFakePORepo(), newFakeComponentRepo(widgetComponent()), nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestPOServiceCreateUnknownComponent(t *testing.T) {
	svc := NewPOService(newFakePORepo(), newFakeComponentRepo(), nil)

	_, err := svc.Create(context.Background(), CreatePOInput{
		SupplierID: 7,
		Items:      []CreatePOItemInput{{ComponentID: 42, Quantity: 1}},
	})

	var notFoundErr *domain.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
}

func TestPOServiceUpdateStatus(t *testing.T) {
	repo := newFakePORepo(&domain.PurchaseOrder{ID: 1, Status: domain.StatusDraft})
	cache := newCountingCache()
	svc := NewPOService(repo, newFakeComponentRepo(), cache)

	po, err := svc.UpdateStatus(context.Background(), 1, "sent")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, po.Status)
	assert.Equal(t, 1, cache.invalidations, "sending commits stock and must drop cached forecasts")
}

func TestPOServiceUpdateStatusRejectsUnknownLabel(t *testing.T) {
	svc := NewPOService(newFakePORepo(), newFakeComponentRepo(), nil)

	_, err := svc.UpdateStatus(context.Background(), 1, "shipped")
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "status", validationErr.Field)
}

func TestPOServiceUpdateStatusIllegalTransition(t *testing.T) {
	repo := newFakePORepo(&domain.PurchaseOrder{ID: 1, Status: domain.StatusReceived})
	cache := newCountingCache()
	svc := NewPOService(repo, newFakeComponentRepo(), cache)

	_, err := svc.UpdateStatus(context.Background(), 1, "cancelled")

	var transitionErr *domain.StateTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, domain.StatusReceived, transitionErr.From)
	assert.Equal(t, domain.StatusCancelled, transitionErr.To)
	assert.Zero(t, cache.invalidations)
}

func TestPOServiceReceive(t *testing.T) {
	repo := newFakePORepo(&domain.PurchaseOrder{ID: 1, Status: domain.StatusSent})
	cache := newCountingCache()
	svc := NewPOService(repo, newFakeComponentRepo(), cache)

	_, err := svc.Receive(context.Background(), 1, []repository.ReceiptLine{
		{ItemID: 3, Quantity: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []repository.ReceiptLine{{ItemID: 3, Quantity: 5}}, repo.lastReceipts)
	assert.Equal(t, 1, cache.invalidations)
}

func TestPOServiceReceiveValidation(t *testing.T) {
	svc := NewPOService(newFakePORepo(), newFakeComponentRepo(), nil)

	_, err := svc.Receive(context.Background(), 1, nil)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Receive(context.Background(), 1, []repository.ReceiptLine{{ItemID: 3, Quantity: 0}})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "items.quantity", validationErr.Field)
}

func TestPOServiceDelete(t *testing.T) {
	repo := newFakePORepo(
		&domain.PurchaseOrder{ID: 1, Status: domain.StatusDraft},
		&domain.PurchaseOrder{ID: 2, Status: domain.StatusSent},
	)
	svc := NewPOService(repo, newFakeComponentRepo(), nil)

	require.NoError(t, svc.Delete(context.Background(), 1))

	err := svc.Delete(context.Background(), 2)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestPOServiceListRejectsUnknownStatus(t *testing.T) {
	svc := NewPOService(newFakePORepo(), newFakeComponentRepo(), nil)

	_, _, err := svc.List(context.Background(), repository.POFilter{Status: "shipped"})
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
}
