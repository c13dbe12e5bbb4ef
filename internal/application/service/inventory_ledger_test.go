package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/sangkips/tillbook-api/internal/testutil"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_DeductAllowsNegativeStock(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Bread", Onhand: "2"})

	advisory, err := h.ledger.Deduct(h.fx.Ctx, item.ID, dec("3"))
	require.NoError(t, err)

	require.NotNil(t, advisory)
	assert.Equal(t, enum.NotificationNegativeStock, advisory.Level)
	assertDec(t, "-1", advisory.Onhand)
	assertDec(t, "-1", testutil.Onhand(t, h.db, item.ID))

	var notes []entity.Notification
	require.NoError(t, h.db.Find(&notes).Error)
	require.Len(t, notes, 1)
	assert.Equal(t, enum.NotificationNegativeStock, notes[0].Type)
	assert.Equal(t, h.fx.Tenant.ID, notes[0].TenantID)
}

func TestLedger_DeductAtReorderPoint(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Milk", Onhand: "10", ReorderPoint: "5"})

	advisory, err := h.ledger.Deduct(h.fx.Ctx, item.ID, dec("4"))
	require.NoError(t, err)
	assert.Nil(t, advisory)

	advisory, err = h.ledger.Deduct(h.fx.Ctx, item.ID, dec("1"))
	require.NoError(t, err)
	require.NotNil(t, advisory)
	assert.Equal(t, enum.NotificationLowStock, advisory.Level)
	assert.Equal(t, int64(1), h.count(t, &entity.Notification{}))
}

func TestLedger_MissingItem(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})

	_, err := h.ledger.Deduct(h.fx.Ctx, uuid.New(), dec("1"))
	assert.True(t, errors.Is(err, apperror.ErrInventoryItemNotFound))

	_, err = h.ledger.Return(h.fx.Ctx, uuid.New(), dec("1"))
	assert.True(t, errors.Is(err, apperror.ErrInventoryItemNotFound))
}

func TestLedger_RestockOverwritesPrices(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Flour", Onhand: "1", CostPrice: "90", SalesPrice: "110"})

	got, err := h.ledger.Restock(h.fx.Ctx, &RestockInput{
		ItemID:     item.ID,
		WorkerID:   h.fx.Worker.ID,
		Quantity:   dec("24"),
		CostPrice:  dec("95"),
		SalesPrice: dec("120"),
	})
	require.NoError(t, err)

	assertDec(t, "25", got.Onhand)
	assertDec(t, "95", got.CostPrice)
	assertDec(t, "120", got.SalesPrice)

	var history []entity.RestockHistory
	require.NoError(t, h.db.Find(&history).Error)
	require.Len(t, history, 1)
	assertDec(t, "24", history[0].Quantity)
	assert.Equal(t, h.fx.Worker.ID, history[0].WorkerID)
}

func TestLedger_RestockRejectsNonPositiveQuantity(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Flour", Onhand: "1"})

	_, err := h.ledger.Restock(h.fx.Ctx, &RestockInput{ItemID: item.ID, Quantity: dec("0")})

	require.Error(t, err)
	assert.Equal(t, 400, apperror.GetAppError(err).Code)
	assertDec(t, "1", testutil.Onhand(t, h.db, item.ID))
}

func TestLedger_AdjustAtomic(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Eggs", BaseUnit: "tray", AtomicUnit: "egg", ConversionFactor: "30", Onhand: "2"})

	_, err := h.ledger.AdjustAtomic(h.fx.Ctx, item.ID, dec("-15"))
	require.NoError(t, err)
	assertDec(t, "1.5", testutil.Onhand(t, h.db, item.ID))

	_, err = h.ledger.AdjustAtomic(h.fx.Ctx, item.ID, dec("30"))
	require.NoError(t, err)
	assertDec(t, "2.5", testutil.Onhand(t, h.db, item.ID))
}
