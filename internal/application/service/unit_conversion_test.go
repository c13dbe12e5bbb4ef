package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/testutil"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_BaseUnitNeedsNoConversion(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Sugar", BaseUnit: "kg", SalesPrice: "150", CostPrice: "120"})

	for _, unit := range []string{"", "none", "kg"} {
		got, err := h.resolver.Resolve(h.fx.Ctx, item, unit, dec("2"))
		require.NoError(t, err)
		assert.False(t, got.Converted, unit)
		assertDec(t, "2", got.BaseQuantity)
		assertDec(t, "1", got.ConversionRate)
		assertDec(t, "300", got.TotalPrice)
		assertDec(t, "0", got.Loss)
		assertDec(t, "60", got.Profit())
	}
	assert.Zero(t, h.count(t, &entity.BreakdownHistory{}))
}

func TestResolve_PieceOfBoxRoundTrip(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{
		Name: "Matches", BaseUnit: "box", AtomicUnit: "piece", ConversionFactor: "12",
		SalesPrice: "120", CostPrice: "96", Onhand: "10",
	})
	conv := h.fx.AddConversion(t, h.db, item, "piece", "12", "")

	got, err := h.resolver.Resolve(h.fx.Ctx, item, "piece", dec("1"))
	require.NoError(t, err)

	assert.True(t, got.Converted)
	assertDec(t, "0.083333", got.BaseQuantity)
	assert.True(t, dec("1").Div(conv.ConversionRate).Round(quantityPlaces).Equal(got.BaseQuantity))
	assertDec(t, "1", got.AtomicQuantity, "base x conversion factor recovers the sale quantity")
	assertDec(t, "10", got.TotalPrice)
	assertDec(t, "12", got.ConversionRate)

	var history []entity.BreakdownHistory
	require.NoError(t, h.db.Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, "box", history[0].FromUnit)
	assert.Equal(t, "piece", history[0].ToUnit)
	assertDec(t, "1", history[0].Quantity)

	var reloaded entity.InventoryItem
	require.NoError(t, h.db.First(&reloaded, "id = ?", item.ID).Error)
	assert.NotNil(t, reloaded.LastBreakdownDate)
	assertDec(t, "10", reloaded.Onhand, "resolving never moves stock")
}

func TestResolve_ConversionPriceAndLoss(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{
		Name: "Rice", BaseUnit: "sack", SalesPrice: "100", CostPrice: "80", LossFactor: "5",
	})
	h.fx.AddConversion(t, h.db, item, "cup", "4", "30")

	got, err := h.resolver.Resolve(h.fx.Ctx, item, "cup", dec("2"))
	require.NoError(t, err)

	assertDec(t, "0.5", got.BaseQuantity)
	assertDec(t, "60", got.TotalPrice)
	assertDec(t, "120", got.SalesPricePerBase)
	assertDec(t, "3", got.Loss)
	// (120 - 80) x 0.5 - 3
	assertDec(t, "17", got.Profit())

	d := got.Detail(uuid.New())
	assert.Equal(t, "cup", d.OriginalUnit)
	assertDec(t, "2", d.OriginalQuantity)
	assertDec(t, "0.5", d.Quantity)
}

func TestResolve_ZeroQuantity(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Rice", BaseUnit: "sack", SalesPrice: "100", LossFactor: "5"})
	h.fx.AddConversion(t, h.db, item, "cup", "4", "30")

	got, err := h.resolver.Resolve(h.fx.Ctx, item, "cup", dec("0"))
	require.NoError(t, err)

	assertDec(t, "0", got.BaseQuantity)
	assertDec(t, "0", got.TotalPrice)
	assertDec(t, "0", got.Loss)
	assertDec(t, "120", got.SalesPricePerBase)
}

func TestResolve_UnknownUnit(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Rice", BaseUnit: "sack"})
	h.fx.AddConversion(t, h.db, item, "cup", "4", "")

	_, err := h.resolver.Resolve(h.fx.Ctx, item, "Cup", dec("1"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrConversionNotFound), "unit lookup is case-sensitive")
	assert.Equal(t, http.StatusNotFound, apperror.GetAppError(err).Code)
}
