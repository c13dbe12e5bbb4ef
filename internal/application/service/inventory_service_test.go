package service

import (
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/testutil"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItem_BooksOpeningStock(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})

	item, err := h.inventory.CreateItem(h.fx.Ctx, &CreateItemInput{
		WorkerID:     h.fx.Worker.ID,
		Name:         " Cooking Oil ",
		BaseUnit:     "jerrycan",
		AtomicUnit:   "litre",
		CostPrice:    dec("3000"),
		SalesPrice:   dec("3400"),
		OpeningStock: dec("4"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Cooking Oil", item.Name)
	assertDec(t, "1", item.ConversionFactor, "missing factor defaults to 1")
	assertDec(t, "4", item.Onhand)
	assert.Equal(t, int64(1), h.count(t, &entity.RestockHistory{}))

	history, err := h.inventory.RestockHistory(h.fx.Ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assertDec(t, "3000", history[0].CostPrice)
}

func TestCreateItem_Validation(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Sugar"})

	cases := []struct {
		name  string
		input CreateItemInput
		code  int
	}{
		{"duplicate name", CreateItemInput{Name: "SUGAR", BaseUnit: "kg"}, http.StatusConflict},
		{"missing unit", CreateItemInput{Name: "Salt"}, http.StatusBadRequest},
		{"loss over 100", CreateItemInput{Name: "Salt", BaseUnit: "kg", LossFactor: dec("101")}, http.StatusBadRequest},
		{"negative price", CreateItemInput{Name: "Salt", BaseUnit: "kg", SalesPrice: dec("-1")}, http.StatusBadRequest},
		{"negative opening stock", CreateItemInput{Name: "Salt", BaseUnit: "kg", OpeningStock: dec("-1")}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.inventory.CreateItem(h.fx.Ctx, &tc.input)
			require.Error(t, err)
			assert.Equal(t, tc.code, apperror.GetAppError(err).Code)
		})
	}
	assert.Equal(t, int64(1), h.count(t, &entity.InventoryItem{}))
}

func TestListItems_Search(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Brown Sugar"})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "White Sugar"})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Salt"})

	res, err := h.inventory.ListItems(h.fx.Ctx, pagination.DefaultPagination(), "sugar")
	require.NoError(t, err)

	assert.Len(t, res.Items, 2)
	assert.Equal(t, int64(2), res.Pagination.Total)
	assert.Equal(t, "Brown Sugar", res.Items[0].Name)
}

func TestUpdateItem(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Sugar", Onhand: "7", SalesPrice: "100"})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Salt"})

	price := dec("120")
	updated, err := h.inventory.UpdateItem(h.fx.Ctx, &UpdateItemInput{ID: item.ID, SalesPrice: &price})
	require.NoError(t, err)
	assertDec(t, "120", updated.SalesPrice)
	assertDec(t, "7", updated.Onhand)

	name := "salt"
	_, err = h.inventory.UpdateItem(h.fx.Ctx, &UpdateItemInput{ID: item.ID, Name: &name})
	assert.Equal(t, http.StatusConflict, apperror.GetAppError(err).Code)

	_, err = h.inventory.UpdateItem(h.fx.Ctx, &UpdateItemInput{ID: uuid.New(), SalesPrice: &price})
	assert.True(t, errors.Is(err, apperror.ErrInventoryItemNotFound))
}

func TestDeleteItem_RemovesConversions(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Rice", BaseUnit: "sack"})
	h.fx.AddConversion(t, h.db, item, "cup", "4", "")

	require.NoError(t, h.inventory.DeleteItem(h.fx.Ctx, item.ID))

	assert.Zero(t, h.count(t, &entity.UnitConversion{}))
	_, err := h.inventory.GetItem(h.fx.Ctx, item.ID)
	assert.True(t, errors.Is(err, apperror.ErrInventoryItemNotFound))
}

func TestSaveConversion_ReplacesExisting(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Rice", BaseUnit: "sack"})

	first, err := h.inventory.SaveConversion(h.fx.Ctx, &SaveConversionInput{InventoryID: item.ID, ToUnit: "cup", ConversionRate: dec("4")})
	require.NoError(t, err)
	second, err := h.inventory.SaveConversion(h.fx.Ctx, &SaveConversionInput{InventoryID: item.ID, ToUnit: "cup", ConversionRate: dec("5"), SalesPrice: dec("25")})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assertDec(t, "5", second.ConversionRate)
	assertDec(t, "25", second.SalesPrice)
	assert.Equal(t, "sack", second.FromUnit)

	list, err := h.inventory.ListConversions(h.fx.Ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, h.inventory.DeleteConversion(h.fx.Ctx, item.ID, second.ID))
	err = h.inventory.DeleteConversion(h.fx.Ctx, item.ID, second.ID)
	assert.True(t, errors.Is(err, apperror.ErrConversionNotFound))
}

func TestSaveConversion_Validation(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Rice", BaseUnit: "sack"})

	for name, input := range map[string]SaveConversionInput{
		"no unit":   {InventoryID: item.ID, ConversionRate: dec("4")},
		"none":      {InventoryID: item.ID, ToUnit: entity.NoUnit, ConversionRate: dec("4")},
		"base unit": {InventoryID: item.ID, ToUnit: "sack", ConversionRate: dec("4")},
		"zero rate": {InventoryID: item.ID, ToUnit: "cup"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := h.inventory.SaveConversion(h.fx.Ctx, &input)
			assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
		})
	}
}

func TestAdjustStock(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Eggs", BaseUnit: "tray", ConversionFactor: "30", Onhand: "1", ReorderPoint: "1"})

	got, advisory, err := h.inventory.AdjustStock(h.fx.Ctx, item.ID, dec("-6"))
	require.NoError(t, err)
	assertDec(t, "0.8", got.Onhand)
	require.NotNil(t, advisory)

	_, _, err = h.inventory.AdjustStock(h.fx.Ctx, item.ID, decimal.Zero)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestRecomputeReorderPoint(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	item := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Beans", Onhand: "100", SalesPrice: "10"})
	h.sell(t, "300", line("Beans", "", "30"))

	input := &ReorderInput{ItemID: item.ID, LeadTimeDays: 2}
	res, err := h.inventory.RecomputeReorderPoint(h.fx.Ctx, input)
	require.NoError(t, err)

	assert.Equal(t, 30, res.Days)
	assert.Zero(t, input.Days, "defaults stay out of the caller's input")
	assert.Zero(t, input.ServiceLevel)
	assert.GreaterOrEqual(t, res.Plan.ReorderPoint, 2.0, "one unit a day over two days of lead time")
	assert.True(t, res.Item.ReorderPoint.IsPositive())

	var reloaded entity.InventoryItem
	require.NoError(t, h.db.First(&reloaded, "id = ?", item.ID).Error)
	assert.True(t, reloaded.ReorderPoint.Equal(res.Item.ReorderPoint))

	_, err = h.inventory.RecomputeReorderPoint(h.fx.Ctx, &ReorderInput{ItemID: item.ID, LeadTimeDays: -1})
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}
