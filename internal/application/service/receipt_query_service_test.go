package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/testutil"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReceiptsForDay_NormalizesLines(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	rice := h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Rice", BaseUnit: "sack", Onhand: "5", SalesPrice: "100"})
	h.fx.AddConversion(t, h.db, rice, "cup", "4", "30")
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Beans", Onhand: "5", SalesPrice: "50"})
	h.sell(t, "110", line("Rice", "cup", "2"), line("Beans", "", "1"))

	views, err := h.queries.GetReceiptsForDay(h.fx.Ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 1)

	v := views[0]
	assert.Equal(t, "John", v.CustomerName)
	assert.Equal(t, "Acme", v.CustomerCompany)
	assert.Equal(t, "Jane Cashier", v.WorkerName)
	assertDec(t, "110", v.Total)
	require.Len(t, v.Details, 2)

	byName := map[string]ReceiptDetailView{}
	for _, d := range v.Details {
		byName[d.Name] = d
	}
	cup := byName["Rice"]
	assert.Equal(t, "cup", cup.OriginalUnit)
	assertDec(t, "2", cup.NormalizedQuantity)
	assertDec(t, "30", cup.NormalizedPrice)
	assertDec(t, "60", cup.TotalPrice)

	beans := byName["Beans"]
	assertDec(t, "1", beans.NormalizedQuantity)
	assertDec(t, "50", beans.NormalizedPrice)

	today := time.Now().Format(utils.DateLayout)
	same, err := h.queries.GetReceiptsForDay(h.fx.Ctx, today)
	require.NoError(t, err)
	assert.Len(t, same, 1)

	yesterday := time.Now().AddDate(0, 0, -1).Format(utils.DateLayout)
	none, err := h.queries.GetReceiptsForDay(h.fx.Ctx, yesterday)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetReceiptsForDay_BadDate(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})

	_, err := h.queries.GetReceiptsForDay(h.fx.Ctx, "16/10/2026")

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestGetReceipt(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Beans", Onhand: "5", SalesPrice: "50"})
	res := h.sell(t, "0", line("Beans", "", "2"))

	view, err := h.queries.GetReceipt(h.fx.Ctx, res.Receipt.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Receipt.ID, view.ID)
	require.NotNil(t, view.DebtID)
	assert.Len(t, view.Details, 1)
}

func TestGetDebts(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Beans", Onhand: "50", SalesPrice: "50"})

	old := h.sell(t, "10", line("Beans", "", "1"))
	h.backdate(t, old.Debt.ID, 2)
	recent := h.sell(t, "20", line("Beans", "", "1"))
	h.sell(t, "50", line("Beans", "", "1"))
	voided := h.sell(t, "0", line("Beans", "", "1"))
	_, err := h.receipts.FlagReceipt(h.fx.Ctx, voided.Receipt.ID, true)
	require.NoError(t, err)

	all, err := h.queries.GetDebts(h.fx.Ctx, "", true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, recent.Debt.ID, all[0].ID, "newest first")
	assert.Equal(t, old.Debt.ID, all[1].ID)
	assert.Equal(t, "Jane Cashier", all[0].WorkerName)
	assert.Equal(t, "Acme", all[0].CustomerCompany)
	assertDec(t, "30", all[0].Amount)
	assertDec(t, "30", all[0].Balance)

	today, err := h.queries.GetDebts(h.fx.Ctx, time.Now().Format(utils.DateLayout), false)
	require.NoError(t, err)
	require.Len(t, today, 1)
	assert.Equal(t, recent.Debt.ID, today[0].ID)

	_, err = h.queries.GetDebts(h.fx.Ctx, "yesterday", false)
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}

func TestGetDebts_HidesSettledDebts(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Beans", Onhand: "50", SalesPrice: "50"})
	sale := h.sell(t, "0", line("Beans", "", "1"))

	_, err := h.debts.MakePayment(h.fx.Ctx, &MakePaymentInput{DebtID: sale.Debt.ID, WorkerID: h.fx.Worker.ID, Amount: dec("49.95")})
	require.NoError(t, err)

	debts, err := h.queries.GetDebts(h.fx.Ctx, "", true)
	require.NoError(t, err)
	assert.Empty(t, debts, "amounts under the unpaid threshold are not listed")
}

func TestGetSalesAnalytics(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Beans", Onhand: "50", CostPrice: "40", SalesPrice: "50"})
	h.fx.AddItem(t, h.db, testutil.ItemSpec{Name: "Rice", Onhand: "50", CostPrice: "80", SalesPrice: "100"})

	h.sell(t, "100", line("Beans", "", "2"))
	_, err := h.receipts.CreateReceipt(h.fx.Ctx, &CreateReceiptInput{
		WorkerID:      h.fx.Worker.ID,
		Customer:      entity.CustomerRef{Company: "Acme", Name: "John"},
		Products:      []ProductLineInput{line("Rice", "", "1"), line("Beans", "", "1")},
		AmountPaid:    dec("150"),
		PaymentMethod: "mpesa",
	})
	require.NoError(t, err)
	voided := h.sell(t, "0", line("Rice", "", "10"))
	_, err = h.receipts.FlagReceipt(h.fx.Ctx, voided.Receipt.ID, true)
	require.NoError(t, err)

	out, err := h.queries.GetSalesAnalytics(h.fx.Ctx, "", "")
	require.NoError(t, err)

	assert.Equal(t, 2, out.TransactionCount)
	assertDec(t, "250", out.TotalSales)
	assertDec(t, "50", out.TotalProfit)
	assertDec(t, "125", out.AverageTicket)
	assert.Len(t, out.HourlyAnalytics, 24)
	assert.Len(t, out.WeekdayAnalytics, 7)
	assert.Equal(t, "Sunday", out.WeekdayAnalytics[0].Name)

	now := time.Now()
	assert.Equal(t, 2, out.HourlyAnalytics[now.Hour()].Count)
	assert.Equal(t, 2, out.WeekdayAnalytics[int(now.Weekday())].Count)
	assert.Equal(t, 1, out.PaymentMethods["cash"].Count)
	assertDec(t, "150", out.PaymentMethods["mpesa"].Total)

	require.Len(t, out.TopProducts, 2)
	assert.Equal(t, "Beans", out.TopProducts[0].Name)
	assertDec(t, "150", out.TopProducts[0].Revenue)
	assertDec(t, "3", out.TopProducts[0].Quantity)
	assert.Equal(t, now.Format(utils.DateLayout), out.EndDate)
}

func TestGetSalesAnalytics_Range(t *testing.T) {
	h := newHarness(t, ReceiptOptions{})

	out, err := h.queries.GetSalesAnalytics(h.fx.Ctx, "2026-01-01", "2026-01-31")
	require.NoError(t, err)
	assert.Zero(t, out.TransactionCount)
	assertDec(t, "0", out.AverageTicket)
	assert.Empty(t, out.TopProducts)

	_, err = h.queries.GetSalesAnalytics(h.fx.Ctx, "2026-02-01", "2026-01-01")
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)

	_, err = h.queries.GetSalesAnalytics(h.fx.Ctx, "not-a-date", "")
	assert.Equal(t, http.StatusBadRequest, apperror.GetAppError(err).Code)
}
