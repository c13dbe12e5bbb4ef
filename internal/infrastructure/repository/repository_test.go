package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	domainRepo "github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryRepository_AdjustOnhandConcurrent(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	item := fx.AddItem(t, db, testutil.ItemSpec{Name: "Sugar", Onhand: "100"})
	repo := repository.NewInventoryRepository(db)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AdjustOnhand(fx.Ctx, item.ID, testutil.Dec("-1.5"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.True(t, testutil.Onhand(t, db, item.ID).Equal(testutil.Dec("70")))
}

func TestInventoryRepository_AdjustOnhandMissingItem(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := repository.NewInventoryRepository(db)

	got, err := repo.AdjustOnhand(fx.Ctx, uuid.New(), testutil.Dec("1"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInventoryRepository_TenantIsolation(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	item := fx.AddItem(t, db, testutil.ItemSpec{Name: "Sugar"})
	repo := repository.NewInventoryRepository(db)

	other := repository.WithTenant(context.Background(), uuid.New())
	got, err := repo.GetByName(other, "sugar")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = repo.GetByName(context.Background(), "sugar")
	require.NoError(t, err)
	assert.Nil(t, got, "no tenant in context matches nothing")

	got, err = repo.GetByName(fx.Ctx, "  SUGAR ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, item.ID, got.ID)
}

func TestCustomerRepository_FindByRefCaseInsensitive(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := repository.NewCustomerRepository(db)

	got, err := repo.FindByRef(fx.Ctx, entity.CustomerRef{Company: " ACME ", Name: "john"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, fx.Customer.ID, got.ID)

	got, err = repo.FindByRef(fx.Ctx, entity.CustomerRef{Company: "Other", Name: "John"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnitConversionRepository_SaveReplacesSameTarget(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	item := fx.AddItem(t, db, testutil.ItemSpec{Name: "Rice", BaseUnit: "bag"})
	repo := repository.NewUnitConversionRepository(db)
	ctx := fx.Ctx

	require.NoError(t, repo.Save(ctx, &entity.UnitConversion{InventoryID: item.ID, FromUnit: "bag", ToUnit: "kg", ConversionRate: testutil.Dec("50")}))
	require.NoError(t, repo.Save(ctx, &entity.UnitConversion{InventoryID: item.ID, FromUnit: "bag", ToUnit: "kg", ConversionRate: testutil.Dec("25"), SalesPrice: testutil.Dec("3")}))

	list, err := repo.ListByInventory(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].ConversionRate.Equal(testutil.Dec("25")))

	missing, err := repo.Get(ctx, item.ID, "KG")
	require.NoError(t, err)
	assert.Nil(t, missing, "unit lookup is case-sensitive")
}

func TestReceiptRepository_UpdateTotalsRejectsStaleVersion(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	repo := repository.NewReceiptRepository(db)

	receipt := &entity.Receipt{
		TenantID:      fx.Tenant.ID,
		CustomerID:    fx.Customer.ID,
		WorkerID:      fx.Worker.ID,
		Total:         testutil.Dec("100"),
		Balance:       testutil.Dec("100"),
		PaymentMethod: enum.PaymentMethodCash,
		Version:       1,
	}
	require.NoError(t, repo.Create(fx.Ctx, receipt))

	first := *receipt
	first.AmountPaid = testutil.Dec("40")
	first.Balance = testutil.Dec("60")
	ok, err := repo.UpdateTotals(fx.Ctx, &first)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(2), first.Version)

	stale := *receipt
	ok, err = repo.UpdateTotals(fx.Ctx, &stale)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := repo.GetByID(fx.Ctx, receipt.ID)
	require.NoError(t, err)
	assert.True(t, stored.Balance.Equal(testutil.Dec("60")))
}

func TestTxManager_RollsBackOnError(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	item := fx.AddItem(t, db, testutil.ItemSpec{Name: "Salt", Onhand: "10"})
	tx := repository.NewTxManager(db)
	inv := repository.NewInventoryRepository(db)

	boom := errors.New("boom")
	err := tx.WithinTransaction(fx.Ctx, func(ctx context.Context) error {
		if _, err := inv.AdjustOnhand(ctx, item.ID, testutil.Dec("-4")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.True(t, testutil.Onhand(t, db, item.ID).Equal(testutil.Dec("10")))

	err = tx.WithinTransaction(fx.Ctx, func(ctx context.Context) error {
		_, err := inv.AdjustOnhand(ctx, item.ID, testutil.Dec("-4"))
		return err
	})
	require.NoError(t, err)
	assert.True(t, testutil.Onhand(t, db, item.ID).Equal(testutil.Dec("6")))
}

func TestDebtRepository_QueriesSkipFlaggedReceipts(t *testing.T) {
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)
	receipts := repository.NewReceiptRepository(db)
	debts := repository.NewDebtRepository(db)
	ctx := fx.Ctx

	newDebt := func(amount string, flagged bool, created time.Time) *entity.Debt {
		r := &entity.Receipt{TenantID: fx.Tenant.ID, CustomerID: fx.Customer.ID, WorkerID: fx.Worker.ID,
			Total: testutil.Dec(amount), Balance: testutil.Dec(amount), Flagged: flagged,
			PaymentMethod: enum.PaymentMethodCash, Version: 1, CreatedAt: created}
		require.NoError(t, receipts.Create(ctx, r))
		if flagged {
			require.NoError(t, receipts.SetFlagged(ctx, r.ID, true))
		}
		d := &entity.Debt{TenantID: fx.Tenant.ID, WorkerID: fx.Worker.ID, CustomerID: fx.Customer.ID,
			ReceiptID: &r.ID, Amount: testutil.Dec(amount), Status: enum.DebtStatusPending, CreatedAt: created}
		require.NoError(t, debts.Create(ctx, d))
		return d
	}

	yesterday := time.Now().Add(-24 * time.Hour)
	old := newDebt("30", false, yesterday.Add(-time.Hour))
	newDebt("50", true, yesterday)
	tiny := newDebt("0.05", false, yesterday)
	today := newDebt("20", false, time.Now())

	found, err := debts.FindUnpaidBefore(ctx, fx.Customer.ID, time.Now().Add(-time.Minute), testutil.Dec("0.1"))
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, old.ID, found.ID)

	open, err := debts.ListOpenForCustomer(ctx, fx.Customer.ID, today.ID)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, old.ID, open[0].ID)
	assert.Equal(t, tiny.ID, open[1].ID)

	views, err := debts.ListUnpaid(ctx, domainRepo.DebtFilter{Threshold: testutil.Dec("0.1")})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, today.ID, views[0].ID)
	assert.Equal(t, "Jane", views[0].WorkerFirstName)
	assert.Equal(t, "Acme", views[0].CustomerCompany)

	ok, err := debts.Reduce(ctx, old.ID, testutil.Dec("29.995"), testutil.Dec("0.01"))
	require.NoError(t, err)
	assert.True(t, ok)
	reloaded, err := debts.GetByID(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.DebtStatusPaid, reloaded.Status)

	ok, err = debts.Reduce(ctx, today.ID, testutil.Dec("25"), testutil.Dec("0.01"))
	require.NoError(t, err)
	assert.False(t, ok, "cannot take more than the debt holds")
	kept, err := debts.GetByID(ctx, today.ID)
	require.NoError(t, err)
	assert.True(t, kept.Amount.Equal(testutil.Dec("20")))
	assert.Equal(t, enum.DebtStatusPending, kept.Status)
}
