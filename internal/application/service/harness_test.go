package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	epsilon         = decimal.RequireFromString("0.01")
	unpaidThreshold = decimal.RequireFromString("0.1")
)

type harness struct {
	db        *gorm.DB
	fx        *testutil.Fixture
	resolver  *UnitConversionResolver
	ledger    *InventoryLedger
	receipts  *ReceiptService
	debts     *DebtService
	queries   *ReceiptQueryService
	inventory *InventoryService
}

func newHarness(t *testing.T, opts ReceiptOptions) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	fx := testutil.Seed(t, db)

	tx := repository.NewTxManager(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	conversionRepo := repository.NewUnitConversionRepository(db)
	historyRepo := repository.NewInventoryHistoryRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	receiptRepo := repository.NewReceiptRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	debtRepo := repository.NewDebtRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)

	if opts.UnpaidThreshold.IsZero() {
		opts.UnpaidThreshold = unpaidThreshold
	}

	resolver := NewUnitConversionResolver(conversionRepo, inventoryRepo, historyRepo)
	ledger := NewInventoryLedger(inventoryRepo, historyRepo, notificationRepo)

	return &harness{
		db:        db,
		fx:        fx,
		resolver:  resolver,
		ledger:    ledger,
		receipts:  NewReceiptService(tx, receiptRepo, customerRepo, tenantRepo, inventoryRepo, debtRepo, resolver, ledger, opts, zap.NewNop()),
		debts:     NewDebtService(tx, debtRepo, receiptRepo, customerRepo, epsilon),
		queries:   NewReceiptQueryService(receiptRepo, debtRepo, analyticsRepo, unpaidThreshold),
		inventory: NewInventoryService(tx, inventoryRepo, conversionRepo, historyRepo, analyticsRepo, ledger),
	}
}

// sell records a sale of qty base units of each item to the fixture customer
func (h *harness) sell(t *testing.T, paid string, lines ...ProductLineInput) *CreateReceiptResult {
	t.Helper()
	res, err := h.receipts.CreateReceipt(h.fx.Ctx, &CreateReceiptInput{
		WorkerID:   h.fx.Worker.ID,
		Customer:   entity.CustomerRef{Company: h.fx.Customer.Company, Name: h.fx.Customer.Name},
		Products:   lines,
		AmountPaid: dec(paid),
	})
	require.NoError(t, err)
	return res
}

func (h *harness) reloadReceipt(t *testing.T, id uuid.UUID) entity.Receipt {
	t.Helper()
	var r entity.Receipt
	require.NoError(t, h.db.First(&r, "id = ?", id).Error)
	return r
}

func (h *harness) reloadDebt(t *testing.T, id uuid.UUID) entity.Debt {
	t.Helper()
	var d entity.Debt
	require.NoError(t, h.db.First(&d, "id = ?", id).Error)
	return d
}

func (h *harness) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

// backdate moves a debt's creation time days into the past
func (h *harness) backdate(t *testing.T, debtID uuid.UUID, days int) {
	t.Helper()
	at := time.Now().AddDate(0, 0, -days)
	require.NoError(t, h.db.Model(&entity.Debt{}).Where("id = ?", debtID).Update("created_at", at).Error)
}

func line(name, unit, qty string) ProductLineInput {
	return ProductLineInput{Name: name, Unit: unit, Quantity: dec(qty)}
}

func dec(s string) decimal.Decimal {
	return testutil.Dec(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}
