package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ReceiptOptions tunes the receipt engine
type ReceiptOptions struct {
	// DeleteRestoresStock returns line quantities to stock when a receipt is deleted
	DeleteRestoresStock bool
	// UnpaidThreshold is the smallest debt amount the credit gate counts
	UnpaidThreshold decimal.Decimal
}

// ReceiptService creates, edits, flags and deletes receipts. Each operation
// runs in one transaction together with its stock movements and debt rows.
type ReceiptService struct {
	tx            repository.TxManager
	receiptRepo   repository.ReceiptRepository
	customerRepo  repository.CustomerRepository
	tenantRepo    repository.TenantRepository
	inventoryRepo repository.InventoryRepository
	debtRepo      repository.DebtRepository
	resolver      *UnitConversionResolver
	ledger        *InventoryLedger
	opts          ReceiptOptions
	log           *zap.Logger
	now           func() time.Time
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	tx repository.TxManager,
	receiptRepo repository.ReceiptRepository,
	customerRepo repository.CustomerRepository,
	tenantRepo repository.TenantRepository,
	inventoryRepo repository.InventoryRepository,
	debtRepo repository.DebtRepository,
	resolver *UnitConversionResolver,
	ledger *InventoryLedger,
	opts ReceiptOptions,
	log *zap.Logger,
) *ReceiptService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReceiptService{
		tx:            tx,
		receiptRepo:   receiptRepo,
		customerRepo:  customerRepo,
		tenantRepo:    tenantRepo,
		inventoryRepo: inventoryRepo,
		debtRepo:      debtRepo,
		resolver:      resolver,
		ledger:        ledger,
		opts:          opts,
		log:           log,
		now:           time.Now,
	}
}

// ProductLineInput is one requested sale line
type ProductLineInput struct {
	Name     string
	Unit     string
	Quantity decimal.Decimal
}

// CreateReceiptInput represents the create receipt input
type CreateReceiptInput struct {
	WorkerID      uuid.UUID
	Customer      entity.CustomerRef
	Products      []ProductLineInput
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	Discount      decimal.Decimal
	PaymentMethod enum.PaymentMethod
	CheckDebt     bool
}

// CreateReceiptResult is a committed receipt. ExistingDebt is set when the
// credit gate found an older unpaid debt; no debt is opened for the receipt then.
type CreateReceiptResult struct {
	Receipt       *entity.Receipt `json:"receipt"`
	Debt          *entity.Debt    `json:"debt,omitempty"`
	ExistingDebt  *entity.Debt    `json:"existing_debt,omitempty"`
	StockWarnings []StockAdvisory `json:"stock_warnings,omitempty"`
}

// CreateReceipt records a sale
func (s *ReceiptService) CreateReceipt(ctx context.Context, input *CreateReceiptInput) (*CreateReceiptResult, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if input.WorkerID == uuid.Nil {
		return nil, apperror.NewBadRequestError("Worker is required")
	}
	if err := validateSale(input.Customer, input.Products, input.AmountPaid, input.Discount); err != nil {
		return nil, err
	}

	result := &CreateReceiptResult{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		customer, err := s.resolveCustomer(ctx, input.Customer)
		if err != nil {
			return err
		}
		if err := s.resolveWorker(ctx, tenantID, input.WorkerID); err != nil {
			return err
		}

		lines, err := s.resolveLines(ctx, input.Products)
		if err != nil {
			return err
		}

		receipt := &entity.Receipt{
			TenantID:      tenantID,
			CustomerID:    customer.ID,
			WorkerID:      input.WorkerID,
			PaymentMethod: enum.ParsePaymentMethod(string(input.PaymentMethod)),
			Version:       1,
		}
		applyTotals(receipt, lines, input.Total, input.AmountPaid, input.Discount)

		if err := s.receiptRepo.Create(ctx, receipt); err != nil {
			return err
		}
		if err := s.receiptRepo.CreateDetails(ctx, details(receipt.ID, lines)); err != nil {
			return err
		}

		for _, line := range lines {
			advisory, err := s.ledger.Deduct(ctx, line.Item.ID, line.BaseQuantity)
			if err != nil {
				return err
			}
			if advisory != nil {
				result.StockWarnings = append(result.StockWarnings, *advisory)
			}
		}
		result.Receipt = receipt

		if input.CheckDebt {
			existing, err := s.debtRepo.FindUnpaidBefore(ctx, customer.ID, utils.StartOfDay(s.now()), s.opts.UnpaidThreshold)
			if err != nil {
				return err
			}
			if existing != nil {
				result.ExistingDebt = existing
				return nil
			}
		}

		if receipt.Balance.IsPositive() {
			debt, err := s.openDebt(ctx, receipt)
			if err != nil {
				return err
			}
			result.Debt = debt
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.ExistingDebt != nil {
		s.log.Info("credit gate returned existing debt",
			zap.String("receipt_id", result.Receipt.ID.String()),
			zap.String("debt_id", result.ExistingDebt.ID.String()))
	}
	return result, nil
}

// UpdateReceiptInput represents the update receipt input.
// Version is the version the caller read; zero skips the check.
type UpdateReceiptInput struct {
	ReceiptID     uuid.UUID
	Customer      entity.CustomerRef
	Products      []ProductLineInput
	Total         decimal.Decimal
	AmountPaid    decimal.Decimal
	Discount      decimal.Decimal
	PaymentMethod enum.PaymentMethod
	Version       int64
}

// UpdateReceiptResult is an edited receipt with its reconciled debt
type UpdateReceiptResult struct {
	Receipt       *entity.Receipt `json:"receipt"`
	Debt          *entity.Debt    `json:"debt,omitempty"`
	StockWarnings []StockAdvisory `json:"stock_warnings,omitempty"`
}

// UpdateReceipt replaces the lines and totals of a receipt. Stock moves by the
// net difference per item, and the linked debt follows the new balance.
func (s *ReceiptService) UpdateReceipt(ctx context.Context, input *UpdateReceiptInput) (*UpdateReceiptResult, error) {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if err := validateSale(input.Customer, input.Products, input.AmountPaid, input.Discount); err != nil {
		return nil, err
	}

	result := &UpdateReceiptResult{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		receipt, err := s.receiptRepo.GetByID(ctx, input.ReceiptID)
		if err != nil {
			return err
		}
		if receipt == nil {
			return apperror.ErrReceiptNotFound
		}
		if receipt.Flagged {
			return apperror.ErrReceiptFlagged
		}
		if input.Version != 0 && input.Version != receipt.Version {
			return apperror.ErrConcurrentModification
		}

		customer, err := s.resolveCustomer(ctx, input.Customer)
		if err != nil {
			return err
		}

		original, err := s.receiptRepo.ListDetails(ctx, receipt.ID)
		if err != nil {
			return err
		}
		lines, err := s.resolveLines(ctx, input.Products)
		if err != nil {
			return err
		}

		warnings, err := s.applyDelta(ctx, original, lines)
		if err != nil {
			return err
		}
		result.StockWarnings = warnings

		receipt.CustomerID = customer.ID
		if input.PaymentMethod != "" {
			receipt.PaymentMethod = enum.ParsePaymentMethod(string(input.PaymentMethod))
		}
		applyTotals(receipt, lines, input.Total, input.AmountPaid, input.Discount)

		debt, err := s.reconcileDebt(ctx, receipt)
		if err != nil {
			return err
		}
		result.Debt = debt

		updated, err := s.receiptRepo.UpdateTotals(ctx, receipt)
		if err != nil {
			return err
		}
		if !updated {
			return apperror.ErrConcurrentModification
		}

		if err := s.receiptRepo.DeleteDetails(ctx, receipt.ID); err != nil {
			return err
		}
		if err := s.receiptRepo.CreateDetails(ctx, details(receipt.ID, lines)); err != nil {
			return err
		}

		result.Receipt = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// FlagReceiptResult is a receipt after a flag toggle
type FlagReceiptResult struct {
	Receipt       *entity.Receipt `json:"receipt"`
	Changed       bool            `json:"changed"`
	StockWarnings []StockAdvisory `json:"stock_warnings,omitempty"`
}

// FlagReceipt voids (flagged) or reinstates a receipt. Flagging returns every
// line to stock and unflagging takes it out again. Requesting the current
// state changes nothing. Debts are left as they are.
func (s *ReceiptService) FlagReceipt(ctx context.Context, id uuid.UUID, flagged bool) (*FlagReceiptResult, error) {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	result := &FlagReceiptResult{}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		receipt, err := s.receiptRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if receipt == nil {
			return apperror.ErrReceiptNotFound
		}
		result.Receipt = receipt
		if receipt.Flagged == flagged {
			return nil
		}

		lines, err := s.receiptRepo.ListDetails(ctx, receipt.ID)
		if err != nil {
			return err
		}
		for _, d := range lines {
			if flagged {
				_, err = s.ledger.Return(ctx, d.InventoryID, d.Quantity)
			} else {
				var advisory *StockAdvisory
				advisory, err = s.ledger.Deduct(ctx, d.InventoryID, d.Quantity)
				if advisory != nil {
					result.StockWarnings = append(result.StockWarnings, *advisory)
				}
			}
			if errors.Is(err, apperror.ErrInventoryItemNotFound) {
				s.log.Warn("skipping line of removed item",
					zap.String("receipt_id", receipt.ID.String()),
					zap.String("item", d.Name))
				continue
			}
			if err != nil {
				return err
			}
		}

		if err := s.receiptRepo.SetFlagged(ctx, receipt.ID, flagged); err != nil {
			return err
		}
		receipt.Flagged = flagged
		receipt.Version++
		result.Changed = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteReceipt removes a receipt with its lines and linked debt. Stock is
// only restored when DeleteRestoresStock is set and the receipt is not flagged.
func (s *ReceiptService) DeleteReceipt(ctx context.Context, id uuid.UUID) error {
	if _, ok := infraRepo.GetTenantID(ctx); !ok {
		return apperror.NewBadRequestError("Tenant context required")
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		receipt, err := s.receiptRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if receipt == nil {
			return apperror.ErrReceiptNotFound
		}

		if s.opts.DeleteRestoresStock && !receipt.Flagged {
			lines, err := s.receiptRepo.ListDetails(ctx, receipt.ID)
			if err != nil {
				return err
			}
			for _, d := range lines {
				if _, err := s.ledger.Return(ctx, d.InventoryID, d.Quantity); err != nil && !errors.Is(err, apperror.ErrInventoryItemNotFound) {
					return err
				}
			}
		}

		if err := s.receiptRepo.DeleteDetails(ctx, receipt.ID); err != nil {
			return err
		}
		if err := s.debtRepo.DeleteByReceiptID(ctx, receipt.ID); err != nil {
			return err
		}
		rows, err := s.receiptRepo.Delete(ctx, receipt.ID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperror.ErrReceiptNotFound
		}
		return nil
	})
}

func validateSale(customer entity.CustomerRef, products []ProductLineInput, amountPaid, discount decimal.Decimal) error {
	if len(products) == 0 {
		return apperror.NewBadRequestError("At least one product is required")
	}
	if strings.TrimSpace(customer.Name) == "" {
		return apperror.NewBadRequestError("Customer name is required")
	}
	for _, p := range products {
		if strings.TrimSpace(p.Name) == "" {
			return apperror.NewBadRequestError("Product name is required")
		}
		if p.Quantity.IsNegative() {
			return apperror.NewBadRequestError("Quantity of " + p.Name + " cannot be negative")
		}
	}
	if amountPaid.IsNegative() || discount.IsNegative() {
		return apperror.NewBadRequestError("Amount paid and discount cannot be negative")
	}
	return nil
}

func (s *ReceiptService) resolveCustomer(ctx context.Context, ref entity.CustomerRef) (*entity.Customer, error) {
	ref = ref.Normalize()
	customer, err := s.customerRepo.FindByRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewCustomerNotFoundError(ref.String())
	}
	return customer, nil
}

func (s *ReceiptService) resolveWorker(ctx context.Context, tenantID, workerID uuid.UUID) error {
	membership, err := s.tenantRepo.GetMembership(ctx, tenantID, workerID)
	if err != nil {
		return err
	}
	if membership == nil {
		return apperror.ErrWorkerNotFound
	}
	return nil
}

func (s *ReceiptService) resolveLines(ctx context.Context, products []ProductLineInput) ([]*ResolvedLine, error) {
	lines := make([]*ResolvedLine, 0, len(products))
	for _, p := range products {
		item, err := s.inventoryRepo.GetByName(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, apperror.NewProductNotFoundError(strings.TrimSpace(p.Name))
		}
		line, err := s.resolver.Resolve(ctx, item, p.Unit, p.Quantity)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// applyDelta moves stock by new - original per item. Items are visited in a
// fixed order so concurrent edits lock rows consistently.
func (s *ReceiptService) applyDelta(ctx context.Context, original []entity.ReceiptDetail, lines []*ResolvedLine) ([]StockAdvisory, error) {
	delta := make(map[uuid.UUID]decimal.Decimal)
	for _, d := range original {
		delta[d.InventoryID] = delta[d.InventoryID].Sub(d.Quantity)
	}
	for _, l := range lines {
		delta[l.Item.ID] = delta[l.Item.ID].Add(l.BaseQuantity)
	}

	ids := make([]uuid.UUID, 0, len(delta))
	for id := range delta {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	var warnings []StockAdvisory
	for _, id := range ids {
		d := delta[id]
		switch {
		case d.IsPositive():
			advisory, err := s.ledger.Deduct(ctx, id, d)
			if err != nil {
				return nil, err
			}
			if advisory != nil {
				warnings = append(warnings, *advisory)
			}
		case d.IsNegative():
			_, err := s.ledger.Return(ctx, id, d.Neg())
			if errors.Is(err, apperror.ErrInventoryItemNotFound) {
				s.log.Warn("skipping stock return of removed item", zap.String("inventory_id", id.String()))
				continue
			}
			if err != nil {
				return nil, err
			}
		}
	}
	return warnings, nil
}

// reconcileDebt makes the linked debt follow the receipt balance:
// open one, resize it, or remove it.
func (s *ReceiptService) reconcileDebt(ctx context.Context, receipt *entity.Receipt) (*entity.Debt, error) {
	var existing *entity.Debt
	var err error
	if receipt.DebtID != nil {
		existing, err = s.debtRepo.GetByID(ctx, *receipt.DebtID)
	} else {
		existing, err = s.debtRepo.GetByReceiptID(ctx, receipt.ID)
	}
	if err != nil {
		return nil, err
	}

	if existing != nil && (!receipt.Balance.IsPositive() || existing.CustomerID != receipt.CustomerID) {
		if err := s.debtRepo.Delete(ctx, existing.ID); err != nil {
			return nil, err
		}
		receipt.DebtID = nil
		existing = nil
	}

	if !receipt.Balance.IsPositive() {
		return nil, nil
	}

	if existing != nil {
		if err := s.debtRepo.SetAmount(ctx, existing.ID, receipt.Balance, enum.DebtStatusPending); err != nil {
			return nil, err
		}
		existing.Amount = receipt.Balance
		existing.Status = enum.DebtStatusPending
		receipt.DebtID = &existing.ID
		return existing, nil
	}

	debt := &entity.Debt{
		TenantID:   receipt.TenantID,
		WorkerID:   receipt.WorkerID,
		CustomerID: receipt.CustomerID,
		ReceiptID:  &receipt.ID,
		Amount:     receipt.Balance,
		Status:     enum.DebtStatusPending,
	}
	if err := s.debtRepo.Create(ctx, debt); err != nil {
		return nil, err
	}
	receipt.DebtID = &debt.ID
	return debt, nil
}

func (s *ReceiptService) openDebt(ctx context.Context, receipt *entity.Receipt) (*entity.Debt, error) {
	debt := &entity.Debt{
		TenantID:   receipt.TenantID,
		WorkerID:   receipt.WorkerID,
		CustomerID: receipt.CustomerID,
		ReceiptID:  &receipt.ID,
		Amount:     receipt.Balance,
		Status:     enum.DebtStatusPending,
	}
	if err := s.debtRepo.Create(ctx, debt); err != nil {
		return nil, err
	}
	if err := s.receiptRepo.SetDebt(ctx, receipt.ID, &debt.ID); err != nil {
		return nil, err
	}
	receipt.DebtID = &debt.ID
	return debt, nil
}

// applyTotals sets total, profit and balance from the priced lines.
// fallbackTotal is only used when the lines add up to zero.
func applyTotals(receipt *entity.Receipt, lines []*ResolvedLine, fallbackTotal, amountPaid, discount decimal.Decimal) {
	total, profit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		total = total.Add(l.TotalPrice)
		profit = profit.Add(l.Profit())
	}
	if total.IsZero() {
		total = fallbackTotal
	}

	receipt.Total = roundMoney(total)
	receipt.Profit = roundMoney(profit)
	receipt.AmountPaid = roundMoney(amountPaid)
	receipt.Discount = roundMoney(discount)
	receipt.Balance = receipt.ComputeBalance()
}

func details(receiptID uuid.UUID, lines []*ResolvedLine) []entity.ReceiptDetail {
	out := make([]entity.ReceiptDetail, len(lines))
	for i, l := range lines {
		out[i] = l.Detail(receiptID)
	}
	return out
}
