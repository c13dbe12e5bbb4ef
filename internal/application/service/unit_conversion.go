package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Storage precision of quantity and money columns
const (
	quantityPlaces = 6
	moneyPlaces    = 4
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

func roundQty(d decimal.Decimal) decimal.Decimal   { return d.Round(quantityPlaces) }
func roundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(moneyPlaces) }

// ResolvedLine is a sale line expressed in the item's base unit
type ResolvedLine struct {
	Item *entity.InventoryItem
	// Unit and Quantity are what the cashier entered
	Unit     string
	Quantity decimal.Decimal
	// BaseQuantity is the amount of stock the line consumes
	BaseQuantity   decimal.Decimal
	AtomicQuantity decimal.Decimal
	ConversionRate decimal.Decimal
	// SalesPricePerBase is the effective price of one base unit
	SalesPricePerBase decimal.Decimal
	TotalPrice        decimal.Decimal
	Loss              decimal.Decimal
	Converted         bool
}

// Profit returns (sales - cost) x base quantity less the breakdown loss
func (l *ResolvedLine) Profit() decimal.Decimal {
	return l.SalesPricePerBase.Sub(l.Item.CostPrice).Mul(l.BaseQuantity).Sub(l.Loss)
}

// Detail builds the receipt line for receiptID
func (l *ResolvedLine) Detail(receiptID uuid.UUID) entity.ReceiptDetail {
	unit := l.Unit
	if !l.Converted {
		unit = l.Item.BaseUnit
	}
	return entity.ReceiptDetail{
		ReceiptID:        receiptID,
		InventoryID:      l.Item.ID,
		Name:             l.Item.Name,
		Quantity:         l.BaseQuantity,
		AtomicQuantity:   l.AtomicQuantity,
		CostPrice:        l.Item.CostPrice,
		SalesPrice:       l.SalesPricePerBase,
		TotalPrice:       l.TotalPrice,
		ConversionRate:   l.ConversionRate,
		OriginalUnit:     unit,
		OriginalQuantity: l.Quantity,
		Loss:             l.Loss,
	}
}

// UnitConversionResolver turns a quantity in any configured unit into base
// units, pricing the line and recording the breakdown. It never touches onhand.
type UnitConversionResolver struct {
	conversionRepo repository.UnitConversionRepository
	inventoryRepo  repository.InventoryRepository
	historyRepo    repository.InventoryHistoryRepository
	now            func() time.Time
}

// NewUnitConversionResolver creates a new resolver
func NewUnitConversionResolver(
	conversionRepo repository.UnitConversionRepository,
	inventoryRepo repository.InventoryRepository,
	historyRepo repository.InventoryHistoryRepository,
) *UnitConversionResolver {
	return &UnitConversionResolver{
		conversionRepo: conversionRepo,
		inventoryRepo:  inventoryRepo,
		historyRepo:    historyRepo,
		now:            time.Now,
	}
}

// Resolve prices quantity of item sold in unit
func (r *UnitConversionResolver) Resolve(ctx context.Context, item *entity.InventoryItem, unit string, quantity decimal.Decimal) (*ResolvedLine, error) {
	if quantity.IsNegative() {
		return nil, apperror.NewBadRequestError("Quantity cannot be negative")
	}
	unit = strings.TrimSpace(unit)

	line := &ResolvedLine{
		Item:           item,
		Unit:           unit,
		Quantity:       quantity,
		ConversionRate: one,
	}

	if item.IsBaseUnit(unit) {
		line.BaseQuantity = roundQty(quantity)
		line.AtomicQuantity = roundQty(atomic(item, quantity))
		line.SalesPricePerBase = item.SalesPrice
		line.TotalPrice = roundMoney(item.SalesPrice.Mul(quantity))
		line.Loss = decimal.Zero
		return line, nil
	}

	conv, err := r.conversionRepo.Get(ctx, item.ID, unit)
	if err != nil {
		return nil, err
	}
	if conv == nil {
		return nil, apperror.NewConversionNotFoundError(item.Name, unit)
	}
	if !conv.ConversionRate.IsPositive() {
		return nil, apperror.NewBadRequestError("Conversion rate for " + item.Name + " to " + unit + " must be positive")
	}

	base := quantity.Div(conv.ConversionRate)
	line.Converted = true
	line.ConversionRate = conv.ConversionRate
	line.BaseQuantity = roundQty(base)
	line.AtomicQuantity = roundQty(atomic(item, base))

	if conv.SalesPrice.IsPositive() {
		line.TotalPrice = roundMoney(conv.SalesPrice.Mul(quantity))
	} else {
		line.TotalPrice = roundMoney(item.SalesPrice.Mul(base))
	}

	switch {
	case base.IsZero() && conv.SalesPrice.IsPositive():
		line.SalesPricePerBase = roundMoney(conv.SalesPrice.Mul(conv.ConversionRate))
	case base.IsZero():
		line.SalesPricePerBase = item.SalesPrice
	default:
		line.SalesPricePerBase = roundMoney(line.TotalPrice.Div(base))
	}

	if item.LossFactor.IsPositive() {
		line.Loss = roundMoney(line.TotalPrice.Mul(item.LossFactor).Div(hundred))
	}

	if err := r.recordBreakdown(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (r *UnitConversionResolver) recordBreakdown(ctx context.Context, line *ResolvedLine) error {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return apperror.NewBadRequestError("Tenant context required")
	}
	if err := r.historyRepo.CreateBreakdown(ctx, &entity.BreakdownHistory{
		TenantID:    tenantID,
		InventoryID: line.Item.ID,
		FromUnit:    line.Item.BaseUnit,
		ToUnit:      line.Unit,
		Quantity:    line.Quantity,
		BaseUnits:   line.BaseQuantity,
		Loss:        line.Loss,
	}); err != nil {
		return err
	}
	return r.inventoryRepo.TouchBreakdown(ctx, line.Item.ID, r.now())
}

// atomic converts base units to atomic units; a zero factor means they coincide
func atomic(item *entity.InventoryItem, base decimal.Decimal) decimal.Decimal {
	if item.ConversionFactor.IsZero() {
		return base
	}
	return base.Mul(item.ConversionFactor)
}
