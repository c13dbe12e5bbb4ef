package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// StockAdvisory reports an item whose stock fell to or below its reorder point.
// Negative stock is allowed; it is surfaced here instead of failing the sale.
type StockAdvisory struct {
	InventoryID  uuid.UUID             `json:"inventory_id"`
	Name         string                `json:"name"`
	Onhand       decimal.Decimal       `json:"onhand"`
	ReorderPoint decimal.Decimal       `json:"reorder_point"`
	Level        enum.NotificationType `json:"level"`
}

// InventoryLedger is the only writer of onhand. Every movement is one relative
// update, so concurrent sales of the same item never lose an update.
type InventoryLedger struct {
	inventoryRepo    repository.InventoryRepository
	historyRepo      repository.InventoryHistoryRepository
	notificationRepo repository.NotificationRepository
}

// NewInventoryLedger creates a new inventory ledger
func NewInventoryLedger(
	inventoryRepo repository.InventoryRepository,
	historyRepo repository.InventoryHistoryRepository,
	notificationRepo repository.NotificationRepository,
) *InventoryLedger {
	return &InventoryLedger{
		inventoryRepo:    inventoryRepo,
		historyRepo:      historyRepo,
		notificationRepo: notificationRepo,
	}
}

// Deduct removes baseQty from stock
func (l *InventoryLedger) Deduct(ctx context.Context, itemID uuid.UUID, baseQty decimal.Decimal) (*StockAdvisory, error) {
	item, err := l.apply(ctx, itemID, baseQty.Neg())
	if err != nil {
		return nil, err
	}
	return l.advise(ctx, item)
}

// Return puts baseQty back into stock
func (l *InventoryLedger) Return(ctx context.Context, itemID uuid.UUID, baseQty decimal.Decimal) (*entity.InventoryItem, error) {
	return l.apply(ctx, itemID, baseQty)
}

// AdjustAtomic moves stock by atomicQty atomic units; a negative quantity removes stock
func (l *InventoryLedger) AdjustAtomic(ctx context.Context, itemID uuid.UUID, atomicQty decimal.Decimal) (*StockAdvisory, error) {
	item, err := l.inventoryRepo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.ErrInventoryItemNotFound
	}

	base := atomicQty
	if !item.ConversionFactor.IsZero() {
		base = atomicQty.Div(item.ConversionFactor)
	}
	item, err = l.apply(ctx, itemID, roundQty(base))
	if err != nil {
		return nil, err
	}
	if atomicQty.IsPositive() {
		return nil, nil
	}
	return l.advise(ctx, item)
}

// RestockInput represents a stock delivery
type RestockInput struct {
	ItemID     uuid.UUID
	WorkerID   uuid.UUID
	Quantity   decimal.Decimal
	CostPrice  decimal.Decimal
	SalesPrice decimal.Decimal
}

// Restock adds stock and overwrites the item's prices. The delivery is kept in
// the restock history since the item itself only holds the latest prices.
func (l *InventoryLedger) Restock(ctx context.Context, input *RestockInput) (*entity.InventoryItem, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if !input.Quantity.IsPositive() {
		return nil, apperror.NewBadRequestError("Restock quantity must be greater than zero")
	}
	if input.CostPrice.IsNegative() || input.SalesPrice.IsNegative() {
		return nil, apperror.NewBadRequestError("Prices cannot be negative")
	}

	item, err := l.apply(ctx, input.ItemID, roundQty(input.Quantity))
	if err != nil {
		return nil, err
	}

	cost, sales := roundMoney(input.CostPrice), roundMoney(input.SalesPrice)
	if err := l.inventoryRepo.SetPrices(ctx, item.ID, cost, sales); err != nil {
		return nil, err
	}
	item.CostPrice, item.SalesPrice = cost, sales

	if err := l.historyRepo.CreateRestock(ctx, &entity.RestockHistory{
		TenantID:    tenantID,
		InventoryID: item.ID,
		WorkerID:    input.WorkerID,
		Quantity:    roundQty(input.Quantity),
		CostPrice:   cost,
		SalesPrice:  sales,
	}); err != nil {
		return nil, err
	}

	return item, nil
}

func (l *InventoryLedger) apply(ctx context.Context, itemID uuid.UUID, delta decimal.Decimal) (*entity.InventoryItem, error) {
	item, err := l.inventoryRepo.AdjustOnhand(ctx, itemID, delta)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.ErrInventoryItemNotFound
	}
	return item, nil
}

// advise raises a notification when item is out of stock or at its reorder point
func (l *InventoryLedger) advise(ctx context.Context, item *entity.InventoryItem) (*StockAdvisory, error) {
	var level enum.NotificationType
	var message string
	switch {
	case item.Onhand.IsNegative():
		level = enum.NotificationNegativeStock
		message = fmt.Sprintf("%s is oversold: %s %s on hand", item.Name, item.Onhand.String(), item.BaseUnit)
	case item.ReorderPoint.IsPositive() && item.Onhand.LessThanOrEqual(item.ReorderPoint):
		level = enum.NotificationLowStock
		message = fmt.Sprintf("%s is low: %s %s on hand, reorder point %s", item.Name, item.Onhand.String(), item.BaseUnit, item.ReorderPoint.String())
	default:
		return nil, nil
	}

	if err := l.notificationRepo.Create(ctx, &entity.Notification{
		TenantID:    item.TenantID,
		InventoryID: item.ID,
		Type:        level,
		Message:     message,
	}); err != nil {
		return nil, err
	}

	return &StockAdvisory{
		InventoryID:  item.ID,
		Name:         item.Name,
		Onhand:       item.Onhand,
		ReorderPoint: item.ReorderPoint,
		Level:        level,
	}, nil
}
