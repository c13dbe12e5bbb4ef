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
	"github.com/sangkips/tillbook-api/pkg/pagination"
	"github.com/sangkips/tillbook-api/pkg/reorder"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"github.com/shopspring/decimal"
)

const historyLimit = 50

// InventoryService handles inventory items, their unit conversions and stock deliveries
type InventoryService struct {
	tx             repository.TxManager
	inventoryRepo  repository.InventoryRepository
	conversionRepo repository.UnitConversionRepository
	historyRepo    repository.InventoryHistoryRepository
	analyticsRepo  repository.AnalyticsRepository
	ledger         *InventoryLedger
	now            func() time.Time
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	tx repository.TxManager,
	inventoryRepo repository.InventoryRepository,
	conversionRepo repository.UnitConversionRepository,
	historyRepo repository.InventoryHistoryRepository,
	analyticsRepo repository.AnalyticsRepository,
	ledger *InventoryLedger,
) *InventoryService {
	return &InventoryService{
		tx:             tx,
		inventoryRepo:  inventoryRepo,
		conversionRepo: conversionRepo,
		historyRepo:    historyRepo,
		analyticsRepo:  analyticsRepo,
		ledger:         ledger,
		now:            time.Now,
	}
}

// CreateItemInput represents the create inventory item input
type CreateItemInput struct {
	WorkerID         uuid.UUID
	Name             string
	BaseUnit         string
	AtomicUnit       string
	ConversionFactor decimal.Decimal
	LossFactor       decimal.Decimal
	CostPrice        decimal.Decimal
	SalesPrice       decimal.Decimal
	ReorderPoint     decimal.Decimal
	OpeningStock     decimal.Decimal
}

// CreateItem adds an item. Opening stock is booked as a first restock.
func (s *InventoryService) CreateItem(ctx context.Context, input *CreateItemInput) (*entity.InventoryItem, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}

	name := strings.TrimSpace(input.Name)
	baseUnit := strings.TrimSpace(input.BaseUnit)
	if name == "" || baseUnit == "" {
		return nil, apperror.NewBadRequestError("Name and base unit are required")
	}
	if err := validateItemNumbers(input.ConversionFactor, input.LossFactor, input.CostPrice, input.SalesPrice, input.ReorderPoint); err != nil {
		return nil, err
	}
	if input.OpeningStock.IsNegative() {
		return nil, apperror.NewBadRequestError("Opening stock cannot be negative")
	}

	factor := input.ConversionFactor
	if factor.IsZero() {
		factor = one
	}

	var item *entity.InventoryItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		exists, err := s.inventoryRepo.NameExists(ctx, name, uuid.Nil)
		if err != nil {
			return err
		}
		if exists {
			return apperror.NewConflictError("An item named " + name + " already exists")
		}

		item = &entity.InventoryItem{
			TenantID:         tenantID,
			Name:             name,
			BaseUnit:         baseUnit,
			AtomicUnit:       strings.TrimSpace(input.AtomicUnit),
			ConversionFactor: factor,
			LossFactor:       input.LossFactor,
			CostPrice:        roundMoney(input.CostPrice),
			SalesPrice:       roundMoney(input.SalesPrice),
			ReorderPoint:     roundQty(input.ReorderPoint),
			Version:          1,
		}
		if err := s.inventoryRepo.Create(ctx, item); err != nil {
			return err
		}

		if input.OpeningStock.IsPositive() {
			restocked, err := s.ledger.Restock(ctx, &RestockInput{
				ItemID:     item.ID,
				WorkerID:   input.WorkerID,
				Quantity:   input.OpeningStock,
				CostPrice:  item.CostPrice,
				SalesPrice: item.SalesPrice,
			})
			if err != nil {
				return err
			}
			item = restocked
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem retrieves an item with its conversions
func (s *InventoryService) GetItem(ctx context.Context, id uuid.UUID) (*entity.InventoryItem, error) {
	item, err := s.inventoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.ErrInventoryItemNotFound
	}
	return item, nil
}

// ListItems lists items matching search
func (s *InventoryService) ListItems(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.InventoryItem], error) {
	params.Validate()
	items, total, err := s.inventoryRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(items, pag), nil
}

// UpdateItemInput represents the update inventory item input. Stock is not
// editable here; it moves through sales, restocks and adjustments.
type UpdateItemInput struct {
	ID               uuid.UUID
	Name             *string
	BaseUnit         *string
	AtomicUnit       *string
	ConversionFactor *decimal.Decimal
	LossFactor       *decimal.Decimal
	CostPrice        *decimal.Decimal
	SalesPrice       *decimal.Decimal
	ReorderPoint     *decimal.Decimal
}

// UpdateItem updates the descriptive fields of an item
func (s *InventoryService) UpdateItem(ctx context.Context, input *UpdateItemInput) (*entity.InventoryItem, error) {
	var item *entity.InventoryItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.inventoryRepo.GetByID(ctx, input.ID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.ErrInventoryItemNotFound
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return apperror.NewBadRequestError("Name cannot be empty")
			}
			exists, err := s.inventoryRepo.NameExists(ctx, name, item.ID)
			if err != nil {
				return err
			}
			if exists {
				return apperror.NewConflictError("An item named " + name + " already exists")
			}
			item.Name = name
		}
		if input.BaseUnit != nil {
			if strings.TrimSpace(*input.BaseUnit) == "" {
				return apperror.NewBadRequestError("Base unit cannot be empty")
			}
			item.BaseUnit = strings.TrimSpace(*input.BaseUnit)
		}
		if input.AtomicUnit != nil {
			item.AtomicUnit = strings.TrimSpace(*input.AtomicUnit)
		}
		if input.ConversionFactor != nil {
			item.ConversionFactor = *input.ConversionFactor
		}
		if input.LossFactor != nil {
			item.LossFactor = *input.LossFactor
		}
		if input.CostPrice != nil {
			item.CostPrice = roundMoney(*input.CostPrice)
		}
		if input.SalesPrice != nil {
			item.SalesPrice = roundMoney(*input.SalesPrice)
		}
		if input.ReorderPoint != nil {
			item.ReorderPoint = roundQty(*input.ReorderPoint)
		}
		if err := validateItemNumbers(item.ConversionFactor, item.LossFactor, item.CostPrice, item.SalesPrice, item.ReorderPoint); err != nil {
			return err
		}

		if err := s.inventoryRepo.Update(ctx, item); err != nil {
			return err
		}
		item, err = s.inventoryRepo.GetByID(ctx, item.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItem removes an item and its conversions. Receipt lines keep their
// copy of the name and prices.
func (s *InventoryService) DeleteItem(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.inventoryRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.ErrInventoryItemNotFound
		}
		if err := s.conversionRepo.DeleteByInventory(ctx, id); err != nil {
			return err
		}
		return s.inventoryRepo.Delete(ctx, id)
	})
}

// SaveConversionInput represents a unit conversion of an item
type SaveConversionInput struct {
	InventoryID    uuid.UUID
	ToUnit         string
	ConversionRate decimal.Decimal
	SalesPrice     decimal.Decimal
}

// SaveConversion creates the conversion to ToUnit or replaces the existing one
func (s *InventoryService) SaveConversion(ctx context.Context, input *SaveConversionInput) (*entity.UnitConversion, error) {
	toUnit := strings.TrimSpace(input.ToUnit)
	if toUnit == "" || toUnit == entity.NoUnit {
		return nil, apperror.NewBadRequestError("Target unit is required")
	}
	if !input.ConversionRate.IsPositive() {
		return nil, apperror.NewBadRequestError("Conversion rate must be greater than zero")
	}
	if input.SalesPrice.IsNegative() {
		return nil, apperror.NewBadRequestError("Sales price cannot be negative")
	}

	item, err := s.GetItem(ctx, input.InventoryID)
	if err != nil {
		return nil, err
	}
	if toUnit == item.BaseUnit {
		return nil, apperror.NewBadRequestError("Target unit must differ from the base unit")
	}

	conv := &entity.UnitConversion{
		InventoryID:    item.ID,
		FromUnit:       item.BaseUnit,
		ToUnit:         toUnit,
		ConversionRate: roundQty(input.ConversionRate),
		SalesPrice:     roundMoney(input.SalesPrice),
	}
	if err := s.conversionRepo.Save(ctx, conv); err != nil {
		return nil, err
	}
	return s.conversionRepo.Get(ctx, item.ID, toUnit)
}

// ListConversions returns the conversions of an item
func (s *InventoryService) ListConversions(ctx context.Context, inventoryID uuid.UUID) ([]entity.UnitConversion, error) {
	if _, err := s.GetItem(ctx, inventoryID); err != nil {
		return nil, err
	}
	return s.conversionRepo.ListByInventory(ctx, inventoryID)
}

// DeleteConversion removes a conversion of an item
func (s *InventoryService) DeleteConversion(ctx context.Context, inventoryID, conversionID uuid.UUID) error {
	if _, err := s.GetItem(ctx, inventoryID); err != nil {
		return err
	}
	conv, err := s.conversionRepo.GetByID(ctx, conversionID)
	if err != nil {
		return err
	}
	if conv == nil || conv.InventoryID != inventoryID {
		return apperror.ErrConversionNotFound
	}
	return s.conversionRepo.Delete(ctx, conversionID)
}

// Restock books a delivery
func (s *InventoryService) Restock(ctx context.Context, input *RestockInput) (*entity.InventoryItem, error) {
	var item *entity.InventoryItem
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		item, err = s.ledger.Restock(ctx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// AdjustStock corrects stock by a signed quantity of atomic units, e.g. after a count
func (s *InventoryService) AdjustStock(ctx context.Context, id uuid.UUID, atomicQty decimal.Decimal) (*entity.InventoryItem, *StockAdvisory, error) {
	if atomicQty.IsZero() {
		return nil, nil, apperror.NewBadRequestError("Adjustment quantity cannot be zero")
	}

	var item *entity.InventoryItem
	var advisory *StockAdvisory
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		advisory, err = s.ledger.AdjustAtomic(ctx, id, atomicQty)
		if err != nil {
			return err
		}
		item, err = s.inventoryRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return item, advisory, nil
}

// BreakdownHistory returns the latest converted-unit sales of an item
func (s *InventoryService) BreakdownHistory(ctx context.Context, id uuid.UUID) ([]entity.BreakdownHistory, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListBreakdowns(ctx, id, historyLimit)
}

// RestockHistory returns the latest deliveries of an item
func (s *InventoryService) RestockHistory(ctx context.Context, id uuid.UUID) ([]entity.RestockHistory, error) {
	if _, err := s.GetItem(ctx, id); err != nil {
		return nil, err
	}
	return s.historyRepo.ListRestocks(ctx, id, historyLimit)
}

// ReorderInput configures a reorder point recomputation
type ReorderInput struct {
	ItemID       uuid.UUID
	Days         int
	LeadTimeDays float64
	ServiceLevel float64
	OrderCost    float64
	HoldingCost  float64
}

// ReorderResult is the stock plan of an item
type ReorderResult struct {
	Item *entity.InventoryItem `json:"item"`
	Plan reorder.Plan          `json:"plan"`
	Days int                   `json:"days"`
}

// RecomputeReorderPoint derives the reorder point of an item from its daily
// sales over the last Days days and stores it
func (s *InventoryService) RecomputeReorderPoint(ctx context.Context, input *ReorderInput) (*ReorderResult, error) {
	days := input.Days
	if days <= 0 {
		days = 30
	}
	if input.LeadTimeDays < 0 || input.OrderCost < 0 || input.HoldingCost < 0 {
		return nil, apperror.NewBadRequestError("Lead time and costs cannot be negative")
	}
	serviceLevel := input.ServiceLevel
	if serviceLevel == 0 {
		serviceLevel = 0.95
	}

	result := &ReorderResult{Days: days}
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		item, err := s.inventoryRepo.GetByID(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return apperror.ErrInventoryItemNotFound
		}

		today := utils.StartOfDay(s.now())
		since := today.AddDate(0, 0, -(days - 1))
		sales, err := s.analyticsRepo.ItemSales(ctx, item.ID, since)
		if err != nil {
			return err
		}

		daily := make([]float64, days)
		for _, sale := range sales {
			day := int(utils.StartOfDay(sale.CreatedAt).Sub(since).Hours() / 24)
			if day >= 0 && day < days {
				daily[day] += sale.Quantity.InexactFloat64()
			}
		}

		plan := reorder.Compute(daily, reorder.Params{
			LeadTimeDays: input.LeadTimeDays,
			ServiceLevel: serviceLevel,
			OrderCost:    input.OrderCost,
			HoldingCost:  input.HoldingCost,
		})
		point := roundQty(decimal.NewFromFloat(plan.ReorderPoint))
		if err := s.inventoryRepo.SetReorderPoint(ctx, item.ID, point); err != nil {
			return err
		}
		item.ReorderPoint = point

		result.Item = item
		result.Plan = plan
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func validateItemNumbers(conversionFactor, lossFactor, cost, sales, reorderPoint decimal.Decimal) error {
	if conversionFactor.IsNegative() {
		return apperror.NewBadRequestError("Conversion factor cannot be negative")
	}
	if lossFactor.IsNegative() || lossFactor.GreaterThan(hundred) {
		return apperror.NewBadRequestError("Loss factor must be between 0 and 100")
	}
	if cost.IsNegative() || sales.IsNegative() {
		return apperror.NewBadRequestError("Prices cannot be negative")
	}
	if reorderPoint.IsNegative() {
		return apperror.NewBadRequestError("Reorder point cannot be negative")
	}
	return nil
}
