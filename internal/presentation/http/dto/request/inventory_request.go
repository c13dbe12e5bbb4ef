package request

import "github.com/shopspring/decimal"

// CreateItemRequest adds an inventory item
type CreateItemRequest struct {
	Name             string          `json:"name" binding:"required,max=255"`
	BaseUnit         string          `json:"base_unit" binding:"required,max=50"`
	AtomicUnit       string          `json:"atomic_unit" binding:"omitempty,max=50"`
	ConversionFactor decimal.Decimal `json:"conversion_factor"`
	LossFactor       decimal.Decimal `json:"loss_factor"`
	CostPrice        decimal.Decimal `json:"cost_price"`
	SalesPrice       decimal.Decimal `json:"sales_price"`
	ReorderPoint     decimal.Decimal `json:"reorder_point"`
	OpeningStock     decimal.Decimal `json:"opening_stock"`
}

// UpdateItemRequest changes descriptive fields of an item. Stock is not editable here.
type UpdateItemRequest struct {
	Name             *string          `json:"name" binding:"omitempty,min=1,max=255"`
	BaseUnit         *string          `json:"base_unit" binding:"omitempty,min=1,max=50"`
	AtomicUnit       *string          `json:"atomic_unit" binding:"omitempty,max=50"`
	ConversionFactor *decimal.Decimal `json:"conversion_factor"`
	LossFactor       *decimal.Decimal `json:"loss_factor"`
	CostPrice        *decimal.Decimal `json:"cost_price"`
	SalesPrice       *decimal.Decimal `json:"sales_price"`
	ReorderPoint     *decimal.Decimal `json:"reorder_point"`
}

// ConversionRequest creates or replaces the conversion of an item to ToUnit
type ConversionRequest struct {
	ToUnit         string          `json:"to_unit" binding:"required,max=50"`
	ConversionRate decimal.Decimal `json:"conversion_rate"`
	SalesPrice     decimal.Decimal `json:"sales_price"`
}

// RestockRequest books a delivery in base units
type RestockRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	CostPrice  decimal.Decimal `json:"cost_price"`
	SalesPrice decimal.Decimal `json:"sales_price"`
}

// AdjustStockRequest corrects stock by a signed quantity of atomic units
type AdjustStockRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// ReorderRequest recomputes an item's reorder point from recent sales
type ReorderRequest struct {
	Days         int     `json:"days" binding:"omitempty,min=1,max=365"`
	LeadTimeDays float64 `json:"lead_time_days" binding:"min=0"`
	ServiceLevel float64 `json:"service_level" binding:"omitempty,gt=0,lt=1"`
	OrderCost    float64 `json:"order_cost" binding:"min=0"`
	HoldingCost  float64 `json:"holding_cost" binding:"min=0"`
}
