package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// SaleRecord is the slice of a receipt the sales analytics aggregate over
type SaleRecord struct {
	ID            uuid.UUID
	Total         decimal.Decimal
	Profit        decimal.Decimal
	PaymentMethod enum.PaymentMethod
	CreatedAt     time.Time
}

// TopProductResult represents a product's sales performance
type TopProductResult struct {
	Name     string
	Quantity decimal.Decimal
	Revenue  decimal.Decimal
}

// ItemSaleRecord is one sold line of an inventory item in base units
type ItemSaleRecord struct {
	Quantity  decimal.Decimal
	CreatedAt time.Time
}

// AnalyticsRepository defines read-only queries over unflagged receipts
type AnalyticsRepository interface {
	// SalesBetween returns unflagged receipts created in [start, end)
	SalesBetween(ctx context.Context, start, end time.Time) ([]SaleRecord, error)
	// TopProducts returns the best selling lines by revenue in [start, end)
	TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProductResult, error)
	// ItemSales returns every unflagged sale line of an item since the given instant
	ItemSales(ctx context.Context, inventoryID uuid.UUID, since time.Time) ([]ItemSaleRecord, error)
}
