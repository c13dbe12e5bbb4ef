package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/sangkips/tillbook-api/pkg/utils"
	"github.com/shopspring/decimal"
)

const (
	defaultAnalyticsDays = 30
	topProductsLimit     = 10
)

// ReceiptQueryService serves the read side of receipts, debts and sales
type ReceiptQueryService struct {
	receiptRepo     repository.ReceiptRepository
	debtRepo        repository.DebtRepository
	analyticsRepo   repository.AnalyticsRepository
	unpaidThreshold decimal.Decimal
	now             func() time.Time
}

// NewReceiptQueryService creates a new receipt query service
func NewReceiptQueryService(
	receiptRepo repository.ReceiptRepository,
	debtRepo repository.DebtRepository,
	analyticsRepo repository.AnalyticsRepository,
	unpaidThreshold decimal.Decimal,
) *ReceiptQueryService {
	return &ReceiptQueryService{
		receiptRepo:     receiptRepo,
		debtRepo:        debtRepo,
		analyticsRepo:   analyticsRepo,
		unpaidThreshold: unpaidThreshold,
		now:             time.Now,
	}
}

// ReceiptDetailView is a receipt line with price and quantity in the unit it was sold in.
// Stored rates count sold units per base unit.
type ReceiptDetailView struct {
	entity.ReceiptDetail
	NormalizedPrice    decimal.Decimal `json:"normalized_price"`
	NormalizedQuantity decimal.Decimal `json:"normalized_quantity"`
}

// ReceiptView is a receipt with its customer, worker and lines
type ReceiptView struct {
	ID              uuid.UUID           `json:"id"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	CustomerName    string              `json:"customer_name"`
	CustomerCompany string              `json:"customer_company"`
	WorkerID        uuid.UUID           `json:"worker_id"`
	WorkerName      string              `json:"worker_name"`
	Total           decimal.Decimal     `json:"total"`
	Discount        decimal.Decimal     `json:"discount"`
	AmountPaid      decimal.Decimal     `json:"amount_paid"`
	Balance         decimal.Decimal     `json:"balance"`
	Profit          decimal.Decimal     `json:"profit"`
	Flagged         bool                `json:"flagged"`
	DebtID          *uuid.UUID          `json:"debt_id,omitempty"`
	PaymentMethod   enum.PaymentMethod  `json:"payment_method"`
	Version         int64               `json:"version"`
	CreatedAt       time.Time           `json:"created_at"`
	Details         []ReceiptDetailView `json:"details"`
}

// GetReceiptsForDay returns the receipts of a calendar day, newest first.
// An empty date means today.
func (s *ReceiptQueryService) GetReceiptsForDay(ctx context.Context, date string) ([]ReceiptView, error) {
	day := s.now()
	if strings.TrimSpace(date) != "" {
		parsed, err := utils.ParseDate(date)
		if err != nil {
			return nil, apperror.NewBadRequestError(err.Error())
		}
		day = parsed
	}

	start, end := utils.DayBounds(day)
	receipts, err := s.receiptRepo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	views := make([]ReceiptView, len(receipts))
	for i := range receipts {
		views[i] = newReceiptView(&receipts[i])
	}
	return views, nil
}

// GetReceipt returns one receipt
func (s *ReceiptQueryService) GetReceipt(ctx context.Context, id uuid.UUID) (*ReceiptView, error) {
	receipt, err := s.receiptRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.ErrReceiptNotFound
	}
	view := newReceiptView(receipt)
	return &view, nil
}

func newReceiptView(r *entity.Receipt) ReceiptView {
	view := ReceiptView{
		ID:            r.ID,
		CustomerID:    r.CustomerID,
		WorkerID:      r.WorkerID,
		Total:         r.Total,
		Discount:      r.Discount,
		AmountPaid:    r.AmountPaid,
		Balance:       r.Balance,
		Profit:        r.Profit,
		Flagged:       r.Flagged,
		DebtID:        r.DebtID,
		PaymentMethod: r.PaymentMethod,
		Version:       r.Version,
		CreatedAt:     r.CreatedAt,
		Details:       make([]ReceiptDetailView, len(r.Details)),
	}
	if r.Customer != nil {
		view.CustomerName = r.Customer.Name
		view.CustomerCompany = r.Customer.Company
	}
	if r.Worker != nil {
		view.WorkerName = r.Worker.FullName()
	}
	for i, d := range r.Details {
		rate := d.Rate()
		view.Details[i] = ReceiptDetailView{
			ReceiptDetail:      d,
			NormalizedPrice:    roundMoney(d.SalesPrice.Div(rate)),
			NormalizedQuantity: roundQty(d.Quantity.Mul(rate)),
		}
	}
	return view
}

// DebtListItem is an outstanding debt as listed to the cashier
type DebtListItem struct {
	ID              uuid.UUID       `json:"id"`
	ReceiptID       *uuid.UUID      `json:"receipt_id,omitempty"`
	WorkerName      string          `json:"worker_name"`
	CustomerName    string          `json:"customer_name"`
	CustomerCompany string          `json:"customer_company"`
	Contact         *string         `json:"contact,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	Date            time.Time       `json:"date"`
	Balance         decimal.Decimal `json:"balance"`
}

// GetDebts lists unpaid debts of unflagged receipts, newest first. Unless
// showAll is set, only debts opened on date are listed; an empty date lists all.
func (s *ReceiptQueryService) GetDebts(ctx context.Context, date string, showAll bool) ([]DebtListItem, error) {
	filter := repository.DebtFilter{Threshold: s.unpaidThreshold}
	if !showAll && strings.TrimSpace(date) != "" {
		day, err := utils.ParseDate(date)
		if err != nil {
			return nil, apperror.NewBadRequestError(err.Error())
		}
		start, end := utils.DayBounds(day)
		filter.From, filter.To = &start, &end
	}

	rows, err := s.debtRepo.ListUnpaid(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]DebtListItem, len(rows))
	for i, row := range rows {
		items[i] = DebtListItem{
			ID:              row.ID,
			ReceiptID:       row.ReceiptID,
			WorkerName:      strings.TrimSpace(row.WorkerFirstName + " " + row.WorkerLastName),
			CustomerName:    row.CustomerName,
			CustomerCompany: row.CustomerCompany,
			Contact:         row.Contact,
			Amount:          row.Amount,
			Date:            row.CreatedAt,
			Balance:         row.Balance,
		}
	}
	return items, nil
}

// MethodStats aggregates sales of one payment method
type MethodStats struct {
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// HourStats aggregates sales in one hour of the day
type HourStats struct {
	Hour  int             `json:"hour"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// WeekdayStats aggregates sales on one day of the week, Sunday being 0
type WeekdayStats struct {
	Day   int             `json:"day"`
	Name  string          `json:"name"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// TopProduct is a best selling item by revenue
type TopProduct struct {
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// SalesAnalytics summarizes unflagged sales over a date range
type SalesAnalytics struct {
	StartDate        string                 `json:"start_date"`
	EndDate          string                 `json:"end_date"`
	TotalSales       decimal.Decimal        `json:"total_sales"`
	TotalProfit      decimal.Decimal        `json:"total_profit"`
	AverageTicket    decimal.Decimal        `json:"average_ticket"`
	TransactionCount int                    `json:"transaction_count"`
	PaymentMethods   map[string]MethodStats `json:"payment_methods"`
	HourlyAnalytics  []HourStats            `json:"hourly_analytics"`
	WeekdayAnalytics []WeekdayStats         `json:"weekday_analytics"`
	TopProducts      []TopProduct           `json:"top_products"`
}

// GetSalesAnalytics aggregates sales between two dates, both inclusive.
// Missing bounds default to the last 30 days.
func (s *ReceiptQueryService) GetSalesAnalytics(ctx context.Context, startDate, endDate string) (*SalesAnalytics, error) {
	end := utils.StartOfDay(s.now())
	if strings.TrimSpace(endDate) != "" {
		parsed, err := utils.ParseDate(endDate)
		if err != nil {
			return nil, apperror.NewBadRequestError(err.Error())
		}
		end = parsed
	}
	start := end.AddDate(0, 0, -(defaultAnalyticsDays - 1))
	if strings.TrimSpace(startDate) != "" {
		parsed, err := utils.ParseDate(startDate)
		if err != nil {
			return nil, apperror.NewBadRequestError(err.Error())
		}
		start = parsed
	}
	if start.After(end) {
		return nil, apperror.NewBadRequestError("start_date must not be after end_date")
	}
	until := end.AddDate(0, 0, 1)

	sales, err := s.analyticsRepo.SalesBetween(ctx, start, until)
	if err != nil {
		return nil, err
	}
	top, err := s.analyticsRepo.TopProducts(ctx, start, until, topProductsLimit)
	if err != nil {
		return nil, err
	}

	out := &SalesAnalytics{
		StartDate:        start.Format(utils.DateLayout),
		EndDate:          end.Format(utils.DateLayout),
		TotalSales:       decimal.Zero,
		TotalProfit:      decimal.Zero,
		AverageTicket:    decimal.Zero,
		PaymentMethods:   make(map[string]MethodStats),
		HourlyAnalytics:  make([]HourStats, 24),
		WeekdayAnalytics: make([]WeekdayStats, 7),
		TopProducts:      make([]TopProduct, len(top)),
	}
	for h := range out.HourlyAnalytics {
		out.HourlyAnalytics[h] = HourStats{Hour: h, Total: decimal.Zero}
	}
	for d := range out.WeekdayAnalytics {
		out.WeekdayAnalytics[d] = WeekdayStats{Day: d, Name: time.Weekday(d).String(), Total: decimal.Zero}
	}

	for _, sale := range sales {
		out.TotalSales = out.TotalSales.Add(sale.Total)
		out.TotalProfit = out.TotalProfit.Add(sale.Profit)
		out.TransactionCount++

		method := string(enum.ParsePaymentMethod(string(sale.PaymentMethod)))
		m := out.PaymentMethods[method]
		m.Count++
		m.Total = m.Total.Add(sale.Total)
		out.PaymentMethods[method] = m

		at := sale.CreatedAt.In(time.Local)
		hour := &out.HourlyAnalytics[at.Hour()]
		hour.Count++
		hour.Total = hour.Total.Add(sale.Total)
		day := &out.WeekdayAnalytics[int(at.Weekday())]
		day.Count++
		day.Total = day.Total.Add(sale.Total)
	}
	if out.TransactionCount > 0 {
		out.AverageTicket = out.TotalSales.Div(decimal.NewFromInt(int64(out.TransactionCount))).Round(2)
	}

	for i, p := range top {
		out.TopProducts[i] = TopProduct{Name: p.Name, Quantity: p.Quantity, Revenue: p.Revenue}
	}
	return out, nil
}
