package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/sangkips/tillbook-api/internal/domain/repository"
	infraRepo "github.com/sangkips/tillbook-api/internal/infrastructure/repository"
	"github.com/sangkips/tillbook-api/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DebtService settles customer debts
type DebtService struct {
	tx           repository.TxManager
	debtRepo     repository.DebtRepository
	receiptRepo  repository.ReceiptRepository
	customerRepo repository.CustomerRepository
	epsilon      decimal.Decimal
	now          func() time.Time
}

// NewDebtService creates a new debt service. A debt whose remaining amount is
// within epsilon of zero is considered paid.
func NewDebtService(
	tx repository.TxManager,
	debtRepo repository.DebtRepository,
	receiptRepo repository.ReceiptRepository,
	customerRepo repository.CustomerRepository,
	epsilon decimal.Decimal,
) *DebtService {
	return &DebtService{
		tx:           tx,
		debtRepo:     debtRepo,
		receiptRepo:  receiptRepo,
		customerRepo: customerRepo,
		epsilon:      epsilon,
		now:          time.Now,
	}
}

// MakePaymentInput represents a payment against a debt
type MakePaymentInput struct {
	DebtID        uuid.UUID
	WorkerID      uuid.UUID
	Amount        decimal.Decimal
	PaymentMethod enum.PaymentMethod
}

// DebtSummary is the paid debt as the till shows it
type DebtSummary struct {
	ID              uuid.UUID       `json:"id"`
	CustomerName    string          `json:"customer_name"`
	CustomerCompany string          `json:"customer_company"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AmountPaid      decimal.Decimal `json:"amount_paid"`
	Balance         decimal.Decimal `json:"balance"`
	Status          enum.DebtStatus `json:"status"`
}

// SettledDebt is one debt touched by a payment
type SettledDebt struct {
	DebtID    uuid.UUID       `json:"debt_id"`
	ReceiptID *uuid.UUID      `json:"receipt_id,omitempty"`
	Applied   decimal.Decimal `json:"applied"`
	Remaining decimal.Decimal `json:"remaining"`
	Status    enum.DebtStatus `json:"status"`
}

// PaymentResult is the outcome of a payment. Applied amounts across Settled
// plus Unapplied always add up to the tendered amount.
type PaymentResult struct {
	Debt      DebtSummary     `json:"debt"`
	Receipt   *entity.Receipt `json:"receipt,omitempty"`
	Settled   []SettledDebt   `json:"settled"`
	Unapplied decimal.Decimal `json:"unapplied"`
}

// MakePayment applies a payment to a debt. Whatever exceeds that debt settles
// the customer's other open debts oldest first. Each settled debt moves the
// same amount from balance to amount paid on its receipt.
func (s *DebtService) MakePayment(ctx context.Context, input *MakePaymentInput) (*PaymentResult, error) {
	tenantID, ok := infraRepo.GetTenantID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Tenant context required")
	}
	if input.DebtID == uuid.Nil {
		return nil, apperror.NewBadRequestError("Debt is required")
	}
	if input.WorkerID == uuid.Nil {
		return nil, apperror.NewBadRequestError("Worker is required")
	}
	if !input.Amount.IsPositive() {
		return nil, apperror.NewBadRequestError("Payment amount must be greater than zero")
	}

	amount := roundMoney(input.Amount)
	method := enum.ParsePaymentMethod(string(input.PaymentMethod))
	result := &PaymentResult{Settled: []SettledDebt{}}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		debt, err := s.debtRepo.GetByIDForUpdate(ctx, input.DebtID)
		if err != nil {
			return err
		}
		if debt == nil {
			return apperror.ErrDebtNotFound
		}

		applied := decimal.Min(amount, decimal.Max(debt.Amount, decimal.Zero))
		if err := s.debtRepo.CreatePayment(ctx, &entity.DebtPayment{
			TenantID:      tenantID,
			DebtID:        debt.ID,
			WorkerID:      input.WorkerID,
			Date:          s.now(),
			AmountPaid:    amount,
			AppliedAmount: applied,
			PaymentMethod: method,
		}); err != nil {
			return err
		}
		settled, err := s.settle(ctx, debt, applied)
		if err != nil {
			return err
		}
		result.Settled = append(result.Settled, settled)

		remainder := amount.Sub(applied)
		if remainder.IsPositive() {
			others, err := s.debtRepo.ListOpenForCustomer(ctx, debt.CustomerID, debt.ID)
			if err != nil {
				return err
			}
			for i := range others {
				if !remainder.IsPositive() {
					break
				}
				other := &others[i]
				part := decimal.Min(remainder, other.Amount)
				if err := s.debtRepo.CreatePayment(ctx, &entity.DebtPayment{
					TenantID:      tenantID,
					DebtID:        other.ID,
					SourceDebtID:  &debt.ID,
					WorkerID:      input.WorkerID,
					Date:          s.now(),
					AmountPaid:    part,
					AppliedAmount: part,
					PaymentMethod: method,
				}); err != nil {
					return err
				}
				settled, err := s.settle(ctx, other, part)
				if err != nil {
					return err
				}
				result.Settled = append(result.Settled, settled)
				remainder = remainder.Sub(part)
			}
		}
		result.Unapplied = remainder

		return s.summarize(ctx, debt.ID, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// settle reduces debt by applied and mirrors it on the linked receipt
func (s *DebtService) settle(ctx context.Context, debt *entity.Debt, applied decimal.Decimal) (SettledDebt, error) {
	if applied.IsPositive() {
		ok, err := s.debtRepo.Reduce(ctx, debt.ID, applied, s.epsilon)
		if err != nil {
			return SettledDebt{}, err
		}
		if !ok {
			// another payment settled the debt after it was read
			return SettledDebt{}, apperror.ErrConcurrentModification
		}
	}
	if debt.ReceiptID != nil && applied.IsPositive() {
		if err := s.receiptRepo.ApplyPayment(ctx, *debt.ReceiptID, applied); err != nil {
			return SettledDebt{}, err
		}
	}

	remaining := debt.Amount.Sub(applied)
	status := enum.DebtStatusPending
	if remaining.Abs().LessThan(s.epsilon) {
		status = enum.DebtStatusPaid
	}
	return SettledDebt{
		DebtID:    debt.ID,
		ReceiptID: debt.ReceiptID,
		Applied:   applied,
		Remaining: remaining,
		Status:    status,
	}, nil
}

func (s *DebtService) summarize(ctx context.Context, debtID uuid.UUID, result *PaymentResult) error {
	debt, err := s.debtRepo.GetByID(ctx, debtID)
	if err != nil {
		return err
	}
	if debt == nil {
		return apperror.ErrDebtNotFound
	}

	summary := DebtSummary{
		ID:      debt.ID,
		Balance: debt.Amount,
		Status:  debt.Status,
	}

	customer, err := s.customerRepo.GetByID(ctx, debt.CustomerID)
	if err != nil {
		return err
	}
	if customer != nil {
		summary.CustomerName = customer.Name
		summary.CustomerCompany = customer.Company
	}

	if debt.ReceiptID != nil {
		receipt, err := s.receiptRepo.GetByID(ctx, *debt.ReceiptID)
		if err != nil {
			return err
		}
		if receipt != nil {
			summary.TotalAmount = receipt.Total
			summary.AmountPaid = receipt.AmountPaid
			result.Receipt = receipt
		}
	}

	result.Debt = summary
	return nil
}

// ListPayments returns the payment rows recorded against a debt
func (s *DebtService) ListPayments(ctx context.Context, debtID uuid.UUID) ([]entity.DebtPayment, error) {
	debt, err := s.debtRepo.GetByID(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt == nil {
		return nil, apperror.ErrDebtNotFound
	}
	return s.debtRepo.ListPayments(ctx, debtID)
}
