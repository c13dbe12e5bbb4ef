package request

import (
	"bytes"
	"encoding/json"

	"github.com/sangkips/tillbook-api/internal/domain/entity"
	"github.com/sangkips/tillbook-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CustomerField accepts either {"company": "...", "name": "..."} or the
// display string "Company - Name".
type CustomerField struct {
	entity.CustomerRef
}

// FieldDecodeError is a body that could not be decoded because of one field
type FieldDecodeError struct {
	Field   string
	Message string
}

func (e *FieldDecodeError) Error() string {
	return e.Field + " " + e.Message
}

// UnmarshalJSON decodes a customer given as a "Company - Name" string or as an
// object. null and other shapes fail with a FieldDecodeError on "customer".
func (f *CustomerField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return &FieldDecodeError{Field: "customer", Message: "is required"}
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return &FieldDecodeError{Field: "customer", Message: "is invalid"}
		}
		f.CustomerRef = entity.ParseCustomerName(raw)
		return nil
	}
	if err := json.Unmarshal(data, &f.CustomerRef); err != nil {
		return &FieldDecodeError{Field: "customer", Message: `must be "Company - Name" or an object with company and name`}
	}
	return nil
}

// ProductLineRequest is one sold line. Unit is empty or "none" for the base unit.
type ProductLineRequest struct {
	Name     string          `json:"name" binding:"required,max=255"`
	Unit     string          `json:"unit" binding:"omitempty,max=50"`
	Quantity decimal.Decimal `json:"quantity"`
}

// CreateReceiptRequest records a sale
type CreateReceiptRequest struct {
	Customer      CustomerField        `json:"customer"`
	Products      []ProductLineRequest `json:"products" binding:"required,min=1,dive"`
	Total         decimal.Decimal      `json:"total"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	Discount      decimal.Decimal      `json:"discount"`
	PaymentMethod enum.PaymentMethod   `json:"payment_method"`
	CheckDebt     bool                 `json:"check_debt"`
}

// UpdateReceiptRequest replaces a receipt's lines and totals. Version is the
// version the client last read; omit it to skip the concurrency check.
type UpdateReceiptRequest struct {
	Customer      CustomerField        `json:"customer"`
	Products      []ProductLineRequest `json:"products" binding:"required,min=1,dive"`
	Total         decimal.Decimal      `json:"total"`
	AmountPaid    decimal.Decimal      `json:"amount_paid"`
	Discount      decimal.Decimal      `json:"discount"`
	PaymentMethod enum.PaymentMethod   `json:"payment_method"`
	Version       int64                `json:"version" binding:"min=0"`
}

// FlagReceiptRequest sets the flagged state of a receipt
type FlagReceiptRequest struct {
	Flagged *bool `json:"flagged" binding:"required"`
}

// PaymentRequest is a payment against a debt
type PaymentRequest struct {
	Amount        decimal.Decimal    `json:"amount"`
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
}
