package enum

import (
	"encoding/json"
	"strings"
)

// PaymentMethod is the tender used for a sale or a debt payment
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodMpesa  PaymentMethod = "mpesa"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodBank   PaymentMethod = "bank"
	PaymentMethodCredit PaymentMethod = "credit"
)

// ParsePaymentMethod normalizes user input, falling back to cash for empty values.
// Unknown methods are kept as given so tenants can record their own tenders.
func ParsePaymentMethod(raw string) PaymentMethod {
	m := strings.ToLower(strings.TrimSpace(raw))
	if m == "" {
		return PaymentMethodCash
	}
	return PaymentMethod(m)
}

func (m PaymentMethod) String() string {
	return string(m)
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*m = ParsePaymentMethod(str)
	return nil
}
