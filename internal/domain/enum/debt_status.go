package enum

import (
	"encoding/json"
	"strings"
)

// DebtStatus represents the settlement state of a debt
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPaid    DebtStatus = "paid"
)

func (s DebtStatus) String() string {
	return string(s)
}

func (s DebtStatus) IsValid() bool {
	switch s {
	case DebtStatusPending, DebtStatusPaid:
		return true
	}
	return false
}

func (s *DebtStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "paid":
		*s = DebtStatusPaid
	default:
		*s = DebtStatusPending
	}
	return nil
}
