package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentMethod(t *testing.T) {
	assert.Equal(t, PaymentMethodCash, ParsePaymentMethod(""))
	assert.Equal(t, PaymentMethodMpesa, ParsePaymentMethod(" MPESA "))
	assert.Equal(t, PaymentMethod("cheque"), ParsePaymentMethod("Cheque"))
}

func TestDebtStatus_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Status DebtStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"PAID"}`), &payload))
	assert.Equal(t, DebtStatusPaid, payload.Status)

	require.NoError(t, json.Unmarshal([]byte(`{"status":"whatever"}`), &payload))
	assert.Equal(t, DebtStatusPending, payload.Status)
	assert.True(t, payload.Status.IsValid())
}
