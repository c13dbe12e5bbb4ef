package request

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerField_AcceptsStringAndObject(t *testing.T) {
	var fromString CreateReceiptRequest
	require.NoError(t, json.Unmarshal([]byte(`{"customer": "Acme - John"}`), &fromString))
	assert.Equal(t, "Acme", fromString.Customer.Company)
	assert.Equal(t, "John", fromString.Customer.Name)

	var fromObject CreateReceiptRequest
	require.NoError(t, json.Unmarshal([]byte(`{"customer": {"company": "Acme", "name": "John"}}`), &fromObject))
	assert.Equal(t, fromString.Customer.CustomerRef, fromObject.Customer.CustomerRef)
}

func TestCustomerField_RejectsAsFieldError(t *testing.T) {
	for name, body := range map[string]string{
		"null":   `{"customer": null}`,
		"number": `{"customer": 42}`,
		"array":  `{"customer": ["Acme"]}`,
	} {
		t.Run(name, func(t *testing.T) {
			var req CreateReceiptRequest
			err := json.Unmarshal([]byte(body), &req)

			var fieldErr *FieldDecodeError
			require.True(t, errors.As(err, &fieldErr), "got %v", err)
			assert.Equal(t, "customer", fieldErr.Field)
		})
	}
}
