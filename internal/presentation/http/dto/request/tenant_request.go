package request

import "github.com/shopspring/decimal"

// UpdateTenantRequest changes the shop name and settings
type UpdateTenantRequest struct {
	Name            *string          `json:"name" binding:"omitempty,min=2,max=255"`
	Currency        *string          `json:"currency" binding:"omitempty,len=3"`
	Timezone        *string          `json:"timezone" binding:"omitempty,max=64"`
	Locale          *string          `json:"locale" binding:"omitempty,max=16"`
	TaxRate         *decimal.Decimal `json:"tax_rate"`
	TaxLabel        *string          `json:"tax_label" binding:"omitempty,max=32"`
	ReceiptTemplate *string          `json:"receipt_template" binding:"omitempty,max=32"`
	ReceiptFooter   *string          `json:"receipt_footer" binding:"omitempty,max=500"`
}

// AddWorkerRequest adds a worker to the shop. Password is needed only when
// no account exists for Email yet.
type AddWorkerRequest struct {
	FirstName string  `json:"first_name" binding:"omitempty,max=255"`
	LastName  string  `json:"last_name" binding:"omitempty,max=255"`
	Email     string  `json:"email" binding:"required,email"`
	Phone     *string `json:"phone" binding:"omitempty,max=50"`
	Password  string  `json:"password" binding:"omitempty,min=8"`
	Role      string  `json:"role" binding:"omitempty,oneof=owner manager cashier"`
}
