package request

// CreateCustomerRequest adds a customer. The pair (company, name) is unique per shop.
type CreateCustomerRequest struct {
	Company string  `json:"company" binding:"omitempty,max=255"`
	Name    string  `json:"name" binding:"required,max=255"`
	Contact *string `json:"contact" binding:"omitempty,max=50"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}

// UpdateCustomerRequest changes a customer. Nil fields are left as they are.
type UpdateCustomerRequest struct {
	Company *string `json:"company" binding:"omitempty,max=255"`
	Name    *string `json:"name" binding:"omitempty,min=1,max=255"`
	Contact *string `json:"contact" binding:"omitempty,max=50"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
}
