package dto

// LoginRequest is a till sign-in.
type LoginRequest struct {
	Code string `json:"code" binding:"required"`
	PIN  string `json:"pin" binding:"required"`
}

// CreateOperatorRequest registers a new operator.
type CreateOperatorRequest struct {
	Code      string `json:"code" binding:"required"`
	Name      string `json:"name" binding:"required"`
	PIN       string `json:"pin" binding:"required"`
	IsManager bool   `json:"isManager"`
}

// ChangePINRequest replaces the caller's PIN.
type ChangePINRequest struct {
	CurrentPIN string `json:"currentPin" binding:"required"`
	NewPIN     string `json:"newPin" binding:"required"`
}
