package dto

// AddLineRequest adds an item to the register draft.
type AddLineRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

// SetLinePriceRequest overrides a draft line's unit price.
type SetLinePriceRequest struct {
	ItemID    string `json:"itemId" binding:"required"`
	UnitPrice string `json:"unitPrice" binding:"required"`
}

// RemoveLineRequest removes a draft line.
type RemoveLineRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// SetDiscountRequest sets the draft discount percent.
type SetDiscountRequest struct {
	Percent string `json:"percent" binding:"required"`
}

// SetCashRequest records cash tendered on the draft.
type SetCashRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// FinalizeRequest completes the draft into a bill.
type FinalizeRequest struct {
	Quotation bool `json:"quotation"`
}

// SettleRequest amends a credit bill's cash tendered.
type SettleRequest struct {
	CashTendered string `json:"cashTendered" binding:"required"`
}

// DraftResponse is the register view of the in-progress transaction.
type DraftResponse struct {
	Lines           any    `json:"lines"`
	GrossTotal      string `json:"grossTotal"`
	DiscountPercent string `json:"discountPercent"`
	DiscountAmount  string `json:"discountAmount"`
	NetTotal        string `json:"netTotal"`
	CashTendered    string `json:"cashTendered"`
	Balance         string `json:"balance"`
	SuggestedOff    string `json:"suggestedDiscountPercent,omitempty"`
}
