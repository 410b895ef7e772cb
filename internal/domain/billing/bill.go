package billing

import (
	"time"

	"shoptill/internal/core/id"
	"shoptill/internal/core/types"

	"shoptill/pkg/billnum"
)

// Status classifies a finalized bill by settlement.
type Status string

const (
	// StatusSettled means cash tendered covers the net total.
	StatusSettled Status = "settled"

	// StatusCredit means payment is still owed.
	StatusCredit Status = "credit"
)

// Bill is a finalized, immutable record of one completed or quoted
// sale. It is created only by the finalization pipeline and never
// mutated afterwards, except that cash tendered and balance may be
// amended by the audited credit-settlement flow. Lines reference
// catalog items by ID and name snapshot only; renaming or deleting a
// catalog item never changes a historical bill.
type Bill struct {
	// ID is the store-assigned key, distinct from the bill number
	ID id.ID `db:"id" json:"id"`

	// Number is the human-readable identifier, e.g. A0001
	Number string `db:"bill_number" json:"billNumber"`

	GrossTotal      types.Money `db:"gross_total" json:"grossTotal"`
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	DiscountAmount  types.Money `db:"discount_amount" json:"discountAmount"`
	NetTotal        types.Money `db:"net_total" json:"netTotal"`
	CashTendered    types.Money `db:"cash_tendered" json:"cashTendered"`
	Balance         types.Money `db:"balance" json:"balance"`

	// Quotation bills never touched catalog stock
	Quotation bool `db:"quotation" json:"quotation"`

	// IssuedAt carries the bill's date and time, captured once
	IssuedAt time.Time `db:"issued_at" json:"issuedAt"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// Version for optimistic locking on settlement
	Version int `db:"version" json:"version"`

	Lines []Line `db:"-" json:"lines"`
}

// NewBill assembles an immutable bill snapshot from a draft. The totals
// are computed once here; issuedAt is the single capture of date/time.
func NewBill(number string, draft Draft, quotation bool, issuedAt time.Time) *Bill {
	return &Bill{
		ID:              id.New(),
		Number:          number,
		GrossTotal:      draft.GrossTotal(),
		DiscountPercent: draft.DiscountPercent(),
		DiscountAmount:  draft.DiscountAmount(),
		NetTotal:        draft.NetTotal(),
		CashTendered:    draft.CashTendered(),
		Balance:         draft.Balance(),
		Quotation:       quotation,
		IssuedAt:        issuedAt,
		CreatedAt:       issuedAt,
		Version:         1,
		Lines:           draft.Lines(),
	}
}

// Status derives the settlement state: settled when cash tendered
// covers the net total, credit otherwise.
func (b *Bill) Status() Status {
	if b.Settled() {
		return StatusSettled
	}
	return StatusCredit
}

// Settled reports whether no payment is outstanding.
func (b *Bill) Settled() bool {
	return b.CashTendered.GreaterThanOrEqual(b.NetTotal)
}

// ValidNumber reports whether the bill carries a well-formed number.
func (b *Bill) ValidNumber() bool {
	return billnum.Valid(b.Number)
}
