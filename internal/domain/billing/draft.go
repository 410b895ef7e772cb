// Package billing provides the billing transaction engine: the bill
// draft state machine, the finalization pipeline that turns a draft
// into a numbered immutable bill while decrementing catalog stock, and
// lookup of historical and credit bills.
package billing

import (
	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/catalog"
)

// Line is one row of a draft or bill. Name and price are snapshotted
// from the catalog when the item is first added; later catalog changes
// never touch an existing line. The price stays operator-editable to
// support manual quotation adjustments.
type Line struct {
	ItemID    id.ID       `db:"item_id" json:"itemId"`
	Name      string      `db:"name" json:"name"`
	UnitPrice types.Money `db:"unit_price" json:"unitPrice"`
	Quantity  int64       `db:"quantity" json:"quantity"`
}

// Subtotal returns unit price × quantity.
func (l Line) Subtotal() types.Money {
	return l.UnitPrice.Mul(types.NewMoneyFromInt(l.Quantity))
}

// Draft is the in-progress transaction before finalization. It is an
// immutable value: every operation returns a new Draft and leaves the
// receiver untouched. Lines keep insertion order and are unique by
// item ID; re-adding an item merges by summing quantity.
type Draft struct {
	lines           []Line
	discountPercent types.Money
	cashTendered    types.Money
}

// NewDraft returns an empty draft.
func NewDraft() Draft {
	return Draft{}
}

// Empty reports whether the draft has no lines.
func (d Draft) Empty() bool {
	return len(d.lines) == 0
}

// Lines returns a copy of the draft's lines in display order.
func (d Draft) Lines() []Line {
	out := make([]Line, len(d.lines))
	copy(out, d.lines)
	return out
}

// DiscountPercent returns the discount percentage in [0,100].
func (d Draft) DiscountPercent() types.Money {
	return d.discountPercent
}

// CashTendered returns the cash amount handed over by the customer.
func (d Draft) CashTendered() types.Money {
	return d.cashTendered
}

// AddItem appends item to the draft or, when the item is already a
// line, adds qty to the existing line. Name and price are snapshotted
// from the catalog item on first add.
func (d Draft) AddItem(item catalog.Item, qty int64) (Draft, error) {
	if qty < 1 {
		return d, apperror.NewValidation("quantity must be at least 1").
			WithDetail("field", "quantity").
			WithDetail("item_id", item.ID.String())
	}

	next := d.clone()
	for i := range next.lines {
		if next.lines[i].ItemID == item.ID {
			next.lines[i].Quantity += qty
			return next, nil
		}
	}
	next.lines = append(next.lines, Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  qty,
	})
	return next, nil
}

// SetLinePrice overrides the unit price of an existing line.
func (d Draft) SetLinePrice(itemID id.ID, price types.Money) (Draft, error) {
	if price.IsNegative() {
		return d, apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}

	next := d.clone()
	for i := range next.lines {
		if next.lines[i].ItemID == itemID {
			next.lines[i].UnitPrice = price
			return next, nil
		}
	}
	return d, apperror.NewNotFound("bill line", itemID.String())
}

// RemoveLine drops the line for itemID; no-op when absent.
func (d Draft) RemoveLine(itemID id.ID) Draft {
	next := Draft{
		discountPercent: d.discountPercent,
		cashTendered:    d.cashTendered,
	}
	for _, line := range d.lines {
		if line.ItemID != itemID {
			next.lines = append(next.lines, line)
		}
	}
	return next
}

// SetDiscountPercent sets the whole-bill discount, 0..100.
func (d Draft) SetDiscountPercent(pct types.Money) (Draft, error) {
	if pct.IsNegative() || pct.GreaterThan(types.Hundred) {
		return d, apperror.NewValidation("discount must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}
	next := d.clone()
	next.discountPercent = pct
	return next, nil
}

// SetCashTendered sets the cash received from the customer.
func (d Draft) SetCashTendered(amount types.Money) (Draft, error) {
	if amount.IsNegative() {
		return d, apperror.NewValidation("cash tendered cannot be negative").
			WithDetail("field", "cashTendered")
	}
	next := d.clone()
	next.cashTendered = amount
	return next, nil
}

// Reset returns an empty draft, discarding lines, discount and cash.
func (d Draft) Reset() Draft {
	return NewDraft()
}

// Totals are pure functions of the current state, recomputed on every
// read. No cached total is ever exposed.

// GrossTotal is the sum of line subtotals.
func (d Draft) GrossTotal() types.Money {
	total := types.Zero()
	for _, line := range d.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// DiscountAmount is grossTotal × discountPercent / 100.
func (d Draft) DiscountAmount() types.Money {
	return types.Percent(d.GrossTotal(), d.discountPercent)
}

// NetTotal is grossTotal minus the discount.
func (d Draft) NetTotal() types.Money {
	return d.GrossTotal().Sub(d.DiscountAmount())
}

// Balance is cashTendered minus netTotal. Negative means the customer
// still owes money and a finalized bill will be a credit bill.
func (d Draft) Balance() types.Money {
	return d.cashTendered.Sub(d.NetTotal())
}

func (d Draft) clone() Draft {
	next := Draft{
		discountPercent: d.discountPercent,
		cashTendered:    d.cashTendered,
	}
	if len(d.lines) > 0 {
		next.lines = make([]Line, len(d.lines))
		copy(next.lines, d.lines)
	}
	return next
}
