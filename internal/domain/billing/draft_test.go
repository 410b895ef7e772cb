package billing

import (
	"testing"

	"shoptill/internal/core/id"
	"shoptill/internal/core/types"
	"shoptill/internal/domain/catalog"
)

func testItem(name, price string, stock int64) catalog.Item {
	return catalog.Item{
		ID:            id.New(),
		Name:          name,
		UnitPrice:     types.MustMoney(price),
		StockQuantity: stock,
	}
}

func TestDraftTotals(t *testing.T) {
	soap := testItem("Soap", "250.00", 10)
	rice := testItem("Rice", "125.50", 20)

	draft, err := NewDraft().AddItem(soap, 2)
	if err != nil {
		t.Fatalf("add soap: %v", err)
	}
	draft, err = draft.AddItem(rice, 4)
	if err != nil {
		t.Fatalf("add rice: %v", err)
	}

	// 2×250 + 4×125.50 = 1002
	if got := draft.GrossTotal(); !got.Equal(types.MustMoney("1002")) {
		t.Errorf("gross total = %s, want 1002", got)
	}

	draft, err = draft.SetDiscountPercent(types.MustMoney("10"))
	if err != nil {
		t.Fatalf("set discount: %v", err)
	}
	if got := draft.DiscountAmount(); !got.Equal(types.MustMoney("100.2")) {
		t.Errorf("discount amount = %s, want 100.2", got)
	}
	if got := draft.NetTotal(); !got.Equal(types.MustMoney("901.8")) {
		t.Errorf("net total = %s, want 901.8", got)
	}

	draft, err = draft.SetCashTendered(types.MustMoney("1000"))
	if err != nil {
		t.Fatalf("set cash: %v", err)
	}
	if got := draft.Balance(); !got.Equal(types.MustMoney("98.2")) {
		t.Errorf("balance = %s, want 98.2", got)
	}
}

func TestDraftDiscountScenario(t *testing.T) {
	// gross 1000, discount 10% -> discount 100, net 900; cash 900 -> balance 0
	item := testItem("Flour", "100.00", 50)
	draft, _ := NewDraft().AddItem(item, 10)
	draft, _ = draft.SetDiscountPercent(types.MustMoney("10"))
	draft, _ = draft.SetCashTendered(types.MustMoney("900"))

	if !draft.DiscountAmount().Equal(types.MustMoney("100")) {
		t.Errorf("discount = %s, want 100", draft.DiscountAmount())
	}
	if !draft.NetTotal().Equal(types.MustMoney("900")) {
		t.Errorf("net = %s, want 900", draft.NetTotal())
	}
	if !draft.Balance().IsZero() {
		t.Errorf("balance = %s, want 0", draft.Balance())
	}
}

func TestAddItemMergesByItemID(t *testing.T) {
	soap := testItem("Soap", "250.00", 10)

	draft, _ := NewDraft().AddItem(soap, 3)
	draft, _ = draft.AddItem(soap, 2)

	lines := draft.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", lines[0].Quantity)
	}
}

func TestAddItemKeepsInsertionOrder(t *testing.T) {
	a := testItem("Apples", "50", 10)
	b := testItem("Bread", "80", 10)
	c := testItem("Candles", "30", 10)

	draft, _ := NewDraft().AddItem(b, 1)
	draft, _ = draft.AddItem(a, 1)
	draft, _ = draft.AddItem(c, 1)
	draft, _ = draft.AddItem(b, 1) // merge must not reorder

	var names []string
	for _, line := range draft.Lines() {
		names = append(names, line.Name)
	}
	want := []string{"Bread", "Apples", "Candles"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("line order = %v, want %v", names, want)
		}
	}
}

func TestAddItemRejectsZeroQuantity(t *testing.T) {
	item := testItem("Soap", "250.00", 10)
	draft := NewDraft()

	if _, err := draft.AddItem(item, 0); err == nil {
		t.Error("expected validation error for zero quantity")
	}
	if _, err := draft.AddItem(item, -1); err == nil {
		t.Error("expected validation error for negative quantity")
	}
}

func TestSetLinePriceOverridesSnapshot(t *testing.T) {
	item := testItem("Soap", "250.00", 10)
	draft, _ := NewDraft().AddItem(item, 2)

	draft, err := draft.SetLinePrice(item.ID, types.MustMoney("199.99"))
	if err != nil {
		t.Fatalf("set price: %v", err)
	}
	if got := draft.GrossTotal(); !got.Equal(types.MustMoney("399.98")) {
		t.Errorf("gross = %s, want 399.98", got)
	}

	if _, err := draft.SetLinePrice(id.New(), types.MustMoney("1")); err == nil {
		t.Error("expected not-found for unknown line")
	}
	if _, err := draft.SetLinePrice(item.ID, types.MustMoney("-1")); err == nil {
		t.Error("expected validation error for negative price")
	}
}

func TestRemoveLine(t *testing.T) {
	soap := testItem("Soap", "250.00", 10)
	rice := testItem("Rice", "125.50", 20)

	draft, _ := NewDraft().AddItem(soap, 1)
	draft, _ = draft.AddItem(rice, 1)

	draft = draft.RemoveLine(soap.ID)
	if len(draft.Lines()) != 1 {
		t.Fatalf("expected 1 line after removal, got %d", len(draft.Lines()))
	}

	// Removing an absent line is a no-op.
	draft = draft.RemoveLine(soap.ID)
	if len(draft.Lines()) != 1 {
		t.Errorf("no-op removal changed the draft")
	}
}

func TestDiscountBounds(t *testing.T) {
	draft := NewDraft()
	if _, err := draft.SetDiscountPercent(types.MustMoney("101")); err == nil {
		t.Error("expected error for discount > 100")
	}
	if _, err := draft.SetDiscountPercent(types.MustMoney("-1")); err == nil {
		t.Error("expected error for negative discount")
	}
	if _, err := draft.SetDiscountPercent(types.MustMoney("100")); err != nil {
		t.Errorf("discount 100 should be allowed: %v", err)
	}
}

func TestResetDiscardsEverything(t *testing.T) {
	item := testItem("Soap", "250.00", 10)
	draft, _ := NewDraft().AddItem(item, 2)
	draft, _ = draft.SetDiscountPercent(types.MustMoney("5"))
	draft, _ = draft.SetCashTendered(types.MustMoney("100"))

	draft = draft.Reset()
	if !draft.Empty() {
		t.Error("reset draft should be empty")
	}
	if !draft.DiscountPercent().IsZero() || !draft.CashTendered().IsZero() {
		t.Error("reset draft should carry no discount or cash")
	}
}

func TestDraftIsImmutableValue(t *testing.T) {
	item := testItem("Soap", "250.00", 10)
	base, _ := NewDraft().AddItem(item, 1)

	mutated, _ := base.AddItem(item, 9)
	if base.Lines()[0].Quantity != 1 {
		t.Error("mutation leaked into the original draft")
	}
	if mutated.Lines()[0].Quantity != 10 {
		t.Error("mutation missing from the new draft")
	}
}
