package render

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shoptill/internal/core/types"
	"shoptill/internal/domain/billing"
	"shoptill/internal/domain/catalog"
)

func sampleBill(t *testing.T, quotation bool) *billing.Bill {
	t.Helper()
	soap := catalog.NewItem("Soap", types.MustMoney("250.00"), 10, 0)
	tea := catalog.NewItem("Tea 400g", types.MustMoney("125.50"), 10, 0)

	draft, err := billing.NewDraft().AddItem(*soap, 2)
	require.NoError(t, err)
	draft, err = draft.AddItem(*tea, 4)
	require.NoError(t, err)
	draft, err = draft.SetDiscountPercent(types.MustMoney("10"))
	require.NoError(t, err)
	draft, err = draft.SetCashTendered(types.MustMoney("1000"))
	require.NoError(t, err)

	issued := time.Date(2026, 3, 14, 14, 30, 0, 0, time.UTC)
	return billing.NewBill("A0042", draft, quotation, issued)
}

func TestReceiptContainsBillFigures(t *testing.T) {
	r, err := NewReceipt(ShopInfo{
		Name:    "New Lanka Stores",
		Address: "12 Main Street, Galle",
		Phone:   "091-2223344",
		Note:    "Thank you, come again!",
	})
	require.NoError(t, err)

	out, err := r.Render(sampleBill(t, false))
	require.NoError(t, err)

	for _, want := range []string{
		"New Lanka Stores",
		"12 Main Street, Galle",
		"Bill No : A0042",
		"Date    : 14/03/2026",
		"Time    : 2:30 PM",
		"Soap",
		"2 x 250.00",
		"500.00",
		"Tea 400g",
		"4 x 125.50",
		"502.00",
		"1002.00",
		"-100.20",
		"901.80",
		"1000.00",
		"98.20",
		"Thank you, come again!",
	} {
		assert.Contains(t, out, want, "receipt should contain %q", want)
	}
	assert.NotContains(t, out, "QUOTATION")
}

func TestReceiptMarksQuotations(t *testing.T) {
	r, err := NewReceipt(ShopInfo{Name: "New Lanka Stores"})
	require.NoError(t, err)

	out, err := r.Render(sampleBill(t, true))
	require.NoError(t, err)
	assert.Contains(t, out, "QUOTATION")
}

func TestReceiptSkipsZeroDiscountLine(t *testing.T) {
	r, err := NewReceipt(ShopInfo{Name: "New Lanka Stores"})
	require.NoError(t, err)

	soap := catalog.NewItem("Soap", types.MustMoney("100"), 10, 0)
	draft, err := billing.NewDraft().AddItem(*soap, 1)
	require.NoError(t, err)
	bill := billing.NewBill("A0001", draft, false, time.Now())

	out, err := r.Render(bill)
	require.NoError(t, err)
	assert.NotContains(t, out, "Discount")
}

func TestReceiptFitsPrinterWidth(t *testing.T) {
	r, err := NewReceipt(ShopInfo{Name: "New Lanka Stores"})
	require.NoError(t, err)

	out, err := r.Render(sampleBill(t, false))
	require.NoError(t, err)

	for _, line := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, len(line), receiptWidth, "line overflows: %q", line)
	}
}
