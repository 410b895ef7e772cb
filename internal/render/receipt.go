// Package render produces the printable text receipt for a bill.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"shoptill/internal/core/types"
	"shoptill/internal/domain/billing"
)

// receiptWidth matches a 40-column thermal printer.
const receiptWidth = 40

// ShopInfo is the static header and footer printed on every receipt.
type ShopInfo struct {
	Name    string
	Address string
	Phone   string
	Note    string
}

const receiptTemplate = `{{center .Shop.Name}}
{{- if .Shop.Address}}
{{center .Shop.Address}}
{{- end}}
{{- if .Shop.Phone}}
{{center .Shop.Phone}}
{{- end}}
{{rule}}
{{- if .Bill.Quotation}}
{{center "QUOTATION"}}
{{- end}}
Bill No : {{.Bill.Number}}
Date    : {{formatDate .Bill.IssuedAt}}
Time    : {{formatTime .Bill.IssuedAt}}
{{rule}}
{{- range .Bill.Lines}}
{{.Name}}
{{line .Quantity .UnitPrice .Subtotal}}
{{- end}}
{{rule}}
{{total "Gross" .Bill.GrossTotal}}
{{- if not .Bill.DiscountAmount.IsZero}}
{{total "Discount" .Bill.DiscountAmount.Neg}}
{{- end}}
{{total "Net Total" .Bill.NetTotal}}
{{total "Cash" .Bill.CashTendered}}
{{total "Balance" .Bill.Balance}}
{{rule}}
{{- if .Shop.Note}}
{{center .Shop.Note}}
{{- end}}
`

// Receipt renders bills as fixed-width text.
type Receipt struct {
	tpl  *template.Template
	shop ShopInfo
}

// NewReceipt parses the receipt template for the given shop.
func NewReceipt(shop ShopInfo) (*Receipt, error) {
	funcMap := template.FuncMap{
		"center": func(s string) string {
			if len(s) >= receiptWidth {
				return s
			}
			pad := (receiptWidth - len(s)) / 2
			return strings.Repeat(" ", pad) + s
		},
		"rule": func() string {
			return strings.Repeat("-", receiptWidth)
		},
		"formatDate": func(t time.Time) string {
			return t.Format("02/01/2006")
		},
		"formatTime": func(t time.Time) string {
			return t.Format("3:04 PM")
		},
		"line": func(qty int64, unit, subtotal types.Money) string {
			left := fmt.Sprintf("  %d x %s", qty, unit.StringFixed(2))
			right := subtotal.StringFixed(2)
			return padBetween(left, right)
		},
		"total": func(label string, amount types.Money) string {
			return padBetween(label, amount.StringFixed(2))
		},
	}
	tpl, err := template.New("receipt").Funcs(funcMap).Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse receipt template: %w", err)
	}
	return &Receipt{tpl: tpl, shop: shop}, nil
}

// Render produces the receipt text for bill.
func (r *Receipt) Render(bill *billing.Bill) (string, error) {
	buf := &bytes.Buffer{}
	data := struct {
		Shop ShopInfo
		Bill *billing.Bill
	}{Shop: r.shop, Bill: bill}
	if err := r.tpl.Execute(buf, data); err != nil {
		return "", fmt.Errorf("render receipt %s: %w", bill.Number, err)
	}
	return buf.String(), nil
}

func padBetween(left, right string) string {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
