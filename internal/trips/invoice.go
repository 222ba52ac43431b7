package trips

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Invoice is the printable-document read model for a trip. A single VAT rate
// applies to the whole trip, taken from the first member order's product;
// mixed-rate trips do not occur in practice because a truck carries one
// product family per run.
type Invoice struct {
	TripNumber      int64    `json:"trip_number"`
	DeliveryNoteNum *int64   `json:"delivery_note_num,omitempty"`
	InvoiceNum      *int64   `json:"invoice_num,omitempty"`
	Subtotal        float64  `json:"subtotal"`
	VATRate         float64  `json:"vat_rate"`
	VATAmount       float64  `json:"vat_amount"`
	Total           float64  `json:"total"`
	SubtotalText    string   `json:"subtotal_text"`
	VATAmountText   string   `json:"vat_amount_text"`
	TotalText       string   `json:"total_text"`
	TotalInWords    string   `json:"total_in_words"`
}

var frenchPrinter = message.NewPrinter(language.French)

// FormatAmount renders an amount with French digit grouping and a comma
// decimal separator, two places.
func FormatAmount(v float64) string {
	return frenchPrinter.Sprintf("%.2f", v)
}

// ComputeInvoice derives the invoice figures from the trip snapshot. The
// subtotal is the sum of member total prices; vatRate is a percentage
// (0 when the product carries no tax attribute).
func ComputeInvoice(t Trip, vatRate float64) Invoice {
	var subtotal float64
	for _, snap := range t.TotalOrders {
		subtotal += snap.TotalPrice
	}
	vatAmount := subtotal * vatRate / 100
	total := subtotal + vatAmount

	return Invoice{
		TripNumber:      t.TripNumber,
		DeliveryNoteNum: t.DeliveryNoteNum,
		InvoiceNum:      t.InvoiceNum,
		Subtotal:        subtotal,
		VATRate:         vatRate,
		VATAmount:       vatAmount,
		Total:           total,
		SubtotalText:    FormatAmount(subtotal),
		VATAmountText:   FormatAmount(vatAmount),
		TotalText:       FormatAmount(total),
		TotalInWords:    AmountInWords(total),
	}
}
