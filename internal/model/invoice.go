package model

// InvoiceRecord is the normalized extraction output for one invoice
// document. Every field is always present in the serialized form;
// nullable scalars are pointers so a miss serializes as JSON null
// rather than being omitted.
type InvoiceRecord struct {
	InvoiceNumber    *string  `json:"invoice_number"`
	OrderNumber      *string  `json:"order_number"`
	Customer         *string  `json:"customer"`
	Email            *string  `json:"email"`
	OrderDate        *string  `json:"order_date"`
	DueDate          *string  `json:"due_date"`
	Subtotal         *float64 `json:"subtotal"`
	Tax              *float64 `json:"tax"`
	Total            *float64 `json:"total"`
	PaymentCompleted *bool    `json:"payment_completed"`
	PaymentMethod    *string  `json:"payment_method"`
	TransactionID    *string  `json:"transaction_id"`
	Items            []string `json:"items"`
	Notes            *string  `json:"notes"`
	Filename         string   `json:"filename"`
	SourcePath       string   `json:"source_path"`
}

// InvoiceNumberOr returns the extracted invoice number, or fallback
// when the field was not recovered from the document.
func (r *InvoiceRecord) InvoiceNumberOr(fallback string) string {
	if r.InvoiceNumber != nil && *r.InvoiceNumber != "" {
		return *r.InvoiceNumber
	}
	return fallback
}
