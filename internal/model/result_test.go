package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func boolPtr(b bool) *bool { return &b }

func TestSummarize(t *testing.T) {
	results := []BatchResult{
		{File: "a.pdf", Status: StatusConverted},
		{File: "b.pdf", Status: StatusError, Error: "no text source"},
		{File: "c.pdf", Status: StatusUploaded},
	}

	ok, failed := Summarize(results)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 1, failed)
}

func TestSummarize_Empty(t *testing.T) {
	ok, failed := Summarize(nil)
	assert.Zero(t, ok)
	assert.Zero(t, failed)
}

func TestInvoiceNumberOr(t *testing.T) {
	r := &InvoiceRecord{}
	assert.Equal(t, "inv_0001", r.InvoiceNumberOr("inv_0001"))

	r.InvoiceNumber = strPtr("INV-2025-001")
	assert.Equal(t, "INV-2025-001", r.InvoiceNumberOr("inv_0001"))
}

func TestInvoiceRecord_NullFieldsSerialized(t *testing.T) {
	r := InvoiceRecord{
		Items:    []string{},
		Filename: "invoice_0001.pdf",
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))

	// Every field must be present, misses as explicit null.
	for _, key := range []string{
		"invoice_number", "order_number", "customer", "email",
		"order_date", "due_date", "subtotal", "tax", "total",
		"payment_completed", "payment_method", "transaction_id",
		"items", "notes", "filename", "source_path",
	} {
		require.Contains(t, raw, key)
	}
	assert.Equal(t, "null", string(raw["total"]))
	assert.Equal(t, "null", string(raw["payment_completed"]))
	assert.Equal(t, "[]", string(raw["items"]))
}

func TestInvoiceRecord_RoundTrip(t *testing.T) {
	orig := InvoiceRecord{
		InvoiceNumber:    strPtr("INV-2025-017"),
		OrderNumber:      strPtr("ORD-2025-017"),
		Customer:         strPtr("Acme Widgets Ltd"),
		Email:            strPtr("ap@acme.test"),
		OrderDate:        strPtr("2025-03-01"),
		DueDate:          strPtr("2025-03-31"),
		Subtotal:         f64Ptr(12027.58),
		Tax:              f64Ptr(1082.48),
		Total:            f64Ptr(13110.06),
		PaymentCompleted: boolPtr(false),
		PaymentMethod:    strPtr("Wire transfer"),
		Items:            []string{"- Widget A x3 ($10.00 each = $30.00)"},
		Notes:            strPtr("Net 30."),
		Filename:         "invoice_0017.pdf",
		SourcePath:       "data_2/invoice_0017.pdf",
	}

	data, err := json.Marshal(orig)
	require.NoError(t, err)

	var got InvoiceRecord
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, orig, got)
}
