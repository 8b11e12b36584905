package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/phantompay/invoice-cli/internal/model"
)

// FieldExtractor populates invoice scalar fields from raw text using a
// per-field ordered pattern cascade. A field whose patterns never match
// is left at its null default; that is not an error.
type FieldExtractor struct {
	rules *RuleSet
}

// NewFieldExtractor creates an extractor. A nil rule set selects the
// built-in rules.
func NewFieldExtractor(rules *RuleSet) *FieldExtractor {
	if rules == nil {
		rules = DefaultRules()
	}
	return &FieldExtractor{rules: rules}
}

// Extract applies every field rule to text and returns a record with
// the scalar fields populated. Items are not extracted here.
func (e *FieldExtractor) Extract(text string) *model.InvoiceRecord {
	rec := &model.InvoiceRecord{Items: []string{}}
	for _, rule := range e.rules.Rules {
		raw, ok := matchField(rule, text)
		if !ok {
			continue
		}
		applyValue(rec, rule, raw)
	}
	return rec
}

// matchField resolves one field's value according to the rule's
// selection policy. The returned value is trimmed.
func matchField(rule Rule, text string) (string, bool) {
	if rule.Policy == PolicyLast {
		best := -1
		var value string
		for _, re := range rule.Patterns {
			for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
				if loc[0] > best && loc[2] >= 0 {
					best = loc[0]
					value = text[loc[2]:loc[3]]
				}
			}
		}
		if best < 0 {
			return "", false
		}
		return strings.TrimSpace(value), true
	}

	for _, re := range rule.Patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

func applyValue(rec *model.InvoiceRecord, rule Rule, raw string) {
	switch rule.Transform {
	case TransformNumber:
		f, err := parseAmount(raw)
		if err != nil {
			return // leave the field null
		}
		setNumber(rec, rule.Key, f)
	case TransformBool:
		b, ok := parseTriState(raw)
		if !ok {
			return // unknown stays null
		}
		rec.PaymentCompleted = &b
	case TransformNotes:
		if cleaned := cleanNotes(raw); cleaned != "" {
			rec.Notes = &cleaned
		}
	default:
		setString(rec, rule.Key, raw)
	}
}

func setString(rec *model.InvoiceRecord, key, v string) {
	switch key {
	case "invoice_number":
		rec.InvoiceNumber = &v
	case "order_number":
		rec.OrderNumber = &v
	case "customer":
		rec.Customer = &v
	case "email":
		rec.Email = &v
	case "order_date":
		rec.OrderDate = &v
	case "due_date":
		rec.DueDate = &v
	case "payment_method":
		// Historically an empty capture in one layout: treat as null.
		if v != "" {
			rec.PaymentMethod = &v
		}
	case "transaction_id":
		if v != "" {
			rec.TransactionID = &v
		}
	}
}

func setNumber(rec *model.InvoiceRecord, key string, f float64) {
	switch key {
	case "subtotal":
		rec.Subtotal = &f
	case "tax":
		rec.Tax = &f
	case "total":
		rec.Total = &f
	}
}

// parseAmount normalizes a captured currency string (thousands
// separators and dollar signs stripped) and parses it as a decimal.
func parseAmount(raw string) (float64, error) {
	v := strings.ReplaceAll(raw, ",", "")
	v = strings.ReplaceAll(v, "$", "")
	v = strings.TrimSpace(v)
	return strconv.ParseFloat(v, 64)
}

// parseTriState maps payment status tokens onto a boolean. Unknown
// tokens report ok=false and the field stays unset.
func parseTriState(raw string) (val, ok bool) {
	switch strings.ToLower(raw) {
	case "true", "paid":
		return true, true
	case "false", "overdue", "unpaid":
		return false, true
	default:
		return false, false
	}
}

// trailingStatus strips payment status text that bleeds into the notes
// capture in one of the layouts.
var trailingStatus = regexp.MustCompile(`(?is)\s*Payment\s+completed.*$`)

func cleanNotes(raw string) string {
	return strings.TrimSpace(trailingStatus.ReplaceAllString(raw, ""))
}
