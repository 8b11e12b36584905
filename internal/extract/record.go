package extract

import (
	"path/filepath"

	"github.com/phantompay/invoice-cli/internal/model"
)

// Builder composes field and item extraction into one InvoiceRecord.
type Builder struct {
	fields *FieldExtractor
}

// NewBuilder creates a record builder. A nil rule set selects the
// built-in rules.
func NewBuilder(rules *RuleSet) *Builder {
	return &Builder{fields: NewFieldExtractor(rules)}
}

// Build produces the record for one document from its raw text. The
// record is complete after this call and is never mutated downstream.
func (b *Builder) Build(text, sourcePath string) *model.InvoiceRecord {
	rec := b.fields.Extract(text)
	if items := ExtractItems(text); len(items) > 0 {
		rec.Items = items
	}
	rec.Filename = filepath.Base(sourcePath)
	rec.SourcePath = sourcePath
	return rec
}
