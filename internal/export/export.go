// Package export renders converted invoice JSON files into a single
// XLSX summary workbook.
package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/phantompay/invoice-cli/internal/model"
)

var header = []string{
	"Invoice Number", "Order Number", "Customer", "Email",
	"Order Date", "Due Date", "Subtotal", "Tax", "Total",
	"Payment Completed", "Payment Method", "Transaction ID",
	"Items", "Notes", "Source File",
}

// ToXLSX reads every invoice JSON file under jsonDir and writes an
// XLSX summary to outPath. Returns the number of invoices exported.
// Aggregate result files are skipped.
func ToXLSX(jsonDir, outPath string) (int, error) {
	records, err := loadRecords(jsonDir)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, eris.Errorf("export: no invoice JSON files in %s", jsonDir)
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Invoices")
	if err != nil {
		return 0, eris.Wrap(err, "export: add sheet")
	}

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().SetString(h)
	}

	for _, rec := range records {
		addRecordRow(sheet, rec)
	}

	if err := f.Save(outPath); err != nil {
		return 0, eris.Wrapf(err, "export: save %s", outPath)
	}

	zap.L().Info("export complete",
		zap.Int("invoices", len(records)),
		zap.String("output", outPath))
	return len(records), nil
}

func loadRecords(jsonDir string) ([]*model.InvoiceRecord, error) {
	info, err := os.Stat(jsonDir)
	if err != nil || !info.IsDir() {
		return nil, eris.Errorf("export: directory not found: %s", jsonDir)
	}

	paths, err := filepath.Glob(filepath.Join(jsonDir, "*.json"))
	if err != nil {
		return nil, eris.Wrapf(err, "export: glob %s", jsonDir)
	}
	sort.Strings(paths)

	var records []*model.InvoiceRecord
	for _, path := range paths {
		if strings.HasSuffix(path, "_conversion_results.json") {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "export: read %s", path)
		}

		var rec model.InvoiceRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			zap.L().Warn("skipping unparseable file",
				zap.String("file", filepath.Base(path)),
				zap.Error(err))
			continue
		}
		records = append(records, &rec)
	}
	return records, nil
}

func addRecordRow(sheet *xlsx.Sheet, rec *model.InvoiceRecord) {
	row := sheet.AddRow()
	row.AddCell().SetString(strDeref(rec.InvoiceNumber))
	row.AddCell().SetString(strDeref(rec.OrderNumber))
	row.AddCell().SetString(strDeref(rec.Customer))
	row.AddCell().SetString(strDeref(rec.Email))
	row.AddCell().SetString(strDeref(rec.OrderDate))
	row.AddCell().SetString(strDeref(rec.DueDate))
	addAmount(row, rec.Subtotal)
	addAmount(row, rec.Tax)
	addAmount(row, rec.Total)
	row.AddCell().SetString(boolDeref(rec.PaymentCompleted))
	row.AddCell().SetString(strDeref(rec.PaymentMethod))
	row.AddCell().SetString(strDeref(rec.TransactionID))
	row.AddCell().SetString(strings.Join(rec.Items, "; "))
	row.AddCell().SetString(strDeref(rec.Notes))
	row.AddCell().SetString(rec.Filename)
}

func addAmount(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v == nil {
		return
	}
	cell.SetFloat(*v)
}

func strDeref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func boolDeref(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "yes"
	}
	return "no"
}
