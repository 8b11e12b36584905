package pipeline

import (
	"fmt"
	"strings"

	"github.com/phantompay/invoice-cli/internal/model"
)

// FormatReport renders a human-readable batch summary for the CLI.
func FormatReport(results []model.BatchResult) string {
	succeeded, failed := model.Summarize(results)

	var b strings.Builder
	fmt.Fprintf(&b, "Processed %d document(s): %d succeeded, %d failed\n", len(results), succeeded, failed)
	for _, r := range results {
		switch r.Status {
		case model.StatusConverted:
			fmt.Fprintf(&b, "  ok    %-40s %s -> %s\n", r.File, r.InvoiceNumber, r.JSONFile)
		case model.StatusUploaded:
			fmt.Fprintf(&b, "  ok    %-40s %s (convex %s)\n", r.File, r.InvoiceNumber, r.ConvexID)
		case model.StatusError:
			fmt.Fprintf(&b, "  fail  %-40s %s\n", r.File, r.Error)
		}
	}
	return b.String()
}
