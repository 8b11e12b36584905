package extract

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// The table layout renders one cell per line between the four-column
	// header and the subtotal label.
	tableRegion = regexp.MustCompile(`(?is)Description\s+Qty\s+Unit\s+Price\s+Amount\s*\n(.*?)Subtotal:`)
	// The list layout keeps dash-prefixed items between "Items:" and the
	// next section marker.
	listRegion = regexp.MustCompile(`(?is)Items:(.*?)(?:Notes:|Subtotal:|$)`)

	descriptionStart = regexp.MustCompile(`^[A-Za-z]`)
	pureDigits       = regexp.MustCompile(`^\d+$`)
)

var headerTokens = []string{"description", "qty", "unit price", "amount"}

// ExtractItems returns the ordered line items found in text. The table
// layout is tried first; the dash-list layout only runs when the table
// strategy yields nothing. An absent items region is an empty result,
// not an error.
func ExtractItems(text string) []string {
	if items := extractTableItems(text); len(items) > 0 {
		return items
	}
	return extractListItems(text)
}

// extractTableItems walks the table region with a cursor: a line that
// starts with a letter and holds no currency symbol opens a row, and up
// to three following lines are consumed as quantity, unit price, and
// amount. Partial rows degrade to a bare description.
func extractTableItems(text string) []string {
	m := tableRegion.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(m[1], "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}

	var items []string
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if isHeaderLine(line) {
			continue
		}
		if !descriptionStart.MatchString(line) || strings.Contains(line, "$") {
			continue
		}

		description := line
		var qty, unitPrice, amount string

		if i+1 < len(lines) && pureDigits.MatchString(lines[i+1]) {
			qty = lines[i+1]
			i++
		}
		if i+1 < len(lines) && strings.Contains(lines[i+1], "$") {
			unitPrice = cleanMoney(lines[i+1])
			i++
		}
		if i+1 < len(lines) && strings.Contains(lines[i+1], "$") {
			amount = cleanMoney(lines[i+1])
			i++
		}

		if qty != "" && unitPrice != "" && amount != "" {
			items = append(items, fmt.Sprintf("- %s x%s ($%s each = $%s)", description, qty, unitPrice, amount))
		} else {
			items = append(items, "- "+description)
		}
	}
	return items
}

func extractListItems(text string) []string {
	m := listRegion.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	var items []string
	for _, line := range strings.Split(m[1], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && strings.HasPrefix(trimmed, "-") {
			items = append(items, trimmed)
		}
	}
	return items
}

func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	for _, tok := range headerTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

func cleanMoney(s string) string {
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
