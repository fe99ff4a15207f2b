package tui

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/generator"
)

var numPrinter = message.NewPrinter(language.English)

// formatNumber renders a value card figure with thousands separators
// and two fraction digits.
func formatNumber(v float64) string {
	return numPrinter.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// rowFormatter picks the line renderer for a collection.
func rowFormatter(cat generator.RowCategory) func([]dashboard.Record) []string {
	if cat == generator.RowsUsers {
		return formatUsers
	}
	return formatOperations
}

func formatOperations(batch []dashboard.Record) []string {
	lines := make([]string, 0, len(batch))
	for _, rec := range batch {
		lines = append(lines, fmt.Sprintf("%-10s  %-16s  %-8s  %12s %-3s  %s",
			truncate(cellText(rec, "date"), 10),
			truncate(cellText(rec, "description"), 16),
			truncate(cellText(rec, "category"), 8),
			cellAmount(rec, "amount"),
			truncate(cellText(rec, "currency"), 3),
			truncate(cellText(rec, "status"), 8),
		))
	}
	return lines
}

func formatUsers(batch []dashboard.Record) []string {
	lines := make([]string, 0, len(batch))
	for _, rec := range batch {
		lines = append(lines, fmt.Sprintf("%-14s  %-26s  %-2s  %-10s  %12s  %s",
			truncate(cellText(rec, "name"), 14),
			truncate(cellText(rec, "email"), 26),
			truncate(cellText(rec, "country"), 2),
			truncate(cellText(rec, "joined_at"), 10),
			cellAmount(rec, "balance"),
			cellFlag(rec, "active"),
		))
	}
	return lines
}

// operationsHeader and usersHeader mirror the column layout above.
func operationsHeader() string {
	return fmt.Sprintf("%-10s  %-16s  %-8s  %12s %-3s  %s",
		"DATE", "DESCRIPTION", "CATEGORY", "AMOUNT", "CUR", "STATUS")
}

func usersHeader() string {
	return fmt.Sprintf("%-14s  %-26s  %-2s  %-10s  %12s  %s",
		"NAME", "EMAIL", "CC", "JOINED", "BALANCE", "ACTIVE")
}

func tableHeader(cat generator.RowCategory) string {
	if cat == generator.RowsUsers {
		return usersHeader()
	}
	return operationsHeader()
}

// cellText reads a record field as text. Records come straight off the
// wire, so absent or oddly typed fields degrade to an empty cell.
func cellText(rec dashboard.Record, key string) string {
	switch v := rec[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// cellAmount renders a money field. Amounts travel as decimal strings;
// anything unparsable shows as a dash rather than breaking the row.
func cellAmount(rec dashboard.Record, key string) string {
	raw := rec[key]
	switch v := raw.(type) {
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "-"
		}
		return formatNumber(f)
	case float64:
		return formatNumber(v)
	default:
		return "-"
	}
}

func cellFlag(rec dashboard.Record, key string) string {
	if v, ok := rec[key].(bool); ok && v {
		return "yes"
	}
	return "no"
}

func truncate(s string, w int) string {
	if w <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(runes[:w-1]) + "…"
}
