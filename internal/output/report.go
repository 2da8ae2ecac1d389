// Package output renders engine results for the CLI. Formatters are
// read-only consumers of result objects; monetary decimals serialize as
// exact strings, never floating point.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rdtax/credit-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportGenerator handles report generation in the supported formats.
type ReportGenerator struct{}

// NewReportGenerator creates a new report generator.
func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{}
}

// GenerateReport writes a full calculation result in the specified format.
func (rg *ReportGenerator) GenerateReport(w io.Writer, result *domain.FullCalculationResult, format string) error {
	switch format {
	case "console":
		return rg.WriteConsoleReport(w, result)
	case "json":
		return rg.WriteJSONReport(w, result)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteJSONReport writes the result as indented JSON. shopspring decimals
// marshal as quoted strings, which keeps penny precision across the boundary.
func (rg *ReportGenerator) WriteJSONReport(w io.Writer, result *domain.FullCalculationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	return nil
}

// FormatCurrency formats a decimal as a dollar amount.
func FormatCurrency(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
