// Package export renders a report as a downloadable document.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"smartfinance/internal/core"
	"smartfinance/internal/services"
)

type Format string

const (
	JSON Format = "json"
	XLSX Format = "xlsx"
)

const (
	summarySheet  = "Summary"
	categorySheet = "By Category"
	trendSheet    = "Trend"
)

// ParseFormat accepts json or xlsx, case-insensitively. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return JSON, nil
	case JSON, XLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format must be json or xlsx", core.ErrValidation)
	}
}

func (f Format) ContentType() string {
	if f == XLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/json"
}

// FileName is smartfinance-report-YYYY-MM-DD.<format>, dated at.
func FileName(f Format, at time.Time) string {
	return fmt.Sprintf("smartfinance-report-%s.%s", at.Format(core.DateLayout), f)
}

func Write(w io.Writer, f Format, r services.Report) error {
	switch f {
	case JSON:
		return WriteJSON(w, r)
	case XLSX:
		return WriteXLSX(w, r)
	default:
		return fmt.Errorf("%w: unsupported format %q", core.ErrValidation, f)
	}
}

// Document is the JSON export. pieChartMonth carries the month label
// ("March 2025"), not the YYYY-MM key.
type Document struct {
	Summary            core.SummaryStats     `json:"summary"`
	ExpensesByCategory []core.CategoryAmount `json:"expensesByCategory"`
	MonthlyTrend       []core.TrendPoint     `json:"monthlyTrend"`
	ExportDate         time.Time             `json:"exportDate"`
	Period             string                `json:"period"`
	PieChartMonth      string                `json:"pieChartMonth"`
}

func NewDocument(r services.Report) Document {
	return Document{
		Summary:            r.Summary,
		ExpensesByCategory: r.ExpensesByCategory,
		MonthlyTrend:       r.MonthlyTrend,
		ExportDate:         r.ExportDate.UTC(),
		Period:             r.Period,
		PieChartMonth:      r.PieChartMonthLabel,
	}
}

// WriteJSON writes the export document indented by two spaces.
func WriteJSON(w io.Writer, r services.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(r)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with the summary, the category breakdown of
// the pie-chart month and the monthly trend on separate sheets.
func WriteXLSX(w io.Writer, r services.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{categorySheet, trendSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	s := r.Summary
	top := ""
	if s.TopCategory != nil {
		top = s.TopCategory.Name
	}
	summary := [][]any{
		{"Period", r.Period},
		{"Pie chart month", r.PieChartMonthLabel},
		{"Total income", s.TotalIncome.Float()},
		{"Total expenses", s.TotalExpenses.Float()},
		{"Average monthly income", s.AvgMonthlyIncome.Float()},
		{"Average monthly expenses", s.AvgMonthlyExpenses.Float()},
		{"Net savings", s.NetSavings.Float()},
		{"Savings rate (%)", s.SavingsRate},
		{"Top category", top},
		{"Transactions", s.TransactionCount},
		{"Exported at", r.ExportDate.UTC().Format(time.RFC3339)},
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return fmt.Errorf("style %s: %w", summarySheet, err)
	}

	byCategory := [][]any{{"Category", "Amount"}}
	for _, c := range r.ExpensesByCategory {
		byCategory = append(byCategory, []any{c.Category, c.Amount.Float()})
	}
	if err := writeRows(f, categorySheet, byCategory); err != nil {
		return err
	}

	trend := [][]any{{"Month", "Income", "Expenses"}}
	for _, p := range r.MonthlyTrend {
		trend = append(trend, []any{p.Month, p.Income.Float(), p.Expenses.Float()})
	}
	if err := writeRows(f, trendSheet, trend); err != nil {
		return err
	}

	for _, name := range []string{categorySheet, trendSheet} {
		if err := f.SetCellStyle(name, "A1", "C1", bold); err != nil {
			return fmt.Errorf("style %s: %w", name, err)
		}
	}
	_ = f.SetColWidth(summarySheet, "A", "A", 26)
	_ = f.SetColWidth(summarySheet, "B", "B", 20)
	_ = f.SetColWidth(categorySheet, "A", "A", 20)
	_ = f.SetColWidth(trendSheet, "A", "C", 14)
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}
