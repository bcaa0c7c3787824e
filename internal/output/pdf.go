package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/rgehrsitz/capplan/internal/inr"
)

const (
	pageWidth    = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 20.0
	contentWidth = pageWidth - marginLeft - marginRight
)

// pdfText makes text safe for the standard PDF fonts, which have no rupee
// sign or bullet glyphs
func pdfText(s string) string {
	return strings.NewReplacer("₹", "Rs ", "•", "-", "⚠", "!").Replace(s)
}

// PDFFormatter produces an A4 plan report
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

func (p PDFFormatter) Format(report *Report) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginLeft, marginTop, marginRight)
	pdf.SetAutoPageBreak(true, marginBottom)
	pdf.SetCreationDate(report.GeneratedAt)
	pdf.SetTitle(pdfText("Capital Plan: "+report.Plan.Profile.Name), false)

	addSummaryPage(pdf, report)
	addGoalTable(pdf, report)
	addProjectionTable(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func heading(pdf *fpdf.Fpdf, text string) {
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 13)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 9, text, "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(50, 50, 50)
}

func addSummaryPage(pdf *fpdf.Fpdf, report *Report) {
	plan, out := report.Plan, report.Output
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 24)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(contentWidth, 14, "Capital Plan Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "I", 11)
	pdf.SetTextColor(80, 80, 80)
	pdf.CellFormat(contentWidth, 8, pdfText(fmt.Sprintf("%s, age %d. Generated %s",
		plan.Profile.Name, plan.Profile.Age, report.GeneratedAt.Format("2 January 2006"))), "", 1, "C", false, 0, "")

	heading(pdf, "Summary")
	pdf.SetFillColor(245, 247, 250)
	rows := [][2]string{
		{"Savings", inr.Format(plan.Profile.Savings)},
		{"Allocated", inr.Format(out.TotalAllocated)},
		{"Unallocated", inr.Format(out.UnallocatedSavings)},
		{"Total monthly contribution", inr.Format(out.TotalMonthlyContribution)},
		{"Lifetime paid in", inr.Compact(report.LifetimeContribution(), true)},
		{"Step-up", out.StepUpPercent.StringFixed(1) + "%"},
		{"Final portfolio", inr.Compact(out.FinalValue(), true)},
	}
	for i, r := range rows {
		fill := i%2 == 0
		pdf.CellFormat(contentWidth*0.6, 7, r[0], "", 0, "L", fill, 0, "")
		pdf.CellFormat(contentWidth*0.4, 7, pdfText(r[1]), "", 1, "R", fill, 0, "")
	}

	heading(pdf, "Key Assumptions")
	for _, a := range Assumptions(plan) {
		pdf.MultiCell(contentWidth, 6, pdfText("- "+a), "", "L", false)
	}

	if warnings := report.Warnings(); len(warnings) > 0 {
		heading(pdf, "Warnings")
		pdf.SetTextColor(180, 77, 18)
		for _, w := range warnings {
			pdf.MultiCell(contentWidth, 6, pdfText("! "+w), "", "L", false)
		}
		pdf.SetTextColor(50, 50, 50)
	}
}

func tableHeader(pdf *fpdf.Fpdf, cols []string, widths []float64) {
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(0, 51, 102)
	pdf.SetTextColor(255, 255, 255)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 7, c, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(50, 50, 50)
}

func addGoalTable(pdf *fpdf.Fpdf, report *Report) {
	heading(pdf, "Goals")
	cols := []string{"Goal", "Status", "Monthly", "Lumpsum", "Target", "Ages"}
	widths := []float64{50, 40, 27, 22, 25, 16}
	tableHeader(pdf, cols, widths)
	for _, row := range report.GoalRows() {
		status := row.Status
		if row.Approximate {
			status += "*"
		}
		cells := []string{truncate(row.Title, 28), status, row.Monthly, row.Lumpsum, row.Target, row.Window}
		for i, c := range cells {
			align := "R"
			if i < 2 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, pdfText(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func addProjectionTable(pdf *fpdf.Fpdf, report *Report) {
	if len(report.Output.Chart) == 0 {
		return
	}
	pdf.AddPage()
	heading(pdf, "Portfolio Projection")
	cols := []string{"Year", "Age", "Value", "Monthly", "Paid In", "Withdrawn"}
	widths := []float64{20, 20, 35, 35, 35, 35}
	tableHeader(pdf, cols, widths)
	for _, p := range report.Output.Chart {
		monthly := "-"
		if p.MonthlyContribution != nil {
			monthly = inr.Format(*p.MonthlyContribution)
		}
		cells := []string{
			fmt.Sprint(p.Year), fmt.Sprint(p.Age), inr.Compact(p.PortfolioValue, true), monthly,
			inr.Compact(p.AnnualContribution, false), inr.Compact(p.AnnualWithdrawal, false),
		}
		pdf.SetFillColor(253, 232, 232)
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, pdfText(c), "1", 0, "R", p.Exhausted, 0, "")
		}
		pdf.Ln(-1)
	}
}
