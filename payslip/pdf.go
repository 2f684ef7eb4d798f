// Package payslip renders a payroll.Payslip as an A4 PDF document.
package payslip

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

var typeLabels = map[payroll.TimeType]string{
	payroll.TimeRegular:  "Regular",
	payroll.TimeOvertime: "Overtime",
	payroll.TimeSaturday: "Saturday",
	payroll.TimeSunday:   "Sunday",
	payroll.TimeHoliday:  "Holiday",
}

// Column widths of the hours table, in mm.
const (
	colType   = 60
	colHours  = 35
	colPrice  = 40
	colAmount = 45
	rowHeight = 7
)

// Render writes slip to w as a PDF.
func Render(w io.Writer, slip payroll.Payslip) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Payslip %s %s", slip.Report.EmployeeID, slip.Report.Period), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, "PAYSLIP", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, rowHeight, tr("Employee: "+slip.EmployeeName))
	pdf.Ln(rowHeight)
	pdf.Cell(0, rowHeight, "Period: "+slip.Report.Period.String())
	pdf.Ln(rowHeight)
	pdf.Cell(0, rowHeight, "Issued on: "+slip.IssuedOn.String())
	pdf.Ln(rowHeight)
	pdf.Cell(0, rowHeight, "Status: "+string(slip.Report.Status))
	pdf.Ln(rowHeight + 3)

	// Hours
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colType, rowHeight, "Type", "B", 0, "L", false, 0, "")
	pdf.CellFormat(colHours, rowHeight, "Hours", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colPrice, rowHeight, "Rate", "B", 0, "R", false, 0, "")
	pdf.CellFormat(colAmount, rowHeight, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range slip.Lines {
		pdf.CellFormat(colType, rowHeight, typeLabels[line.TimeType], "", 0, "L", false, 0, "")
		pdf.CellFormat(colHours, rowHeight, line.Hours.String()+"h", "", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, rowHeight, money(line.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(colAmount, rowHeight, money(line.Amount), "", 1, "R", false, 0, "")
	}
	totalRow(pdf, "Hours total", slip.HoursAmount())
	if slip.WorkedDays > 0 {
		pdf.Cell(0, rowHeight, fmt.Sprintf("Days worked: %d", slip.WorkedDays))
		pdf.Ln(rowHeight)
	}
	pdf.Ln(3)

	// Bonuses
	section(pdf, "Bonuses")
	for _, b := range slip.Bonuses {
		label := b.Description
		if label == "" {
			label = "Bonus"
		}
		pdf.CellFormat(colType+colHours+colPrice, rowHeight, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, rowHeight, money(b.Amount), "", 1, "R", false, 0, "")
	}
	totalRow(pdf, "Bonuses total", slip.Report.TotalBonuses)
	pdf.Ln(3)

	// Advances
	section(pdf, "Advances")
	for _, a := range slip.Advances {
		label := a.Date.String()
		if a.Note != "" {
			label += "  " + a.Note
		}
		pdf.CellFormat(colType+colHours+colPrice, rowHeight, tr(label), "", 0, "L", false, 0, "")
		pdf.CellFormat(colAmount, rowHeight, money(a.Amount), "", 1, "R", false, 0, "")
	}
	totalRow(pdf, "Advances total", slip.Report.TotalAdvances)
	pdf.Ln(5)

	totalRow(pdf, "Total gross", slip.Report.TotalGross)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(colType+colHours+colPrice, rowHeight+2, "NET PAY", "T", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, rowHeight+2, money(slip.Report.NetPay), "T", 1, "R", false, 0, "")

	return pdf.Output(w)
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, rowHeight, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func totalRow(pdf *gofpdf.Fpdf, label string, amount decimal.Decimal) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(colType+colHours+colPrice, rowHeight, label, "T", 0, "L", false, 0, "")
	pdf.CellFormat(colAmount, rowHeight, money(amount), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
