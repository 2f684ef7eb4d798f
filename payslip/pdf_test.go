package payslip_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payslip"
)

func TestRender_WritesPDF(t *testing.T) {
	jan := calendar.NewPeriod(2024, time.January)
	slip := payroll.Payslip{
		Report: payroll.Report{
			ID: "rep-1", EmployeeID: "emp-1", Period: jan, Status: payroll.StatusFinalized,
			Hours:         payroll.Breakdown{Regular: decimal.NewFromInt(160)},
			Gross:         payroll.Breakdown{Regular: decimal.NewFromInt(80000)},
			TotalBonuses:  decimal.NewFromInt(5000),
			TotalGross:    decimal.NewFromInt(85000),
			TotalAdvances: decimal.NewFromInt(20000),
			NetPay:        decimal.NewFromInt(65000),
		},
		EmployeeName: "Ana Petrović",
		Lines: []payroll.PayslipLine{
			{TimeType: payroll.TimeRegular, Hours: decimal.NewFromInt(160), UnitPrice: decimal.NewFromInt(500), Amount: decimal.NewFromInt(80000)},
			{TimeType: payroll.TimeHoliday, Hours: decimal.Zero, UnitPrice: decimal.Zero, Amount: decimal.Zero},
		},
		Bonuses:    []payroll.Bonus{{ID: "b-1", Amount: decimal.NewFromInt(5000), Description: "Target"}},
		Advances:   []payroll.Advance{{ID: "a-1", Date: calendar.MustParseDate("2024-01-15"), Amount: decimal.NewFromInt(20000)}},
		WorkedDays: 20,
		IssuedOn:   calendar.MustParseDate("2024-02-03"),
	}

	var buf bytes.Buffer
	require.NoError(t, payslip.Render(&buf, slip))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
}

func TestRender_EmptyPayslip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, payslip.Render(&buf, payroll.Payslip{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}
