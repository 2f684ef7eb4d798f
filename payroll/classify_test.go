package payroll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warp/payroll-engine/payroll"
)

func TestClassify(t *testing.T) {
	// 2024-01-01 is a Monday.
	assert.Equal(t, payroll.TimeRegular, payroll.Classify(date("2024-01-01")))
	assert.Equal(t, payroll.TimeRegular, payroll.Classify(date("2024-01-05")))
	assert.Equal(t, payroll.TimeSaturday, payroll.Classify(date("2024-01-06")))
	assert.Equal(t, payroll.TimeSunday, payroll.Classify(date("2024-01-07")))
	assert.Equal(t, payroll.TimeRegular, payroll.Classify(date("2024-02-29")))
	assert.Equal(t, payroll.TimeSaturday, payroll.Classify(date("2024-03-02")))
}
