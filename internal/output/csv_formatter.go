package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/retiresim/portfolio-calculator/internal/domain"
)

// CSVFormatter emits one row per simulated year: the balance percentiles
// plus the representative trial's cash flows for that age.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	header := []string{"Age", "P10", "P25", "Median", "P75", "P90", "Withdrawal", "Tax", "Net", "SSIncome", "TraceBalance"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	// Trace rows align with the percentile rows by year index.
	for i, yp := range result.YearlyPercentiles {
		row := []string{
			strconv.Itoa(yp.Age),
			yp.P10.StringFixed(2),
			yp.P25.StringFixed(2),
			yp.P50.StringFixed(2),
			yp.P75.StringFixed(2),
			yp.P90.StringFixed(2),
		}
		if i < len(result.RepresentativeTrace) {
			yr := result.RepresentativeTrace[i]
			row = append(row,
				yr.GrossWithdrawal.StringFixed(2),
				yr.TaxPaid.StringFixed(2),
				yr.NetWithdrawal.StringFixed(2),
				yr.SSIncome.StringFixed(2),
				yr.EndingBalance.StringFixed(2),
			)
		} else {
			row = append(row, "", "", "", "", "")
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
