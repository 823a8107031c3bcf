package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"

	"github.com/retiresim/portfolio-calculator/internal/domain"
)

// ConsoleFormatter renders the run summary and a year-by-year table for
// terminal display.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(result *domain.SimulationResult) ([]byte, error) {
	buf := &bytes.Buffer{}

	fmt.Fprintln(buf, "=== Retirement Portfolio Sustainability ===")
	fmt.Fprintf(buf, "Trials: %d  Seed: %d\n", result.TrialCount, result.Seed)
	fmt.Fprintf(buf, "Success Rate: %s\n", FormatPercent(result.SuccessRate))
	fmt.Fprintln(buf)
	fmt.Fprintf(buf, "Required Annual Withdrawal (Pre-SS):  %s\n", FormatCurrency(result.RequiredWithdrawalPreSS))
	fmt.Fprintf(buf, "Required Annual Withdrawal (Post-SS): %s\n", FormatCurrency(result.RequiredWithdrawalPostSS))
	fmt.Fprintf(buf, "Median Ending Balance: %s\n", FormatCurrency(result.MedianEndingBalance))
	ep := result.EndingBalancePercentiles
	fmt.Fprintf(buf, "Ending Balance Percentiles: P10 %s  P25 %s  P50 %s  P75 %s  P90 %s\n",
		FormatCurrency(ep.P10), FormatCurrency(ep.P25), FormatCurrency(ep.P50),
		FormatCurrency(ep.P75), FormatCurrency(ep.P90))
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "Year-by-Year Projection (balance percentiles across trials):")
	w := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Age\tP10\tP25\tMedian\tP75\tP90")
	for _, yp := range result.YearlyPercentiles {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			yp.Age,
			FormatCurrency(yp.P10), FormatCurrency(yp.P25), FormatCurrency(yp.P50),
			FormatCurrency(yp.P75), FormatCurrency(yp.P90))
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}
	fmt.Fprintln(buf)

	fmt.Fprintln(buf, "Representative Trial (closest to median outcome):")
	w = tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Age\tStart Balance\tWithdrawal\tTax\tNet\tSS Income\tEnd Balance")
	for _, yr := range result.RepresentativeTrace {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			yr.Age,
			FormatCurrency(yr.StartingBalance), FormatCurrency(yr.GrossWithdrawal),
			FormatCurrency(yr.TaxPaid), FormatCurrency(yr.NetWithdrawal),
			FormatCurrency(yr.SSIncome), FormatCurrency(yr.EndingBalance))
	}
	if err := w.Flush(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
