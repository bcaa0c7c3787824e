package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVSummarizer writes one row per goal
type CSVSummarizer struct{}

func (c CSVSummarizer) Name() string { return "csv" }

func (c CSVSummarizer) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"GoalID", "Type", "Title", "Status", "MonthlyContributionYear1", "Lumpsum", "LumpsumFutureValue", "TargetAmount", "TargetCorpus", "StartMonth", "ActualStopMonth", "TotalContribution", "Approximate"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, gc := range report.Output.PerGoal {
		corpus, stop := "", ""
		if gc.TargetCorpus != nil {
			corpus = gc.TargetCorpus.StringFixed(2)
		}
		if gc.ActualStopMonth != nil {
			stop = strconv.Itoa(*gc.ActualStopMonth)
		}
		row := []string{
			gc.GoalID,
			string(gc.GoalType),
			gc.Title,
			string(gc.Status),
			gc.MonthlyContributionYear1.StringFixed(2),
			gc.Lumpsum.StringFixed(2),
			gc.LumpsumFutureValue.StringFixed(2),
			gc.TargetAmount.StringFixed(2),
			corpus,
			strconv.Itoa(gc.StartMonth),
			stop,
			gc.TotalContribution.StringFixed(2),
			strconv.FormatBool(gc.Approximate),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// DetailedCSVFormatter writes the yearly portfolio projection
type DetailedCSVFormatter struct{}

func (d DetailedCSVFormatter) Name() string { return "detailed-csv" }

func (d DetailedCSVFormatter) Format(report *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"Year", "Age", "PortfolioValue", "PortfolioCrore", "AnnualContribution", "MonthlyContribution", "AnnualWithdrawal", "Exhausted"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, p := range report.Output.Chart {
		monthly := ""
		if p.MonthlyContribution != nil {
			monthly = p.MonthlyContribution.StringFixed(2)
		}
		row := []string{
			strconv.Itoa(p.Year),
			strconv.Itoa(p.Age),
			p.PortfolioValue.StringFixed(2),
			strconv.FormatFloat(p.PortfolioCrore, 'f', 2, 64),
			p.AnnualContribution.StringFixed(2),
			monthly,
			p.AnnualWithdrawal.StringFixed(2),
			strconv.FormatBool(p.Exhausted),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
