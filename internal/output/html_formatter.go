package output

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/shopspring/decimal"
)

// HTMLFormatter produces a standalone HTML report
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

//go:embed templates/report.html.tmpl
var htmlTemplateSource string

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"inr":     inr.Format,
	"compact": func(d decimal.Decimal) string { return inr.Compact(d, true) },
	"derefInr": func(d *decimal.Decimal) string {
		if d == nil {
			return "-"
		}
		return inr.Format(*d)
	},
}).Parse(htmlTemplateSource))

func (h HTMLFormatter) Format(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	data := struct {
		*Report
		Goals       []GoalRow
		Assumptions []string
		Notes       []string
		Lifetime    decimal.Decimal
	}{report, report.GoalRows(), Assumptions(report.Plan), report.Warnings(), report.LifetimeContribution()}
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
