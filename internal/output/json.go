package output

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/domain"
)

// JSONFormatter writes the plan, its computed output and the assumptions
type JSONFormatter struct {
	Pretty bool
}

func (j JSONFormatter) Name() string { return "json" }

type jsonReport struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Plan        *domain.Plan           `json:"plan"`
	Output      *domain.ComputedOutput `json:"output"`
	Assumptions []string               `json:"assumptions"`
	Warnings    []string               `json:"warnings,omitempty"`
}

func (j JSONFormatter) Format(report *Report) ([]byte, error) {
	doc := jsonReport{
		GeneratedAt: report.GeneratedAt,
		Plan:        report.Plan,
		Output:      report.Output,
		Assumptions: Assumptions(report.Plan),
		Warnings:    report.Warnings(),
	}
	if j.Pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
