package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rgehrsitz/capplan/internal/calculation"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/output"
	"github.com/spf13/cobra"
)

func sensitivityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sensitivity [plan-file]",
		Short: "Sweep return, inflation and step-up assumptions",
		Long: `Recompute a plan across a range of values for one or more assumptions
and report how the monthly contribution responds.

Parameters: equity_return, debt_return, inflation_rate, step_up_rate.
Ranges are percentages: name:min-max:steps.

Examples:
  capplan sensitivity plan.yaml --parameter equity_return:8-14:7
  capplan sensitivity plan.yaml --parameter-set common --type multi
  capplan sensitivity plan.yaml --type matrix -p equity_return:10-14:3 -p step_up_rate:0-10:3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}

			specs, _ := cmd.Flags().GetStringArray("parameter")
			set, _ := cmd.Flags().GetString("parameter-set")
			params, err := sensitivityParameters(specs, set)
			if err != nil {
				return err
			}

			analysisType, _ := cmd.Flags().GetString("type")
			format, _ := cmd.Flags().GetString("format")
			outputPath, _ := cmd.Flags().GetString("output")

			analyzer := calculation.NewSensitivityAnalyzer(newEngine(cmd))
			ctx := context.Background()

			var rendered string
			switch strings.ToLower(analysisType) {
			case "single", "":
				if len(params) != 1 {
					return fmt.Errorf("single analysis needs exactly one parameter, got %d (use --type multi)", len(params))
				}
				analysis, err := analyzer.AnalyzeSingleParameter(ctx, plan, params[0])
				if err != nil {
					return fmt.Errorf("sensitivity analysis failed: %w", err)
				}
				rendered, err = renderSensitivity(format, analysis)
				if err != nil {
					return err
				}
			case "multi":
				analysis, err := analyzer.AnalyzeMultipleParameters(ctx, plan, params)
				if err != nil {
					return fmt.Errorf("sensitivity analysis failed: %w", err)
				}
				rendered, err = renderSensitivity(format, analysis)
				if err != nil {
					return err
				}
			case "matrix":
				if len(params) != 2 {
					return fmt.Errorf("matrix analysis needs exactly two parameters, got %d", len(params))
				}
				matrix, err := analyzer.AnalyzeParameterMatrix(ctx, plan, params[0], params[1])
				if err != nil {
					return fmt.Errorf("sensitivity analysis failed: %w", err)
				}
				rendered, err = renderSensitivityMatrix(format, matrix)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown analysis type: %s (valid: single, multi, matrix)", analysisType)
			}

			if outputPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), rendered)
				if !strings.HasSuffix(rendered, "\n") {
					fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("failed to write analysis: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sensitivity analysis written to %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringArrayP("parameter", "p", nil, "Parameter to sweep as name[:min-max[:steps]] (repeatable)")
	cmd.Flags().String("parameter-set", "", "Sweep a named set of parameters instead (common)")
	cmd.Flags().StringP("type", "t", "single", "Analysis type (single, multi, matrix)")
	cmd.Flags().StringP("format", "f", "console", "Output format (console, json, csv)")
	cmd.Flags().StringP("output", "o", "", "Write the analysis to this file")
	cmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
	return cmd
}

func sensitivityParameters(specs []string, set string) ([]domain.SensitivityParameter, error) {
	switch {
	case set != "" && len(specs) > 0:
		return nil, fmt.Errorf("use either --parameter or --parameter-set, not both")
	case set == "common":
		return domain.GetCommonParameters(), nil
	case set != "":
		return nil, fmt.Errorf("unknown parameter set: %s (valid: common)", set)
	case len(specs) == 0:
		return nil, fmt.Errorf("at least one --parameter is required")
	}

	params := make([]domain.SensitivityParameter, 0, len(specs))
	for _, spec := range specs {
		p, err := domain.ParseSensitivityParameter(spec)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}

func renderSensitivity(format string, a *domain.ParameterSensitivityAnalysis) (string, error) {
	switch strings.ToLower(format) {
	case "console", "table", "":
		return output.SensitivityConsoleFormatter{}.Format(a), nil
	case "json":
		return output.SensitivityJSONFormatter{Pretty: true}.Format(a)
	case "csv":
		return output.SensitivityCSVFormatter{}.Format(a)
	default:
		return "", fmt.Errorf("unknown output format: %s (valid: console, json, csv)", format)
	}
}

func renderSensitivityMatrix(format string, m *domain.SensitivityMatrix) (string, error) {
	switch strings.ToLower(format) {
	case "console", "table", "":
		return output.SensitivityConsoleFormatter{}.FormatMatrix(m), nil
	case "json":
		return output.SensitivityJSONFormatter{Pretty: true}.FormatMatrix(m)
	case "csv":
		return output.SensitivityCSVFormatter{}.FormatMatrix(m)
	default:
		return "", fmt.Errorf("unknown output format: %s (valid: console, json, csv)", format)
	}
}
