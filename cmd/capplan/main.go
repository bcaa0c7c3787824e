package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rgehrsitz/capplan/internal/calculation"
	"github.com/rgehrsitz/capplan/internal/compare"
	"github.com/rgehrsitz/capplan/internal/config"
	"github.com/rgehrsitz/capplan/internal/domain"
	"github.com/rgehrsitz/capplan/internal/output"
	"github.com/rgehrsitz/capplan/internal/transform"
	"github.com/spf13/cobra"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "capplan %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

// newEngine returns a calculation engine, logging through the standard
// logger when debug is set
func newEngine(cmd *cobra.Command) *calculation.Engine {
	engine := calculation.NewEngine()
	if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
		engine.SetLogger(simpleCLILogger{})
	}
	return engine
}

func loadPlan(path string) (*domain.Plan, error) {
	plan, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}
	return plan, nil
}

// writeReport renders a computed plan in the requested format. Binary
// formats go to a file: the --output path, or a timestamped name.
func writeReport(w io.Writer, report *output.Report, format, outputPath string) error {
	f := output.GetFormatterByName(format)
	if f == nil {
		return fmt.Errorf("unknown output format %q (valid: %s)", format, strings.Join(output.AvailableFormatterNames(), ", "))
	}

	binary := f.Name() == "pdf" || f.Name() == "html"
	if outputPath == "" && binary {
		filename, err := output.WriteFormatted(f, report, f.Name())
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Report written to %s\n", filename)
		return nil
	}

	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	if outputPath != "" {
		if err := os.WriteFile(outputPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Fprintf(w, "Report written to %s\n", outputPath)
		return nil
	}
	_, err = w.Write(data)
	return err
}

var rootCmd = &cobra.Command{
	Use:   "capplan",
	Short: "Goal-based capital planning CLI",
	Long: `Plan monthly investments for retirement, education, holidays and big purchases.

Each goal is inflated to its target, funded by any lumpsum set aside for it,
and solved for the first-year monthly SIP that reaches it. The combined
portfolio is then simulated year by year until the last goal is paid out.`,
	SilenceUsage: true,
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [plan-file]",
	Short: "Compute the monthly contributions for a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := loadPlan(args[0])
		if err != nil {
			return err
		}
		return calculateAndReport(cmd, plan)
	},
}

func calculateAndReport(cmd *cobra.Command, plan *domain.Plan) error {
	out, err := newEngine(cmd).Compute(plan)
	if err != nil {
		return fmt.Errorf("calculation failed: %w", err)
	}
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	return writeReport(cmd.OutOrStdout(), output.NewReport(plan, out), format, outputPath)
}

var validateCmd = &cobra.Command{
	Use:   "validate [plan-file]",
	Short: "Validate a plan file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := loadPlan(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Plan file %s is valid\n", args[0])
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [plan-file]",
	Short: "Compare a plan against what-if templates",
	Long: `Compare a plan against alternative versions of itself.

Examples:
  capplan compare plan.yaml --with no_step_up,step_up_10pct
  capplan compare plan.yaml --transform set_step_up:rate=0.08 --format csv
  capplan compare plan.yaml --list-templates  # Show all available templates
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		listTemplates, _ := cmd.Flags().GetBool("list-templates")
		if listTemplates {
			var plan *domain.Plan
			if len(args) == 1 {
				p, err := loadPlan(args[0])
				if err != nil {
					return err
				}
				plan = p
			}
			fmt.Fprint(cmd.OutOrStdout(), transform.GetTemplateHelp(transform.CreateBuiltInTemplates(plan)))
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("plan file required for comparison (use --list-templates to see available templates)")
		}

		plan, err := loadPlan(args[0])
		if err != nil {
			return err
		}

		templatesStr, _ := cmd.Flags().GetString("with")
		specs, _ := cmd.Flags().GetStringArray("transform")
		outputFormat, _ := cmd.Flags().GetString("format")

		templateNames := transform.ParseTemplateList(templatesStr)
		registry := transform.NewTransformRegistry()
		transforms := make([]transform.PlanTransform, 0, len(specs))
		for _, spec := range specs {
			t, err := registry.ParseTransformSpec(spec)
			if err != nil {
				return err
			}
			transforms = append(transforms, t)
		}
		if len(templateNames) == 0 && len(transforms) == 0 {
			return fmt.Errorf("--with or --transform is required (or use --list-templates)")
		}

		compareEngine := compare.NewCompareEngine(newEngine(cmd))
		comparisonSet, err := compareEngine.Compare(context.Background(), plan, compare.CompareOptions{
			BaseScenarioName: "current",
			Templates:        templateNames,
			Transforms:       transforms,
			ConfigPath:       args[0],
		})
		if err != nil {
			return fmt.Errorf("comparison failed: %w", err)
		}

		w := cmd.OutOrStdout()
		switch strings.ToLower(outputFormat) {
		case "csv":
			out, err := (&compare.CSVFormatter{}).Format(comparisonSet)
			if err != nil {
				return fmt.Errorf("failed to format CSV: %w", err)
			}
			fmt.Fprint(w, out)
		case "json":
			out, err := (&compare.JSONFormatter{Pretty: true}).Format(comparisonSet)
			if err != nil {
				return fmt.Errorf("failed to format JSON: %w", err)
			}
			fmt.Fprint(w, out)
		case "compact":
			fmt.Fprint(w, (&compare.TableFormatter{}).FormatCompact(comparisonSet))
		case "table", "console", "":
			fmt.Fprint(w, (&compare.TableFormatter{}).Format(comparisonSet))
		default:
			return fmt.Errorf("unknown output format: %s (valid: table, compact, csv, json)", outputFormat)
		}
		return nil
	},
}

func init() {
	calculateCmd.Flags().StringP("format", "f", "console", "Output format (console, console-lite, json, csv, detailed-csv, html, pdf)")
	calculateCmd.Flags().StringP("output", "o", "", "Write the report to this file")
	calculateCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	compareCmd.Flags().String("with", "", "Comma-separated list of templates to compare")
	compareCmd.Flags().StringArray("transform", nil, "Ad-hoc edit as name:key=value,... (repeatable, combined into one variant)")
	compareCmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
	compareCmd.Flags().Bool("list-templates", false, "List all available what-if templates")
	compareCmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(solveCmd())
	rootCmd.AddCommand(sensitivityCmd())
	rootCmd.AddCommand(shareCmd())
	rootCmd.AddCommand(samplesCmd())
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
