package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/rgehrsitz/capplan/internal/breakeven"
	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/spf13/cobra"
)

func solveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the plan change that fits a monthly budget",
		Long: `Search for the retirement age or yearly step-up at which the first-year
monthly contribution fits a budget.

Examples:
  capplan solve retire-age plan.yaml --budget 50000
  capplan solve step-up plan.yaml --budget 1.2L --format json
  capplan solve all plan.yaml --budget 75K`,
	}

	cmd.AddCommand(solveTargetCmd("retire-age", "Find the earliest retirement age that fits the budget", breakeven.OptimizeRetireAge))
	cmd.AddCommand(solveTargetCmd("step-up", "Find the lowest yearly step-up that fits the budget", breakeven.OptimizeStepUp))
	cmd.AddCommand(solveTargetCmd("all", "Solve every target and compare", ""))
	return cmd
}

func solveTargetCmd(use, short string, target breakeven.OptimizationTarget) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [plan-file]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}

			budgetStr, _ := cmd.Flags().GetString("budget")
			budget, err := inr.Parse(budgetStr)
			if err != nil {
				return fmt.Errorf("invalid --budget: %w", err)
			}
			goalID, _ := cmd.Flags().GetString("goal")
			format, _ := cmd.Flags().GetString("format")

			solver := breakeven.NewDefaultSolver(newEngine(cmd))
			constraints := breakeven.Constraints{Budget: budget, GoalID: goalID}
			ctx := context.Background()

			var result *breakeven.MultiDimensionalResult
			var single *breakeven.OptimizationResult
			if target == "" {
				result, err = solver.OptimizeMultiDimensional(ctx, plan, constraints)
			} else {
				single, err = solver.Optimize(ctx, breakeven.OptimizationRequest{
					BasePlan:    plan,
					Target:      target,
					Constraints: constraints,
				})
			}
			if err != nil {
				return fmt.Errorf("solve failed: %w", err)
			}

			w := cmd.OutOrStdout()
			switch strings.ToLower(format) {
			case "json":
				jf := &breakeven.JSONFormatter{Pretty: true}
				var out string
				if single != nil {
					out, err = jf.Format(single)
				} else {
					out, err = jf.FormatMultiDimensional(result)
				}
				if err != nil {
					return fmt.Errorf("failed to format JSON: %w", err)
				}
				fmt.Fprintln(w, out)
			case "table", "console", "":
				tf := &breakeven.TableFormatter{}
				if single != nil {
					fmt.Fprint(w, tf.Format(single))
				} else {
					fmt.Fprint(w, tf.FormatMultiDimensional(result))
				}
			default:
				return fmt.Errorf("unknown output format: %s (valid: table, json)", format)
			}
			return nil
		},
	}

	cmd.Flags().String("budget", "", "Monthly budget, e.g. 50000, 75K or 1.2L (required)")
	cmd.Flags().String("goal", "", "Retirement goal id (defaults to the plan's retirement goal)")
	cmd.Flags().StringP("format", "f", "table", "Output format (table, json)")
	cmd.Flags().Bool("debug", false, "Enable debug output for detailed calculations")
	_ = cmd.MarkFlagRequired("budget")
	return cmd
}
