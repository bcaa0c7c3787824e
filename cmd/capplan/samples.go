package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rgehrsitz/capplan/internal/inr"
	"github.com/rgehrsitz/capplan/internal/samples"
	"github.com/spf13/cobra"
)

func samplesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "samples",
		Short: "Explore the built-in sample plans",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the sample plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := samples.All()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tGOALS\tDESCRIPTION")
			for _, s := range all {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.ID, s.Name, len(s.Plan.Goals), s.Description)
			}
			return tw.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show [sample-id]",
		Short: "Describe a sample plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := samples.Get(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			p := s.Plan.Profile
			fmt.Fprintf(w, "%s\n%s\n\n", s.Name, s.Description)
			fmt.Fprintf(w, "Saver:    %s, age %d\n", p.Name, p.Age)
			fmt.Fprintf(w, "Savings:  %s\n", inr.Format(p.Savings))
			fmt.Fprintf(w, "Step-up:  %s a year\n", inr.Percent(p.StepUp.AnnualRate, 1))
			fmt.Fprintf(w, "Returns:  %s equity, %s debt\n\n",
				inr.Percent(p.Assumptions.EquityAnnual, 1), inr.Percent(p.Assumptions.DebtAnnual, 1))

			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "GOAL\tTYPE\tSAVING\tLUMPSUM")
			for _, g := range s.Plan.Goals {
				b := g.Common()
				fmt.Fprintf(tw, "%s\t%s\t%d-%d\t%s\n", b.Title, g.Kind(),
					b.AccumulationStartAge, b.AccumulationStopAge, inr.Compact(s.Plan.LumpsumFor(b.ID), false))
			}
			return tw.Flush()
		},
	}

	calculate := &cobra.Command{
		Use:   "calculate [sample-id]",
		Short: "Compute a sample plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := samples.Get(args[0])
			if err != nil {
				return err
			}
			return calculateAndReport(cmd, s.Prepare())
		},
	}
	calculate.Flags().StringP("format", "f", "console", "Output format (console, console-lite, json, csv, detailed-csv, html, pdf)")
	calculate.Flags().StringP("output", "o", "", "Write the report to this file")
	calculate.Flags().Bool("debug", false, "Enable debug output for detailed calculations")

	cmd.AddCommand(list, show, calculate)
	return cmd
}
