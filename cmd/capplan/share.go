package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rgehrsitz/capplan/internal/config"
	"github.com/rgehrsitz/capplan/internal/share"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func shareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Encode a plan as a share code or decode one back",
	}

	encode := &cobra.Command{
		Use:   "encode [plan-file]",
		Short: "Print the share code for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := loadPlan(args[0])
			if err != nil {
				return err
			}
			code, err := share.Encode(plan)
			if err != nil {
				return err
			}
			id, err := share.ShortID(plan)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "short id %s, %d characters\n", id, len(code))
			}
			return nil
		},
	}
	encode.Flags().BoolP("verbose", "v", false, "Also print the short id and code length")

	decode := &cobra.Command{
		Use:   "decode [code]",
		Short: "Decode a share code into a plan file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := share.Decode(strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if err := config.NewInputParser().ValidatePlan(plan); err != nil {
				return fmt.Errorf("decoded plan is invalid: %w", err)
			}

			format, _ := cmd.Flags().GetString("format")
			var data []byte
			switch strings.ToLower(format) {
			case "json":
				data, err = json.MarshalIndent(plan, "", "  ")
			case "yaml", "yml", "":
				data, err = yaml.Marshal(plan)
			default:
				return fmt.Errorf("unknown output format: %s (valid: yaml, json)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to encode plan: %w", err)
			}

			outputPath, _ := cmd.Flags().GetString("output")
			if outputPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write plan: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan written to %s\n", outputPath)
			return nil
		},
	}
	decode.Flags().StringP("format", "f", "yaml", "Plan file format (yaml, json)")
	decode.Flags().StringP("output", "o", "", "Write the plan to this file")

	cmd.AddCommand(encode, decode)
	return cmd
}
