package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			if strings.ToLower(format) == "json" {
				info, err := json.MarshalIndent(map[string]any{
					"version": version,
					"commit":  commit,
					"date":    date,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(info))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), version)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "text", "Output format (text, json)")
	return cmd
}
