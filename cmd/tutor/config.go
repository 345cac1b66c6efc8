package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/tutorgraph/pkg/flowgraph/checkpoint"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	var asJSON, asYAML bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show effective configuration with secrets masked",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := a.settings.Redacted()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(s)
			}
			if asYAML {
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(s); err != nil {
					return err
				}
				return enc.Close()
			}

			backend := "memory"
			switch {
			case checkpoint.ValidConnString(a.settings.DatabaseURL):
				backend = "postgres"
			case s.SQLitePath != "":
				backend = "sqlite (" + s.SQLitePath + ")"
			}

			fmt.Fprintln(out, "Effective Configuration")
			fmt.Fprintln(out, "=======================")
			fmt.Fprintf(out, "  Checkpoints:   %s\n", backend)
			if s.DatabaseURL != "" {
				fmt.Fprintf(out, "  Database URL:  %s\n", s.DatabaseURL)
			}
			fmt.Fprintf(out, "  Topology:      %s\n", s.Topology)
			fmt.Fprintf(out, "  Log:           %s, %s\n", s.LogLevel, s.LogFormat)
			if s.LogFile != "" {
				fmt.Fprintf(out, "  Log file:      %s\n", s.LogFile)
			}
			fmt.Fprintf(out, "  LLM provider:  %s\n", s.LLM.Provider)
			if s.LLM.Model != "" {
				fmt.Fprintf(out, "  LLM model:     %s\n", s.LLM.Model)
			}
			if s.LLM.APIKey != "" {
				fmt.Fprintf(out, "  LLM API key:   %s\n", s.LLM.APIKey)
			}
			return nil
		},
	}
	show.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	show.Flags().BoolVarP(&asYAML, "yaml", "y", false, "output as YAML")

	cmd.AddCommand(show)
	return cmd
}
