package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rubeniskov/traverse-json/internal/config"
	"github.com/rubeniskov/traverse-json/pkg/loader"
)

func newConfigCommand(configFile *string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged configuration",
		Long: `Prints the embedded defaults overlaid with the config file: the one given
with --config-file, else $XDG_CONFIG_HOME/traverse-json/config.yaml when it
exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.ResolvePath(*configFile))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch output {
			case "yaml", "":
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = out.Write(data)
				return err
			case "json":
				// round-trip through YAML so the json keys follow the yaml tags
				data, err := cfg.Marshal()
				if err != nil {
					return err
				}
				root, err := loader.LoadRoot(string(data), loader.FormatYAML)
				if err != nil {
					return err
				}
				b, err := json.MarshalIndent(root, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(b))
				return err
			default:
				return &exitError{code: 2, err: fmt.Errorf("invalid output for config: %s (use yaml|json)", output)}
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "output format: yaml|json")

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file in use, or where one would be read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := config.ResolvePath(*configFile)
			if path == "" {
				def, err := config.DefaultPath()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s (not found, using defaults)\n", def)
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "default",
		Short: "Print the built-in configuration with comments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write(config.DefaultYAML())
			return err
		},
	})
	return cmd
}
