package commands

import (
	"github.com/spf13/cobra"

	"github.com/dataprobe/dataprobe/cmd/cli/config"
)

// applyConfigDefaults overrides format and output options from the user's
// config file when the corresponding flags were not set on the command line.
func applyConfigDefaults(cmd *cobra.Command, formatFlag string, format, output *string) {
	cfgFile := ""
	if f := cmd.Flags().Lookup("config"); f != nil {
		cfgFile = f.Value.String()
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return
	}

	if !cmd.Flags().Changed(formatFlag) && cfg.DefaultFormat != "" {
		*format = cfg.DefaultFormat
	}
	if !cmd.Flags().Changed("output") && cfg.DefaultOutput != "" {
		*output = cfg.DefaultOutput
	}
}
