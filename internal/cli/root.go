// Package cli implements the acta command tree: minting, transforming,
// inspecting, and validating action records from the shell.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the acta CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "acta",
		Short: "acta - action records on the command line",
		Long: `Mint, transform, inspect, and validate action records.

Records are printed as canonical wire JSON, so identical inputs yield
byte-identical output. Commands that read a record accept a file path or
- for stdin.`,
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default .acta.yaml in the working directory)")

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := loadConfig(opts, cmd.PersistentFlags()); err != nil {
			return err
		}
		if !isValidFormat(opts.Format) {
			return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
		}
		return nil
	}

	// Add subcommands
	cmd.AddCommand(NewNewCommand(opts))
	cmd.AddCommand(NewIdentifyCommand(opts))
	cmd.AddCommand(NewContinueCommand(opts))
	cmd.AddCommand(NewSucceedCommand(opts))
	cmd.AddCommand(NewFailCommand(opts))
	cmd.AddCommand(NewAdoptCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// loadConfig resolves global options from (in order of precedence) explicit
// flags, ACTA_* environment variables, and a config file.
func loadConfig(opts *RootOptions, flags *pflag.FlagSet) error {
	v := viper.New()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(".acta")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("ACTA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing default config is fine; anything else (unreadable or
		// unparsable file, missing explicit --config) is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.BindPFlag("format", flags.Lookup("format")); err != nil {
		return err
	}
	if err := v.BindPFlag("verbose", flags.Lookup("verbose")); err != nil {
		return err
	}
	opts.Format = v.GetString("format")
	opts.Verbose = v.GetBool("verbose")
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
