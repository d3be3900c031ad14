// Package main provides the vibe-annotate command-line driver: the ambient
// CLI surface (spec §6) around the core annotation pipeline, following the
// teacher's cmd/vibe-vep/main.go + config.go structure (cobra + viper +
// yaml.v3), generalised from a GENCODE-cache-backed VEP tool to the
// recoder/VEP-backed variant annotation pipeline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes (spec §6: "0 success, nonzero on any unrecoverable error").
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if _, ok := err.(*usageError); ok {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks a cobra RunE failure as a usage problem (bad flags,
// missing required arguments) rather than a pipeline failure, so run() can
// return ExitUsage instead of ExitError.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newRootCmd() *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "vibe-annotate",
		Short: "Annotate variants via Ensembl VEP/recoder, with scoring and inheritance analysis",
		Long: `vibe-annotate resolves variant identifiers of any supported notation
(VCF-short, HGVS, rsID, CNV) to canonical coordinates, annotates them via
Ensembl VEP, and layers optional scoring, feature-overlap, and Mendelian
inheritance analysis on top.`,
		Example: `  vibe-annotate --variants 1-100-A-T --output JSON
  vibe-annotate --variants-file cohort.vcf --ped family.ped --calculate-inheritance --output VCF
  cat rsids.txt | vibe-annotate --variants-file - --chunk-size 500`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.toOptions()
			if err != nil {
				return &usageError{err}
			}

			if opts.stream {
				return runStreaming(opts)
			}

			out, err := runAnnotate(opts)
			if err != nil {
				return err
			}

			return writeOutput(opts, out)
		},
	}

	bindFlags(cmd, &flags)
	cmd.AddCommand(newConfigCmd())

	cobra.OnInitialize(func() { initConfig(flags.configFile) })

	return cmd
}

// initConfig wires viper's config-file/env-var precedence: ENSEMBL_BASE_URL
// overrides the configured base URL (spec §6 "Environment"), and
// ~/.vibe-annotate.yaml is read when present, mirroring the teacher's
// ~/.vibe-vep.yaml convention.
func initConfig(cfgFile string) {
	viper.SetEnvPrefix("VIBE_ANNOTATE")
	viper.AutomaticEnv()
	_ = viper.BindEnv("ensemblBaseUrl", "ENSEMBL_BASE_URL")
	viper.SetDefault("ensemblBaseUrl", "https://rest.ensembl.org")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".vibe-annotate")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			fmt.Fprintf(os.Stderr, "Warning: could not read config file: %v\n", err)
		}
	}
}

func writeOutput(opts options, rendered string) error {
	if !opts.save {
		fmt.Println(rendered)
		return nil
	}
	if opts.outputFile == "" {
		return fmt.Errorf("--save requires --output-file")
	}
	if err := os.WriteFile(opts.outputFile, []byte(rendered+"\n"), 0644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
