// Package cmd provides the command-line interface for gemmcache.
package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// NewRootCmd creates the base command when called without any subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "gemmcache",
		Short: "gemmcache generates the memory access traces of matrix " +
			"multiplications and simulates them on a cache.",
		Long: `gemmcache generates the memory access traces of naive and ` +
			`blocked matrix multiplications under the six loop orders, and ` +
			`replays them on an LRU set-associative cache. Cache defaults ` +
			`can be set with GEMMCACHE_* environment variables, also read ` +
			`from the file given by --env-file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			return loadEnvFile(envFile)
		},
	}

	rootCmd.PersistentFlags().String("env-file", ".env",
		"File with GEMMCACHE_* settings. Ignored if it does not exist.")

	rootCmd.AddCommand(
		newTraceCmd(),
		newHeatmapCmd(),
		newSimulateCmd(),
		newCompareCmd(),
		newRunsCmd(),
		newServeCmd(),
	)

	return rootCmd
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return err
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := NewRootCmd().Execute()
	if err != nil {
		atexit.Exit(1)
	}
}
