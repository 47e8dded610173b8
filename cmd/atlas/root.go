package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "atlas",
	Short: "Atlas - offline-resilient gateway and edge proxy for web maps",
	Long: `Atlas gives a web map application offline resilience and performant
tile delivery.

It provides two cooperating servers:
  - Edge proxy: request classification, region resolution, credential
    injection, and response rewriting for the geospatial upstreams
  - Offline gateway: versioned cache stores with network-first,
    cache-first, and stale-while-revalidate strategies in front of the
    application origin`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
