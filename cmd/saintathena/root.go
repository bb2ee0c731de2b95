package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagConfig   string
	flagLogLevel string

	// v carries flag overrides into config.LoadWith
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "saintathena",
	Short: "SaintAthena product search and matching engine",
	Long: "Fuzzy product search over a grocery catalog: single-product queries, shopping lists\n" +
		"and suggestions. Without a subcommand the HTTP API is started.",
	Example: `  saintathena serve --port 8080
  saintathena search --catalog catalog.yaml "2 lbs bangus"
  saintathena search --catalog catalog.yaml --list "salmon, shrimp and squid"
  saintathena suggest --catalog catalog.yaml sal`,
	RunE: runServe,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "Config file (default: ./config.yaml, ./config/config.yaml, /etc/saintathena/config.yaml)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	registerServeFlags(rootCmd.Flags())
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()

	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagConfig = ""
	flagLogLevel = ""
	flagCatalog = ""
	flagList = false
	flagLimit = 0
	flagMinScore = -1
	flagOutOfStock = false
}
