package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/EnesGoktekin/detective-ai/cmd/cli/cases"
)

func init() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(cases.Group)
	rootCmd.AddCommand(cases.Ingest)
	rootCmd.AddCommand(cases.Validate)
}

var rootCmd = &cobra.Command{
	Use:  "detective-cli",
	Long: `Command line utilities for the detective game server`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
