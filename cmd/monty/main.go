package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is a small cobra tree with two subcommands: "monty run
// <script.py>" executes a file, "monty repl" starts an interactive
// session.
var rootCmd = &cobra.Command{
	Use:   "monty",
	Short: "monty runs a small embedded Python-like scripting language",
}

func main() {
	rootCmd.AddCommand(runCmd, replCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
