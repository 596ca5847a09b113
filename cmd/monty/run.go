package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cortesi/monty/pkg/monty"
)

var runCmd = &cobra.Command{
	Use:   "run <script>",
	Short: "Run a monty script file",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return runFile(args[0])
	},
}

func runFile(path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ex, perr := monty.New(string(source), path, nil)
	if perr != nil {
		fmt.Fprintln(os.Stderr, perr)
		os.Exit(monty.ParseErrorExitCode(perr))
	}
	defer ex.Close()

	exit := ex.Run(nil)
	switch exit.Kind {
	case monty.ExitReturn:
		fmt.Println(ex.Repr(exit.Value))
	case monty.ExitException:
		fmt.Fprintln(os.Stderr, exit.Exc.Error())
	case monty.ExitInternal:
		logrus.WithField("reason", exit.Err.Reason).Error("monty: internal error")
	}
	os.Exit(monty.ExitCode(exit))
	return nil
}
