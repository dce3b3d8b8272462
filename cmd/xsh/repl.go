package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oarkflow/xsh"
)

var (
	replPrompt    = color.New(color.FgCyan, color.Bold)
	replErr       = color.New(color.FgRed)
	replExitWords = map[string]bool{"exit": true, "quit": true}
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactively evaluate XSH expressions line by line",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		cfg, err := loadFileConfig(configPath)
		if err != nil {
			return err
		}
		e := newEngine()
		applyFileConfig(e, cfg)
		return runRepl(e, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// runRepl reads one line at a time, parsing and evaluating each against a
// single scope shared across the session so assignments persist line to
// line.
func runRepl(e *xsh.Engine, in io.Reader, out io.Writer) error {
	scope := e.NewScope()
	reader := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, replPrompt.Sprint("xsh> "))
		if !reader.Scan() {
			break
		}
		line := reader.Text()
		if replExitWords[line] {
			break
		}
		if line == "" {
			continue
		}
		v, err := e.Parse(line, scope, xsh.Undefined())
		if err != nil {
			fmt.Fprintln(out, replErr.Sprint(err.Error()))
			continue
		}
		fmt.Fprintln(out, v.String())
	}
	return reader.Err()
}
