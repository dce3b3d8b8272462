package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oarkflow/xsh"
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Parse and evaluate an XSH source file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		source, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		cfg, err := loadFileConfig(configPath)
		if err != nil {
			return err
		}
		e := newEngine()
		applyFileConfig(e, cfg)
		scope := e.NewScope()
		v, err := e.Parse(string(source), scope, xsh.Undefined())
		if err != nil {
			color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), err)
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
