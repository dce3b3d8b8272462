package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var templateType string

var templateCmd = &cobra.Command{
	Use:   "template <file>",
	Short: "Render an XSH template file (js or json directive mode)",
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
		out, err := e.ParseTemplate(string(source), templateType, scope)
		if err != nil {
			color.New(color.FgRed).Fprintln(cmd.ErrOrStderr(), err)
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	templateCmd.Flags().StringVar(&templateType, "type", "js", "template directive mode: js or json")
	rootCmd.AddCommand(templateCmd)
}
