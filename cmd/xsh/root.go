package main

import (
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "xsh",
	Short: "XSH expression engine",
	Long:  `A command-line front end for the XSH embeddable shell/expression engine.`,
}

// Execute adds all child commands to the root command and runs it. Called
// once from main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML file of global variables to pre-register")
}
