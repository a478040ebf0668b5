package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"provault/logx"
)

var rootCmd = &cobra.Command{
	Use:   "provault",
	Short: "Provault custody node CLI",
	Long:  "Command line interface for running and managing a provault custody node.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}
