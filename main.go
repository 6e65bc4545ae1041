// Package main implements the taskmanager command: the task service, its web
// pages and a terminal client.
package main

import (
	"os"

	"github.com/example/task-manager/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "taskmanager",
	Short:        "Task Manager - a minimal task tracker",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a TOML config file (default "+config.DefaultFile+" if present)")
	rootCmd.AddCommand(serveCmd, newTasksCmd())
}
