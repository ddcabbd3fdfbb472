// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "storehub",
	Short: "StoreHub is a multi-store inventory and RMA management backend",
	Long: `StoreHub is a multi-store inventory and RMA management backend
that exposes a JSON REST API for store stock, group-based permissions
and the repair (RMA) lifecycle.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
