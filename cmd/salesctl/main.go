package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/util"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rootCmd = &cobra.Command{
		Use:   "salesctl",
		Short: "Daily sales reports from the storefront content store",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return util.InitLogger(env, "salesctl")
		},
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the salesctl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	env     string
	day     string
	outDir  string
	version = "dev"
)

func main() {
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "logger environment")
	rootCmd.PersistentFlags().StringVarP(&day, "date", "d", "", "business day as YYYY-MM-DD (default today)")
	exportCmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory the CSV is written to")

	rootCmd.AddCommand(versionCmd, reportCmd, historyCmd, exportCmd, syncCatalogCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	util.SyncLogger()
	if err != nil {
		util.GetLogger().Error("salesctl failed", zap.Error(err))
		os.Exit(1)
	}
}
