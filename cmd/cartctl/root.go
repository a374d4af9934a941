package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	stateFile string
	verbose   bool
	showHTML  bool
)

// 通知が出た（操作が失敗した）ときの終了用
var errAlerted = errors.New("cart operation failed")

var rootCmd = &cobra.Command{
	Use:   "cartctl",
	Short: "Drive a storefront cart from the terminal",
	Long: `cartctl hosts the cart drawer controller outside a browser. Every
command talks to the cart server the way the storefront page does:
mutations are posted with the CSRF token, then the drawer is refreshed
from a full server snapshot.`,
	SilenceUsage: true,
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "cartctl.yml", "config file path")
	rootCmd.PersistentFlags().StringVar(&stateFile, "state", defaultStatePath(), "file keeping the session cookies between runs")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&showHTML, "html", false, "print the rendered drawer HTML instead of a table")
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".cartctl-session.json"
	}
	return filepath.Join(dir, "cartctl", "session.json")
}
