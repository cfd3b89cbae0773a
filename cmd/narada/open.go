package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	narada "github.com/NaradaAI/narada-go"
	"github.com/NaradaAI/narada-go/internal/observability"
)

var attachExisting bool

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open (or attach to) a browser window and initialize the extension.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		opts := browserOptions()
		ctx := cmd.Context()

		var window *narada.BrowserWindow
		if attachExisting {
			window, err = client.InitializeInExistingBrowserWindow(ctx, opts)
		} else {
			window, err = client.OpenAndInitializeBrowserWindow(ctx, opts)
		}
		if err != nil {
			return err
		}

		observability.GetLogger().Info("browser window initialized",
			zap.String("browser_window_id", window.BrowserWindowID()),
			zap.Int("browser_pid", window.BrowserPID()))
		fmt.Fprintln(cmd.OutOrStdout(), window.BrowserWindowID())
		return nil
	},
}

func init() {
	openCmd.Flags().BoolVar(&attachExisting, "attach", false, "attach to an already-running browser instead of launching one")
}
