package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	actionWindowID string
	actionTimeout  time.Duration
	gotoNewTab     bool
)

var actionCmd = &cobra.Command{
	Use:   "action",
	Short: "Run a one-off extension action in an initialized browser window.",
}

var getURLCmd = &cobra.Command{
	Use:   "get-url",
	Short: "Print the URL of the window's active page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		url, err := client.ConnectToBrowserWindow(actionWindowID).GetURL(cmd.Context(), actionTimeout)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

var gotoCmd = &cobra.Command{
	Use:   "goto <url>",
	Short: "Navigate the window's active page.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.ConnectToBrowserWindow(actionWindowID).
			GoToURL(cmd.Context(), args[0], gotoNewTab, actionTimeout)
	},
}

var printCmd = &cobra.Command{
	Use:   "print <message>",
	Short: "Print a message in the extension side panel chat.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return client.ConnectToBrowserWindow(actionWindowID).
			PrintMessage(cmd.Context(), args[0], actionTimeout)
	},
}

var screenshotCmd = &cobra.Command{
	Use:   "screenshot",
	Short: "Capture the window as a base64-encoded image.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		shot, err := client.ConnectToBrowserWindow(actionWindowID).GetScreenshot(cmd.Context(), actionTimeout)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), shot.Base64Content)
		return nil
	},
}

func init() {
	actionCmd.PersistentFlags().StringVar(&actionWindowID, "window", "", "browser window ID from 'narada open'")
	actionCmd.PersistentFlags().DurationVar(&actionTimeout, "timeout", 0, "server-side timeout for the action")
	_ = actionCmd.MarkPersistentFlagRequired("window")

	gotoCmd.Flags().BoolVar(&gotoNewTab, "new-tab", false, "open the URL in a new tab")

	actionCmd.AddCommand(getURLCmd)
	actionCmd.AddCommand(gotoCmd)
	actionCmd.AddCommand(printCmd)
	actionCmd.AddCommand(screenshotCmd)
}
