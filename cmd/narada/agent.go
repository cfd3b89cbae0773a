package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	narada "github.com/NaradaAI/narada-go"
)

var (
	agentPrompt   string
	agentWindowID string
	agentOperator bool
	agentTimeout  time.Duration
)

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Dispatch a natural-language task to an initialized browser window.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if agentPrompt == "" {
			return fmt.Errorf("--prompt is required")
		}
		if agentWindowID == "" {
			return fmt.Errorf("--window is required; run 'narada open' first")
		}

		client, err := newClient()
		if err != nil {
			return err
		}
		window := client.ConnectToBrowserWindow(agentWindowID)

		agentType := narada.AgentGeneralist
		if agentOperator {
			agentType = narada.AgentOperator
		}

		resp, err := window.Agent(cmd.Context(), &narada.DispatchRequest{
			Prompt:  agentPrompt,
			Agent:   agentType,
			Timeout: agentTimeout,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s\n", resp.Status, resp.Text)
		fmt.Fprintf(cmd.OutOrStdout(), "actions: %d, credits: %d\n", resp.Usage.Actions, resp.Usage.Credits)
		return nil
	},
}

func init() {
	agentCmd.Flags().StringVar(&agentPrompt, "prompt", "", "task for the agent")
	agentCmd.Flags().StringVar(&agentWindowID, "window", "", "browser window ID from 'narada open'")
	agentCmd.Flags().BoolVar(&agentOperator, "operator", true, "route the task to the Operator agent")
	agentCmd.Flags().DurationVar(&agentTimeout, "timeout", 0, "overall budget for the task (default 1000s)")
}
