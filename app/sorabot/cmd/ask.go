package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cchalm/sorabot/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question",
	Long: `Sends a single question and prints the reply. Rate-limited requests are retried
the same way as in chat mode.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := setupContext()

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	defer shutdownTelemetry(telemetryProvider)

	client := createCompletionClient(ctx, cfg, telemetryProvider, nil)
	session := chat.NewSession(client, chat.WithHistoryWindow(cfg.HistoryWindow), chat.WithLogger(logger))

	reply, err := session.Send(ctx, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to send question: %w", err)
	}
	renderTurn(cmd.OutOrStdout(), reply)
	return nil
}
