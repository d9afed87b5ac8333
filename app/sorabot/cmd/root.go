package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cchalm/sorabot/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "sorabot",
	Short: "Chat with Google Gemini from the terminal",
	Long: `Sorabot is a small chat client for the Google Gemini API. Each message is sent
along with the last few turns of the conversation, and rate-limited requests are
retried with a linear backoff. Conversations live only as long as the process.`,
	PersistentPreRunE: loadRootConfig,
	SilenceUsage:      true,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(cmd *cobra.Command, _ []string) error {
	// Load .env file
	envErr := godotenv.Load()

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	if err := applyFlagOverrides(cmd, &loaded); err != nil {
		return err
	}
	cfg = loaded

	logger = newLogger(cfg.LogLevel)
	if envErr != nil {
		logger.Debug().Msg("No .env file found, using environment variables")
	}
	return nil
}

func newLogger(level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flags.model, "model", "", "Gemini model to use (overrides GEMINI_MODEL)")
	rootCmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Timeout for each request attempt (overrides SORABOT_TIMEOUT)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides SORABOT_LOG_LEVEL)")
}

func applyFlagOverrides(cmd *cobra.Command, c *config.Config) error {
	if cmd.Flags().Changed("model") {
		c.GeminiModel = flags.model
	}
	if cmd.Flags().Changed("timeout") {
		c.Timeout = flags.timeout
	}
	if cmd.Flags().Changed("log-level") {
		level, err := zerolog.ParseLevel(flags.logLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level '%s': %w", flags.logLevel, err)
		}
		c.LogLevel = level
	}
	return nil
}
