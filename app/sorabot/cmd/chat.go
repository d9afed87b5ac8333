package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/cchalm/sorabot/internal/chat"
)

var suggestions = []string{
	"Explain quantum computing",
	"How does blockchain work?",
	"What is artificial intelligence?",
}

var chatOptions struct {
	transcript bool
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Starts an interactive chat session. Type a message and press Enter to send it.
Enter :1, :2 or :3 to fill the prompt with one of the suggested questions, then
edit it or press Enter to send it. Enter exit, quit or Ctrl+D to leave. Ctrl+C
leaves after the reply being waited on arrives; press it again to leave at once.
The conversation is discarded when the session ends.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatOptions.transcript, "transcript", false, "Print a Markdown transcript of the conversation on exit")

	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx := setupContext()
	out := cmd.OutOrStdout()

	telemetryProvider, err := createTelemetryProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to create telemetry provider: %w", err)
	}
	defer shutdownTelemetry(telemetryProvider)

	client := createCompletionClient(ctx, cfg, telemetryProvider, func(retry int, delay time.Duration) {
		fmt.Fprintln(out, thinkingStyle.Render(fmt.Sprintf("Rate limited, retrying in %s...", delay)))
	})
	session := chat.NewSession(client, chat.WithHistoryWindow(cfg.HistoryWindow), chat.WithLogger(logger))
	logger.Debug().Str("session_id", session.ID()).Str("model", cfg.GeminiModel).Msg("Starting chat session")

	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	r := &repl{
		session:     session,
		prompter:    line,
		out:         out,
		suggestions: suggestions,
	}
	err = r.run(ctx)
	line.Close()
	if err != nil {
		return err
	}

	if chatOptions.transcript {
		md, err := session.Conversation().ToMarkdown(time.Now())
		if err != nil {
			return err
		}
		fmt.Fprint(out, md)
	}
	return nil
}

// prompter reads a line of user input. *liner.State implements it
type prompter interface {
	Prompt(prompt string) (string, error)
	// PromptWithSuggestion is Prompt with the input line prefilled with text and the cursor at pos, or at the end of
	// the line if pos is negative
	PromptWithSuggestion(prompt string, text string, pos int) (string, error)
	AppendHistory(item string)
}

// repl reads user input line by line and sends each line to the session, printing the replies
type repl struct {
	session     *chat.Session
	prompter    prompter
	out         io.Writer
	suggestions []string
}

func (r *repl) run(ctx context.Context) error {
	renderSuggestions(r.out, r.suggestions)

	var prefill string
	for ctx.Err() == nil {
		input, err := r.prompt(prefill)
		prefill = ""
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			return nil
		} else if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "exit" || input == "quit" {
			return nil
		}
		if input == "" {
			continue
		}

		text, ok := r.resolveSuggestion(input)
		if !ok {
			fmt.Fprintln(r.out, hintStyle.Render(fmt.Sprintf("No suggestion %s; pick :1 to :%d", input, len(r.suggestions))))
			continue
		}
		if text != input {
			// A suggestion only fills the next prompt; the user sends it with Enter
			prefill = text
			continue
		}
		r.prompter.AppendHistory(text)

		fmt.Fprintln(r.out, thinkingStyle.Render("Thinking..."))
		// An interrupt ends the loop once the reply is in rather than abandoning the request
		reply, err := r.session.Send(context.WithoutCancel(ctx), text)
		if errors.Is(err, chat.ErrEmptyInput) {
			continue
		} else if errors.Is(err, chat.ErrBusy) {
			fmt.Fprintln(r.out, hintStyle.Render("Still waiting on the previous reply"))
			continue
		} else if err != nil {
			return err
		}
		renderTurn(r.out, reply)
	}
	return nil
}

func (r *repl) prompt(prefill string) (string, error) {
	if prefill == "" {
		return r.prompter.Prompt("> ")
	}
	return r.prompter.PromptWithSuggestion("> ", prefill, -1)
}

// resolveSuggestion expands ":N" to the Nth suggestion. Any other input is returned unchanged. ok is false if input
// names a suggestion that doesn't exist
func (r *repl) resolveSuggestion(input string) (text string, ok bool) {
	numStr, found := strings.CutPrefix(input, ":")
	if !found {
		return input, true
	}
	n, err := strconv.Atoi(numStr)
	if err != nil {
		// Not a suggestion reference, e.g. ":)"
		return input, true
	}
	if n < 1 || n > len(r.suggestions) {
		return "", false
	}
	return r.suggestions[n-1], true
}
