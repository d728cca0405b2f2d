// ABOUTME: CLI command for talking to the coach.
// ABOUTME: One-shot with arguments, otherwise an interactive readline session.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to your coach",
	Long: `Ask the coach a question. Replies use your profile, your last few days,
and recent trends.

With OPENAI_API_KEY set, replies are generated. Without it, or when the
model is slow or unreachable, the coach answers from built-in guidance.

With no message, chat starts an interactive session. Type 'exit' or press
Ctrl-D to leave.

EXAMPLES:

  coach chat "I'm tired today"
  coach chat "what should I eat after training?"
  coach chat`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			reply := svc.Reply(cmd.Context(), currentUser(), strings.Join(args, " "))
			fmt.Fprintln(out(cmd), reply)
			return nil
		}

		rl, err := readline.NewEx(&readline.Config{
			Prompt:          color.CyanString("you> "),
			HistoryFile:     filepath.Join(cfg.GetDataDir(), "chat_history"),
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return fmt.Errorf("failed to start chat: %w", err)
		}
		defer rl.Close()

		return chatLoop(cmd.Context(), rl, out(cmd))
	},
}

// lineReader is the part of readline the chat loop needs.
type lineReader interface {
	Readline() (string, error)
}

func chatLoop(ctx context.Context, rl lineReader, w io.Writer) error {
	fmt.Fprintln(w, color.New(color.Faint).Sprint("Talk to your coach. 'exit' to quit."))
	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		text := strings.TrimSpace(line)
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		reply := svc.Reply(ctx, currentUser(), text)
		fmt.Fprintf(w, "%s %s\n", color.GreenString("coach>"), reply)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
